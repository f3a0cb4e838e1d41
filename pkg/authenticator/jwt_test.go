package authenticator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskforge-lab/backend/pkg/authenticator"
)

type tokenPayload struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func TestTokenEngine_RoundTrip(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, tokenPayload{ID: "user1", Role: "USER"})
	require.NoError(t, err)

	var payload tokenPayload
	require.NoError(t, engine.Verify(token, &payload))
	require.Equal(t, "user1", payload.ID)
	require.Equal(t, "USER", payload.Role)
}

func TestTokenEngine_Expired(t *testing.T) {
	engine := authenticator.NewTokenEngine("secret")
	token, err := engine.Generate(-time.Minute, tokenPayload{ID: "user1"})
	require.NoError(t, err)

	var payload tokenPayload
	require.Error(t, engine.Verify(token, &payload))
}

func TestTokenEngine_WrongSecret(t *testing.T) {
	token, err := authenticator.NewTokenEngine("secret").
		Generate(time.Minute, tokenPayload{ID: "user1"})
	require.NoError(t, err)

	var payload tokenPayload
	require.Error(t, authenticator.NewTokenEngine("another").Verify(token, &payload))
}
