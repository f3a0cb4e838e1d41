package statistic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/testutil"
)

func insertCredit(
	ctx context.Context, t *testing.T,
	repo repository.PointTransactionRepository,
	userID string, points int64, at time.Time,
) {
	err := repo.Create(ctx, &entity.PointTransaction{
		SnowFlakeBase: entity.SnowFlakeBase{CreatedAt: at},
		UserID:        userID,
		Points:        points,
		Type:          entity.TransactionTaskCompleted,
	})
	require.NoError(t, err)
}

func Test_GetPreviousRanks_RebuildAndSnapshot(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	lastWeek, err := ToLastPeriod("week")
	require.NoError(t, err)

	transactionRepo := repository.NewPointTransactionRepository()
	duringLastWeek := lastWeek.Start().Add(time.Hour)
	insertCredit(ctx, t, transactionRepo, testutil.User1.ID, 200, duringLastWeek)
	insertCredit(ctx, t, transactionRepo, testutil.User2.ID, 120, duringLastWeek)

	var storedKey string
	var deletedKeys []string
	redisClient := &testutil.MockRedisClient{
		SetObjFunc: func(ctx context.Context, key string, obj any, ttl time.Duration) error {
			storedKey = key
			return nil
		},
		DelFunc: func(ctx context.Context, key ...string) error {
			deletedKeys = append(deletedKeys, key...)
			return nil
		},
	}

	l := New(transactionRepo, redisClient)
	ranks, err := l.GetPreviousRanks(ctx, "week")
	require.NoError(t, err)
	require.Equal(t, uint64(1), ranks[testutil.User1.ID])
	require.Equal(t, uint64(2), ranks[testutil.User2.ID])

	// The rebuilt ranking is snapshotted and the finished sorted set
	// is cleaned up.
	require.Equal(t, redisKeyPreviousRanks(lastWeek), storedKey)
	require.Equal(t, []string{redisKeyPointLeaderboard(lastWeek)}, deletedKeys)
}

func Test_GetPreviousRanks_ServedFromSnapshot(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	getObjCalls := 0
	redisClient := &testutil.MockRedisClient{
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			getObjCalls++
			*(v.(*map[string]uint64)) = map[string]uint64{testutil.User1.ID: 1}
			return nil
		},
	}

	// No transactions exist, so a database rebuild would yield an empty
	// ranking. Getting a rank proves the snapshot was used.
	l := New(repository.NewPointTransactionRepository(), redisClient)
	ranks, err := l.GetPreviousRanks(ctx, "week")
	require.NoError(t, err)
	require.Equal(t, uint64(1), ranks[testutil.User1.ID])

	// The second read is served from the in-process cache.
	ranks, err = l.GetPreviousRanks(ctx, "week")
	require.NoError(t, err)
	require.Equal(t, uint64(1), ranks[testutil.User1.ID])
	require.Equal(t, 1, getObjCalls)
}

func Test_GetPreviousRanks_EmptyPeriod(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	redisClient := &testutil.MockRedisClient{
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			return errors.New("not found")
		},
	}

	l := New(repository.NewPointTransactionRepository(), redisClient)
	ranks, err := l.GetPreviousRanks(ctx, "week")
	require.NoError(t, err)
	require.Empty(t, ranks)
}
