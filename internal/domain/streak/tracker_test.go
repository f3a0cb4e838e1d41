package streak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/dateutil"
	"github.com/taskforge-lab/backend/pkg/testutil"
)

func insertLogin(t *testing.T, ctx context.Context, userID string, at time.Time) {
	transactionRepo := repository.NewPointTransactionRepository()
	err := transactionRepo.Create(ctx, &entity.PointTransaction{
		SnowFlakeBase: entity.SnowFlakeBase{CreatedAt: at},
		UserID:        userID,
		Points:        10,
		Type:          entity.TransactionDailyLogin,
	})
	require.NoError(t, err)
}

func insertProgress(t *testing.T, ctx context.Context, progress *entity.UserProgress) {
	require.NoError(t, repository.NewUserProgressRepository().Create(ctx, progress))
}

func Test_Tracker_FirstLogin(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{UserID: testutil.User1.ID, Level: 1})
	insertLogin(t, ctx, testutil.User1.ID, now)

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 1, progress.CurrentStreak)
	require.Equal(t, 1, progress.LongestStreak)
	require.Equal(t, dateutil.BeginningOfDay(now), progress.LastActivityDate.UTC())
}

func Test_Tracker_ConsecutiveDays(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{
		UserID:           testutil.User1.ID,
		Level:            1,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: dateutil.Yesterday(now),
	})
	insertLogin(t, ctx, testutil.User1.ID, now.AddDate(0, 0, -1))
	insertLogin(t, ctx, testutil.User1.ID, now)

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 2, progress.CurrentStreak)
	require.Equal(t, 2, progress.LongestStreak)
}

func Test_Tracker_SameDayTwice(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{UserID: testutil.User1.ID, Level: 1})
	insertLogin(t, ctx, testutil.User1.ID, now)

	_, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.True(t, changed)

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, 1, progress.CurrentStreak)
}

func Test_Tracker_RestartAfterGap(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{
		UserID:           testutil.User1.ID,
		Level:            1,
		CurrentStreak:    5,
		LongestStreak:    5,
		LastActivityDate: dateutil.BeginningOfDay(now).AddDate(0, 0, -3),
	})
	insertLogin(t, ctx, testutil.User1.ID, now.AddDate(0, 0, -3))
	insertLogin(t, ctx, testutil.User1.ID, now)

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 1, progress.CurrentStreak)
	require.Equal(t, 5, progress.LongestStreak)
}

func Test_Tracker_ResetAfterFullDayGap(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{
		UserID:           testutil.User1.ID,
		Level:            1,
		CurrentStreak:    4,
		LongestStreak:    6,
		LastActivityDate: dateutil.BeginningOfDay(now).AddDate(0, 0, -2),
	})
	insertLogin(t, ctx, testutil.User1.ID, now.AddDate(0, 0, -2))

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 0, progress.CurrentStreak)
	require.Equal(t, 6, progress.LongestStreak)
}

func Test_Tracker_KeepsStreakUntilMidnight(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	now := time.Now().UTC()
	insertProgress(t, ctx, &entity.UserProgress{
		UserID:           testutil.User1.ID,
		Level:            1,
		CurrentStreak:    2,
		LongestStreak:    2,
		LastActivityDate: dateutil.Yesterday(now),
	})
	insertLogin(t, ctx, testutil.User1.ID, now.AddDate(0, 0, -1))

	progress, changed, err := tracker.Update(ctx, testutil.User1.ID, now)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, 2, progress.CurrentStreak)
}

func Test_Tracker_UnknownUser(t *testing.T) {
	ctx := testutil.MockContext()
	tracker := NewTracker(
		repository.NewUserProgressRepository(), repository.NewPointTransactionRepository())

	progress, changed, err := tracker.Update(ctx, "nobody", time.Now())
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, 0, progress.CurrentStreak)
}
