package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskforge-lab/backend/internal/domain/badge"
	"github.com/taskforge-lab/backend/internal/domain/statistic"
	"github.com/taskforge-lab/backend/internal/domain/streak"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/testutil"
)

func newTestPointsDomain() PointsDomain {
	userProgressRepo := repository.NewUserProgressRepository()
	pointTransactionRepo := repository.NewPointTransactionRepository()
	badgeRepo := repository.NewBadgeRepository()

	return NewPointsDomain(
		userProgressRepo,
		pointTransactionRepo,
		streak.NewTracker(userProgressRepo, pointTransactionRepo),
		badge.NewManager(
			badgeRepo,
			badge.NewStreakKeeperBadgeScanner(userProgressRepo),
			badge.NewHighRollerBadgeScanner(userProgressRepo),
			badge.NewVeteranBadgeScanner(userProgressRepo),
		),
		statistic.New(pointTransactionRepo, &testutil.MockRedisClient{}),
		&testutil.MockPublisher{},
	)
}

func addPoints(
	t *testing.T, ctx context.Context, d PointsDomain, userID string, points uint64,
) *model.AddPointsResponse {
	resp, err := d.AddPoints(ctx, &model.AddPointsRequest{
		UserID:      userID,
		Points:      points,
		Type:        "task_completed",
		Description: "Task completed",
	})
	require.NoError(t, err)
	return resp
}

func Test_pointsDomain_AddPoints_FirstCredit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	resp := addPoints(t, ctx, d, testutil.User1.ID, 50)
	require.Equal(t, uint64(50), resp.Balance)
	require.Equal(t, 1, resp.Level)
	require.Equal(t, 0, resp.LevelsGained)
	require.Equal(t, int64(50), resp.Transaction.Points)
	require.NotZero(t, resp.Transaction.ID)

	balance, err := d.GetBalance(ctx, &model.GetBalanceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(50), balance.CurrentPoints)
	require.Equal(t, uint64(50), balance.TotalPointsEarned)
	require.Equal(t, uint64(100), balance.NextLevelThreshold)
}

func Test_pointsDomain_AddPoints_SingleLevelUp(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	resp := addPoints(t, ctx, d, testutil.User1.ID, 110)
	require.Equal(t, 2, resp.Level)
	require.Equal(t, 1, resp.LevelsGained)
	require.Equal(t, uint64(10), resp.Balance)

	balance, err := d.GetBalance(ctx, &model.GetBalanceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(110), balance.TotalPointsEarned)
	require.Equal(t, uint64(150), balance.NextLevelThreshold)
}

func Test_pointsDomain_AddPoints_MultipleLevelUps(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	// 450 points burn through thresholds 100, 150 and 200 exactly.
	resp := addPoints(t, ctx, d, testutil.User1.ID, 450)
	require.Equal(t, 4, resp.Level)
	require.Equal(t, 3, resp.LevelsGained)
	require.Equal(t, uint64(0), resp.Balance)
}

func Test_pointsDomain_AddPoints_InvalidRequest(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	_, err := d.AddPoints(ctx, &model.AddPointsRequest{
		UserID: testutil.User1.ID,
		Points: 10,
		Type:   "bogus",
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)

	_, err = d.AddPoints(ctx, &model.AddPointsRequest{
		UserID: testutil.User1.ID,
		Points: 0,
		Type:   "task_completed",
	})
	require.Error(t, err)
	require.Equal(t, errorx.InvalidAmount, err.(errorx.Error).Code)
}

func Test_pointsDomain_DeductPoints(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	// The first 100 points are consumed by the level-up, so only the
	// remaining 50 are spendable.
	addPoints(t, ctx, d, testutil.User1.ID, 150)

	authorizedCtx := testutil.MockContextWithUserID(ctx, testutil.User1.ID)
	resp, err := d.DeductPoints(authorizedCtx, &model.DeductPointsRequest{
		Points:      30,
		Type:        "reward_redemption",
		Description: "Redeemed a reward",
	})
	require.NoError(t, err)
	require.Equal(t, uint64(20), resp.Balance)
	require.Equal(t, int64(-30), resp.Transaction.Points)

	// Levels earned before are kept after spending below the threshold.
	balance, err := d.GetBalance(authorizedCtx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, balance.Level)
	require.Equal(t, uint64(20), balance.CurrentPoints)
	require.Equal(t, uint64(150), balance.TotalPointsEarned)
}

func Test_pointsDomain_DeductPoints_InsufficientBalance(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()
	addPoints(t, ctx, d, testutil.User1.ID, 50)

	authorizedCtx := testutil.MockContextWithUserID(ctx, testutil.User1.ID)
	_, err := d.DeductPoints(authorizedCtx, &model.DeductPointsRequest{
		Points: 80,
		Type:   "reward_redemption",
	})
	require.Error(t, err)
	require.Equal(t, errorx.InsufficientBalance, err.(errorx.Error).Code)

	// The failed debit must leave no trace.
	balance, err := d.GetBalance(authorizedCtx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(50), balance.CurrentPoints)

	history, err := d.GetHistory(authorizedCtx, &model.GetHistoryRequest{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), history.Total)
}

func Test_pointsDomain_GetBalance_NewUser(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	balance, err := d.GetBalance(ctx, &model.GetBalanceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(0), balance.CurrentPoints)
	require.Equal(t, uint64(0), balance.TotalPointsEarned)
	require.Equal(t, 1, balance.Level)
	require.Equal(t, uint64(100), balance.NextLevelThreshold)
}

func Test_pointsDomain_HasSufficientPoints(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	addPoints(t, ctx, d, testutil.User1.ID, 50)

	resp, err := d.HasSufficientPoints(ctx, &model.HasSufficientPointsRequest{
		UserID: testutil.User1.ID,
		Points: 30,
	})
	require.NoError(t, err)
	require.True(t, resp.Sufficient)
	require.Equal(t, uint64(50), resp.Balance)

	resp, err = d.HasSufficientPoints(ctx, &model.HasSufficientPointsRequest{
		UserID: testutil.User1.ID,
		Points: 80,
	})
	require.NoError(t, err)
	require.False(t, resp.Sufficient)

	// Unknown users have a zero balance, not an error.
	resp, err = d.HasSufficientPoints(ctx, &model.HasSufficientPointsRequest{
		UserID: testutil.User2.ID,
		Points: 1,
	})
	require.NoError(t, err)
	require.False(t, resp.Sufficient)
}

func Test_pointsDomain_GetHistory(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()
	addPoints(t, ctx, d, testutil.User1.ID, 10)
	addPoints(t, ctx, d, testutil.User1.ID, 20)
	addPoints(t, ctx, d, testutil.User2.ID, 30)

	resp, err := d.GetHistory(ctx, &model.GetHistoryRequest{
		UserID: testutil.User1.ID,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Transactions, 2)

	// Newest first.
	require.Equal(t, int64(20), resp.Transactions[0].Points)
	require.Equal(t, int64(10), resp.Transactions[1].Points)

	_, err = d.GetHistory(ctx, &model.GetHistoryRequest{
		UserID: testutil.User1.ID,
		Limit:  1000,
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, err.(errorx.Error).Code)
}

func Test_pointsDomain_ClaimDailyLogin(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	authorizedCtx := testutil.MockContextWithUserID(ctx, testutil.User1.ID)
	resp, err := d.ClaimDailyLogin(authorizedCtx, &model.ClaimDailyLoginRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(10), resp.Points)
	require.Equal(t, 1, resp.CurrentStreak)
	require.Equal(t, 1, resp.LongestStreak)

	_, err = d.ClaimDailyLogin(authorizedCtx, &model.ClaimDailyLoginRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.AlreadyClaimed, err.(errorx.Error).Code)

	balance, err := d.GetBalance(authorizedCtx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance.CurrentPoints)
}

func Test_pointsDomain_GetStreak(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestPointsDomain()

	authorizedCtx := testutil.MockContextWithUserID(ctx, testutil.User1.ID)
	streak, err := d.GetStreak(authorizedCtx, &model.GetStreakRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, streak.CurrentStreak)
	require.Empty(t, streak.LastActivityDate)

	_, err = d.ClaimDailyLogin(authorizedCtx, &model.ClaimDailyLoginRequest{})
	require.NoError(t, err)

	streak, err = d.GetStreak(authorizedCtx, &model.GetStreakRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, 1, streak.LongestStreak)
	require.NotEmpty(t, streak.LastActivityDate)
}
