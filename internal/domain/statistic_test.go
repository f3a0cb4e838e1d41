package domain

import (
	"context"
	"sort"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/taskforge-lab/backend/internal/domain/statistic"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/testutil"
)

// fakeZSet is an in-memory stand-in for the redis sorted set calls the
// leaderboard uses.
type fakeZSet struct {
	scores map[string]float64
}

func newFakeZSet() *fakeZSet {
	return &fakeZSet{scores: map[string]float64{}}
}

func (f *fakeZSet) client() *testutil.MockRedisClient {
	return &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return len(f.scores) > 0, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			f.scores[z.Member.(string)] = z.Score
			return nil
		},
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			f.scores[member] += float64(incr)
			return nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			sorted := f.sorted()
			if offset >= len(sorted) {
				return nil, nil
			}

			end := offset + limit
			if end > len(sorted) {
				end = len(sorted)
			}

			return sorted[offset:end], nil
		},
		ZRevRankFunc: func(ctx context.Context, key string, member string) (uint64, error) {
			for i, z := range f.sorted() {
				if z.Member.(string) == member {
					return uint64(i), nil
				}
			}

			return 0, redis.Nil
		},
	}
}

func (f *fakeZSet) sorted() []redis.Z {
	sorted := []redis.Z{}
	for member, score := range f.scores {
		sorted = append(sorted, redis.Z{Member: member, Score: score})
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Member.(string) < sorted[j].Member.(string)
	})

	return sorted
}

func newTestStatisticDomain(redisClient *testutil.MockRedisClient) StatisticDomain {
	pointTransactionRepo := repository.NewPointTransactionRepository()
	return NewStatisticDomain(
		repository.NewUserRepository(),
		repository.NewUserProgressRepository(),
		pointTransactionRepo,
		statistic.New(pointTransactionRepo, redisClient),
	)
}

func Test_statisticDomain_GetLeaderboard_AllTime(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestStatisticDomain(&testutil.MockRedisClient{})

	progressRepo := repository.NewUserProgressRepository()
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User1.ID, Level: 2, CurrentPoints: 30, TotalPointsEarned: 300,
	}))
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User2.ID, Level: 3, CurrentPoints: 80, TotalPointsEarned: 500,
	}))

	resp, err := d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 2)
	require.Equal(t, testutil.User2.ID, resp.Leaderboard[0].UserID)
	require.Equal(t, uint64(500), resp.Leaderboard[0].Value)
	require.Equal(t, uint64(1), resp.Leaderboard[0].CurrentRank)
	require.Equal(t, testutil.User2.Name, resp.Leaderboard[0].Name)
	require.Equal(t, testutil.User1.ID, resp.Leaderboard[1].UserID)

	// The current points metric orders the board differently.
	resp, err = d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		Metric: "current_points",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(80), resp.Leaderboard[0].Value)

	_, err = d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Metric: "bogus", Limit: 10})
	require.Error(t, err)
}

func Test_statisticDomain_GetLeaderboard_TieBreak(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestStatisticDomain(&testutil.MockRedisClient{})

	progressRepo := repository.NewUserProgressRepository()
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User2.ID, Level: 1, TotalPointsEarned: 100,
	}))
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User1.ID, Level: 1, TotalPointsEarned: 100,
	}))

	resp, err := d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, resp.Leaderboard[0].UserID)
	require.Equal(t, testutil.User2.ID, resp.Leaderboard[1].UserID)
}

func Test_statisticDomain_GetLeaderboard_Weekly(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestStatisticDomain(newFakeZSet().client())

	transactionRepo := repository.NewPointTransactionRepository()
	require.NoError(t, transactionRepo.Create(ctx, &entity.PointTransaction{
		UserID: testutil.User1.ID, Points: 120, Type: entity.TransactionTaskCompleted,
	}))
	require.NoError(t, transactionRepo.Create(ctx, &entity.PointTransaction{
		UserID: testutil.User2.ID, Points: 200, Type: entity.TransactionTaskCompleted,
	}))
	// Debits never count into the period score.
	require.NoError(t, transactionRepo.Create(ctx, &entity.PointTransaction{
		UserID: testutil.User2.ID, Points: -50, Type: entity.TransactionRewardRedemption,
	}))

	resp, err := d.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		Period: "week",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 2)
	require.Equal(t, testutil.User2.ID, resp.Leaderboard[0].UserID)
	require.Equal(t, uint64(200), resp.Leaderboard[0].Value)
	require.Equal(t, uint64(120), resp.Leaderboard[1].Value)
}

func Test_statisticDomain_GetRank(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestStatisticDomain(newFakeZSet().client())

	progressRepo := repository.NewUserProgressRepository()
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User1.ID, Level: 2, TotalPointsEarned: 300,
	}))
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User2.ID, Level: 3, TotalPointsEarned: 500,
	}))

	resp, err := d.GetRank(ctx, &model.GetRankRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(2), resp.Rank)

	resp, err = d.GetRank(ctx, &model.GetRankRequest{UserID: testutil.User2.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(1), resp.Rank)

	// A user without progress has no rank yet.
	resp, err = d.GetRank(ctx, &model.GetRankRequest{UserID: testutil.Admin.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(0), resp.Rank)
}

func Test_statisticDomain_GetUserStats(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestStatisticDomain(&testutil.MockRedisClient{})

	progressRepo := repository.NewUserProgressRepository()
	transactionRepo := repository.NewPointTransactionRepository()
	require.NoError(t, progressRepo.Create(ctx, &entity.UserProgress{
		UserID: testutil.User1.ID, Level: 2, CurrentPoints: 70, TotalPointsEarned: 100,
	}))
	require.NoError(t, transactionRepo.Create(ctx, &entity.PointTransaction{
		UserID: testutil.User1.ID, Points: 100, Type: entity.TransactionTaskCompleted,
	}))
	require.NoError(t, transactionRepo.Create(ctx, &entity.PointTransaction{
		UserID: testutil.User1.ID, Points: -30, Type: entity.TransactionRewardRedemption,
	}))

	resp, err := d.GetUserStats(ctx, &model.GetUserStatsRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(30), resp.TotalSpent)
	require.Equal(t, uint64(100), resp.EarnedThisMonth)
	require.Equal(t, uint64(1), resp.Rank)
	require.Equal(t, 2, resp.Progress.Level)
	require.Len(t, resp.ByType, 2)
}
