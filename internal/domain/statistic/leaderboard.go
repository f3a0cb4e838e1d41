package statistic

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/redis/go-redis/v9"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"github.com/taskforge-lab/backend/pkg/xredis"
	"golang.org/x/exp/slices"
)

// Leaderboard ranks users by points earned inside a week or month
// window. Scores live in redis sorted sets keyed by period and are
// rebuilt from the transaction ledger when a key is missing, so redis
// can be flushed at any time.
type Leaderboard interface {
	GetLeaderboard(
		ctx context.Context,
		period entity.LeaderboardPeriodType,
		offset, limit int,
	) ([]model.UserStatistic, error)

	GetRank(
		ctx context.Context,
		userID string,
		period entity.LeaderboardPeriodType,
	) (uint64, error)

	// GetPreviousRanks returns the final ranking of the period before
	// the current one, keyed by user id.
	GetPreviousRanks(ctx context.Context, periodString string) (map[string]uint64, error)

	ChangePointLeaderboard(
		ctx context.Context,
		value int64,
		earnedAt time.Time,
		userID string,
	) error
}

type prevRankValue struct {
	Ranks  map[string]uint64
	Period string
}

type leaderboard struct {
	pointTransactionRepo repository.PointTransactionRepository
	redisClient          xredis.Client
	previousRanks        *xsync.MapOf[string, prevRankValue]
}

func New(
	pointTransactionRepo repository.PointTransactionRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{
		pointTransactionRepo: pointTransactionRepo,
		redisClient:          redisClient,
		previousRanks:        xsync.NewMapOf[prevRankValue](),
	}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context,
	period entity.LeaderboardPeriodType,
	offset, limit int,
) ([]model.UserStatistic, error) {
	key := redisKeyPointLeaderboard(period)

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, period); err != nil {
			return nil, err
		}
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	board := []model.UserStatistic{}
	for i, z := range results {
		board = append(board, model.UserStatistic{
			UserID:      z.Member.(string),
			Value:       uint64(z.Score),
			CurrentRank: uint64(offset + i + 1),
		})
	}

	return board, nil
}

func (l *leaderboard) GetRank(
	ctx context.Context,
	userID string,
	period entity.LeaderboardPeriodType,
) (uint64, error) {
	key := redisKeyPointLeaderboard(period)

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return 0, errorx.Unknown
	}

	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, period); err != nil {
			return 0, err
		}
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, userID)
	if err != nil {
		// The user has not earned any point in this period yet.
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return rank + 1, nil
}

func (l *leaderboard) GetPreviousRanks(
	ctx context.Context, periodString string,
) (map[string]uint64, error) {
	lastPeriod, err := ToLastPeriod(periodString)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid period: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid period")
	}

	prev, ok := l.previousRanks.Load(periodString)
	if ok && prev.Period == lastPeriod.Period() {
		return prev.Ranks, nil
	}

	// A finished period never changes, so a snapshot written by another
	// instance is as good as one we compute ourselves.
	snapshotKey := redisKeyPreviousRanks(lastPeriod)
	ranks := map[string]uint64{}
	if err := l.redisClient.GetObj(ctx, snapshotKey, &ranks); err == nil {
		l.previousRanks.Store(periodString, prevRankValue{
			Ranks:  ranks,
			Period: lastPeriod.Period(),
		})

		return ranks, nil
	}

	sums, err := l.pointTransactionRepo.SumCreditsByUser(
		ctx, lastPeriod.Start(), lastPeriod.End())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load previous leaderboard from database: %v", err)
		return nil, errorx.Unknown
	}

	slices.SortFunc(sums, func(a, b repository.UserSum) bool {
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.UserID < b.UserID
	})

	ranks = map[string]uint64{}
	for i, sum := range sums {
		ranks[sum.UserID] = uint64(i + 1)
	}

	l.previousRanks.Store(periodString, prevRankValue{
		Ranks:  ranks,
		Period: lastPeriod.Period(),
	})

	// The snapshot only matters while this period stays the previous one.
	ttl := lastPeriod.End().Sub(lastPeriod.Start())
	if err := l.redisClient.SetObj(ctx, snapshotKey, ranks, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot store previous rank snapshot: %v", err)
	}

	// Once the final ranking is snapshotted, the finished period's sorted
	// set is never read again.
	if err := l.redisClient.Del(ctx, redisKeyPointLeaderboard(lastPeriod)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete finished leaderboard: %v", err)
	}

	return ranks, nil
}

func (l *leaderboard) ChangePointLeaderboard(
	ctx context.Context,
	value int64,
	earnedAt time.Time,
	userID string,
) error {
	for _, periodString := range []string{"week", "month"} {
		period, err := ToPeriodWithTime(periodString, earnedAt)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Invalid period: %v", err)
			return errorx.Unknown
		}

		if err := l.changeLeaderboard(ctx, value, userID, period); err != nil {
			return err
		}
	}

	return nil
}

func (l *leaderboard) changeLeaderboard(
	ctx context.Context,
	value int64,
	userID string,
	period entity.LeaderboardPeriodType,
) error {
	key := redisKeyPointLeaderboard(period)

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, no need to update. The next
	// read rebuilds it from the ledger including this change.
	if !ok {
		return nil
	}

	if err := l.redisClient.ZIncrBy(ctx, key, value, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
	}

	return nil
}

func (l *leaderboard) loadLeaderboardFromDB(
	ctx context.Context, period entity.LeaderboardPeriodType,
) error {
	sums, err := l.pointTransactionRepo.SumCreditsByUser(ctx, period.Start(), period.End())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load leaderboard from database: %v", err)
		return errorx.Unknown
	}

	key := redisKeyPointLeaderboard(period)
	for _, sum := range sums {
		err := l.redisClient.ZAdd(ctx, key, redis.Z{
			Member: sum.UserID,
			Score:  float64(sum.Total),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}
