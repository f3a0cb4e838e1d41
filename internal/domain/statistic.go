package domain

import (
	"context"
	"errors"
	"time"

	"github.com/taskforge-lab/backend/internal/domain/leveling"
	"github.com/taskforge-lab/backend/internal/domain/statistic"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/dateutil"
	"github.com/taskforge-lab/backend/pkg/enum"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type StatisticDomain interface {
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetRank(ctx context.Context, req *model.GetRankRequest) (*model.GetRankResponse, error)
	GetUserStats(ctx context.Context, req *model.GetUserStatsRequest) (*model.GetUserStatsResponse, error)
}

type statisticDomain struct {
	userRepo             repository.UserRepository
	userProgressRepo     repository.UserProgressRepository
	pointTransactionRepo repository.PointTransactionRepository
	leaderboard          statistic.Leaderboard
}

func NewStatisticDomain(
	userRepo repository.UserRepository,
	userProgressRepo repository.UserProgressRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	leaderboard statistic.Leaderboard,
) *statisticDomain {
	return &statisticDomain{
		userRepo:             userRepo,
		userProgressRepo:     userProgressRepo,
		pointTransactionRepo: pointTransactionRepo,
		leaderboard:          leaderboard,
	}
}

func (d *statisticDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 || req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Expected limit is in range [1, %d]", apiCfg.MaxLimit)
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow a negative offset")
	}

	var board []model.UserStatistic
	switch req.Period {
	case "", "all":
		allTime, err := d.getAllTimeLeaderboard(ctx, req.Metric, req.Offset, req.Limit)
		if err != nil {
			return nil, err
		}

		board = allTime

	case "week", "month":
		period, err := statistic.ToPeriod(req.Period)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}

		board, err = d.leaderboard.GetLeaderboard(ctx, period, req.Offset, req.Limit)
		if err != nil {
			return nil, err
		}

		prevRanks, err := d.leaderboard.GetPreviousRanks(ctx, req.Period)
		if err != nil {
			return nil, err
		}

		for i := range board {
			board[i].PreviousRank = prevRanks[board[i].UserID]
		}

	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	if err := d.fillUserNames(ctx, board); err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{Leaderboard: board}, nil
}

func (d *statisticDomain) getAllTimeLeaderboard(
	ctx context.Context, metricString string, offset, limit int,
) ([]model.UserStatistic, error) {
	metric := entity.MetricTotalPointsEarned
	if metricString != "" {
		var err error
		metric, err = enum.ToEnum[entity.LeaderboardMetric](metricString)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid leaderboard metric: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid metric %s", metricString)
		}
	}

	progresses, err := d.userProgressRepo.GetLeaderboard(ctx, repository.LeaderboardFilter{
		Metric: metric,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard from database: %v", err)
		return nil, errorx.Unknown
	}

	board := []model.UserStatistic{}
	for i, progress := range progresses {
		value := progress.TotalPointsEarned
		if metric == entity.MetricCurrentPoints {
			value = progress.CurrentPoints
		}

		board = append(board, model.UserStatistic{
			UserID:      progress.UserID,
			Value:       value,
			CurrentRank: uint64(offset + i + 1),
		})
	}

	return board, nil
}

func (d *statisticDomain) fillUserNames(ctx context.Context, board []model.UserStatistic) error {
	if len(board) == 0 {
		return nil
	}

	ids := []string{}
	for _, entry := range board {
		ids = append(ids, entry.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users of leaderboard: %v", err)
		return errorx.Unknown
	}

	names := map[string]string{}
	for _, user := range users {
		names[user.ID] = user.Name
	}

	for i := range board {
		board[i].Name = names[board[i].UserID]
	}

	return nil
}

func (d *statisticDomain) GetRank(
	ctx context.Context, req *model.GetRankRequest,
) (*model.GetRankResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	switch req.Period {
	case "", "all":
		metric := entity.MetricTotalPointsEarned
		if req.Metric != "" {
			var err error
			metric, err = enum.ToEnum[entity.LeaderboardMetric](req.Metric)
			if err != nil {
				xcontext.Logger(ctx).Debugf("Invalid leaderboard metric: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid metric %s", req.Metric)
			}
		}

		rank, err := d.userProgressRepo.GetRank(ctx, userID, metric)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &model.GetRankResponse{UserID: userID}, nil
			}

			xcontext.Logger(ctx).Errorf("Cannot get rank of user: %v", err)
			return nil, errorx.Unknown
		}

		return &model.GetRankResponse{UserID: userID, Rank: rank}, nil

	case "week", "month":
		period, err := statistic.ToPeriod(req.Period)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}

		rank, err := d.leaderboard.GetRank(ctx, userID, period)
		if err != nil {
			return nil, err
		}

		return &model.GetRankResponse{UserID: userID, Rank: rank}, nil
	}

	return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
}

func (d *statisticDomain) GetUserStats(
	ctx context.Context, req *model.GetUserStatsRequest,
) (*model.GetUserStatsResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	progress, err := d.userProgressRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
			return nil, errorx.Unknown
		}

		progress = &entity.UserProgress{
			UserID:             userID,
			Level:              leveling.FirstLevel,
			NextLevelThreshold: leveling.NextThreshold(leveling.FirstLevel),
		}
	}

	var totalSpent, earnedThisMonth int64
	var byType []repository.TypeSum
	var rank uint64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		spent, err := d.pointTransactionRepo.SumPoints(egCtx, repository.SumFilter{
			UserID:     userID,
			OnlyDebits: true,
		})
		if err != nil {
			return err
		}

		totalSpent = -spent
		return nil
	})

	eg.Go(func() error {
		earned, err := d.pointTransactionRepo.SumPoints(egCtx, repository.SumFilter{
			UserID:      userID,
			OnlyCredits: true,
			Begin:       dateutil.CurrentMonth(time.Now()),
		})
		if err != nil {
			return err
		}

		earnedThisMonth = earned
		return nil
	})

	eg.Go(func() error {
		sums, err := d.pointTransactionRepo.SumByType(egCtx, userID)
		if err != nil {
			return err
		}

		byType = sums
		return nil
	})

	eg.Go(func() error {
		r, err := d.userProgressRepo.GetRank(egCtx, userID, entity.MetricTotalPointsEarned)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}

			return err
		}

		rank = r
		return nil
	})

	if err := eg.Wait(); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot aggregate statistics of user: %v", err)
		return nil, errorx.Unknown
	}

	summaries := []model.TypeSummary{}
	for _, sum := range byType {
		summaries = append(summaries, model.TypeSummary{
			Type:  string(sum.Type),
			Total: sum.Total,
		})
	}

	return &model.GetUserStatsResponse{
		Progress:        model.ConvertUserProgress(progress),
		TotalSpent:      uint64(totalSpent),
		EarnedThisMonth: uint64(earnedThisMonth),
		Rank:            rank,
		ByType:          summaries,
	}, nil
}
