package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/taskforge-lab/backend/internal/domain/badge"
	"github.com/taskforge-lab/backend/internal/domain/leveling"
	"github.com/taskforge-lab/backend/internal/domain/notification/event"
	"github.com/taskforge-lab/backend/internal/domain/statistic"
	"github.com/taskforge-lab/backend/internal/domain/streak"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/dateutil"
	"github.com/taskforge-lab/backend/pkg/enum"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/pubsub"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PointsDomain interface {
	AddPoints(ctx context.Context, req *model.AddPointsRequest) (*model.AddPointsResponse, error)
	DeductPoints(ctx context.Context, req *model.DeductPointsRequest) (*model.DeductPointsResponse, error)
	GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	HasSufficientPoints(ctx context.Context, req *model.HasSufficientPointsRequest) (*model.HasSufficientPointsResponse, error)
	GetHistory(ctx context.Context, req *model.GetHistoryRequest) (*model.GetHistoryResponse, error)
	ClaimDailyLogin(ctx context.Context, req *model.ClaimDailyLoginRequest) (*model.ClaimDailyLoginResponse, error)
	GetStreak(ctx context.Context, req *model.GetStreakRequest) (*model.GetStreakResponse, error)
}

type pointsDomain struct {
	userProgressRepo     repository.UserProgressRepository
	pointTransactionRepo repository.PointTransactionRepository
	streakTracker        *streak.Tracker
	badgeManager         *badge.Manager
	leaderboard          statistic.Leaderboard
	publisher            pubsub.Publisher
}

func NewPointsDomain(
	userProgressRepo repository.UserProgressRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	streakTracker *streak.Tracker,
	badgeManager *badge.Manager,
	leaderboard statistic.Leaderboard,
	publisher pubsub.Publisher,
) *pointsDomain {
	return &pointsDomain{
		userProgressRepo:     userProgressRepo,
		pointTransactionRepo: pointTransactionRepo,
		streakTracker:        streakTracker,
		badgeManager:         badgeManager,
		leaderboard:          leaderboard,
		publisher:            publisher,
	}
}

func (d *pointsDomain) AddPoints(
	ctx context.Context, req *model.AddPointsRequest,
) (*model.AddPointsResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	transactionType, err := enum.ToEnum[entity.TransactionType](req.Type)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid transaction type: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid transaction type %s", req.Type)
	}

	if req.Points == 0 {
		return nil, errorx.New(errorx.InvalidAmount, "Not allow a zero amount")
	}

	transaction, progress, levelsGained, err := d.earn(
		ctx, req.UserID, req.Points, transactionType, req.Description, req.RelatedEntityID)
	if err != nil {
		return nil, err
	}

	return &model.AddPointsResponse{
		Transaction:  model.ConvertPointTransaction(transaction),
		Level:        progress.Level,
		LevelsGained: levelsGained,
		Balance:      progress.CurrentPoints,
	}, nil
}

// earn credits points to one user inside a database transaction. The
// upsert write-locks the progress row, so the level loop below reads a
// state no other request can change until commit.
func (d *pointsDomain) earn(
	ctx context.Context,
	userID string,
	points uint64,
	transactionType entity.TransactionType,
	description, relatedEntityID string,
) (*entity.PointTransaction, *entity.UserProgress, int, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.userProgressRepo.Upsert(ctx, &entity.UserProgress{
		UserID:             userID,
		CurrentPoints:      points,
		TotalPointsEarned:  points,
		Level:              leveling.FirstLevel,
		NextLevelThreshold: leveling.NextThreshold(leveling.FirstLevel),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user progress: %v", err)
		return nil, nil, 0, errorx.Unknown
	}

	// The upsert above locked the progress row, so a second concurrent
	// claim waits here and then sees the first one's ledger row.
	if transactionType == entity.TransactionDailyLogin {
		today := dateutil.BeginningOfDay(time.Now())
		claimed, err := d.pointTransactionRepo.Count(ctx, repository.TransactionFilter{
			UserID: userID,
			Type:   entity.TransactionDailyLogin,
			Begin:  today,
			End:    today.AddDate(0, 0, 1),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count daily login transactions: %v", err)
			return nil, nil, 0, errorx.Unknown
		}

		if claimed > 0 {
			return nil, nil, 0, errorx.New(errorx.AlreadyClaimed,
				"Daily login already claimed today")
		}
	}

	progress, err := d.userProgressRepo.Get(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return nil, nil, 0, errorx.Unknown
	}

	// Apply decides how far this credit reaches; the guarded updates walk
	// there one level at a time, so a concurrent writer can never
	// double-apply a threshold.
	target := leveling.Apply(progress.Level, progress.CurrentPoints)

	levelsGained := 0
	for level := progress.Level; level < target.Level; level++ {
		ok, err := d.userProgressRepo.AdvanceLevel(
			ctx, userID,
			level,
			leveling.NextThreshold(level),
			leveling.NextThreshold(level+1),
		)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot advance level of user: %v", err)
			return nil, nil, 0, errorx.Unknown
		}

		if !ok {
			break
		}

		levelsGained++
	}

	if levelsGained > 0 {
		progress, err = d.userProgressRepo.Get(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
			return nil, nil, 0, errorx.Unknown
		}
	}

	transaction := &entity.PointTransaction{
		UserID:      userID,
		Points:      int64(points),
		Type:        transactionType,
		Description: description,
	}

	if relatedEntityID != "" {
		transaction.RelatedEntityID = sql.NullString{Valid: true, String: relatedEntityID}
	}

	if err := d.pointTransactionRepo.Create(ctx, transaction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record point transaction: %v", err)
		return nil, nil, 0, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.publishEvent(ctx, userID, event.PointsEarnedEvent{
		UserID:  userID,
		Points:  points,
		Type:    string(transactionType),
		Balance: progress.CurrentPoints,
	})

	if levelsGained > 0 {
		d.publishEvent(ctx, userID, event.LevelUpEvent{
			UserID:   userID,
			OldLevel: progress.Level - levelsGained,
			NewLevel: progress.Level,
		})
	}

	err = d.leaderboard.ChangePointLeaderboard(ctx, int64(points), time.Now(), userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update period leaderboard: %v", err)
	}

	d.scanBadges(ctx, userID, badge.HighRollerBadgeName, badge.VeteranBadgeName)

	return transaction, progress, levelsGained, nil
}

func (d *pointsDomain) DeductPoints(
	ctx context.Context, req *model.DeductPointsRequest,
) (*model.DeductPointsResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	transactionType, err := enum.ToEnum[entity.TransactionType](req.Type)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid transaction type: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid transaction type %s", req.Type)
	}

	if req.Points == 0 {
		return nil, errorx.New(errorx.InvalidAmount, "Not allow a zero amount")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userProgressRepo.DeductPoints(ctx, userID, req.Points); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InsufficientBalance,
				"Not enough points for this operation")
		}

		xcontext.Logger(ctx).Errorf("Cannot deduct points of user: %v", err)
		return nil, errorx.Unknown
	}

	transaction := &entity.PointTransaction{
		UserID:      userID,
		Points:      -int64(req.Points),
		Type:        transactionType,
		Description: req.Description,
	}

	if req.RelatedEntityID != "" {
		transaction.RelatedEntityID = sql.NullString{Valid: true, String: req.RelatedEntityID}
	}

	if err := d.pointTransactionRepo.Create(ctx, transaction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record point transaction: %v", err)
		return nil, errorx.Unknown
	}

	progress, err := d.userProgressRepo.Get(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.publishEvent(ctx, userID, event.PointsSpentEvent{
		UserID:  userID,
		Points:  req.Points,
		Type:    string(transactionType),
		Balance: progress.CurrentPoints,
	})

	return &model.DeductPointsResponse{
		Transaction: model.ConvertPointTransaction(transaction),
		Balance:     progress.CurrentPoints,
	}, nil
}

func (d *pointsDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	progress, err := d.userProgressRepo.Get(ctx, userID)
	if err != nil {
		// A user without any transaction yet has a well-defined zero state.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetBalanceResponse{
				UserID:             userID,
				Level:              leveling.FirstLevel,
				NextLevelThreshold: leveling.NextThreshold(leveling.FirstLevel),
			}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{
		UserID:             userID,
		CurrentPoints:      progress.CurrentPoints,
		TotalPointsEarned:  progress.TotalPointsEarned,
		Level:              progress.Level,
		NextLevelThreshold: progress.NextLevelThreshold,
	}, nil
}

// HasSufficientPoints answers whether the user could afford a debit of the
// given amount right now. It is a point-in-time read, the debit itself is
// still guarded.
func (d *pointsDomain) HasSufficientPoints(
	ctx context.Context, req *model.HasSufficientPointsRequest,
) (*model.HasSufficientPointsResponse, error) {
	balance, err := d.GetBalance(ctx, &model.GetBalanceRequest{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	return &model.HasSufficientPointsResponse{
		Sufficient: balance.CurrentPoints >= req.Points,
		Balance:    balance.CurrentPoints,
	}, nil
}

func (d *pointsDomain) GetHistory(
	ctx context.Context, req *model.GetHistoryRequest,
) (*model.GetHistoryResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	filter := repository.TransactionFilter{
		UserID: userID,
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	if req.Type != "" {
		transactionType, err := enum.ToEnum[entity.TransactionType](req.Type)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid transaction type: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid transaction type %s", req.Type)
		}

		filter.Type = transactionType
	}

	if req.Begin != "" {
		begin, err := time.Parse(time.RFC3339, req.Begin)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid begin time")
		}

		filter.Begin = begin
	}

	if req.End != "" {
		end, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid end time")
		}

		filter.End = end
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if filter.Limit == 0 {
		filter.Limit = apiCfg.DefaultLimit
	}

	if filter.Limit < 0 || filter.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Expected limit is in range [1, %d]", apiCfg.MaxLimit)
	}

	transactions, err := d.pointTransactionRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get point transactions: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.pointTransactionRepo.Count(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count point transactions: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.PointTransaction{}
	for i := range transactions {
		result = append(result, model.ConvertPointTransaction(&transactions[i]))
	}

	return &model.GetHistoryResponse{Transactions: result, Total: total}, nil
}

func (d *pointsDomain) ClaimDailyLogin(
	ctx context.Context, req *model.ClaimDailyLoginRequest,
) (*model.ClaimDailyLoginResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	now := time.Now()

	points := xcontext.Configs(ctx).Points.DailyLoginPoints
	_, _, _, err := d.earn(
		ctx, userID, points, entity.TransactionDailyLogin, "Daily login bonus", "")
	if err != nil {
		return nil, err
	}

	progress, changed, err := d.streakTracker.Update(ctx, userID, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update streak of user: %v", err)
		return nil, errorx.Unknown
	}

	if changed {
		d.publishEvent(ctx, userID, event.StreakUpdatedEvent{
			UserID:        userID,
			CurrentStreak: progress.CurrentStreak,
			LongestStreak: progress.LongestStreak,
		})

		d.scanBadges(ctx, userID, badge.StreakKeeperBadgeName)
	}

	return &model.ClaimDailyLoginResponse{
		Points:        points,
		CurrentStreak: progress.CurrentStreak,
		LongestStreak: progress.LongestStreak,
	}, nil
}

func (d *pointsDomain) GetStreak(
	ctx context.Context, req *model.GetStreakRequest,
) (*model.GetStreakResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	// Reading the streak settles it first, so a user who missed days sees
	// the reset immediately instead of on the next claim.
	progress, changed, err := d.streakTracker.Update(ctx, userID, time.Now().UTC())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update streak of user: %v", err)
		return nil, errorx.Unknown
	}

	if changed {
		d.publishEvent(ctx, userID, event.StreakUpdatedEvent{
			UserID:        userID,
			CurrentStreak: progress.CurrentStreak,
			LongestStreak: progress.LongestStreak,
		})
	}

	resp := &model.GetStreakResponse{
		UserID:        userID,
		CurrentStreak: progress.CurrentStreak,
		LongestStreak: progress.LongestStreak,
	}

	if !progress.LastActivityDate.IsZero() {
		resp.LastActivityDate = progress.LastActivityDate.UTC().Format(time.RFC3339)
	}

	return resp, nil
}

// publishEvent sends a notification without affecting the caller. A
// broker outage must never fail a committed point mutation.
func (d *pointsDomain) publishEvent(ctx context.Context, userID string, ev event.Event) {
	b, err := json.Marshal(event.New(ev, event.Metadata{To: userID}))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", ev.Op(), err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.NotificationTopic
	err = d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(userID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish %s event: %v", ev.Op(), err)
	}
}

func (d *pointsDomain) scanBadges(ctx context.Context, userID string, badgeNames ...string) {
	granted, err := d.badgeManager.WithBadges(badgeNames...).ScanAndGive(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot scan badges of user: %v", err)
		return
	}

	for _, b := range granted {
		d.publishEvent(ctx, userID, event.BadgeGrantedEvent{
			UserID: userID,
			Name:   b.Name,
			Level:  b.Level,
		})
	}
}
