package repository

import (
	"context"
	"errors"
	"time"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardFilter struct {
	Metric entity.LeaderboardMetric
	Offset int
	Limit  int
}

type UserProgressRepository interface {
	Get(ctx context.Context, userID string) (*entity.UserProgress, error)
	Create(ctx context.Context, data *entity.UserProgress) error

	// Upsert creates the row for a first-time user or atomically adds the
	// seed row's CurrentPoints/TotalPointsEarned to an existing row.
	Upsert(ctx context.Context, data *entity.UserProgress) error

	// AdvanceLevel applies one level-up as a guarded update. It reports
	// false without error when another request already advanced the level
	// or spent the points down below the threshold.
	AdvanceLevel(ctx context.Context, userID string, fromLevel int, threshold, nextThreshold uint64) (bool, error)

	// DeductPoints is guarded by the current balance. It returns
	// gorm.ErrRecordNotFound when there is no row with enough points.
	DeductPoints(ctx context.Context, userID string, points uint64) error

	UpdateStreak(ctx context.Context, userID string, streak int, lastActivity time.Time) error
	ResetStreak(ctx context.Context, userID string) error

	GetLeaderboard(ctx context.Context, filter LeaderboardFilter) ([]entity.UserProgress, error)
	GetRank(ctx context.Context, userID string, metric entity.LeaderboardMetric) (uint64, error)
	Count(ctx context.Context) (int64, error)
}

type userProgressRepository struct{}

func NewUserProgressRepository() *userProgressRepository {
	return &userProgressRepository{}
}

func (r *userProgressRepository) Get(ctx context.Context, userID string) (*entity.UserProgress, error) {
	var result entity.UserProgress
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userProgressRepository) Create(ctx context.Context, data *entity.UserProgress) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userProgressRepository) Upsert(ctx context.Context, data *entity.UserProgress) error {
	return xcontext.DB(ctx).Model(&entity.UserProgress{}).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"current_points":      gorm.Expr("current_points + ?", data.CurrentPoints),
				"total_points_earned": gorm.Expr("total_points_earned + ?", data.TotalPointsEarned),
				"updated_at":          time.Now(),
			}),
		}).
		Create(data).Error
}

func (r *userProgressRepository) AdvanceLevel(
	ctx context.Context, userID string, fromLevel int, threshold, nextThreshold uint64,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where("user_id=? AND level=? AND current_points >= ?", userID, fromLevel, threshold).
		Updates(map[string]any{
			"level":                fromLevel + 1,
			"current_points":       gorm.Expr("current_points - ?", threshold),
			"next_level_threshold": nextThreshold,
		})

	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected > 1 {
		return false, errors.New("the number of rows effected is invalid")
	}

	return tx.RowsAffected == 1, nil
}

func (r *userProgressRepository) DeductPoints(
	ctx context.Context, userID string, points uint64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where("user_id=? AND current_points >= ?", userID, points).
		Update("current_points", gorm.Expr("current_points - ?", points))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userProgressRepository) UpdateStreak(
	ctx context.Context, userID string, streak int, lastActivity time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"current_streak": streak,
			"longest_streak": gorm.Expr(
				"CASE WHEN longest_streak < ? THEN ? ELSE longest_streak END", streak, streak),
			"last_activity_date": lastActivity,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userProgressRepository) ResetStreak(ctx context.Context, userID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where("user_id=?", userID).
		Update("current_streak", 0)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userProgressRepository) GetLeaderboard(
	ctx context.Context, filter LeaderboardFilter,
) ([]entity.UserProgress, error) {
	var result []entity.UserProgress
	err := xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Order(string(filter.Metric) + " DESC, user_id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userProgressRepository) GetRank(
	ctx context.Context, userID string, metric entity.LeaderboardMetric,
) (uint64, error) {
	progress, err := r.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	value := progress.TotalPointsEarned
	if metric == entity.MetricCurrentPoints {
		value = progress.CurrentPoints
	}

	var higher int64
	err = xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where(string(metric)+" > ?", value).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}

	return uint64(higher) + 1, nil
}

func (r *userProgressRepository) Count(ctx context.Context) (int64, error) {
	var result int64
	if err := xcontext.DB(ctx).Model(&entity.UserProgress{}).Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}
