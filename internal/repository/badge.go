package repository

import (
	"context"
	"errors"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BadgeRepository interface {
	Get(ctx context.Context, userID, name string) (*entity.Badge, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Badge, error)
	Create(ctx context.Context, data *entity.Badge) error

	// UpdateLevel raises the badge level. It never downgrades; the guard
	// keeps a concurrent lower-level scan from overwriting a higher one.
	UpdateLevel(ctx context.Context, userID, name string, level int) error

	MarkNotified(ctx context.Context, userID string) error
}

type badgeRepository struct{}

func NewBadgeRepository() *badgeRepository {
	return &badgeRepository{}
}

func (r *badgeRepository) Get(ctx context.Context, userID, name string) (*entity.Badge, error) {
	var result entity.Badge
	err := xcontext.DB(ctx).Take(&result, "user_id=? AND name=?", userID, name).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *badgeRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Badge, error) {
	var result []entity.Badge
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *badgeRepository) Create(ctx context.Context, data *entity.Badge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *badgeRepository) UpdateLevel(ctx context.Context, userID, name string, level int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Badge{}).
		Where("user_id=? AND name=? AND level < ?", userID, name, level).
		Updates(map[string]any{"level": level, "was_notified": false})

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

func (r *badgeRepository) MarkNotified(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Model(&entity.Badge{}).
		Where("user_id=? AND was_notified=?", userID, false).
		Update("was_notified", true).Error
}
