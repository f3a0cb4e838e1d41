package repository

import (
	"context"
	"time"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/xcontext"
)

type TransactionFilter struct {
	UserID string
	Type   entity.TransactionType
	Begin  time.Time
	End    time.Time
	Offset int
	Limit  int
}

type SumFilter struct {
	UserID      string
	Type        entity.TransactionType
	Begin       time.Time
	End         time.Time
	OnlyCredits bool
	OnlyDebits  bool
}

type TypeSum struct {
	Type  entity.TransactionType
	Total int64
}

type UserSum struct {
	UserID string
	Total  int64
}

type PointTransactionRepository interface {
	Create(ctx context.Context, data *entity.PointTransaction) error
	GetList(ctx context.Context, filter TransactionFilter) ([]entity.PointTransaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
	SumPoints(ctx context.Context, filter SumFilter) (int64, error)
	SumByType(ctx context.Context, userID string) ([]TypeSum, error)
	SumCreditsByUser(ctx context.Context, begin, end time.Time) ([]UserSum, error)
}

type pointTransactionRepository struct{}

func NewPointTransactionRepository() *pointTransactionRepository {
	return &pointTransactionRepository{}
}

func (r *pointTransactionRepository) Create(ctx context.Context, data *entity.PointTransaction) error {
	if data.ID == 0 {
		data.ID = xcontext.SnowFlake(ctx).Generate().Int64()
	}

	return xcontext.DB(ctx).Create(data).Error
}

func (r *pointTransactionRepository) GetList(
	ctx context.Context, filter TransactionFilter,
) ([]entity.PointTransaction, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.PointTransaction{}).
		Order("created_at DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if !filter.Begin.IsZero() {
		tx = tx.Where("created_at >= ?", filter.Begin)
	}

	if !filter.End.IsZero() {
		tx = tx.Where("created_at < ?", filter.End)
	}

	var result []entity.PointTransaction
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointTransactionRepository) Count(
	ctx context.Context, filter TransactionFilter,
) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.PointTransaction{})

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if !filter.Begin.IsZero() {
		tx = tx.Where("created_at >= ?", filter.Begin)
	}

	if !filter.End.IsZero() {
		tx = tx.Where("created_at < ?", filter.End)
	}

	var result int64
	if err := tx.Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

func (r *pointTransactionRepository) SumPoints(
	ctx context.Context, filter SumFilter,
) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.PointTransaction{})

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if !filter.Begin.IsZero() {
		tx = tx.Where("created_at >= ?", filter.Begin)
	}

	if !filter.End.IsZero() {
		tx = tx.Where("created_at < ?", filter.End)
	}

	if filter.OnlyCredits {
		tx = tx.Where("points > 0")
	}

	if filter.OnlyDebits {
		tx = tx.Where("points < 0")
	}

	var result int64
	err := tx.Select("COALESCE(SUM(points), 0)").Scan(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *pointTransactionRepository) SumByType(
	ctx context.Context, userID string,
) ([]TypeSum, error) {
	var result []TypeSum
	err := xcontext.DB(ctx).
		Model(&entity.PointTransaction{}).
		Select("type, COALESCE(SUM(points), 0) AS total").
		Where("user_id=?", userID).
		Group("type").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointTransactionRepository) SumCreditsByUser(
	ctx context.Context, begin, end time.Time,
) ([]UserSum, error) {
	var result []UserSum
	err := xcontext.DB(ctx).
		Model(&entity.PointTransaction{}).
		Select("user_id, COALESCE(SUM(points), 0) AS total").
		Where("points > 0 AND created_at >= ? AND created_at < ?", begin, end).
		Group("user_id").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
