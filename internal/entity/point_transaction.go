package entity

import (
	"database/sql"

	"github.com/taskforge-lab/backend/pkg/enum"
)

type TransactionType string

var (
	TransactionTaskCompleted      = enum.New(TransactionType("task_completed"))
	TransactionDailyLogin         = enum.New(TransactionType("daily_login"))
	TransactionChallengeCompleted = enum.New(TransactionType("challenge_completed"))
	TransactionRewardRedemption   = enum.New(TransactionType("reward_redemption"))
	TransactionAdminAdjustment    = enum.New(TransactionType("admin_adjustment"))
	TransactionFamilyBonus        = enum.New(TransactionType("family_bonus"))
)

// PointTransaction is the append-only ledger row. Points is signed: positive
// for credits, negative for debits. Rows are never updated or deleted.
type PointTransaction struct {
	SnowFlakeBase

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Points      int64
	Type        TransactionType `gorm:"index"`
	Description string

	RelatedEntityID   sql.NullString
	RelatedTemplateID sql.NullString
}
