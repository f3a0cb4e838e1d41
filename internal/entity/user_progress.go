package entity

import (
	"time"

	"github.com/taskforge-lab/backend/pkg/enum"
)

// UserProgress is the derived summary of a user's point transaction history.
// It is the only row mutated in place; every mutation goes through guarded
// updates in the repository so concurrent requests for the same user cannot
// interleave.
type UserProgress struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	CreatedAt time.Time
	UpdatedAt time.Time

	CurrentPoints     uint64
	TotalPointsEarned uint64

	// Level starts at 1. NextLevelThreshold is the number of points needed
	// within the current level to advance, not a cumulative total.
	Level              int
	NextLevelThreshold uint64

	CurrentStreak    int
	LongestStreak    int
	LastActivityDate time.Time
}

type LeaderboardMetric string

var (
	MetricCurrentPoints     = enum.New(LeaderboardMetric("current_points"))
	MetricTotalPointsEarned = enum.New(LeaderboardMetric("total_points_earned"))
)
