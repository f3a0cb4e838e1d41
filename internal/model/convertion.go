package model

import (
	"time"

	"github.com/taskforge-lab/backend/internal/entity"
)

func ConvertPointTransaction(transaction *entity.PointTransaction) PointTransaction {
	if transaction == nil {
		return PointTransaction{}
	}

	return PointTransaction{
		ID:              transaction.ID,
		UserID:          transaction.UserID,
		Points:          transaction.Points,
		Type:            string(transaction.Type),
		Description:     transaction.Description,
		RelatedEntityID: transaction.RelatedEntityID.String,
		CreatedAt:       transaction.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ConvertUserProgress(progress *entity.UserProgress) UserProgress {
	if progress == nil {
		return UserProgress{}
	}

	lastActivity := ""
	if !progress.LastActivityDate.IsZero() {
		lastActivity = progress.LastActivityDate.UTC().Format(time.RFC3339)
	}

	return UserProgress{
		UserID:             progress.UserID,
		CurrentPoints:      progress.CurrentPoints,
		TotalPointsEarned:  progress.TotalPointsEarned,
		Level:              progress.Level,
		NextLevelThreshold: progress.NextLevelThreshold,
		CurrentStreak:      progress.CurrentStreak,
		LongestStreak:      progress.LongestStreak,
		LastActivityDate:   lastActivity,
	}
}

func ConvertBadge(badge *entity.Badge) Badge {
	if badge == nil {
		return Badge{}
	}

	return Badge{
		UserID:      badge.UserID,
		Name:        badge.Name,
		Level:       badge.Level,
		WasNotified: badge.WasNotified,
	}
}
