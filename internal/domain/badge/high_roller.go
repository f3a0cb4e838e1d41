package badge

import (
	"context"
	"errors"

	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const HighRollerBadgeName = "high_roller"

// highRollerBadgeScanner scans badge level based on the lifetime total
// of points the user earned.
type highRollerBadgeScanner struct {
	userProgressRepo repository.UserProgressRepository
}

func NewHighRollerBadgeScanner(
	userProgressRepo repository.UserProgressRepository,
) *highRollerBadgeScanner {
	return &highRollerBadgeScanner{userProgressRepo: userProgressRepo}
}

func (*highRollerBadgeScanner) Name() string {
	return HighRollerBadgeName
}

func (s *highRollerBadgeScanner) Scan(ctx context.Context, userID string) (int, error) {
	progress, err := s.userProgressRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return 0, errorx.Unknown
	}

	return levelOf(progress.TotalPointsEarned, xcontext.Configs(ctx).Badge.HighRollerLevels), nil
}
