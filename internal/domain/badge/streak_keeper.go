package badge

import (
	"context"
	"errors"

	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const StreakKeeperBadgeName = "streak_keeper"

// streakKeeperBadgeScanner scans badge level based on the longest
// consecutive-day streak the user ever reached.
type streakKeeperBadgeScanner struct {
	userProgressRepo repository.UserProgressRepository
}

func NewStreakKeeperBadgeScanner(
	userProgressRepo repository.UserProgressRepository,
) *streakKeeperBadgeScanner {
	return &streakKeeperBadgeScanner{userProgressRepo: userProgressRepo}
}

func (*streakKeeperBadgeScanner) Name() string {
	return StreakKeeperBadgeName
}

func (s *streakKeeperBadgeScanner) Scan(ctx context.Context, userID string) (int, error) {
	progress, err := s.userProgressRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return 0, errorx.Unknown
	}

	return levelOf(uint64(progress.LongestStreak), xcontext.Configs(ctx).Badge.StreakKeeperLevels), nil
}
