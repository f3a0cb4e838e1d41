package badge

import (
	"context"
	"errors"

	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const VeteranBadgeName = "veteran"

// veteranBadgeScanner scans badge level based on the level the user
// reached in the progression ladder.
type veteranBadgeScanner struct {
	userProgressRepo repository.UserProgressRepository
}

func NewVeteranBadgeScanner(
	userProgressRepo repository.UserProgressRepository,
) *veteranBadgeScanner {
	return &veteranBadgeScanner{userProgressRepo: userProgressRepo}
}

func (*veteranBadgeScanner) Name() string {
	return VeteranBadgeName
}

func (s *veteranBadgeScanner) Scan(ctx context.Context, userID string) (int, error) {
	progress, err := s.userProgressRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user progress: %v", err)
		return 0, errorx.Unknown
	}

	return levelOf(uint64(progress.Level), xcontext.Configs(ctx).Badge.VeteranLevels), nil
}
