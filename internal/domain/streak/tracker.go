package streak

import (
	"context"
	"errors"
	"time"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/dateutil"
	"gorm.io/gorm"
)

// Tracker maintains consecutive-day activity streaks. A day counts
// when it has at least one daily login transaction, and a streak of N
// means N consecutive days up to and including the latest active day.
type Tracker struct {
	userProgressRepo     repository.UserProgressRepository
	pointTransactionRepo repository.PointTransactionRepository
}

func NewTracker(
	userProgressRepo repository.UserProgressRepository,
	pointTransactionRepo repository.PointTransactionRepository,
) *Tracker {
	return &Tracker{
		userProgressRepo:     userProgressRepo,
		pointTransactionRepo: pointTransactionRepo,
	}
}

// Update re-evaluates the streak of one user at the given moment and
// persists the result. It reports whether anything changed, so the
// caller can decide to notify. Calling it twice on the same day is a
// no-op the second time.
func (t *Tracker) Update(
	ctx context.Context, userID string, now time.Time,
) (*entity.UserProgress, bool, error) {
	progress, err := t.userProgressRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.UserProgress{UserID: userID}, false, nil
		}
		return nil, false, err
	}

	today := dateutil.BeginningOfDay(now)
	yesterday := dateutil.Yesterday(now)

	activeToday, err := t.hasLoginBetween(ctx, userID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, false, err
	}

	if activeToday {
		if progress.CurrentStreak > 0 && dateutil.SameDay(progress.LastActivityDate, now) {
			return progress, false, nil
		}

		activeYesterday, err := t.hasLoginBetween(ctx, userID, yesterday, today)
		if err != nil {
			return nil, false, err
		}

		// A login after a gap restarts the count at one instead of
		// continuing the broken streak.
		streak := 1
		if activeYesterday {
			streak = progress.CurrentStreak + 1
		}

		if err := t.userProgressRepo.UpdateStreak(ctx, userID, streak, today); err != nil {
			return nil, false, err
		}

		progress.CurrentStreak = streak
		if streak > progress.LongestStreak {
			progress.LongestStreak = streak
		}
		progress.LastActivityDate = today

		return progress, true, nil
	}

	if progress.CurrentStreak == 0 {
		return progress, false, nil
	}

	// Until midnight the user can still keep a streak that ended
	// yesterday alive, so only a gap of a full day breaks it.
	if progress.LastActivityDate.Before(yesterday) {
		if err := t.userProgressRepo.ResetStreak(ctx, userID); err != nil {
			return nil, false, err
		}

		progress.CurrentStreak = 0
		return progress, true, nil
	}

	return progress, false, nil
}

func (t *Tracker) hasLoginBetween(
	ctx context.Context, userID string, begin, end time.Time,
) (bool, error) {
	count, err := t.pointTransactionRepo.Count(ctx, repository.TransactionFilter{
		UserID: userID,
		Type:   entity.TransactionDailyLogin,
		Begin:  begin,
		End:    end,
	})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
