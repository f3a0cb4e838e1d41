package badge

import "context"

type BadgeScanner interface {
	// Name returns the name of badge.
	Name() string

	// Scan returns the badge level the user currently qualifies for, or
	// zero if the user doesn't qualify at all.
	Scan(ctx context.Context, userID string) (int, error)
}

// levelOf maps a progress value onto badge levels. Each satisfied
// threshold counts for one level.
func levelOf(value uint64, thresholds []uint64) int {
	level := 0
	for _, threshold := range thresholds {
		if value >= threshold {
			level++
		}
	}

	return level
}
