package migration

import (
	"context"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/xcontext"
)

// migrate0001 backfills the level threshold of progress rows created
// before levels existed.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).
		Model(&entity.UserProgress{}).
		Where("next_level_threshold = ?", 0).
		Updates(map[string]any{"level": 1, "next_level_threshold": 100}).Error
}
