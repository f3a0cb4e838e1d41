package migration

import (
	"context"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/xcontext"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.UserProgress{},
		&entity.PointTransaction{},
		&entity.Badge{},
		&entity.Migration{},
	)
}
