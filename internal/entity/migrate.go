package entity

import (
	"context"
	"time"

	"github.com/taskforge-lab/backend/pkg/xcontext"
)

type Migration struct {
	Version   string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&UserProgress{},
		&PointTransaction{},
		&Badge{},
		&Migration{},
	)
}
