package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taskforge-lab/backend/config"
	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/authenticator"
	"github.com/taskforge-lab/backend/pkg/logger"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	snowflakeNode, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		ApiServer: config.ServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 1,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Kafka: config.KafkaConfigs{
			NotificationTopic: "notifications",
		},
		Points: config.PointsConfigs{
			DailyLoginPoints: 10,
		},
		Badge: config.BadgeConfigs{
			StreakKeeperLevels: []uint64{3, 7, 30, 100},
			HighRollerLevels:   []uint64{500, 2000, 10000},
			VeteranLevels:      []uint64{5, 10, 25},
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSnowFlake(ctx, snowflakeNode)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
