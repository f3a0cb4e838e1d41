package main

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/taskforge-lab/backend/config"
	"github.com/taskforge-lab/backend/internal/domain"
	"github.com/taskforge-lab/backend/internal/domain/badge"
	"github.com/taskforge-lab/backend/internal/domain/statistic"
	"github.com/taskforge-lab/backend/internal/domain/streak"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/migration"
	"github.com/taskforge-lab/backend/pkg/authenticator"
	"github.com/taskforge-lab/backend/pkg/kafka"
	"github.com/taskforge-lab/backend/pkg/logger"
	"github.com/taskforge-lab/backend/pkg/pubsub"
	"github.com/taskforge-lab/backend/pkg/router"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"github.com/taskforge-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo             repository.UserRepository
	userProgressRepo     repository.UserProgressRepository
	pointTransactionRepo repository.PointTransactionRepository
	badgeRepo            repository.BadgeRepository

	streakTracker *streak.Tracker
	badgeManager  *badge.Manager
	leaderboard   statistic.Leaderboard

	pointsDomain    domain.PointsDomain
	statisticDomain domain.StatisticDomain
	badgeDomain     domain.BadgeDomain

	redisClient xredis.Client
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadEngines() {
	tokenEngine := authenticator.NewTokenEngine(xcontext.Configs(s.ctx).Auth.TokenSecret)
	s.ctx = xcontext.WithTokenEngine(s.ctx, tokenEngine)

	snowflakeNode, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, snowflakeNode)
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)
	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher() {
	var err error
	s.publisher, err = kafka.NewPublisher(
		"api", []string{xcontext.Configs(s.ctx).Kafka.Addr})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.userProgressRepo = repository.NewUserProgressRepository()
	s.pointTransactionRepo = repository.NewPointTransactionRepository()
	s.badgeRepo = repository.NewBadgeRepository()
}

func (s *srv) loadBadgeManager() {
	s.badgeManager = badge.NewManager(
		s.badgeRepo,
		badge.NewStreakKeeperBadgeScanner(s.userProgressRepo),
		badge.NewHighRollerBadgeScanner(s.userProgressRepo),
		badge.NewVeteranBadgeScanner(s.userProgressRepo),
	)
}

func (s *srv) loadDomains() {
	s.streakTracker = streak.NewTracker(s.userProgressRepo, s.pointTransactionRepo)
	s.leaderboard = statistic.New(s.pointTransactionRepo, s.redisClient)

	s.pointsDomain = domain.NewPointsDomain(
		s.userProgressRepo,
		s.pointTransactionRepo,
		s.streakTracker,
		s.badgeManager,
		s.leaderboard,
		s.publisher,
	)

	s.statisticDomain = domain.NewStatisticDomain(
		s.userRepo,
		s.userProgressRepo,
		s.pointTransactionRepo,
		s.leaderboard,
	)

	s.badgeDomain = domain.NewBadgeDomain(s.badgeRepo, s.badgeManager)
}
