package main

import (
	"fmt"
	"net/http"

	"github.com/taskforge-lab/backend/internal/middleware"
	"github.com/taskforge-lab/backend/pkg/router"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadEngines()
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadBadgeManager()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())

	authVerifier := middleware.NewAuthVerifier()

	// Public API.
	router.GET(s.router, "/getLeaderboard", s.statisticDomain.GetLeaderboard)
	router.GET(s.router, "/getAllBadgeNames", s.badgeDomain.GetAllBadgeNames)
	router.GET(s.router, "/getUserBadges", s.badgeDomain.GetUserBadges)

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Before(authVerifier.Middleware())
	{
		// Points API
		router.GET(authRouter, "/getBalance", s.pointsDomain.GetBalance)
		router.GET(authRouter, "/hasSufficientPoints", s.pointsDomain.HasSufficientPoints)
		router.GET(authRouter, "/getHistory", s.pointsDomain.GetHistory)
		router.GET(authRouter, "/getStreak", s.pointsDomain.GetStreak)
		router.POST(authRouter, "/claimDailyLogin", s.pointsDomain.ClaimDailyLogin)
		router.POST(authRouter, "/deductPoints", s.pointsDomain.DeductPoints)

		// Statistic API
		router.GET(authRouter, "/getRank", s.statisticDomain.GetRank)
		router.GET(authRouter, "/getUserStats", s.statisticDomain.GetUserStats)

		// Badge API
		router.GET(authRouter, "/getMyBadges", s.badgeDomain.GetMyBadges)
	}

	// These following APIs are reserved for trusted services and admins.
	adminRouter := s.router.Branch()
	adminRouter.Before(authVerifier.Middleware())
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.POST(adminRouter, "/addPoints", s.pointsDomain.AddPoints)
	}
}
