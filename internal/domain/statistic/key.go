package statistic

import (
	"fmt"

	"github.com/taskforge-lab/backend/internal/entity"
)

func redisKeyPointLeaderboard(period entity.LeaderboardPeriodType) string {
	return fmt.Sprintf("points:%s", period.Period())
}

func redisKeyPreviousRanks(period entity.LeaderboardPeriodType) string {
	return fmt.Sprintf("points:prev:%s", period.Period())
}
