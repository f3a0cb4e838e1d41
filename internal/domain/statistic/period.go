package statistic

import (
	"fmt"
	"time"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/pkg/dateutil"
)

func ToPeriodWithTime(periodString string, current time.Time) (entity.LeaderboardPeriodType, error) {
	switch periodString {
	case "week":
		return entity.NewLeaderboardPeriodWeek(current), nil
	case "month":
		return entity.NewLeaderboardPeriodMonth(current), nil
	}

	return nil, fmt.Errorf("invalid period, expected week or month, but got %s", periodString)
}

func ToPeriod(periodString string) (entity.LeaderboardPeriodType, error) {
	return ToPeriodWithTime(periodString, time.Now())
}

func ToLastPeriod(periodString string) (entity.LeaderboardPeriodType, error) {
	switch periodString {
	case "week":
		return entity.NewLeaderboardPeriodWeek(dateutil.LastWeek(time.Now())), nil
	case "month":
		return entity.NewLeaderboardPeriodMonth(dateutil.LastMonth(time.Now())), nil
	}

	return nil, fmt.Errorf("invalid period, expected week or month, but got %s", periodString)
}
