package model

type UserStatistic struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Value        uint64 `json:"value"`
	CurrentRank  uint64 `json:"current_rank"`
	PreviousRank uint64 `json:"previous_rank,omitempty"`
}

type GetLeaderboardRequest struct {
	Metric string `form:"metric"`
	Period string `form:"period"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []UserStatistic `json:"leaderboard"`
}

type GetRankRequest struct {
	UserID string `form:"user_id"`
	Metric string `form:"metric"`
	Period string `form:"period"`
}

type GetRankResponse struct {
	UserID string `json:"user_id"`
	Rank   uint64 `json:"rank"`
}

type TypeSummary struct {
	Type  string `json:"type"`
	Total int64  `json:"total"`
}

type GetUserStatsRequest struct {
	UserID string `form:"user_id"`
}

type GetUserStatsResponse struct {
	Progress        UserProgress  `json:"progress"`
	TotalSpent      uint64        `json:"total_spent"`
	EarnedThisMonth uint64        `json:"earned_this_month"`
	Rank            uint64        `json:"rank"`
	ByType          []TypeSummary `json:"by_type"`
}
