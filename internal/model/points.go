package model

type PointTransaction struct {
	ID              int64  `json:"id"`
	UserID          string `json:"user_id"`
	Points          int64  `json:"points"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	RelatedEntityID string `json:"related_entity_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type UserProgress struct {
	UserID             string `json:"user_id"`
	CurrentPoints      uint64 `json:"current_points"`
	TotalPointsEarned  uint64 `json:"total_points_earned"`
	Level              int    `json:"level"`
	NextLevelThreshold uint64 `json:"next_level_threshold"`
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	LastActivityDate   string `json:"last_activity_date,omitempty"`
}

type AddPointsRequest struct {
	UserID          string `json:"user_id"`
	Points          uint64 `json:"points"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	RelatedEntityID string `json:"related_entity_id"`
}

type AddPointsResponse struct {
	Transaction  PointTransaction `json:"transaction"`
	Level        int              `json:"level"`
	LevelsGained int              `json:"levels_gained"`
	Balance      uint64           `json:"balance"`
}

type DeductPointsRequest struct {
	Points          uint64 `json:"points"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	RelatedEntityID string `json:"related_entity_id"`
}

type DeductPointsResponse struct {
	Transaction PointTransaction `json:"transaction"`
	Balance     uint64           `json:"balance"`
}

type GetBalanceRequest struct {
	UserID string `form:"user_id"`
}

type GetBalanceResponse struct {
	UserID             string `json:"user_id"`
	CurrentPoints      uint64 `json:"current_points"`
	TotalPointsEarned  uint64 `json:"total_points_earned"`
	Level              int    `json:"level"`
	NextLevelThreshold uint64 `json:"next_level_threshold"`
}

type HasSufficientPointsRequest struct {
	UserID string `form:"user_id"`
	Points uint64 `form:"points"`
}

type HasSufficientPointsResponse struct {
	Sufficient bool   `json:"sufficient"`
	Balance    uint64 `json:"balance"`
}

type GetHistoryRequest struct {
	UserID string `form:"user_id"`
	Type   string `form:"type"`
	Begin  string `form:"begin"`
	End    string `form:"end"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type GetHistoryResponse struct {
	Transactions []PointTransaction `json:"transactions"`
	Total        int64              `json:"total"`
}

type ClaimDailyLoginRequest struct{}

type ClaimDailyLoginResponse struct {
	Points        uint64 `json:"points"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

type GetStreakRequest struct {
	UserID string `form:"user_id"`
}

type GetStreakResponse struct {
	UserID           string `json:"user_id"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}
