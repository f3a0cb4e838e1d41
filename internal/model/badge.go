package model

type Badge struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	WasNotified bool   `json:"was_notified"`
}

type GetAllBadgeNamesRequest struct{}

type GetAllBadgeNamesResponse struct {
	Names []string `json:"names"`
}

type GetMyBadgesRequest struct{}

type GetMyBadgesResponse struct {
	Badges []Badge `json:"badges"`
}

type GetUserBadgesRequest struct {
	UserID string `form:"user_id"`
}

type GetUserBadgesResponse struct {
	Badges []Badge `json:"badges"`
}
