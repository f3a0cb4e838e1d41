package event

type PointsEarnedEvent struct {
	UserID  string `json:"user_id"`
	Points  uint64 `json:"points"`
	Type    string `json:"type"`
	Balance uint64 `json:"balance"`
}

func (PointsEarnedEvent) Op() string {
	return "points_earned"
}

type PointsSpentEvent struct {
	UserID  string `json:"user_id"`
	Points  uint64 `json:"points"`
	Type    string `json:"type"`
	Balance uint64 `json:"balance"`
}

func (PointsSpentEvent) Op() string {
	return "points_spent"
}

type LevelUpEvent struct {
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

func (LevelUpEvent) Op() string {
	return "level_up"
}

type StreakUpdatedEvent struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

func (StreakUpdatedEvent) Op() string {
	return "streak_updated"
}

type BadgeGrantedEvent struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
}

func (BadgeGrantedEvent) Op() string {
	return "badge_granted"
}
