package entity

import "time"

type Badge struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	Name  string `gorm:"primaryKey"`
	Level int

	WasNotified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
