package model

import (
	"time"

	"gorm.io/gorm"
)

// Habit is a single quit-target tracked by a user.
type Habit struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index"`
	Name          string
	StartDate     string // YYYY-MM-DD
	CurrentStreak int    `gorm:"default:0"`
	LongestStreak int    `gorm:"default:0"`
	// Version changes on every streak write and every entry change.
	Version   int64          `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
