package model

import "time"

// HabitEntry marks a day as a completion or, with IsRelapse set, as a relapse.
type HabitEntry struct {
	ID          uint `gorm:"primaryKey"`
	HabitID     uint `gorm:"index"`
	CompletedAt time.Time
	IsRelapse   bool `gorm:"default:false"`
	CreatedAt   time.Time
}
