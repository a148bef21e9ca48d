package model

import "time"

// Achievement records that a habit crossed a milestone. At most one row per
// (habit, type) and one row per (user, number) may exist.
type Achievement struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"index;uniqueIndex:idx_achievement_user_number"`
	HabitID           uint   `gorm:"uniqueIndex:idx_achievement_habit_type"`
	Type              string `gorm:"uniqueIndex:idx_achievement_habit_type"`
	Days              int
	AchievedAt        time.Time
	Viewed            bool `gorm:"default:false"`
	AchievementNumber int  `gorm:"uniqueIndex:idx_achievement_user_number"`
}
