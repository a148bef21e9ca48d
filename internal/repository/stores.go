package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores groups the repositories that share one database handle.
type Stores struct {
	db           *gorm.DB
	Users        *UserRepository
	Habits       *HabitRepository
	Entries      *EntryRepository
	Achievements *AchievementRepository
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		db:           db,
		Users:        NewUserRepository(db),
		Habits:       NewHabitRepository(db),
		Entries:      NewEntryRepository(db),
		Achievements: NewAchievementRepository(db),
	}
}

// Transaction runs fn with every repository bound to one transaction.
// Inside fn only tx may touch the database.
func (s *Stores) Transaction(ctx context.Context, fn func(tx *Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx))
	})
}
