package service

import (
	"context"

	"lapseless/internal/model"
	"lapseless/internal/repository"
)

// Minimal store interfaces consumed by the services.

type HabitStore interface {
	Create(ctx context.Context, habit *model.Habit) error
	FindByID(ctx context.Context, id uint) (*model.Habit, error)
	ListActive(ctx context.Context) ([]model.Habit, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Habit, error)
	UpdateStreaks(ctx context.Context, habitID uint, version int64, current, longest int) error
	Touch(ctx context.Context, habitID uint) error
	Delete(ctx context.Context, userID, habitID uint) error
}

type EntryStore interface {
	Create(ctx context.Context, entry *model.HabitEntry) error
	FindByID(ctx context.Context, id uint) (*model.HabitEntry, error)
	ListByHabit(ctx context.Context, habitID uint) ([]model.HabitEntry, error)
	ListForHabits(ctx context.Context, habitIDs []uint) ([]model.HabitEntry, error)
	DeleteByIDs(ctx context.Context, habitID uint, ids []uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type AchievementStore interface {
	Transaction(ctx context.Context, fn func(tx *repository.AchievementRepository) error) error
	Exists(ctx context.Context, habitID uint, achievementType string) (bool, error)
	ListByHabit(ctx context.Context, habitID uint) ([]model.Achievement, error)
	ListForHabits(ctx context.Context, habitIDs []uint) ([]model.Achievement, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Achievement, error)
	MarkViewed(ctx context.Context, userID uint, ids []uint) (int64, error)
}

// Transactor runs fn against repositories bound to one transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *repository.Stores) error) error
}
