package service

import (
	"context"
	"fmt"
	"strings"

	"lapseless/internal/model"
	"lapseless/internal/streak"
)

// HabitInput represents data required to create a habit.
type HabitInput struct {
	Name      string
	StartDate string // YYYY-MM-DD; empty means today
}

// HabitService wraps habit-related business logic.
type HabitService struct {
	habitRepo HabitStore
	streakSvc *StreakService
	clock     Clock
}

func NewHabitService(habitRepo HabitStore, streakSvc *StreakService, clock Clock) *HabitService {
	return &HabitService{habitRepo: habitRepo, streakSvc: streakSvc, clock: clock}
}

// CreateHabit stores a new habit and computes its initial streak.
func (s *HabitService) CreateHabit(ctx context.Context, user *model.User, input HabitInput) (*Outcome, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	start := s.clock.Current()
	if strings.TrimSpace(input.StartDate) != "" {
		parsed, err := streak.ParseDate(input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		start = parsed
	}

	habit := model.Habit{
		UserID:    user.ID,
		Name:      name,
		StartDate: streak.DateKey(start),
	}
	if err := s.habitRepo.Create(ctx, &habit); err != nil {
		return nil, err
	}
	return s.streakSvc.Refresh(ctx, habit.ID)
}

func (s *HabitService) ListHabits(ctx context.Context, user *model.User) ([]model.Habit, error) {
	return s.habitRepo.ListByUser(ctx, user.ID)
}

// GetHabit returns a habit only if it belongs to user.
func (s *HabitService) GetHabit(ctx context.Context, user *model.User, habitID uint) (*model.Habit, error) {
	habit, err := s.habitRepo.FindByID(ctx, habitID)
	if err != nil {
		return nil, notFound(err, ErrHabitNotFound, habitID)
	}
	if habit.UserID != user.ID {
		return nil, fmt.Errorf("%w: %d", ErrHabitNotFound, habitID)
	}
	return habit, nil
}

// DeleteHabit soft-deletes a habit; it drops out of every later reconciliation.
func (s *HabitService) DeleteHabit(ctx context.Context, user *model.User, habitID uint) error {
	if err := s.habitRepo.Delete(ctx, user.ID, habitID); err != nil {
		return notFound(err, ErrHabitNotFound, habitID)
	}
	return nil
}
