package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lapseless/internal/model"
	"lapseless/internal/repository"
	"lapseless/internal/streak"
)

const maxRefreshAttempts = 3

// Outcome is the state of one habit after its streak was recomputed.
type Outcome struct {
	Habit          model.Habit
	Updated        bool
	Issued         []model.Achievement
	CompletedToday bool
}

// StreakService recomputes a single habit on demand. It is the interactive
// counterpart of the Reconciler and shares its evaluation and apply steps.
type StreakService struct {
	habitRepo    HabitStore
	entryRepo    EntryStore
	achievements AchievementStore
	issuer       *AchievementService
	clock        Clock
}

func NewStreakService(habitRepo HabitStore, entryRepo EntryStore, achievements AchievementStore, issuer *AchievementService, clock Clock) *StreakService {
	return &StreakService{
		habitRepo:    habitRepo,
		entryRepo:    entryRepo,
		achievements: achievements,
		issuer:       issuer,
		clock:        clock,
	}
}

// txStreakService is a StreakService whose reads and writes all go through tx.
func txStreakService(tx *repository.Stores, clock Clock) *StreakService {
	return NewStreakService(tx.Habits, tx.Entries, tx.Achievements, NewAchievementService(tx.Achievements), clock)
}

// Refresh recomputes habitID from its full entry history and persists any
// change. A concurrent write to the same habit makes it re-read and retry.
func (s *StreakService) Refresh(ctx context.Context, habitID uint) (*Outcome, error) {
	for attempt := 1; ; attempt++ {
		out, err := s.refresh(ctx, habitID)
		if errors.Is(err, repository.ErrStaleHabit) && attempt < maxRefreshAttempts {
			slog.Debug("habit changed concurrently, re-reading", "habit_id", habitID, "attempt", attempt)
			continue
		}
		return out, err
	}
}

func (s *StreakService) refresh(ctx context.Context, habitID uint) (*Outcome, error) {
	habit, err := s.habitRepo.FindByID(ctx, habitID)
	if err != nil {
		return nil, notFound(err, ErrHabitNotFound, habitID)
	}
	entries, err := s.entryRepo.ListByHabit(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	issued, err := s.achievements.ListByHabit(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	now := s.clock.Current()
	res := streak.Evaluate(streak.Input{Habit: *habit, Entries: entries, Issued: issued, Today: now})
	logMalformed(slog.Default(), res)

	updated, newAchievements, err := applyResult(ctx, s.habitRepo, s.issuer, *habit, res, now)
	if err != nil {
		return nil, err
	}

	habit.CurrentStreak = res.CurrentStreak
	habit.LongestStreak = res.LongestStreak
	return &Outcome{
		Habit:          *habit,
		Updated:        updated,
		Issued:         newAchievements,
		CompletedToday: streak.IsCompletedOn(entries, habit.ID, now),
	}, nil
}

// applyResult persists one evaluated habit: its streak columns, then every
// pending milestone while the streak is positive. The streak write is a
// compare-and-update on the version the habit was read at, so a result
// computed from stale entries is rejected with repository.ErrStaleHabit
// before any milestone is recorded.
func applyResult(ctx context.Context, habits HabitStore, issuer *AchievementService, habit model.Habit, res streak.Result, now time.Time) (bool, []model.Achievement, error) {
	if !res.Changed && len(res.Pending) == 0 {
		return false, nil, nil
	}
	if err := habits.UpdateStreaks(ctx, habit.ID, habit.Version, res.CurrentStreak, res.LongestStreak); err != nil {
		return false, nil, err
	}
	if res.CurrentStreak <= 0 || len(res.Pending) == 0 {
		return res.Changed, nil, nil
	}
	issued, err := issuer.IssuePending(ctx, habit, res.Pending, now)
	if err != nil {
		return res.Changed, issued, fmt.Errorf("issue achievements: %w", err)
	}
	return res.Changed, issued, nil
}

func logMalformed(log *slog.Logger, res streak.Result) {
	if res.StartDateErr != nil {
		log.Warn("malformed habit start date, streak treated as zero", "habit_id", res.HabitID, "error", res.StartDateErr)
	}
	if len(res.SkippedEntries) > 0 {
		log.Warn("entries without timestamp skipped", "habit_id", res.HabitID, "entry_ids", res.SkippedEntries)
	}
}
