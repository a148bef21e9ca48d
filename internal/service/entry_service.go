package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lapseless/internal/model"
	"lapseless/internal/repository"
	"lapseless/internal/streak"
)

// EntryService records completions and relapses. Every change and the
// streak refresh that follows it commit together or not at all.
type EntryService struct {
	habits    *HabitService
	entryRepo EntryStore
	stores    Transactor
	clock     Clock
}

func NewEntryService(habits *HabitService, entryRepo EntryStore, stores Transactor, clock Clock) *EntryService {
	return &EntryService{habits: habits, entryRepo: entryRepo, stores: stores, clock: clock}
}

// AddEntry logs a completion, or a relapse when relapse is set, at the given time.
func (s *EntryService) AddEntry(ctx context.Context, user *model.User, habitID uint, at time.Time, relapse bool) (*Outcome, error) {
	habit, err := s.habits.GetHabit(ctx, user, habitID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNotFuture(at); err != nil {
		return nil, err
	}

	var out *Outcome
	err = s.stores.Transaction(ctx, func(tx *repository.Stores) error {
		entry := model.HabitEntry{HabitID: habit.ID, CompletedAt: streak.StoredTime(at), IsRelapse: relapse}
		if err := tx.Entries.Create(ctx, &entry); err != nil {
			return err
		}
		var err error
		out, err = s.refreshIn(ctx, tx, habit.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("entry added", "habit_id", habit.ID, "relapse", relapse, "date", streak.DateKey(at))
	return out, nil
}

// ToggleCompletion removes every completion of the habit on day, or adds one
// if there is none. It reports whether a completion was added.
func (s *EntryService) ToggleCompletion(ctx context.Context, user *model.User, habitID uint, day time.Time) (bool, *Outcome, error) {
	habit, err := s.habits.GetHabit(ctx, user, habitID)
	if err != nil {
		return false, nil, err
	}
	if err := s.checkNotFuture(day); err != nil {
		return false, nil, err
	}

	key := streak.DateKey(day)
	var (
		added bool
		out   *Outcome
	)
	err = s.stores.Transaction(ctx, func(tx *repository.Stores) error {
		entries, err := tx.Entries.ListByHabit(ctx, habit.ID)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		var ids []uint
		for _, e := range entries {
			if !e.IsRelapse && !e.CompletedAt.IsZero() && streak.DateKey(streak.EntryDate(e.CompletedAt)) == key {
				ids = append(ids, e.ID)
			}
		}

		added = len(ids) == 0
		if added {
			entry := model.HabitEntry{HabitID: habit.ID, CompletedAt: streak.StoredTime(day)}
			if err := tx.Entries.Create(ctx, &entry); err != nil {
				return err
			}
		} else if _, err := tx.Entries.DeleteByIDs(ctx, habit.ID, ids); err != nil {
			return err
		}
		out, err = s.refreshIn(ctx, tx, habit.ID)
		return err
	})
	if err != nil {
		return false, nil, err
	}
	slog.Info("completion toggled", "habit_id", habit.ID, "date", key, "added", added)
	return added, out, nil
}

// RemoveEntry deletes one entry of a habit owned by user.
func (s *EntryService) RemoveEntry(ctx context.Context, user *model.User, entryID uint) (*Outcome, error) {
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound, entryID)
	}
	if _, err := s.habits.GetHabit(ctx, user, entry.HabitID); err != nil {
		return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, entryID)
	}

	var out *Outcome
	err = s.stores.Transaction(ctx, func(tx *repository.Stores) error {
		if err := tx.Entries.Delete(ctx, entryID); err != nil {
			return notFound(err, ErrEntryNotFound, entryID)
		}
		var err error
		out, err = s.refreshIn(ctx, tx, entry.HabitID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// refreshIn bumps the habit version so concurrent readers notice the entry
// change, then recomputes the habit inside tx.
func (s *EntryService) refreshIn(ctx context.Context, tx *repository.Stores, habitID uint) (*Outcome, error) {
	if err := tx.Habits.Touch(ctx, habitID); err != nil {
		return nil, notFound(err, ErrHabitNotFound, habitID)
	}
	return txStreakService(tx, s.clock).Refresh(ctx, habitID)
}

// ListEntries returns a habit's entries, oldest first.
func (s *EntryService) ListEntries(ctx context.Context, user *model.User, habitID uint) ([]model.HabitEntry, error) {
	if _, err := s.habits.GetHabit(ctx, user, habitID); err != nil {
		return nil, err
	}
	return s.entryRepo.ListByHabit(ctx, habitID)
}

func (s *EntryService) checkNotFuture(at time.Time) error {
	if streak.DateKey(at) > streak.DateKey(s.clock.Current()) {
		return fmt.Errorf("%w: %s", ErrFutureEntry, streak.DateKey(at))
	}
	return nil
}
