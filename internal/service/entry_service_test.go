package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lapseless/internal/streak"
)

// failStreakWrites makes every streak column update on db fail.
func failStreakWrites(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_streak_write", func(tx *gorm.DB) {
		if dest, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			if _, ok := dest["current_streak"]; ok {
				_ = tx.AddError(errors.New("store unavailable"))
			}
		}
	})
	require.NoError(t, err)
}

func TestRelapseResetsCurrentKeepsLongest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	created, err := env.habitSvc.CreateHabit(ctx, u, HabitInput{Name: "smoking", StartDate: "2026-03-06"})
	require.NoError(t, err)
	id := created.Habit.ID

	out, err := env.entrySvc.AddEntry(ctx, u, id, env.now, true)
	require.NoError(t, err)
	assert.True(t, out.Updated)
	assert.Zero(t, out.Habit.CurrentStreak)
	assert.Equal(t, 10, out.Habit.LongestStreak)
	assert.Empty(t, out.Issued)

	env.now = env.now.AddDate(0, 0, 2)
	out, err = env.streaks.Refresh(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Habit.CurrentStreak)
	assert.Equal(t, 10, out.Habit.LongestStreak)
	assert.Empty(t, out.Issued, "milestones are issued once per habit")
}

func TestRemovingRelapseRestoresStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	created, err := env.habitSvc.CreateHabit(ctx, u, HabitInput{Name: "smoking", StartDate: "2026-03-06"})
	require.NoError(t, err)
	id := created.Habit.ID

	_, err = env.entrySvc.AddEntry(ctx, u, id, env.now.AddDate(0, 0, -1), true)
	require.NoError(t, err)
	entries, err := env.entrySvc.ListEntries(ctx, u, id)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	out, err := env.entrySvc.RemoveEntry(ctx, u, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Habit.CurrentStreak)

	_, err = env.entrySvc.RemoveEntry(ctx, u, entries[0].ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestToggleCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	created, err := env.habitSvc.CreateHabit(ctx, u, HabitInput{Name: "smoking", StartDate: "2026-03-13"})
	require.NoError(t, err)
	id := created.Habit.ID

	added, out, err := env.entrySvc.ToggleCompletion(ctx, u, id, env.now)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, out.CompletedToday)
	assert.Equal(t, 3, out.Habit.CurrentStreak, "completions do not change the streak")

	added, out, err = env.entrySvc.ToggleCompletion(ctx, u, id, env.now.Add(-3*time.Hour))
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, out.CompletedToday)

	entries, err := env.entrySvc.ListEntries(ctx, u, id)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	created, err := env.habitSvc.CreateHabit(ctx, alice, HabitInput{Name: "smoking"})
	require.NoError(t, err)

	_, err = env.entrySvc.AddEntry(ctx, alice, created.Habit.ID, env.now.AddDate(0, 0, 1), false)
	assert.ErrorIs(t, err, ErrFutureEntry)

	_, err = env.entrySvc.AddEntry(ctx, bob, created.Habit.ID, env.now, true)
	assert.ErrorIs(t, err, ErrHabitNotFound)

	_, err = env.entrySvc.AddEntry(ctx, alice, 999, env.now, true)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestAddEntryRollsBackWhenRefreshFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	h := env.seedHabit(t, u.ID, "2026-03-10", 0, 0)
	failStreakWrites(t, env.db)

	_, err := env.entrySvc.AddEntry(ctx, u, h.ID, env.now, false)
	require.Error(t, err)

	entries, err := env.entries.ListByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	got := env.habit(t, h.ID)
	assert.Equal(t, h.Version, got.Version)
	assert.Zero(t, got.CurrentStreak)
}

func TestToggleCompletionRollsBackWhenRefreshFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	h := env.seedHabit(t, u.ID, "2026-03-10", 0, 0)
	failStreakWrites(t, env.db)

	_, _, err := env.entrySvc.ToggleCompletion(ctx, u, h.ID, env.now)
	require.Error(t, err)

	entries, err := env.entries.ListByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntriesKeepTheirLocalDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "alice")
	h := env.seedHabit(t, u.ID, "2026-03-01", 0, 0)

	// Late evening in UTC-4 is already the next day in UTC.
	evening := time.Date(2026, 3, 14, 22, 0, 0, 0, time.FixedZone("UTC-4", -4*3600))
	out, err := env.entrySvc.AddEntry(ctx, u, h.ID, evening, true)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Habit.CurrentStreak, "relapse counts on the 14th")

	entries, err := env.entrySvc.ListEntries(ctx, u, h.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-03-14", streak.DateKey(streak.EntryDate(entries[0].CompletedAt)))
}
