package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lapseless/internal/model"
	"lapseless/internal/repository"
	"lapseless/internal/testutil"
)

type testEnv struct {
	db           *gorm.DB
	stores       *repository.Stores
	now          time.Time
	clock        Clock
	users        *repository.UserRepository
	habits       *repository.HabitRepository
	entries      *repository.EntryRepository
	achievements *repository.AchievementRepository
	issuer       *AchievementService
	streaks      *StreakService
	habitSvc     *HabitService
	entrySvc     *EntryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenTestDB(t)

	env := &testEnv{db: db, stores: repository.NewStores(db), now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	env.clock = Clock{Now: func() time.Time { return env.now }, Location: time.UTC}
	env.users = env.stores.Users
	env.habits = env.stores.Habits
	env.entries = env.stores.Entries
	env.achievements = env.stores.Achievements
	env.issuer = NewAchievementService(env.achievements)
	env.streaks = NewStreakService(env.habits, env.entries, env.achievements, env.issuer, env.clock)
	env.habitSvc = NewHabitService(env.habits, env.streaks, env.clock)
	env.entrySvc = NewEntryService(env.habitSvc, env.entries, env.stores, env.clock)
	return env
}

func (e *testEnv) reconciler(habits HabitStore) *Reconciler {
	if habits == nil {
		habits = e.habits
	}
	return NewReconciler(habits, e.entries, e.achievements, e.issuer, e.clock, 4)
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.GetOrCreate(context.Background(), name)
	require.NoError(t, err)
	return u
}

// seedHabit inserts a habit without computing its streak.
func (e *testEnv) seedHabit(t *testing.T, userID uint, start string, current, longest int) model.Habit {
	t.Helper()
	h := model.Habit{UserID: userID, Name: "habit " + start, StartDate: start, CurrentStreak: current, LongestStreak: longest}
	require.NoError(t, e.habits.Create(context.Background(), &h))
	return h
}

func (e *testEnv) achievementTypes(t *testing.T, habitID uint) []string {
	t.Helper()
	list, err := e.achievements.ListByHabit(context.Background(), habitID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Type)
	}
	return out
}

func (e *testEnv) habit(t *testing.T, id uint) model.Habit {
	t.Helper()
	h, err := e.habits.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *h
}
