package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lapseless/internal/model"
	"lapseless/internal/testutil"
)

func TestUserRepositoryGetOrCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a, err := repo.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	b, err := repo.GetOrCreate(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	_, err = repo.GetOrCreate(ctx, "")
	assert.Error(t, err)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestHabitRepositorySoftDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	h1 := model.Habit{UserID: 1, Name: "smoking", StartDate: "2026-01-01"}
	h2 := model.Habit{UserID: 1, Name: "sugar", StartDate: "2026-01-02"}
	require.NoError(t, repo.Create(ctx, &h1))
	require.NoError(t, repo.Create(ctx, &h2))

	require.NoError(t, repo.Delete(ctx, 1, h1.ID))
	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, h2.ID, active[0].ID)

	_, err = repo.FindByID(ctx, h1.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.Delete(ctx, 2, h2.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "habit owned by another user")
}

func TestHabitRepositoryUpdateStreaks(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	h := model.Habit{UserID: 1, Name: "smoking", StartDate: "2026-01-01"}
	require.NoError(t, repo.Create(ctx, &h))
	require.NoError(t, repo.UpdateStreaks(ctx, h.ID, h.Version, 3, 8))

	got, err := repo.FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 8, got.LongestStreak)
	assert.Equal(t, h.Version+1, got.Version)

	err = repo.UpdateStreaks(ctx, h.ID, h.Version, 0, 8)
	assert.ErrorIs(t, err, ErrStaleHabit, "version already moved on")
	got, err = repo.FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStreak)

	assert.ErrorIs(t, repo.UpdateStreaks(ctx, 999, 0, 1, 1), gorm.ErrRecordNotFound)
}

func TestHabitRepositoryTouch(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	h := model.Habit{UserID: 1, Name: "sugar", StartDate: "2026-01-01"}
	require.NoError(t, repo.Create(ctx, &h))
	require.NoError(t, repo.Touch(ctx, h.ID))

	got, err := repo.FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Version+1, got.Version)
	assert.ErrorIs(t, repo.UpdateStreaks(ctx, h.ID, h.Version, 1, 1), ErrStaleHabit)
	assert.ErrorIs(t, repo.Touch(ctx, 999), gorm.ErrRecordNotFound)
}

func TestStoresTransactionRollsBack(t *testing.T) {
	stores := NewStores(testutil.OpenTestDB(t))
	ctx := context.Background()

	h := model.Habit{UserID: 1, Name: "coffee", StartDate: "2026-01-01"}
	require.NoError(t, stores.Habits.Create(ctx, &h))

	boom := errors.New("boom")
	err := stores.Transaction(ctx, func(tx *Stores) error {
		require.NoError(t, tx.Entries.Create(ctx, &model.HabitEntry{HabitID: h.ID, CompletedAt: time.Now()}))
		require.NoError(t, tx.Habits.Touch(ctx, h.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := stores.Entries.ListByHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	got, err := stores.Habits.FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Version, got.Version)
}

func TestEntryRepository(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.HabitEntry{
		{HabitID: 1, CompletedAt: day.AddDate(0, 0, 1)},
		{HabitID: 1, CompletedAt: day, IsRelapse: true},
		{HabitID: 2, CompletedAt: day},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	got, err := repo.ListByHabit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsRelapse, "ordered by completed_at")

	all, err := repo.ListForHabits(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.DeleteByIDs(ctx, 1, []uint{entries[0].ID, entries[2].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "entry of another habit is untouched")

	require.NoError(t, repo.Delete(ctx, entries[1].ID))
	assert.ErrorIs(t, repo.Delete(ctx, entries[1].ID), gorm.ErrRecordNotFound)
}

func TestAchievementUniquePerHabitAndType(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	first := model.Achievement{UserID: 1, HabitID: 1, Type: "first_day", Days: 1, AchievedAt: time.Now(), AchievementNumber: 1}
	require.NoError(t, repo.Create(ctx, &first))

	dup := model.Achievement{UserID: 1, HabitID: 1, Type: "first_day", Days: 1, AchievedAt: time.Now(), AchievementNumber: 2}
	err := repo.Create(ctx, &dup)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))

	sameNumber := model.Achievement{UserID: 1, HabitID: 2, Type: "first_day", Days: 1, AchievedAt: time.Now(), AchievementNumber: 1}
	assert.True(t, IsDuplicate(repo.Create(ctx, &sameNumber)))

	ok, err := repo.Exists(ctx, 1, "first_day")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAchievementMarkViewed(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	a := model.Achievement{UserID: 1, HabitID: 1, Type: "first_day", Days: 1, AchievedAt: time.Now(), AchievementNumber: 1}
	require.NoError(t, repo.Create(ctx, &a))

	n, err := repo.MarkViewed(ctx, 2, []uint{a.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.MarkViewed(ctx, 1, []uint{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Viewed)
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.False(t, IsDuplicate(errors.New("boom")))
}

func TestNewDBCreatesSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "lapseless.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, table := range []interface{}{&model.User{}, &model.Habit{}, &model.HabitEntry{}, &model.Achievement{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Achievement{}, "idx_achievement_habit_type"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u@localhost/db"))
	assert.True(t, isPostgres("postgresql://u@localhost/db"))
	assert.False(t, isPostgres("file:lapseless.db?cache=shared"))
}
