package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lapseless/internal/model"
)

// HabitRepository handles CRUD for habits. Soft-deleted habits are invisible
// to every read.
type HabitRepository struct {
	db *gorm.DB
}

func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(ctx context.Context, habit *model.Habit) error {
	if err := r.db.WithContext(ctx).Create(habit).Error; err != nil {
		return fmt.Errorf("create habit: %w", err)
	}
	return nil
}

func (r *HabitRepository) FindByID(ctx context.Context, id uint) (*model.Habit, error) {
	var habit model.Habit
	if err := r.db.WithContext(ctx).First(&habit, id).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListActive returns every habit that is not deleted.
func (r *HabitRepository) ListActive(ctx context.Context) ([]model.Habit, error) {
	var habits []model.Habit
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID uint) ([]model.Habit, error) {
	var habits []model.Habit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

// ErrStaleHabit means the habit changed after the caller read it.
var ErrStaleHabit = errors.New("habit changed since it was read")

// UpdateStreaks writes both streak columns if the habit is still at version.
// It returns ErrStaleHabit when another writer got there first.
func (r *HabitRepository) UpdateStreaks(ctx context.Context, habitID uint, version int64, current, longest int) error {
	res := r.db.WithContext(ctx).Model(&model.Habit{}).
		Where("id = ? AND version = ?", habitID, version).
		Updates(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("update streaks: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missing(ctx, habitID)
	}
	return nil
}

// Touch bumps the version of a habit whose entries changed.
func (r *HabitRepository) Touch(ctx context.Context, habitID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Habit{}).Where("id = ?", habitID).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return fmt.Errorf("touch habit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("touch habit %d: %w", habitID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *HabitRepository) missing(ctx context.Context, habitID uint) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Habit{}).Where("id = ?", habitID).Count(&n).Error; err != nil {
		return fmt.Errorf("update streaks: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update streaks for habit %d: %w", habitID, gorm.ErrRecordNotFound)
	}
	return fmt.Errorf("update streaks for habit %d: %w", habitID, ErrStaleHabit)
}

// Delete soft-deletes a habit owned by userID.
func (r *HabitRepository) Delete(ctx context.Context, userID, habitID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, habitID).Delete(&model.Habit{})
	if res.Error != nil {
		return fmt.Errorf("delete habit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete habit %d: %w", habitID, gorm.ErrRecordNotFound)
	}
	return nil
}
