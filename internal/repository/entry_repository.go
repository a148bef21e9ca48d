package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"lapseless/internal/model"
)

// EntryRepository handles habit entries.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *model.HabitEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id uint) (*model.HabitEntry, error) {
	var entry model.HabitEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *EntryRepository) ListByHabit(ctx context.Context, habitID uint) ([]model.HabitEntry, error) {
	var entries []model.HabitEntry
	if err := r.db.WithContext(ctx).Where("habit_id = ?", habitID).
		Order("completed_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListForHabits returns the entries of the given habits, oldest first.
func (r *EntryRepository) ListForHabits(ctx context.Context, habitIDs []uint) ([]model.HabitEntry, error) {
	var entries []model.HabitEntry
	if len(habitIDs) == 0 {
		return entries, nil
	}
	if err := r.db.WithContext(ctx).Where("habit_id IN ?", habitIDs).
		Order("completed_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByIDs removes the given entries of one habit.
func (r *EntryRepository) DeleteByIDs(ctx context.Context, habitID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("habit_id = ? AND id IN ?", habitID, ids).Delete(&model.HabitEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.HabitEntry{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete entry %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
