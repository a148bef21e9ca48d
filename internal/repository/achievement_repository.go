package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"lapseless/internal/model"
)

// AchievementRepository reads and inserts achievements. Rows are never
// updated except for the viewed flag.
type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Transaction runs fn with a repository bound to one database transaction.
func (r *AchievementRepository) Transaction(ctx context.Context, fn func(tx *AchievementRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AchievementRepository{db: tx})
	})
}

func (r *AchievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

func (r *AchievementRepository) ListByHabit(ctx context.Context, habitID uint) ([]model.Achievement, error) {
	var out []model.Achievement
	if err := r.db.WithContext(ctx).Where("habit_id = ?", habitID).Order("days ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AchievementRepository) ListForHabits(ctx context.Context, habitIDs []uint) ([]model.Achievement, error) {
	var out []model.Achievement
	if len(habitIDs) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("habit_id IN ?", habitIDs).Order("habit_id ASC, days ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID uint) ([]model.Achievement, error) {
	var out []model.Achievement
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("achievement_number ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AchievementRepository) Exists(ctx context.Context, habitID uint, achievementType string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Achievement{}).
		Where("habit_id = ? AND type = ?", habitID, achievementType).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AchievementRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Achievement{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MarkViewed flags achievements of a user as acknowledged.
func (r *AchievementRepository) MarkViewed(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Achievement{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("viewed", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark viewed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
