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

const maxIssueAttempts = 3

// AchievementService records milestone achievements exactly once per habit
// and type, numbering them per user.
type AchievementService struct {
	repo AchievementStore
}

func NewAchievementService(repo AchievementStore) *AchievementService {
	return &AchievementService{repo: repo}
}

// IssuePending records each pending milestone that the habit does not hold
// yet, in the given order. Milestones recorded concurrently by another run
// are skipped silently.
func (s *AchievementService) IssuePending(ctx context.Context, habit model.Habit, pending []streak.Milestone, now time.Time) ([]model.Achievement, error) {
	var issued []model.Achievement
	for _, m := range pending {
		a, err := s.issue(ctx, habit.ID, habit.UserID, m, now)
		if err != nil {
			return issued, err
		}
		if a != nil {
			slog.Info("achievement issued", "habit_id", habit.ID, "user_id", habit.UserID, "type", a.Type, "number", a.AchievementNumber)
			issued = append(issued, *a)
		}
	}
	return issued, nil
}

// issue runs check-count-insert in one transaction. A uniqueness violation
// means a concurrent run got there first: if the (habit, type) row now
// exists it is a no-op, otherwise the number was taken and we retry.
func (s *AchievementService) issue(ctx context.Context, habitID, userID uint, m streak.Milestone, now time.Time) (*model.Achievement, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		var issued *model.Achievement
		err := s.repo.Transaction(ctx, func(tx *repository.AchievementRepository) error {
			existing, err := tx.ListByHabit(ctx, habitID)
			if err != nil {
				return fmt.Errorf("list achievements: %w", err)
			}
			count, err := tx.CountByUser(ctx, userID)
			if err != nil {
				return fmt.Errorf("count achievements: %w", err)
			}
			a := streak.IssueIfNew(habitID, userID, m, existing, count, now)
			if a == nil {
				return nil
			}
			if err := tx.Create(ctx, a); err != nil {
				return err
			}
			issued = a
			return nil
		})
		if err == nil {
			return issued, nil
		}
		if !repository.IsDuplicate(err) {
			return nil, err
		}

		exists, xerr := s.repo.Exists(ctx, habitID, m.Type)
		if xerr != nil {
			return nil, fmt.Errorf("recheck achievement: %w", xerr)
		}
		if exists {
			return nil, nil
		}
		slog.Debug("achievement number taken, retrying", "habit_id", habitID, "type", m.Type, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("issue %s for habit %d: %w", m.Type, habitID, ErrIssueConflict)
}

func (s *AchievementService) ListByUser(ctx context.Context, user *model.User) ([]model.Achievement, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// MarkViewed acknowledges achievements; ids of other users are ignored.
func (s *AchievementService) MarkViewed(ctx context.Context, user *model.User, ids []uint) (int64, error) {
	return s.repo.MarkViewed(ctx, user.ID, ids)
}
