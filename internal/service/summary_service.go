package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lapseless/internal/model"
	"lapseless/internal/streak"
)

// SummaryService builds human-readable progress summaries.
type SummaryService struct {
	habitRepo    HabitStore
	entryRepo    EntryStore
	achievements AchievementStore
}

func NewSummaryService(habitRepo HabitStore, entryRepo EntryStore, achievements AchievementStore) *SummaryService {
	return &SummaryService{habitRepo: habitRepo, entryRepo: entryRepo, achievements: achievements}
}

// UserSummary lists the user's habits with their persisted streaks, whether
// today is checked in, and the achievements not yet viewed.
func (s *SummaryService) UserSummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	habits, err := s.habitRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	ids := make([]uint, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	entries, err := s.entryRepo.ListForHabits(ctx, ids)
	if err != nil {
		return "", err
	}
	achievements, err := s.achievements.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	names := make(map[uint]string, len(habits))
	for _, h := range habits {
		names[h.ID] = h.Name
	}

	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CurrentStreak != habits[j].CurrentStreak {
			return habits[i].CurrentStreak > habits[j].CurrentStreak
		}
		return habits[i].ID < habits[j].ID
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Progress for %s, %s\n\n", user.Name, now.Format("2006-01-02")))

	builder.WriteString("Habits\n")
	if len(habits) == 0 {
		builder.WriteString("  none yet\n")
	}
	for _, h := range habits {
		builder.WriteString(formatHabit(h, streak.IsCompletedOn(entries, h.ID, now)))
	}

	var unseen []model.Achievement
	for _, a := range achievements {
		if !a.Viewed {
			unseen = append(unseen, a)
		}
	}
	builder.WriteString("\nNew achievements\n")
	if len(unseen) == 0 {
		builder.WriteString("  none\n")
	}
	for _, a := range unseen {
		builder.WriteString(formatAchievement(a, names))
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatHabit(h model.Habit, completedToday bool) string {
	mark := " "
	if completedToday {
		mark = "x"
	}
	return fmt.Sprintf("  [%s] #%d %s: %d %s (best %d), since %s\n",
		mark, h.ID, strings.TrimSpace(h.Name), h.CurrentStreak, plural(h.CurrentStreak, "day", "days"), h.LongestStreak, h.StartDate)
}

func formatAchievement(a model.Achievement, names map[uint]string) string {
	habit := names[a.HabitID]
	if habit == "" {
		habit = fmt.Sprintf("habit %d", a.HabitID)
	}
	return fmt.Sprintf("  %d. %s on %s (%s)\n", a.AchievementNumber, streak.LabelFor(a.Type, a.Days), habit, a.AchievedAt.Format("2006-01-02"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
