package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"lapseless/internal/config"
	"lapseless/internal/model"
	"lapseless/internal/repository"
	"lapseless/internal/service"
	"lapseless/internal/streak"
)

type userStore interface {
	GetOrCreate(ctx context.Context, name string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

// Context carries the wired services to every command.
type Context struct {
	Config       config.Config
	Out          io.Writer
	Clock        service.Clock
	Users        userStore
	Habits       *service.HabitService
	Entries      *service.EntryService
	Streaks      *service.StreakService
	Achievements *service.AchievementService
	Summary      *service.SummaryService
	Reconciler   *service.Reconciler
}

// NewContext wires repositories and services on top of db.
func NewContext(cfg config.Config, db *gorm.DB, out io.Writer) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := service.Clock{Now: time.Now, Location: loc}

	stores := repository.NewStores(db)
	habitRepo, entryRepo, achievementRepo := stores.Habits, stores.Entries, stores.Achievements

	issuer := service.NewAchievementService(achievementRepo)
	streakSvc := service.NewStreakService(habitRepo, entryRepo, achievementRepo, issuer, clock)
	habitSvc := service.NewHabitService(habitRepo, streakSvc, clock)

	return &Context{
		Config:       cfg,
		Out:          out,
		Clock:        clock,
		Users:        stores.Users,
		Habits:       habitSvc,
		Entries:      service.NewEntryService(habitSvc, entryRepo, stores, clock),
		Streaks:      streakSvc,
		Achievements: issuer,
		Summary:      service.NewSummaryService(habitRepo, entryRepo, achievementRepo),
		Reconciler:   service.NewReconciler(habitRepo, entryRepo, achievementRepo, issuer, clock, cfg.Reconcile.Workers),
	}, nil
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// user resolves an existing user by name.
func (c *Context) user(ctx context.Context, name string) (*model.User, error) {
	u, err := c.Users.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("user %q not found, create it with `lapseless user add %s`", name, name)
	}
	return u, nil
}

// entryTime turns an optional YYYY-MM-DD into an instant: now for empty
// input, otherwise noon of that day in the configured location.
func (c *Context) entryTime(raw string) (time.Time, error) {
	now := c.Clock.Current()
	if strings.TrimSpace(raw) == "" {
		return now, nil
	}
	d, err := streak.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: use YYYY-MM-DD", service.ErrInvalidDate)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, now.Location()), nil
}

func (c *Context) printOutcome(out *service.Outcome) {
	h := out.Habit
	c.printf("#%d %s: current %d, longest %d\n", h.ID, h.Name, h.CurrentStreak, h.LongestStreak)
	for _, a := range out.Issued {
		c.printf("  achievement %d unlocked: %s\n", a.AchievementNumber, streak.LabelFor(a.Type, a.Days))
	}
}

// CLI is the command grammar parsed by kong.
type CLI struct {
	Config string `help:"Config file path (YAML)." type:"path" env:"LAPSELESS_CONFIG"`

	Serve     ServeCmd     `cmd:"" help:"Run the scheduled streak reconciliation until interrupted."`
	Reconcile ReconcileCmd `cmd:"" help:"Recompute every habit once and exit."`
	User      struct {
		Add  UserAddCmd  `cmd:"" help:"Create a user."`
		List UserListCmd `cmd:"" help:"List users."`
	} `cmd:"" help:"Manage users."`
	Habit struct {
		Add     HabitAddCmd     `cmd:"" help:"Start tracking a habit."`
		List    HabitListCmd    `cmd:"" help:"Show habits and streaks."`
		Refresh HabitRefreshCmd `cmd:"" help:"Recompute one habit now."`
		Delete  HabitDeleteCmd  `cmd:"" help:"Stop tracking a habit."`
	} `cmd:"" help:"Manage habits."`
	Entry struct {
		Add    EntryAddCmd    `cmd:"" help:"Log a success or relapse."`
		Toggle EntryToggleCmd `cmd:"" help:"Toggle the completion mark of a day."`
		Remove EntryRemoveCmd `cmd:"" help:"Delete an entry."`
		List   EntryListCmd   `cmd:"" help:"List entries of a habit."`
	} `cmd:"" help:"Manage habit entries."`
	Achievements struct {
		List AchievementsListCmd `cmd:"" help:"List achievements." default:"withargs"`
		View AchievementsViewCmd `cmd:"" help:"Acknowledge achievements."`
	} `cmd:"" help:"Achievements earned by a user."`
}
