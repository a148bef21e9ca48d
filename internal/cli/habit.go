package cli

import (
	"context"

	"lapseless/internal/service"
)

type HabitAddCmd struct {
	User  string `short:"u" required:"" help:"Owner name."`
	Name  string `arg:"" help:"What you want to quit."`
	Start string `help:"First day that counts (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitAddCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	out, err := app.Habits.CreateHabit(ctx, user, service.HabitInput{Name: c.Name, StartDate: c.Start})
	if err != nil {
		return err
	}
	app.printOutcome(out)
	return nil
}

type HabitListCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
}

func (c *HabitListCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	text, err := app.Summary.UserSummary(ctx, *user, app.Clock.Current())
	if err != nil {
		return err
	}
	app.printf("%s\n", text)
	return nil
}

type HabitRefreshCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
	ID   uint   `arg:"" help:"Habit id."`
}

func (c *HabitRefreshCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	if _, err := app.Habits.GetHabit(ctx, user, c.ID); err != nil {
		return err
	}
	out, err := app.Streaks.Refresh(ctx, c.ID)
	if err != nil {
		return err
	}
	app.printOutcome(out)
	return nil
}

type HabitDeleteCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
	ID   uint   `arg:"" help:"Habit id."`
}

func (c *HabitDeleteCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	if err := app.Habits.DeleteHabit(ctx, user, c.ID); err != nil {
		return err
	}
	app.printf("habit %d deleted\n", c.ID)
	return nil
}
