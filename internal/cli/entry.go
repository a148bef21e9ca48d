package cli

import (
	"context"

	"lapseless/internal/streak"
)

type EntryAddCmd struct {
	User    string `short:"u" required:"" help:"Owner name."`
	Habit   uint   `arg:"" help:"Habit id."`
	Date    string `help:"Day of the entry (YYYY-MM-DD). Defaults to today."`
	Relapse bool   `help:"Log a relapse instead of a success."`
}

func (c *EntryAddCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	at, err := app.entryTime(c.Date)
	if err != nil {
		return err
	}
	out, err := app.Entries.AddEntry(ctx, user, c.Habit, at, c.Relapse)
	if err != nil {
		return err
	}
	app.printOutcome(out)
	return nil
}

type EntryToggleCmd struct {
	User  string `short:"u" required:"" help:"Owner name."`
	Habit uint   `arg:"" help:"Habit id."`
	Date  string `help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *EntryToggleCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	at, err := app.entryTime(c.Date)
	if err != nil {
		return err
	}
	added, out, err := app.Entries.ToggleCompletion(ctx, user, c.Habit, at)
	if err != nil {
		return err
	}
	if added {
		app.printf("marked %s as done\n", streak.DateKey(at))
	} else {
		app.printf("cleared %s\n", streak.DateKey(at))
	}
	app.printOutcome(out)
	return nil
}

type EntryRemoveCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
	ID   uint   `arg:"" help:"Entry id."`
}

func (c *EntryRemoveCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	out, err := app.Entries.RemoveEntry(ctx, user, c.ID)
	if err != nil {
		return err
	}
	app.printOutcome(out)
	return nil
}

type EntryListCmd struct {
	User  string `short:"u" required:"" help:"Owner name."`
	Habit uint   `arg:"" help:"Habit id."`
}

func (c *EntryListCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	entries, err := app.Entries.ListEntries(ctx, user, c.Habit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		kind := "done"
		if e.IsRelapse {
			kind = "relapse"
		}
		app.printf("%d\t%s\t%s\n", e.ID, streak.DateKey(streak.EntryDate(e.CompletedAt)), kind)
	}
	return nil
}
