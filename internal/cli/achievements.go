package cli

import (
	"context"

	"lapseless/internal/streak"
)

type AchievementsListCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
}

func (c *AchievementsListCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	list, err := app.Achievements.ListByUser(ctx, user)
	if err != nil {
		return err
	}
	for _, a := range list {
		mark := "*"
		if a.Viewed {
			mark = " "
		}
		app.printf("%s %d\t%s\thabit %d\t%s\t(id %d)\n", mark, a.AchievementNumber, streak.LabelFor(a.Type, a.Days), a.HabitID, a.AchievedAt.Format("2006-01-02"), a.ID)
	}
	return nil
}

type AchievementsViewCmd struct {
	User string `short:"u" required:"" help:"Owner name."`
	IDs  []uint `arg:"" help:"Achievement ids to acknowledge."`
}

func (c *AchievementsViewCmd) Run(app *Context, ctx context.Context) error {
	user, err := app.user(ctx, c.User)
	if err != nil {
		return err
	}
	n, err := app.Achievements.MarkViewed(ctx, user, c.IDs)
	if err != nil {
		return err
	}
	app.printf("%d achievement(s) marked as viewed\n", n)
	return nil
}
