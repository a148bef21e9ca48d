package cli

import "context"

type UserAddCmd struct {
	Name string `arg:"" help:"User name."`
}

func (c *UserAddCmd) Run(app *Context, ctx context.Context) error {
	u, err := app.Users.GetOrCreate(ctx, c.Name)
	if err != nil {
		return err
	}
	app.printf("user %d: %s\n", u.ID, u.Name)
	return nil
}

type UserListCmd struct{}

func (c *UserListCmd) Run(app *Context, ctx context.Context) error {
	users, err := app.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		app.printf("%d\t%s\n", u.ID, u.Name)
	}
	return nil
}
