package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"lapseless/internal/service"
)

type ReconcileCmd struct{}

func (c *ReconcileCmd) Run(app *Context, ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, app.Config.Reconcile.Timeout)
	defer cancel()

	report, err := app.Reconciler.Run(runCtx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	app.printf("run %s: %d habits, %d streak updates, %d achievements, %d failures\n",
		report.RunID, report.HabitsSeen, report.StreakUpdates, report.AchievementsIssued, len(report.Failures))
	for _, f := range report.Failures {
		app.printf("  habit %d: %v\n", f.HabitID, f.Err)
	}
	return nil
}

type ServeCmd struct{}

// Run schedules the reconciliation job and blocks until ctx is cancelled.
func (c *ServeCmd) Run(app *Context, ctx context.Context) error {
	rc := app.Config.Reconcile
	job := func() {
		jobCtx, cancel := context.WithTimeout(ctx, rc.Timeout)
		defer cancel()
		if _, err := app.Reconciler.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scheduled reconciliation", "error", err)
		}
	}

	scheduler := service.NewSchedulerService(app.Clock.Location)
	var (
		id  cron.EntryID
		err error
	)
	if rc.Interval > 0 {
		id, err = scheduler.ScheduleInterval(rc.Interval, job)
	} else {
		id, err = scheduler.ScheduleDaily(rc.At, job)
	}
	if err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}

	if rc.OnStart {
		job()
	}

	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("scheduler started", "next_run", scheduler.Next(id))

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}
