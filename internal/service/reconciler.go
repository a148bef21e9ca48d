package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lapseless/internal/model"
	"lapseless/internal/repository"
	"lapseless/internal/streak"
)

// RunState is the phase of a reconciliation run.
type RunState int32

const (
	StateIdle RunState = iota
	StateFetching
	StateComputing
	StatePersisting
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateComputing:
		return "computing"
	case StatePersisting:
		return "persisting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// HabitFailure is a habit whose update could not be persisted.
type HabitFailure struct {
	HabitID uint
	Err     error
}

// RunReport summarises one reconciliation run.
type RunReport struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	HabitsSeen         int
	StreakUpdates      int
	AchievementsIssued int
	Malformed          int
	Failures           []HabitFailure
	// Habits holds the habit list re-read after the run.
	Habits []model.Habit
}

// Writes is the number of rows written during the run.
func (r RunReport) Writes() int {
	return r.StreakUpdates + r.AchievementsIssued
}

// Reconciler recomputes every active habit from its full history.
//
// Users are processed concurrently up to the worker limit; the habits of one
// user are processed one after another so achievement numbering never races
// within a run. A failure on one habit is logged and the run goes on.
type Reconciler struct {
	habitRepo    HabitStore
	entryRepo    EntryStore
	achievements AchievementStore
	issuer       *AchievementService
	clock        Clock
	workers      int
	state        atomic.Int32
	// single re-reads one habit whose version moved during the run.
	single       *StreakService
}

func NewReconciler(habitRepo HabitStore, entryRepo EntryStore, achievements AchievementStore, issuer *AchievementService, clock Clock, workers int) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	return &Reconciler{
		habitRepo:    habitRepo,
		entryRepo:    entryRepo,
		achievements: achievements,
		issuer:       issuer,
		clock:        clock,
		workers:      workers,
		single:       NewStreakService(habitRepo, entryRepo, achievements, issuer, clock),
	}
}

// State reports the current phase.
func (r *Reconciler) State() RunState {
	return RunState(r.state.Load())
}

func (r *Reconciler) setState(s RunState) {
	r.state.Store(int32(s))
}

// Run performs one reconciliation. It returns ErrRunInProgress when another
// run has not finished. Cancelling ctx stops the run between habits; every
// habit handled before that point is already durable.
func (r *Reconciler) Run(ctx context.Context) (RunReport, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateFetching)) {
		return RunReport{}, ErrRunInProgress
	}
	defer r.setState(StateIdle)

	report := RunReport{RunID: uuid.NewString(), StartedAt: r.clock.Current()}
	log := slog.With("run_id", report.RunID)
	log.Info("reconciliation started")

	habits, err := r.habitRepo.ListActive(ctx)
	if err != nil {
		return r.fail(log, report, fmt.Errorf("fetch habits: %w", err))
	}
	ids := make([]uint, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	entries, err := r.entryRepo.ListForHabits(ctx, ids)
	if err != nil {
		return r.fail(log, report, fmt.Errorf("fetch entries: %w", err))
	}
	achievements, err := r.achievements.ListForHabits(ctx, ids)
	if err != nil {
		return r.fail(log, report, fmt.Errorf("fetch achievements: %w", err))
	}

	r.setState(StateComputing)
	now := r.clock.Current()
	entriesByHabit := make(map[uint][]model.HabitEntry, len(habits))
	for _, e := range entries {
		entriesByHabit[e.HabitID] = append(entriesByHabit[e.HabitID], e)
	}
	issuedByHabit := make(map[uint][]model.Achievement, len(habits))
	for _, a := range achievements {
		issuedByHabit[a.HabitID] = append(issuedByHabit[a.HabitID], a)
	}

	results := make([]streak.Result, len(habits))
	byUser := make(map[uint][]int)
	for i, h := range habits {
		results[i] = streak.Evaluate(streak.Input{
			Habit:   h,
			Entries: entriesByHabit[h.ID],
			Issued:  issuedByHabit[h.ID],
			Today:   now,
		})
		if results[i].StartDateErr != nil || len(results[i].SkippedEntries) > 0 {
			report.Malformed++
			logMalformed(log, results[i])
		}
		byUser[h.UserID] = append(byUser[h.UserID], i)
	}
	report.HabitsSeen = len(habits)

	r.setState(StatePersisting)
	users := make([]uint, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.workers)
	for _, userID := range users {
		g.Go(func() error {
			for _, i := range byUser[userID] {
				if err := ctx.Err(); err != nil {
					return err
				}
				habit, res := habits[i], results[i]
				if !res.Changed && len(res.Pending) == 0 {
					continue
				}
				updated, issued, err := applyResult(ctx, r.habitRepo, r.issuer, habit, res, now)
				if errors.Is(err, repository.ErrStaleHabit) {
					log.Info("habit changed during run, re-reading", "habit_id", habit.ID)
					var out *Outcome
					if out, err = r.single.Refresh(ctx, habit.ID); err == nil {
						updated, issued = out.Updated, out.Issued
					}
				}

				mu.Lock()
				if updated {
					report.StreakUpdates++
				}
				report.AchievementsIssued += len(issued)
				if err != nil {
					report.Failures = append(report.Failures, HabitFailure{HabitID: habit.ID, Err: err})
				}
				mu.Unlock()

				if err != nil {
					log.Error("habit reconciliation failed", "habit_id", habit.ID, "error", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		report.FinishedAt = r.clock.Current()
		log.Warn("reconciliation aborted", "error", err, "streak_updates", report.StreakUpdates, "achievements", report.AchievementsIssued)
		return report, err
	}

	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].HabitID < report.Failures[j].HabitID })

	fresh, err := r.habitRepo.ListActive(ctx)
	if err != nil {
		log.Warn("re-read habits after run", "error", err)
	} else {
		report.Habits = fresh
	}

	report.FinishedAt = r.clock.Current()
	log.Info("reconciliation finished",
		"habits", report.HabitsSeen,
		"streak_updates", report.StreakUpdates,
		"achievements", report.AchievementsIssued,
		"failures", len(report.Failures),
		"malformed", report.Malformed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (r *Reconciler) fail(log *slog.Logger, report RunReport, err error) (RunReport, error) {
	r.setState(StateFailed)
	report.FinishedAt = r.clock.Current()
	log.Error("reconciliation failed", "error", err)
	return report, err
}
