// Package reaper releases research locks that were left behind by a run that never finished.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/robfig/cron/v3"
)

// Controller is the part of the research controller the reaper drives.
type Controller interface {
	CurrentRun(ctx context.Context) (*models.WorkflowRun, error)
	Run(ctx context.Context, req research.Request) (*research.Outcome, error)
}

type Reaper struct {
	controller Controller
	maxAge     time.Duration
	now        func() time.Time
	cron       *cron.Cron
	logger     *slog.Logger
}

// New creates a reaper that unlocks runs locked for longer than maxAge.
func New(controller Controller, maxAge time.Duration, logger *slog.Logger) (*Reaper, error) {
	if maxAge <= 0 {
		return nil, errors.New("reaper max age must be positive")
	}

	return &Reaper{
		controller: controller,
		maxAge:     maxAge,
		now:        time.Now,
		logger:     logger.With("module", "reaper", "max_age", maxAge),
	}, nil
}

// Sweep unlocks the open run when its lock is older than the max age. It reports whether a
// run was unlocked.
func (r *Reaper) Sweep(ctx context.Context) (bool, error) {
	run, err := r.controller.CurrentRun(ctx)
	if err != nil {
		if artifact.IsNotFound(err) {
			r.logger.DebugContext(ctx, "No open research run")

			return false, nil
		}

		return false, fmt.Errorf("failed to read open run: %w", err)
	}

	if run.LockedAt.IsZero() {
		r.logger.WarnContext(ctx, "Open run has no lock time, leaving it", "workflow_id", run.WorkflowID)

		return false, nil
	}

	age := r.now().Sub(run.LockedAt)
	if age < r.maxAge {
		return false, nil
	}

	r.logger.InfoContext(ctx, "Reaping stale lock", "workflow_id", run.WorkflowID, "entity_id", run.EntityID, "age", age)

	_, err = r.controller.Run(ctx, research.Request{
		Phase:  research.Unlock,
		Reason: fmt.Sprintf("Stale lock reaped after %s", age.Truncate(time.Second)),
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// Start sweeps on the standard cron schedule until Stop is called. Overlapping sweeps are
// skipped.
func (r *Reaper) Start(ctx context.Context, schedule string) error {
	_, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := r.cron.AddFunc(schedule, func() {
		_, err := r.Sweep(ctx)
		if err != nil {
			r.logger.ErrorContext(ctx, "Sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	r.logger.InfoContext(ctx, "Reaper scheduled", "schedule", schedule, "entry", id)
	r.cron.Start()

	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.cron == nil {
		return
	}

	<-r.cron.Stop().Done()
}
