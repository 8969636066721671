package research

import (
	"context"
	"errors"
	"time"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/events"
	"github.com/metaarchitect/research-engine/pkg/models"
)

// fail is the uniform failure handler. For every error except the idempotent lock refusal it
// releases the lock of the run this invocation resolved, marks the idea failed unless the UIF
// was already committed, and appends an error log. The context artifact is only removed when
// both writes succeeded, so a manual unlock remains possible otherwise.
func (c *Controller) fail(ctx context.Context, inv *invocation, cause error) error {
	phaseErr := &PhaseError{Phase: inv.phase, Err: cause}

	if inv.run != nil {
		phaseErr.WorkflowID = inv.run.WorkflowID
		phaseErr.EntityID = inv.run.EntityID
	}

	logger := c.logger.With("phase", inv.phase, "workflow_id", phaseErr.WorkflowID, "entity_id", phaseErr.EntityID)

	if IsAlreadyLocked(cause) {
		logger.InfoContext(ctx, "Phase refused, idea already locked", "error", cause)

		return phaseErr
	}

	logger.ErrorContext(ctx, "Phase failed", "error", cause, "kind", Kind(cause))

	if inv.run == nil {
		return phaseErr
	}

	recovered := c.recoverRun(ctx, inv, cause)
	phaseErr.Recovered = recovered

	c.publish(ctx, inv.run.EntityID, events.PhaseFailed{
		BaseEvent: events.NewBaseEvent(events.PhaseFailedEvent, inv.run.WorkflowID, inv.run.EntityID),
		Phase:     string(inv.phase),
		Kind:      Kind(cause),
		Error:     cause.Error(),
		Recovered: recovered,
	})

	return phaseErr
}

func (c *Controller) recoverRun(ctx context.Context, inv *invocation, cause error) bool {
	run := inv.run
	logger := c.logger.With("phase", inv.phase, "workflow_id", run.WorkflowID, "entity_id", run.EntityID)

	var errs []error

	if inv.locked {
		fields := map[string]any{models.FieldResearchStartedAt: nil}
		switch {
		case inv.committed || run.Phase.Committed():
		case inv.phase == Unlock:
			// A failed unlock still finishes what it was doing.
			fields[models.FieldStatus] = string(restoredStatus(run))
		default:
			fields[models.FieldStatus] = string(models.IdeaStatusResearchFailed)
		}

		err := c.updateIdea(ctx, run.EntityID, fields)
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := c.writeLog(ctx, run, logLine{
		step:    models.StepError,
		stage:   string(inv.phase),
		summary: "Error: " + cause.Error(),
		status:  models.LogStatusError,
	})
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		logger.ErrorContext(ctx, "Failure recovery incomplete, run unlock manually", "error", errors.Join(errs...))

		return false
	}

	if inv.locked {
		err = c.artifacts.Delete(ctx, artifact.Context)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to delete context artifact", "error", err)

			return false
		}
	}

	logger.InfoContext(ctx, "Lock released after failure")

	return true
}

func phaseCompleted(outcome *Outcome, duration time.Duration) events.PhaseCompleted {
	summary := ""

	switch {
	case outcome.Results != nil:
		summary = "queries answered"
	case outcome.Angles != nil:
		summary = "uif committed"
	case outcome.Hooks != nil:
		summary = "hooks written"
	case outcome.Phase == Unlock:
		summary = "lock cleared"
	case outcome.Locked != nil:
		summary = "idea locked"
	}

	return events.PhaseCompleted{
		BaseEvent: events.NewBaseEvent(events.PhaseCompletedEvent, outcome.Run.WorkflowID, outcome.Run.EntityID),
		Phase:     string(outcome.Phase),
		Summary:   summary,
		Duration:  duration,
	}
}
