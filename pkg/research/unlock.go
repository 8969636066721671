package research

import (
	"context"
	"fmt"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/events"
	"github.com/metaarchitect/research-engine/pkg/models"
)

// DefaultUnlockReason is logged when no reason is given.
const DefaultUnlockReason = "Lock cleared manually"

// unlock resets the open run out of band. It clears the lock and restores the Status the idea
// had before phase1, except once the UIF is committed: the idea then stays Ready. Without an
// open run there is nothing to reset and nothing is written.
func (c *Controller) unlock(ctx context.Context, inv *invocation, reason string) (models.IdeaStatus, error) {
	run, err := c.loadRun(ctx, inv)
	if err != nil {
		return "", err
	}

	if reason == "" {
		reason = DefaultUnlockReason
	}

	fields := map[string]any{models.FieldResearchStartedAt: nil}

	restored := restoredStatus(run)
	if !run.Phase.Committed() {
		fields[models.FieldStatus] = string(restored)
	}

	err = c.updateIdea(ctx, run.EntityID, fields)
	if err != nil {
		return "", err
	}

	_, err = c.writeLog(ctx, run, logLine{
		step:    models.StepUnlock,
		stage:   "error_recovery",
		summary: reason,
		status:  models.LogStatusError,
	})
	if err != nil {
		return "", err
	}

	err = c.artifacts.Delete(ctx, artifact.Context)
	if err != nil {
		return "", fmt.Errorf("failed to delete context artifact: %w", err)
	}

	c.logger.InfoContext(ctx, "Lock cleared", "workflow_id", run.WorkflowID, "entity_id", run.EntityID, "status", restored)

	c.publish(ctx, run.EntityID, events.ResearchUnlocked{
		BaseEvent:      events.NewBaseEvent(events.ResearchUnlockedEvent, run.WorkflowID, run.EntityID),
		RestoredStatus: string(restored),
		Reason:         reason,
	})

	return restored, nil
}

// restoredStatus is the Status unlock leaves the idea in.
func restoredStatus(run *models.WorkflowRun) models.IdeaStatus {
	if run.Phase.Committed() {
		return models.IdeaStatusReady
	}

	if run.PreviousStatus == "" {
		return models.IdeaStatusProposed
	}

	return run.PreviousStatus
}
