package research

import (
	"context"
	"errors"
	"fmt"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/uif"
)

// phase4 writes hook drafts one by one. Hooks are independent records, so a failed hook is
// collected and reported but never rolls back the others.
func (c *Controller) phase4(ctx context.Context, inv *invocation) (*HookTotals, error) {
	run, err := c.loadRun(ctx, inv)
	if err != nil {
		return nil, err
	}

	err = c.requirePhase(inv, models.PhaseUIFValidated)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	err = c.artifacts.Get(ctx, artifact.UIF, &doc)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, &PreconditionError{Phase: Phase4, Reason: "no validated uif artifact", Err: err}
		}

		return nil, &PreconditionError{Phase: Phase4, Reason: "cannot read uif artifact", Err: err}
	}

	angles := uif.Digest(doc)

	drafts, err := c.producer.Hooks(ctx, run, angles)
	if err != nil {
		return nil, err
	}

	intent := run.Intent
	if intent == "" {
		intent = models.DefaultHookIntent
	}

	totals := &HookTotals{}

	var failures []error

	for i, draft := range drafts {
		hook := models.Hook{
			HookText:   draft.HookText,
			HookType:   draft.HookType,
			SourceIdea: run.EntityID,
			AngleName:  draft.AngleName,
			Intent:     intent,
		}

		_, err := c.records.Create(ctx, c.cfg.Tables.Hooks, hook.Fields())
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to write hook", "workflow_id", run.WorkflowID, "hook", i, "error", err)
			failures = append(failures, fmt.Errorf("hook %d: %w", i, err))

			continue
		}

		totals.Written++
	}

	totals.Failed = len(failures)

	status := models.LogStatusSuccess
	if totals.Failed > 0 {
		status = models.LogStatusError
	}

	_, err = c.writeLog(ctx, run, logLine{
		step:  models.StepHookExtraction,
		stage: "hook_extraction",
		summary: fmt.Sprintf("Extracted %d of %d hooks across %d angles and wrote them to the hooks library as candidates.",
			totals.Written, len(drafts), len(angles)),
		model:  c.cfg.HookModel,
		status: status,
	})
	if err != nil {
		return nil, err
	}

	err = c.updateIdea(ctx, run.EntityID, map[string]any{models.FieldResearchStartedAt: nil})
	if err != nil {
		return nil, err
	}

	run.Phase = models.PhaseClosed
	counts := uif.Summary(doc)
	meta, _ := doc["meta"].(map[string]any)

	_, err = c.writeLog(ctx, run, logLine{
		step:  models.StepComplete,
		stage: "complete",
		summary: fmt.Sprintf("Research complete: %s - %d angles, %d facts, %d hooks",
			models.StringField(meta, "topic"), counts.Angles, counts.Facts, totals.Written),
	})
	if err != nil {
		return nil, err
	}

	err = c.artifacts.Delete(ctx, artifact.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to delete context artifact: %w", err)
	}

	if len(failures) > 0 {
		return nil, &PartialWriteError{Written: totals.Written, Errs: failures}
	}

	return totals, nil
}
