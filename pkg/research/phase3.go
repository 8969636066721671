package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/uif"
)

// phase3 gates the compiled UIF and commits it. The idea update is the single commit point:
// before it nothing of the candidate is visible, after it the UIF is final.
func (c *Controller) phase3(ctx context.Context, inv *invocation) ([]models.AngleDigest, error) {
	run, err := c.loadRun(ctx, inv)
	if err != nil {
		return nil, err
	}

	err = c.requirePhase(inv, models.PhaseQueriesIssued)
	if err != nil {
		return nil, err
	}

	var results models.ResultsDocument

	err = c.artifacts.Get(ctx, artifact.Results, &results)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, &MissingInputError{Input: "results artifact", Err: err}
		}

		return nil, &PreconditionError{Phase: Phase3, Reason: "cannot read results artifact", Err: err}
	}

	if results.WorkflowID != run.WorkflowID {
		return nil, &PreconditionError{
			Phase:  Phase3,
			Reason: fmt.Sprintf("results belong to run %q, not %q", results.WorkflowID, run.WorkflowID),
		}
	}

	candidate, err := c.producer.UIF(ctx, run, &results)
	if err != nil {
		return nil, err
	}

	// Provenance comes from this run's query logs, so it is stamped before gating and the
	// meta.provenance_log rule only rejects candidates when no log ids exist.
	blob, err := json.Marshal(StampProvenance(candidate, results.LogIDs))
	if err != nil {
		return nil, &PreconditionError{Phase: Phase3, Reason: "uif candidate is not JSON", Err: err}
	}

	var doc map[string]any

	err = json.Unmarshal(blob, &doc)
	if err != nil || doc == nil {
		return nil, &PreconditionError{Phase: Phase3, Reason: "uif candidate is not a JSON object", Err: err}
	}

	verdict := uif.Validate(doc, uif.WithProfile(c.cfg.Profile), uif.WithPillars(c.cfg.Pillars))
	if !verdict.Valid {
		return nil, &ValidationError{Errors: verdict.Errors}
	}

	err = c.updateIdea(ctx, run.EntityID, map[string]any{
		models.FieldIntelligenceFile:    string(blob),
		models.FieldResearchCompletedAt: c.timestamp(),
		models.FieldStatus:              string(models.IdeaStatusReady),
	})
	if err != nil {
		return nil, err
	}

	inv.committed = true
	counts := uif.Summary(doc)

	_, err = c.writeLog(ctx, run, logLine{
		step:    models.StepUIFCompiler,
		stage:   "writing",
		summary: fmt.Sprintf("UIF written: %d angles, %d facts", counts.Angles, counts.Facts),
		model:   c.cfg.CompilerModel,
	})
	if err != nil {
		return nil, err
	}

	err = c.artifacts.Put(ctx, artifact.UIF, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to save uif artifact: %w", err)
	}

	run.Phase = models.PhaseUIFValidated

	err = c.saveRun(ctx, run)
	if err != nil {
		return nil, err
	}

	return uif.Digest(doc), nil
}

// StampProvenance returns a copy of candidate whose meta.provenance_log holds the query log
// ids in query order. The candidate is returned unchanged when it has no meta object or
// there are no log ids.
func StampProvenance(candidate map[string]any, logIDs []string) map[string]any {
	meta, ok := candidate["meta"].(map[string]any)
	if !ok || len(logIDs) == 0 {
		return candidate
	}

	stampedMeta := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		stampedMeta[k] = v
	}

	stampedMeta["provenance_log"] = strings.Join(logIDs, ",")

	stamped := make(map[string]any, len(candidate))
	for k, v := range candidate {
		stamped[k] = v
	}

	stamped["meta"] = stampedMeta

	return stamped
}
