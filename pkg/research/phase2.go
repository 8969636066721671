package research

import (
	"context"
	"fmt"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/models"
)

// summaryPreview is how much of an answer is copied into its log entry.
const summaryPreview = 200

// phase2 asks every query in order. Queries run strictly one after another because the
// position of each log id in the results encodes which query it belongs to.
func (c *Controller) phase2(ctx context.Context, inv *invocation) (*models.ResultsDocument, error) {
	run, err := c.loadRun(ctx, inv)
	if err != nil {
		return nil, err
	}

	err = c.requirePhase(inv, models.PhaseLocked)
	if err != nil {
		return nil, err
	}

	queries, err := c.producer.Queries(ctx, run)
	if err != nil {
		return nil, err
	}

	if len(queries) != models.QueryCount {
		return nil, &PreconditionError{
			Phase:  Phase2,
			Reason: fmt.Sprintf("queries must hold exactly %d items, got %d", models.QueryCount, len(queries)),
		}
	}

	results := &models.ResultsDocument{
		WorkflowID: run.WorkflowID,
		Results:    make([]models.QueryResult, 0, len(queries)),
		LogIDs:     make([]string, 0, len(queries)),
	}

	for i, q := range queries {
		n := i + 1

		c.logger.InfoContext(ctx, "Asking query", "workflow_id", run.WorkflowID, "query", n)

		answer, err := c.queries.Ask(ctx, q.Query)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", n, err)
		}

		logID, err := c.writeLog(ctx, run, logLine{
			step:    queryStep(n),
			stage:   "researching",
			summary: fmt.Sprintf("Q%d: %s... Citations: %d", n, preview(answer.Content, summaryPreview), len(answer.Citations)),
			model:   c.cfg.QueryModel,
		})
		if err != nil {
			return nil, err
		}

		results.Results = append(results.Results, models.QueryResult{
			Query:     q.Query,
			Intent:    q.Intent,
			Content:   answer.Content,
			Citations: answer.Citations,
			LogID:     logID,
		})
		results.LogIDs = append(results.LogIDs, logID)
	}

	err = c.artifacts.Put(ctx, artifact.Results, results)
	if err != nil {
		return nil, fmt.Errorf("failed to save results artifact: %w", err)
	}

	run.Phase = models.PhaseQueriesIssued

	err = c.saveRun(ctx, run)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func queryStep(n int) string {
	return fmt.Sprintf("perplexity_q%d", n)
}

// preview returns the first n characters of s.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
