package research

import (
	"context"
	"fmt"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/events"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/persistence"
)

// Phase1Output is the context handed to the query author.
type Phase1Output struct {
	Run       *models.WorkflowRun `json:"run"`
	Brand     *models.Brand       `json:"brand"`
	Brief     map[string]any      `json:"brief"`
	LockLogID string              `json:"lock_log_id"`
}

// downstream are the artifacts authored after phase1; stale copies from an earlier run are
// removed before a new run starts.
var downstream = []artifact.Name{artifact.Queries, artifact.Results, artifact.UIF, artifact.Hooks}

func (c *Controller) phase1(ctx context.Context, inv *invocation, sel Selector) (*Phase1Output, error) {
	idea, err := c.selectIdea(ctx, sel)
	if err != nil {
		return nil, err
	}

	if idea.Locked() {
		return nil, &AlreadyLockedError{EntityID: idea.ID, LockedAt: idea.ResearchStartedAt}
	}

	open, err := c.artifacts.Exists(ctx, artifact.Context)
	if err != nil {
		return nil, &PreconditionError{Phase: Phase1, Reason: "cannot read context artifact", Err: err}
	}

	if open {
		return nil, &PreconditionError{Phase: Phase1, Reason: "another research run is open; finish it or run unlock"}
	}

	run := &models.WorkflowRun{
		WorkflowID:     c.newID(),
		EntityID:       idea.ID,
		Phase:          models.PhaseLocked,
		Topic:          idea.Topic,
		Intent:         idea.Intent,
		PreviousStatus: idea.Status,
	}
	inv.run = run

	brand, err := c.loadBrand(ctx)
	if err != nil {
		return nil, err
	}

	brief, err := idea.Brief()
	if err != nil {
		return nil, &MissingInputError{Input: models.FieldContentBrief, Err: err}
	}

	if brief == nil {
		return nil, &MissingInputError{Input: models.FieldContentBrief}
	}

	run.Brief = brief

	// The lock is advisory. Re-reading right before the write narrows the window in which a
	// concurrent phase1 can also see the idea unlocked.
	current, err := c.records.Get(ctx, c.cfg.Tables.Ideas, idea.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read idea %s: %w", idea.ID, err)
	}

	if latest := models.IdeaFromFields(current.ID, current.Fields); latest.Locked() {
		inv.run = nil

		return nil, &AlreadyLockedError{EntityID: latest.ID, LockedAt: latest.ResearchStartedAt}
	}

	run.LockedAt = c.now().UTC()

	err = c.updateIdea(ctx, idea.ID, map[string]any{
		models.FieldResearchStartedAt: run.LockedAt.Format(timeLayout),
		models.FieldStatus:            string(models.IdeaStatusResearching),
	})
	if err != nil {
		return nil, err
	}

	inv.locked = true

	lockLogID, err := c.writeLog(ctx, run, logLine{
		step:    models.StepLock,
		stage:   "locking",
		summary: "Research locked for: " + idea.Topic,
	})
	if err != nil {
		return nil, err
	}

	for _, name := range downstream {
		err := c.artifacts.Delete(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to clear stale %s artifact: %w", name, err)
		}
	}

	err = c.saveRun(ctx, run)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Idea locked", "workflow_id", run.WorkflowID, "entity_id", run.EntityID, "topic", run.Topic)

	c.publish(ctx, run.EntityID, events.ResearchLocked{
		BaseEvent: events.NewBaseEvent(events.ResearchLockedEvent, run.WorkflowID, run.EntityID),
		Topic:     run.Topic,
		LockLogID: lockLogID,
	})

	return &Phase1Output{Run: run, Brand: brand, Brief: brief, LockLogID: lockLogID}, nil
}

func (c *Controller) selectIdea(ctx context.Context, sel Selector) (*models.Idea, error) {
	if sel.EntityID != "" {
		record, err := c.records.Get(ctx, c.cfg.Tables.Ideas, sel.EntityID)
		if err != nil {
			if persistence.IsRecordNotFound(err) {
				return nil, &MissingInputError{Input: "idea " + sel.EntityID, Err: err}
			}

			return nil, fmt.Errorf("failed to load idea %s: %w", sel.EntityID, err)
		}

		return models.IdeaFromFields(record.ID, record.Fields), nil
	}

	records, err := c.records.List(ctx, c.cfg.Tables.Ideas, persistence.ListOptions{
		Filter: persistence.Where(
			persistence.Eq(models.FieldStatus, string(models.IdeaStatusSelected)),
			persistence.IsEmpty(models.FieldResearchStartedAt),
		),
		Sort:       []persistence.Sort{{Field: models.FieldCapturedAt, Direction: persistence.SortAsc}},
		MaxRecords: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list selected ideas: %w", err)
	}

	if len(records) == 0 {
		return nil, &MissingInputError{Input: "idea with Status \"selected\" awaiting research"}
	}

	return models.IdeaFromFields(records[0].ID, records[0].Fields), nil
}

func (c *Controller) loadBrand(ctx context.Context) (*models.Brand, error) {
	opts := persistence.ListOptions{MaxRecords: 1}
	if c.cfg.BrandName != "" {
		opts.Filter = persistence.Where(persistence.Eq("name", c.cfg.BrandName))
	}

	records, err := c.records.List(ctx, c.cfg.Tables.Brand, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}

	if len(records) == 0 {
		return nil, &MissingInputError{Input: "brand record"}
	}

	return models.BrandFromFields(records[0].ID, records[0].Fields), nil
}
