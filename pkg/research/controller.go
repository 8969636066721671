// Package research implements the phase-sequenced research workflow: an advisory lock on an
// idea, three query/compile/extract hand-offs through the artifact store, one validated commit
// of the UIF, and a uniform failure handler that never leaves an idea locked without an audit
// entry.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/eventbus"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/otelhelper"
	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/query"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const timeLayout = time.RFC3339

// Controller runs research phases against the record store, the query service and the
// artifact store.
type Controller struct {
	cfg       Config
	records   persistence.Persistence
	artifacts artifact.Store
	queries   query.Client
	producer  Producer
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option customises a Controller.
type Option func(*Controller)

// WithProducer replaces the artifact-backed producer.
func WithProducer(producer Producer) Option {
	return func(c *Controller) {
		c.producer = producer
	}
}

// WithPublisher emits lifecycle events on publisher.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(c *Controller) {
		c.publisher = publisher
	}
}

// WithTracer records a span per phase.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides workflow id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// NewController creates a controller.
func NewController(
	cfg Config,
	records persistence.Persistence,
	artifacts artifact.Store,
	queries query.Client,
	logger *slog.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		cfg:       cfg,
		records:   records,
		artifacts: artifacts,
		queries:   queries,
		producer:  NewArtifactProducer(artifacts),
		publisher: eventbus.Discard{},
		tracer:    otelhelper.NoopTracer(),
		logger:    logger.With("module", "research"),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Selector picks the idea phase1 locks. An empty EntityID selects the oldest idea marked
// "selected" that is not locked.
type Selector struct {
	EntityID string
}

// Request is one controller invocation.
type Request struct {
	Phase    Phase
	Selector Selector // phase1 only
	Reason   string   // unlock only
}

// HookTotals summarises phase4.
type HookTotals struct {
	Written int `json:"written"`
	Failed  int `json:"failed"`
}

// Outcome is what a successful phase hands to the next actor.
type Outcome struct {
	Phase          Phase                   `json:"phase"`
	Run            *models.WorkflowRun     `json:"run,omitempty"`
	Locked         *Phase1Output           `json:"locked,omitempty"`
	Results        *models.ResultsDocument `json:"results,omitempty"`
	Angles         []models.AngleDigest    `json:"angles,omitempty"`
	Hooks          *HookTotals             `json:"hooks,omitempty"`
	RestoredStatus models.IdeaStatus       `json:"restored_status,omitempty"`
}

// invocation tracks what one Run call resolved, so the failure handler only ever recovers
// the run this invocation touched.
type invocation struct {
	phase     Phase
	run       *models.WorkflowRun
	locked    bool
	committed bool
}

// Run executes one phase behind the uniform failure handler. Every error is returned as a
// *PhaseError.
func (c *Controller) Run(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "research."+string(req.Phase),
		attribute.String(otelhelper.PhaseKey, string(req.Phase)),
	)
	defer span.End()

	started := c.now()
	inv := &invocation{phase: req.Phase}

	outcome, err := c.dispatch(ctx, inv, req)
	if inv.run != nil {
		span.SetAttributes(otelhelper.RunAttributes(inv.run.WorkflowID, inv.run.EntityID)...)
	}

	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, Kind(err)))

		return nil, c.fail(ctx, inv, err)
	}

	c.logger.InfoContext(ctx, "Phase completed",
		"phase", req.Phase,
		"workflow_id", outcome.Run.WorkflowID,
		"entity_id", outcome.Run.EntityID,
		"duration", c.now().Sub(started),
	)

	c.publish(ctx, outcome.Run.EntityID, phaseCompleted(outcome, c.now().Sub(started)))

	return outcome, nil
}

func (c *Controller) dispatch(ctx context.Context, inv *invocation, req Request) (*Outcome, error) {
	switch req.Phase {
	case Phase1:
		out, err := c.phase1(ctx, inv, req.Selector)
		if err != nil {
			return nil, err
		}

		return &Outcome{Phase: Phase1, Run: out.Run, Locked: out}, nil
	case Phase2:
		results, err := c.phase2(ctx, inv)
		if err != nil {
			return nil, err
		}

		return &Outcome{Phase: Phase2, Run: inv.run, Results: results}, nil
	case Phase3:
		angles, err := c.phase3(ctx, inv)
		if err != nil {
			return nil, err
		}

		return &Outcome{Phase: Phase3, Run: inv.run, Angles: angles}, nil
	case Phase4:
		totals, err := c.phase4(ctx, inv)
		if err != nil {
			return nil, err
		}

		return &Outcome{Phase: Phase4, Run: inv.run, Hooks: totals}, nil
	case Unlock:
		status, err := c.unlock(ctx, inv, req.Reason)
		if err != nil {
			return nil, err
		}

		return &Outcome{Phase: Unlock, Run: inv.run, RestoredStatus: status}, nil
	default:
		return nil, &PreconditionError{Phase: req.Phase, Reason: "unknown phase"}
	}
}

// CurrentRun returns the open run, or an error matching artifact.ErrNotFound when none is open.
func (c *Controller) CurrentRun(ctx context.Context) (*models.WorkflowRun, error) {
	var run models.WorkflowRun

	err := c.artifacts.Get(ctx, artifact.Context, &run)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// loadRun resolves the open run for phases 2-4 and unlock.
func (c *Controller) loadRun(ctx context.Context, inv *invocation) (*models.WorkflowRun, error) {
	run, err := c.CurrentRun(ctx)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, &PreconditionError{Phase: inv.phase, Reason: "no open research run; run phase1 first", Err: err}
		}

		return nil, &PreconditionError{Phase: inv.phase, Reason: "cannot read context artifact", Err: err}
	}

	if run.WorkflowID == "" || run.EntityID == "" {
		return nil, &PreconditionError{Phase: inv.phase, Reason: "context artifact has no workflow_id or entity_id"}
	}

	inv.run = run
	inv.locked = true

	return run, nil
}

func (c *Controller) requirePhase(inv *invocation, expected models.Phase) error {
	if inv.run.Phase != expected {
		return &PreconditionError{
			Phase:  inv.phase,
			Reason: fmt.Sprintf("run %s is in phase %q, expected %q", inv.run.WorkflowID, inv.run.Phase, expected),
		}
	}

	return nil
}

func (c *Controller) saveRun(ctx context.Context, run *models.WorkflowRun) error {
	err := c.artifacts.Put(ctx, artifact.Context, run)
	if err != nil {
		return fmt.Errorf("failed to save context artifact: %w", err)
	}

	return nil
}

type logLine struct {
	step    string
	stage   string
	summary string
	model   string
	status  models.LogStatus
}

// writeLog appends one audit entry and returns its record id.
func (c *Controller) writeLog(ctx context.Context, run *models.WorkflowRun, line logLine) (string, error) {
	model := line.model
	if model == "" {
		model = models.ModelVersionNone
	}

	status := line.status
	if status == "" {
		status = models.LogStatusSuccess
	}

	entry := models.LogEntry{
		WorkflowID:    run.WorkflowID,
		EntityID:      run.EntityID,
		StepName:      line.step,
		Stage:         line.stage,
		Timestamp:     c.now(),
		OutputSummary: line.summary,
		ModelVersion:  model,
		Status:        status,
	}

	record, err := c.records.Create(ctx, c.cfg.Tables.Logs, entry.Fields())
	if err != nil {
		return "", fmt.Errorf("failed to write %s log: %w", line.step, err)
	}

	return record.ID, nil
}

func (c *Controller) updateIdea(ctx context.Context, entityID string, fields map[string]any) error {
	_, err := c.records.Update(ctx, c.cfg.Tables.Ideas, entityID, fields)
	if err != nil {
		return fmt.Errorf("failed to update idea %s: %w", entityID, err)
	}

	return nil
}

func (c *Controller) publish(ctx context.Context, key string, event eventbus.Event) {
	err := c.publisher.Publish(ctx, key, event)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (c *Controller) timestamp() string {
	return c.now().UTC().Format(timeLayout)
}
