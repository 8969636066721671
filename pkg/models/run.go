package models

import "time"

// Phase is the position of a workflow run in the research state machine.
type Phase string

const (
	PhaseLocked        Phase = "locked"
	PhaseQueriesIssued Phase = "queries_issued"
	PhaseUIFValidated  Phase = "uif_validated"
	PhaseClosed        Phase = "closed"
)

// Committed reports whether the run has already made its UIF visible.
func (p Phase) Committed() bool {
	return p == PhaseUIFValidated || p == PhaseClosed
}

// WorkflowRun is the context artifact written by phase1 and read by every later phase.
// It only lives in the artifact store.
type WorkflowRun struct {
	WorkflowID     string         `json:"workflow_id"`
	EntityID       string         `json:"entity_id"`
	Phase          Phase          `json:"phase"`
	Topic          string         `json:"topic,omitempty"`
	Intent         string         `json:"intent,omitempty"`
	Brief          map[string]any `json:"brief"`
	PreviousStatus IdeaStatus     `json:"previous_status,omitempty"`
	LockedAt       time.Time      `json:"locked_at"`
}
