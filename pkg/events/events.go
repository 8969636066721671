// Package events defines the lifecycle notifications emitted by the research workflow.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every research lifecycle event.
const Topic = "research.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ResearchLockedEvent   EventType = "research.locked"
	PhaseCompletedEvent   EventType = "research.phase.completed"
	PhaseFailedEvent      EventType = "research.phase.failed"
	ResearchUnlockedEvent EventType = "research.unlocked"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	EntityID   string         `json:"entity_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ResearchLocked is emitted once phase1 holds the lock on an idea.
type ResearchLocked struct {
	BaseEvent

	Topic     string `json:"topic"`
	LockLogID string `json:"lock_log_id"`
}

func (r ResearchLocked) GetType() EventType {
	return ResearchLockedEvent
}

// PhaseCompleted is emitted after a phase finished all of its writes.
type PhaseCompleted struct {
	BaseEvent

	Phase    string        `json:"phase"`
	Summary  string        `json:"summary,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (p PhaseCompleted) GetType() EventType {
	return PhaseCompletedEvent
}

// PhaseFailed is emitted by the failure handler. Recovered is false when the lock could
// not be released and a manual unlock is required.
type PhaseFailed struct {
	BaseEvent

	Phase     string `json:"phase"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Recovered bool   `json:"recovered"`
}

func (p PhaseFailed) GetType() EventType {
	return PhaseFailedEvent
}

// ResearchUnlocked is emitted when a run is reset out of band.
type ResearchUnlocked struct {
	BaseEvent

	RestoredStatus string `json:"restored_status"`
	Reason         string `json:"reason"`
}

func (r ResearchUnlocked) GetType() EventType {
	return ResearchUnlockedEvent
}

func NewBaseEvent(eventType EventType, workflowID, entityID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		EntityID:   entityID,
		Metadata:   make(map[string]any),
	}
}
