package models

import "time"

// LogStatus is the outcome recorded on an audit log entry.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
)

// Step names written to the logs table.
const (
	StepLock           = "lock"
	StepUIFCompiler    = "uif_compiler"
	StepHookExtraction = "hook_extraction"
	StepComplete       = "complete"
	StepError          = "error"
	StepUnlock         = "unlock"
)

// ModelVersionNone marks log entries not produced by a model.
const ModelVersionNone = "n/a"

// LogEntry is one append-only audit record. Entries are never updated or deleted.
type LogEntry struct {
	WorkflowID    string
	EntityID      string
	StepName      string
	Stage         string
	Timestamp     time.Time
	OutputSummary string
	ModelVersion  string
	Status        LogStatus
}

// Fields renders the entry as record fields.
func (e LogEntry) Fields() map[string]any {
	return map[string]any{
		"workflow_id":    e.WorkflowID,
		"entity_id":      e.EntityID,
		"step_name":      e.StepName,
		"stage":          e.Stage,
		"timestamp":      e.Timestamp.UTC().Format(time.RFC3339),
		"output_summary": e.OutputSummary,
		"model_version":  e.ModelVersion,
		"status":         string(e.Status),
	}
}
