package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRecordNotFound indicates a record was not found by the given identifier.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidTable indicates an empty or unknown table identifier.
	ErrInvalidTable = errors.New("invalid table")
)

// RecordError wraps record-related errors with additional context.
type RecordError struct {
	Op       string // Operation being performed (e.g., "Get", "Update", "Delete")
	Table    string // Table identifier
	RecordID string // Record ID if applicable
	Err      error  // Underlying error
}

func (e *RecordError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s operation failed for record %s in %s: %v", e.Op, e.RecordID, e.Table, e.Err)
	}

	return fmt.Sprintf("%s operation failed in %s: %v", e.Op, e.Table, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for record errors.
func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRecordError creates a new record error with context.
func NewRecordError(op, table, recordID string, err error) *RecordError {
	return &RecordError{
		Op:       op,
		Table:    table,
		RecordID: recordID,
		Err:      err,
	}
}

// IsRecordNotFound checks if an error indicates a record was not found.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
