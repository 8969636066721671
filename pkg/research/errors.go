package research

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/remote"
)

// Standard research error types.
var (
	// ErrAlreadyLocked indicates the idea is held by another run. Nothing was written.
	ErrAlreadyLocked = errors.New("idea already locked")

	// ErrPrecondition indicates a phase cannot start.
	ErrPrecondition = errors.New("precondition failed")

	// ErrMissingInput indicates a required record or artifact is absent. It is also a precondition failure.
	ErrMissingInput = errors.New("missing input")

	// ErrValidation indicates the UIF candidate was rejected by the gate.
	ErrValidation = errors.New("uif validation failed")

	// ErrPartialWrite indicates some hooks could not be written.
	ErrPartialWrite = errors.New("partial write")
)

// AlreadyLockedError is the idempotent refusal returned by phase1.
type AlreadyLockedError struct {
	EntityID string
	LockedAt string
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("idea %s is already locked since %s; run unlock to reset it", e.EntityID, e.LockedAt)
}

func (e *AlreadyLockedError) Is(target error) bool {
	return target == ErrAlreadyLocked
}

// PreconditionError reports why a phase refused to start.
type PreconditionError struct {
	Phase  Phase
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Phase, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Phase, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// MissingInputError names the record or artifact that could not be found or read.
type MissingInputError struct {
	Input string
	Err   error
}

func (e *MissingInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing input %s: %v", e.Input, e.Err)
	}

	return "missing input " + e.Input
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput || target == ErrPrecondition
}

// ValidationError carries every violation the gate found.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "UIF validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PartialWriteError reports hooks that failed while the rest were kept.
type PartialWriteError struct {
	Written int
	Errs    []error
}

func (e *PartialWriteError) Error() string {
	messages := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("%d of %d hooks failed to write: %s",
		len(e.Errs), e.Written+len(e.Errs), strings.Join(messages, "; "))
}

func (e *PartialWriteError) Unwrap() []error {
	return e.Errs
}

func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

// PhaseError is the terminal error returned by Controller.Run. Recovered reports whether the
// failure handler released the lock and recorded the failure.
type PhaseError struct {
	Phase      Phase
	WorkflowID string
	EntityID   string
	Recovered  bool
	Err        error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Kind classifies an error for events, exit codes and HTTP statuses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyLocked):
		return "already_locked"
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPartialWrite):
		return "partial_write"
	case remote.IsRemote(err):
		return "remote"
	default:
		return "internal"
	}
}

// IsAlreadyLocked checks if an error is the idempotent lock refusal.
func IsAlreadyLocked(err error) bool {
	return errors.Is(err, ErrAlreadyLocked)
}
