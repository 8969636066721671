// Package remote defines the error reported by clients of external services.
package remote

import (
	"errors"
	"fmt"
)

// ErrRemote is matched by every *Error.
var ErrRemote = errors.New("remote service error")

// Error is a non-success response from the record store or the query service.
type Error struct {
	Service    string // "airtable", "postgresql", "perplexity", ...
	Op         string // Operation being performed (e.g., "List", "Create", "Ask")
	StatusCode int    // HTTP status when the failure came from a response
	Detail     string // Service-reported detail
	Err        error  // Underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s [%s]: status %d: %s", e.Service, e.Op, e.StatusCode, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("%s [%s]: %s", e.Service, e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s [%s]: %v", e.Service, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: status %d", e.Service, e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrRemote
}

// New creates a remote error carrying a service-reported detail.
func New(service, op string, statusCode int, detail string) *Error {
	return &Error{
		Service:    service,
		Op:         op,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// Wrap creates a remote error around a transport failure.
func Wrap(service, op string, err error) *Error {
	return &Error{
		Service: service,
		Op:      op,
		Err:     err,
	}
}

// IsRemote checks if an error came from an external service.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote)
}
