// Package artifact stores the named documents handed between research phases.
package artifact

import (
	"context"
	"errors"
	"strings"
)

// Name identifies one phase-scoped document.
type Name string

const (
	Context Name = "context"
	Queries Name = "queries"
	Results Name = "results"
	UIF     Name = "uif"
	Hooks   Name = "hooks"
)

// All lists every artifact a run can produce, in phase order.
var All = []Name{Context, Queries, Results, UIF, Hooks}

var (
	// ErrNotFound indicates the artifact has not been written.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidName indicates a name that cannot be stored safely.
	ErrInvalidName = errors.New("invalid artifact name")
)

// Store persists JSON documents by name. Put replaces the document atomically so a reader
// sees either the previous or the new version, never a partial one.
type Store interface {
	Put(ctx context.Context, name Name, v any) error
	Get(ctx context.Context, name Name, v any) error
	Exists(ctx context.Context, name Name) (bool, error)
	Delete(ctx context.Context, name Name) error
	Close(ctx context.Context) error
}

// ValidateName rejects empty names and names that could escape the store's namespace.
func ValidateName(name Name) error {
	value := string(name)

	if strings.TrimSpace(value) == "" {
		return ErrInvalidName
	}

	if strings.Contains(value, "..") || strings.ContainsAny(value, `/\:`) {
		return ErrInvalidName
	}

	return nil
}

// IsNotFound checks if an error indicates a missing artifact.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
