// Package persistence provides the record store abstraction used by the research workflow.
package persistence

import (
	"context"
	"time"
)

// Record is one row of an external tabular store. Every field is optionally absent.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// SortDirection orders List results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort orders List results by one field.
type Sort struct {
	Field     string
	Direction SortDirection
}

// ListOptions narrows a List call.
type ListOptions struct {
	Filter     Filter
	Sort       []Sort
	MaxRecords int // 0 means no limit
}

// Persistence is the typed CRUD surface of the record store. Implementations carry no
// business logic. Update merges the given fields into the record and a nil value clears
// the field.
type Persistence interface {
	List(ctx context.Context, table string, opts ListOptions) ([]*Record, error)
	Get(ctx context.Context, table, id string) (*Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (*Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (*Record, error)
	Delete(ctx context.Context, table, id string) (*Record, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
