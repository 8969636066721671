// Package memory provides an in-process record store for local dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/metaarchitect/research-engine/pkg/persistence"
)

// Persistence keeps records in memory, ordered by insertion.
type Persistence struct {
	mu     sync.RWMutex
	tables map[string][]*persistence.Record
	seq    int
	now    func() time.Time
}

// NewPersistence creates an empty in-memory record store.
func NewPersistence() *Persistence {
	return &Persistence{
		tables: make(map[string][]*persistence.Record),
		now:    time.Now,
	}
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Seed inserts a record with a caller-chosen id.
func (p *Persistence) Seed(table, id string, fields map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tables[table] = append(p.tables[table], &persistence.Record{
		ID:          id,
		CreatedTime: p.now(),
		Fields:      maps.Clone(fields),
	})
}

func (p *Persistence) List(_ context.Context, table string, opts persistence.ListOptions) ([]*persistence.Record, error) {
	if table == "" {
		return nil, persistence.NewRecordError("List", table, "", persistence.ErrInvalidTable)
	}

	err := opts.Filter.Validate()
	if err != nil {
		return nil, persistence.NewRecordError("List", table, "", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var records []*persistence.Record

	for _, record := range p.tables[table] {
		if opts.Filter.Match(record.Fields) {
			records = append(records, clone(record))
		}
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(records, func(i, j int) bool {
			return less(records[i], records[j], opts.Sort)
		})
	}

	if opts.MaxRecords > 0 && len(records) > opts.MaxRecords {
		records = records[:opts.MaxRecords]
	}

	return records, nil
}

func (p *Persistence) Get(_ context.Context, table, id string) (*persistence.Record, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, record := p.find(table, id)
	if record == nil {
		return nil, persistence.NewRecordError("Get", table, id, persistence.ErrRecordNotFound)
	}

	return clone(record), nil
}

func (p *Persistence) Create(_ context.Context, table string, fields map[string]any) (*persistence.Record, error) {
	if table == "" {
		return nil, persistence.NewRecordError("Create", table, "", persistence.ErrInvalidTable)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	record := &persistence.Record{
		ID:          fmt.Sprintf("rec%06d", p.seq),
		CreatedTime: p.now(),
		Fields:      dropNil(fields),
	}
	p.tables[table] = append(p.tables[table], record)

	return clone(record), nil
}

func (p *Persistence) Update(_ context.Context, table, id string, fields map[string]any) (*persistence.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, record := p.find(table, id)
	if record == nil {
		return nil, persistence.NewRecordError("Update", table, id, persistence.ErrRecordNotFound)
	}

	if record.Fields == nil {
		record.Fields = make(map[string]any)
	}

	for k, v := range fields {
		if v == nil {
			delete(record.Fields, k)

			continue
		}

		record.Fields[k] = v
	}

	return clone(record), nil
}

func (p *Persistence) Delete(_ context.Context, table, id string) (*persistence.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, record := p.find(table, id)
	if record == nil {
		return nil, persistence.NewRecordError("Delete", table, id, persistence.ErrRecordNotFound)
	}

	p.tables[table] = append(p.tables[table][:idx], p.tables[table][idx+1:]...)

	return &persistence.Record{ID: record.ID}, nil
}

func (p *Persistence) find(table, id string) (int, *persistence.Record) {
	for i, record := range p.tables[table] {
		if record.ID == id {
			return i, record
		}
	}

	return -1, nil
}

func less(a, b *persistence.Record, sorts []persistence.Sort) bool {
	for _, s := range sorts {
		av := persistence.FieldString(a.Fields[s.Field])
		bv := persistence.FieldString(b.Fields[s.Field])

		cmp := strings.Compare(av, bv)
		if cmp == 0 {
			continue
		}

		if s.Direction == persistence.SortDesc {
			return cmp > 0
		}

		return cmp < 0
	}

	return false
}

func clone(record *persistence.Record) *persistence.Record {
	return &persistence.Record{
		ID:          record.ID,
		CreatedTime: record.CreatedTime,
		Fields:      maps.Clone(record.Fields),
	}
}

func dropNil(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))

	for k, v := range fields {
		if v != nil {
			out[k] = v
		}
	}

	return out
}
