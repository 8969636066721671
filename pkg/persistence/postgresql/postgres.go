// Package postgresql provides a PostgreSQL record store. Every logical table is kept in
// one JSONB-backed relation so the store can stand in for the hosted tabular backend.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/persistence/sqlbase"
)

// Persistence implements the record store for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

type rowScanner interface {
	Scan(dest ...any) error
}

// NewPersistence creates a new PostgreSQL record store and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:     database,
		logger: logger.With("module", "postgresql"),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) List(ctx context.Context, table string, opts persistence.ListOptions) ([]*persistence.Record, error) {
	if table == "" {
		return nil, persistence.NewRecordError("List", table, "", persistence.ErrInvalidTable)
	}

	err := opts.Filter.Validate()
	if err != nil {
		return nil, persistence.NewRecordError("List", table, "", err)
	}

	query, args := listQuery(table, opts)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*persistence.Record, 0)

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

func (p *Persistence) Get(ctx context.Context, table, id string) (*persistence.Record, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, created_at, fields
		FROM records
		WHERE tbl = $1 AND id = $2
	`, table, id)

	record, err := scanRecord(row)
	if err != nil {
		return nil, recordError("Get", table, id, err)
	}

	return record, nil
}

func (p *Persistence) Create(ctx context.Context, table string, fields map[string]any) (*persistence.Record, error) {
	if table == "" {
		return nil, persistence.NewRecordError("Create", table, "", persistence.ErrInvalidTable)
	}

	set, _ := split(fields)

	payload, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}

	row := p.db.QueryRowContext(ctx, `
		INSERT INTO records (tbl, id, fields, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING id, created_at, fields
	`, table, uuid.NewString(), string(payload), time.Now().UTC())

	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	return record, nil
}

// Update merges fields into the stored document; nil values remove their keys.
func (p *Persistence) Update(ctx context.Context, table, id string, fields map[string]any) (*persistence.Record, error) {
	set, cleared := split(fields)

	payload, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}

	row := p.db.QueryRowContext(ctx, `
		UPDATE records
		SET fields = (fields || $3::jsonb) - $4::text[]
		WHERE tbl = $1 AND id = $2
		RETURNING id, created_at, fields
	`, table, id, string(payload), pq.Array(cleared))

	record, err := scanRecord(row)
	if err != nil {
		return nil, recordError("Update", table, id, err)
	}

	return record, nil
}

func (p *Persistence) Delete(ctx context.Context, table, id string) (*persistence.Record, error) {
	var deleted string

	err := p.db.QueryRowContext(ctx, `
		DELETE FROM records
		WHERE tbl = $1 AND id = $2
		RETURNING id
	`, table, id).Scan(&deleted)
	if err != nil {
		return nil, recordError("Delete", table, id, err)
	}

	return &persistence.Record{ID: deleted}, nil
}

func scanRecord(scanner rowScanner) (*persistence.Record, error) {
	var (
		record persistence.Record
		raw    []byte
	)

	err := scanner.Scan(&record.ID, &record.CreatedTime, &raw)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(raw, &record.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}

	return &record, nil
}

func recordError(op, table, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.NewRecordError(op, table, id, persistence.ErrRecordNotFound)
	}

	return persistence.NewRecordError(op, table, id, err)
}

func split(fields map[string]any) (map[string]any, []string) {
	set := make(map[string]any, len(fields))
	cleared := make([]string, 0)

	for k, v := range fields {
		if v == nil {
			cleared = append(cleared, k)

			continue
		}

		set[k] = v
	}

	return set, cleared
}
