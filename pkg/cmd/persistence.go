package cmd

import (
	"context"
	"log/slog"

	"github.com/metaarchitect/research-engine/pkg/config"
	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/metaarchitect/research-engine/pkg/persistence/airtable"
	"github.com/metaarchitect/research-engine/pkg/persistence/memory"
	"github.com/metaarchitect/research-engine/pkg/persistence/postgresql"
)

// NewPersistence opens the record store selected by the records URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, cfg config.Config) (persistence.Persistence, error) {
	backend, err := cfg.RecordsBackend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMemory:
		logger.WarnContext(ctx, "Using the in-memory record store, nothing will be persisted")

		return memory.NewPersistence(), nil
	case config.BackendPostgres:
		store, err := postgresql.NewPersistence(ctx, logger, cfg.Records.URL)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		client, err := airtable.NewClient(airtable.Options{
			BaseURL: cfg.Records.Airtable.BaseURL,
			BaseID:  cfg.Records.Airtable.BaseID,
			Token:   cfg.Records.Airtable.Token,
			Timeout: cfg.Records.Airtable.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}

		return client, nil
	}
}
