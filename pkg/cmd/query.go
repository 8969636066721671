package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metaarchitect/research-engine/pkg/config"
	"github.com/metaarchitect/research-engine/pkg/query"
	"github.com/metaarchitect/research-engine/pkg/query/perplexity"
)

// ErrQueryUnconfigured is returned by Ask when no query service API key was configured.
var ErrQueryUnconfigured = errors.New("query service is not configured: set PERPLEXITY_API_KEY")

// NewQueryClient creates the Perplexity client. Without an API key it returns a client whose
// every Ask fails, unless required is set, in which case the missing key is an error.
func NewQueryClient(logger *slog.Logger, cfg config.QueryConfig, required bool) (query.Client, error) {
	if cfg.APIKey == "" {
		if required {
			return nil, ErrQueryUnconfigured
		}

		return unconfigured{}, nil
	}

	client, err := perplexity.NewClient(perplexity.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	return client, nil
}

type unconfigured struct{}

func (unconfigured) Ask(context.Context, string) (query.Answer, error) {
	return query.Answer{}, ErrQueryUnconfigured
}
