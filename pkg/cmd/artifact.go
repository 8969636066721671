package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/artifact/file"
	"github.com/metaarchitect/research-engine/pkg/artifact/redis"
	"github.com/metaarchitect/research-engine/pkg/config"
)

// NewArtifactStore opens the artifact store. redis:// and rediss:// URLs use Redis, anything
// else is a directory.
func NewArtifactStore(ctx context.Context, logger *slog.Logger, cfg config.ArtifactsConfig) (artifact.Store, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}

		store, err := redis.NewStore(ctx, cfg.URL, prefix, logger)
		if err != nil {
			return nil, err
		}

		return store, nil
	}

	return file.NewStore(cfg.URL), nil
}
