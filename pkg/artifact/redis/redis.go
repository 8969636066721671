// Package redis stores artifacts in Redis so phases can run on different hosts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	redis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces artifact keys.
const DefaultPrefix = "research:artifact:"

// Store keeps each artifact as a JSON string value under prefix+name.
type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewStore connects to the Redis server at url (redis://[:password@]host:port/db).
func NewStore(ctx context.Context, url, prefix string, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return NewStoreWithClient(client, prefix, logger), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client redis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Store{
		client: client,
		prefix: prefix,
		logger: logger.With("module", "artifact_redis"),
	}
}

// Put replaces the artifact with a single SET.
func (s *Store) Put(ctx context.Context, name artifact.Name, v any) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", name, err)
	}

	err = s.client.Set(ctx, key, data, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}

	s.logger.DebugContext(ctx, "Artifact stored", "name", name, "bytes", len(data))

	return nil
}

func (s *Store) Get(ctx context.Context, name artifact.Name, v any) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%s: %w", name, artifact.ErrNotFound)
		}

		return fmt.Errorf("failed to read artifact %s: %w", name, err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal artifact %s: %w", name, err)
	}

	return nil
}

func (s *Store) Exists(ctx context.Context, name artifact.Name) (bool, error) {
	key, err := s.key(name)
	if err != nil {
		return false, err
	}

	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check artifact %s: %w", name, err)
	}

	return count > 0, nil
}

func (s *Store) Delete(ctx context.Context, name artifact.Name) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	err = s.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", name, err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}

func (s *Store) key(name artifact.Name) (string, error) {
	err := artifact.ValidateName(name)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, err)
	}

	return s.prefix + string(name), nil
}
