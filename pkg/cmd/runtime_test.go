package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/metaarchitect/research-engine/pkg/artifact/file"
	"github.com/metaarchitect/research-engine/pkg/config"
	"github.com/metaarchitect/research-engine/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Records.URL = "memory://"
	cfg.Artifacts.URL = t.TempDir()

	return cfg
}

func TestNewRuntime(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t)
	cfg.EventBus.Provider = "gochannel"

	rt, err := NewRuntime(t.Context(), logger, cfg, false)
	require.NoError(t, err)

	assert.IsType(t, &memory.Persistence{}, rt.Records)
	assert.IsType(t, &file.Store{}, rt.Artifacts)
	assert.NotNil(t, rt.Bus)
	assert.NotNil(t, rt.Controller)

	require.NoError(t, rt.Close(t.Context()))
}

func TestNewRuntime_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewRuntime(t.Context(), logger, testConfig(t), true)
	require.ErrorIs(t, err, ErrQueryUnconfigured)

	cfg := testConfig(t)
	cfg.Records.URL = ""

	_, err = NewRuntime(t.Context(), logger, cfg, false)
	assert.ErrorContains(t, err, "airtable base id and token are required")
}

func TestNewQueryClient_Unconfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := NewQueryClient(logger, config.QueryConfig{Model: "sonar-pro"}, false)
	require.NoError(t, err)

	_, err = client.Ask(t.Context(), "anything")
	assert.ErrorIs(t, err, ErrQueryUnconfigured)
}

func TestNewEventBus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bus, err := NewEventBus(logger, config.EventBusConfig{Provider: "none"}, "research")
	require.NoError(t, err)
	assert.Nil(t, bus)

	_, err = NewEventBus(logger, config.EventBusConfig{Provider: "kafka"}, "research")
	require.Error(t, err)

	_, err = NewEventBus(logger, config.EventBusConfig{Provider: "rabbitmq"}, "research")
	assert.ErrorContains(t, err, "unsupported event bus provider")
}

func TestNewArtifactStore_Directory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	store, err := NewArtifactStore(t.Context(), logger, config.ArtifactsConfig{URL: "file://" + dir})
	require.NoError(t, err)

	fileStore, ok := store.(*file.Store)
	require.True(t, ok)
	assert.Equal(t, dir, fileStore.Root())
}
