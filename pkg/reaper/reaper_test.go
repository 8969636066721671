package reaper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/artifact/file"
	"github.com/metaarchitect/research-engine/pkg/mocks"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/metaarchitect/research-engine/pkg/persistence/memory"
	"github.com/metaarchitect/research-engine/pkg/research"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lockedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func lockedController(t *testing.T) (*research.Controller, *memory.Persistence) {
	t.Helper()

	records := memory.NewPersistence()
	records.Seed("ideas", "recIdea1", map[string]any{
		"Topic":         "Question architecture",
		"Status":        "selected",
		"content_brief": `{"angle": "developers"}`,
	})
	records.Seed("brand", "recBrand", map[string]any{"main_guidelines": "Be direct"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	controller := research.NewController(research.DefaultConfig(), records, file.NewStore(t.TempDir()),
		&mocks.MockQueryClient{}, logger, research.WithClock(func() time.Time { return lockedAt }))

	_, err := controller.Run(t.Context(), research.Request{Phase: research.Phase1})
	require.NoError(t, err)

	return controller, records
}

func newReaper(t *testing.T, controller Controller, now time.Time) *Reaper {
	t.Helper()

	r, err := New(controller, 2*time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r.now = func() time.Time { return now }

	return r
}

func TestReaper_Sweep(t *testing.T) {
	controller, records := lockedController(t)

	reaped, err := newReaper(t, controller, lockedAt.Add(time.Hour)).Sweep(t.Context())
	require.NoError(t, err)
	assert.False(t, reaped)

	_, err = controller.CurrentRun(t.Context())
	require.NoError(t, err)

	reaped, err = newReaper(t, controller, lockedAt.Add(3*time.Hour)).Sweep(t.Context())
	require.NoError(t, err)
	assert.True(t, reaped)

	idea, err := records.Get(t.Context(), "ideas", "recIdea1")
	require.NoError(t, err)
	assert.Equal(t, "selected", idea.Fields["Status"])
	assert.NotContains(t, idea.Fields, "research_started_at")

	_, err = controller.CurrentRun(t.Context())
	assert.True(t, artifact.IsNotFound(err))

	reaped, err = newReaper(t, controller, lockedAt.Add(3*time.Hour)).Sweep(t.Context())
	require.NoError(t, err)
	assert.False(t, reaped)
}

type stubController struct {
	run    *models.WorkflowRun
	err    error
	called bool
}

func (s *stubController) CurrentRun(context.Context) (*models.WorkflowRun, error) {
	return s.run, s.err
}

func (s *stubController) Run(context.Context, research.Request) (*research.Outcome, error) {
	s.called = true

	return &research.Outcome{}, nil
}

func TestReaper_SweepEdgeCases(t *testing.T) {
	stub := &stubController{err: errors.New("redis down")}

	_, err := newReaper(t, stub, lockedAt).Sweep(t.Context())
	assert.ErrorContains(t, err, "redis down")

	stub = &stubController{run: &models.WorkflowRun{WorkflowID: "wf-1"}}

	reaped, err := newReaper(t, stub, lockedAt).Sweep(t.Context())
	require.NoError(t, err)
	assert.False(t, reaped)
	assert.False(t, stub.called)
}

func TestReaper_Start(t *testing.T) {
	r := newReaper(t, &stubController{}, lockedAt)

	assert.Error(t, r.Start(t.Context(), "not a schedule"))

	require.NoError(t, r.Start(t.Context(), "*/5 * * * *"))
	r.Stop()
}

func TestNew_RejectsNonPositiveMaxAge(t *testing.T) {
	_, err := New(&stubController{}, 0, slog.Default())
	assert.Error(t, err)
}
