package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/metaarchitect/research-engine/pkg/artifact"
	"github.com/metaarchitect/research-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	assert.Equal(t, "/tmp/research", NewStore("/tmp/research").Root())
	assert.Equal(t, "/tmp/research", NewStore("file:///tmp/research").Root())
}

func TestStore_PutGetDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := t.Context()

	run := models.WorkflowRun{
		WorkflowID: "wf-1",
		EntityID:   "rec1",
		Phase:      models.PhaseLocked,
		Topic:      "Agent failure modes",
	}

	exists, err := store.Exists(ctx, artifact.Context)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, artifact.Context, run))

	exists, err = store.Exists(ctx, artifact.Context)
	require.NoError(t, err)
	assert.True(t, exists)

	var loaded models.WorkflowRun
	require.NoError(t, store.Get(ctx, artifact.Context, &loaded))
	assert.Equal(t, run.WorkflowID, loaded.WorkflowID)
	assert.Equal(t, models.PhaseLocked, loaded.Phase)

	require.NoError(t, store.Delete(ctx, artifact.Context))
	require.NoError(t, store.Delete(ctx, artifact.Context))

	err = store.Get(ctx, artifact.Context, &loaded)
	assert.True(t, artifact.IsNotFound(err))
}

func TestStore_PutReplacesWithoutLeftovers(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, artifact.Queries, map[string]any{"queries": []string{"a"}}))
	require.NoError(t, store.Put(ctx, artifact.Queries, map[string]any{"queries": []string{"b"}}))

	var doc map[string][]string
	require.NoError(t, store.Get(ctx, artifact.Queries, &doc))
	assert.Equal(t, []string{"b"}, doc["queries"])

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "queries.json", entries[0].Name())
}

func TestStore_RejectsUnsafeNames(t *testing.T) {
	store := NewStore(t.TempDir())

	err := store.Put(t.Context(), "../escape", map[string]any{})
	assert.ErrorIs(t, err, artifact.ErrInvalidName)

	_, err = store.Exists(t.Context(), "a/b")
	assert.ErrorIs(t, err, artifact.ErrInvalidName)
}

func TestStore_GetMalformed(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "uif.json"), []byte("{not json"), 0600))

	var doc map[string]any
	err := store.Get(t.Context(), artifact.UIF, &doc)
	require.Error(t, err)
	assert.False(t, artifact.IsNotFound(err))
}
