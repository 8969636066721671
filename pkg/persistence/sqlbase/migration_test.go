package sqlbase

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationManager_PendingIsOrdered(t *testing.T) {
	manager := NewMigrationManager(slog.Default(), nil, map[int]string{
		3: "ALTER TABLE c",
		1: "CREATE TABLE a",
		2: "CREATE TABLE b",
		4: "CREATE INDEX d",
	})

	assert.Equal(t, []int{1, 2, 3, 4}, manager.Pending(0))
	assert.Equal(t, []int{3, 4}, manager.Pending(2))
	assert.Empty(t, manager.Pending(4))
	assert.Equal(t, 4, manager.LatestVersion())
}

func TestMigrationManager_NoMigrations(t *testing.T) {
	manager := NewMigrationManager(slog.Default(), nil, nil)

	assert.Empty(t, manager.Pending(0))
	assert.Equal(t, 0, manager.LatestVersion())
}
