package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
)

func TestMigrateUpAndDown(t *testing.T) {
	db, err := Initialize(config.DatabaseConfig{Path: MemoryPath, MaxConnections: 1})
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := MigrationVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "second run is a no-op")

	version, dirty, err = MigrationVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name`))
	assert.Equal(t, []string{"capacity_metrics", "categories", "refresh_history", "reports", "schedules", "semantic_models"}, tables)

	require.NoError(t, MigrateDown(db, 0))
	tables = nil
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%'`))
	assert.Empty(t, tables)
}

func TestInitialize_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "monitor.db")
	db, err := Initialize(config.DatabaseConfig{Path: path, MaxConnections: 1})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	repos := NewRepositories(db)
	all, err := repos.Category.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
