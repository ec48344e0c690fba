package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database/sqlite"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Path: database.MemoryPath, MaxConnections: 1})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func sp(s string) *string { return &s }

func TestCategoryRepository(t *testing.T) {
	repo := sqlite.NewCategoryRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "ws1", types.EnvProd, sp("Finance")))
	require.NoError(t, repo.Upsert(ctx, "ws2", types.EnvDev, nil))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, types.EnvProd, all["ws1"].Env)
	assert.Equal(t, "Finance", all["ws1"].ModuleName())
	assert.Nil(t, all["ws2"].Module)
	assert.NotEmpty(t, all["ws1"].UpdatedAt)

	require.NoError(t, repo.Upsert(ctx, "ws1", types.EnvUAT, nil))
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EnvUAT, all["ws1"].Env)
	assert.Equal(t, "", all["ws1"].ModuleName())
}

func TestSemanticModelRepository_Sync(t *testing.T) {
	repo := sqlite.NewSemanticModelRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Sync(ctx, "ws1", []types.SemanticModel{
		{ModelID: "m1", Name: "Sales"},
		{ModelID: "m2"},
		{Name: "no id"},
	}))

	models, err := repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "Sales", models[0].Name)
	assert.Equal(t, sqlite.UnnamedModel, models[1].Name)
	firstAdded := models[0].AddedAt
	require.NotEmpty(t, firstAdded)

	// m2 disappears, m1 is renamed
	require.NoError(t, repo.Sync(ctx, "ws1", []types.SemanticModel{{ModelID: "m1", Name: "Sales v2"}}))
	models, err = repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "Sales v2", models[0].Name)
	assert.Equal(t, firstAdded, models[0].AddedAt)
	assert.Nil(t, models[0].DeletedAt)
	require.NotNil(t, models[1].DeletedAt)
	deletedAt := *models[1].DeletedAt

	// a second sync keeps the original deletion mark
	require.NoError(t, repo.Sync(ctx, "ws1", []types.SemanticModel{{ModelID: "m1", Name: "Sales v2"}}))
	models, err = repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, deletedAt, *models[1].DeletedAt)

	// reappearing clears the mark
	require.NoError(t, repo.Sync(ctx, "ws1", []types.SemanticModel{{ModelID: "m1"}, {ModelID: "m2", Name: "Back"}}))
	models, err = repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	assert.Nil(t, models[1].DeletedAt)
	assert.Equal(t, "Back", models[1].Name)

	require.NoError(t, repo.Sync(ctx, "ws2", []types.SemanticModel{{ModelID: "x"}}))
	all, err := repo.GetAllByWorkspace(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["ws1"], 2)

	empty, err := repo.GetByWorkspace(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRefreshRepository(t *testing.T) {
	repo := sqlite.NewRefreshRepository(setupTestDB(t))
	ctx := context.Background()

	n, err := repo.Save(ctx, "ws1", "ds1", []types.RefreshRecord{
		{StartTime: "2024-01-01T00:00:00Z", EndTime: sp("2024-01-01T00:05:00Z"), Status: "Completed"},
		{StartTime: "2024-01-02T00:00:00Z", EndTime: nil, Status: "Unknown"},
		{StartTime: "2024-01-03T00:00:00Z", EndTime: sp("garbage"), Status: ""},
		{StartTime: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := repo.Count(ctx, "ws1", "ds1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	byDataset, err := repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	records := byDataset["ds1"]
	require.Len(t, records, 3)
	assert.Equal(t, "2024-01-03T00:00:00Z", records[0].StartTime, "newest first")
	assert.Nil(t, records[0].DurationSeconds)
	assert.Equal(t, "", records[0].Status)
	assert.Nil(t, records[1].DurationSeconds)
	require.NotNil(t, records[2].DurationSeconds)
	assert.Equal(t, 300.0, *records[2].DurationSeconds)

	// replacing by start time does not duplicate
	_, err = repo.Save(ctx, "ws1", "ds1", []types.RefreshRecord{
		{StartTime: "2024-01-02T00:00:00Z", EndTime: sp("2024-01-02T00:01:00Z"), Status: "Completed"},
	})
	require.NoError(t, err)
	byDataset, err = repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, byDataset["ds1"], 3)
	assert.Equal(t, 60.0, *byDataset["ds1"][1].DurationSeconds)

	_, err = repo.Save(ctx, "ws2", "ds9", []types.RefreshRecord{{StartTime: "2024-01-01T00:00:00Z", Status: "Failed"}})
	require.NoError(t, err)
	multi, err := repo.GetByWorkspaces(ctx, []string{"ws1", "ws2", "ws3"})
	require.NoError(t, err)
	assert.Len(t, multi["ws1"]["ds1"], 3)
	assert.Len(t, multi["ws2"]["ds9"], 1)
	assert.NotNil(t, multi["ws3"])
	assert.Empty(t, multi["ws3"])

	none, err := repo.GetByWorkspaces(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCapacityRepository(t *testing.T) {
	repo := sqlite.NewCapacityRepository(setupTestDB(t))
	ctx := context.Background()
	v := func(f float64) *float64 { return &f }

	n, err := repo.Save(ctx, "cap1", []types.CapacityPoint{
		{TS: "2024-01-02T00:00:00Z", Value: v(20)},
		{TS: "2024-01-01T00:00:00Z", Value: v(10), Metric: "cu"},
		{TS: "2024-01-01T00:00:00Z", Value: v(55), Metric: "memory"},
		{TS: "", Value: v(99)},
		{TS: "2024-01-03T00:00:00Z", Value: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	points, err := repo.Get(ctx, "cap1", "", "")
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, "2024-01-01T00:00:00Z", points[0].TS)
	assert.Equal(t, "2024-01-03T00:00:00Z", points[3].TS)
	assert.Nil(t, points[3].Value)

	ranged, err := repo.Get(ctx, "cap1", "2024-01-02T00:00:00Z", "2024-01-02T23:59:59Z")
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, types.DefaultCapacityMetric, ranged[0].Metric)
	assert.Equal(t, 20.0, *ranged[0].Value)

	n, err = repo.Save(ctx, "", []types.CapacityPoint{{TS: "2024-01-01T00:00:00Z"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	none, err := repo.Get(ctx, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReportRepository(t *testing.T) {
	repo := sqlite.NewReportRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "ws1", []types.Report{
		{ID: "r1", Name: sp("Board"), DatasetID: sp("ds1"), WebURL: sp("https://example/r1")},
		{ID: "r2", Name: sp("Detail"), DatasetID: sp("ds1")},
		{ID: "r3", Name: sp("Loose")},
		{Name: sp("no id")},
	}))

	grouped, err := repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, grouped["ds1"], 2)
	assert.Equal(t, "https://example/r1", *grouped["ds1"][0].WebURL)
	require.Len(t, grouped[""], 1)
	assert.Equal(t, "r3", grouped[""][0].ID)
}

func TestScheduleRepository(t *testing.T) {
	repo := sqlite.NewScheduleRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "ws1", "ds1", json.RawMessage(`{"enabled":true,"times":["07:00"]}`)))
	require.NoError(t, repo.Save(ctx, "ws1", "ds2", json.RawMessage(`not json`)))
	require.NoError(t, repo.Save(ctx, "ws1", "ds3", nil))
	require.NoError(t, repo.Save(ctx, "", "ds4", json.RawMessage(`{}`)))

	schedules, err := repo.GetByWorkspace(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, schedules, 3)
	assert.Equal(t, map[string]interface{}{"enabled": true, "times": []interface{}{"07:00"}}, schedules["ds1"])
	assert.Equal(t, "not json", schedules["ds2"])
	assert.Nil(t, schedules["ds3"])
}
