package fleet

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
)

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.Workspace), args.Error(1)
}

func (m *MockConnector) ListDatasets(ctx context.Context, workspaceID string) ([]connector.Dataset, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]connector.Dataset), args.Error(1)
}

func (m *MockConnector) ListRefreshes(ctx context.Context, workspaceID, datasetID string, top int) ([]connector.Refresh, error) {
	args := m.Called(ctx, workspaceID, datasetID, top)
	return args.Get(0).([]connector.Refresh), args.Error(1)
}

func (m *MockConnector) TriggerRefresh(ctx context.Context, workspaceID, datasetID string) (interface{}, error) {
	args := m.Called(ctx, workspaceID, datasetID)
	return args.Get(0), args.Error(1)
}

func (m *MockConnector) ListReports(ctx context.Context, workspaceID string) ([]connector.Report, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]connector.Report), args.Error(1)
}

func (m *MockConnector) GetSchedule(ctx context.Context, workspaceID, datasetID string) (json.RawMessage, error) {
	args := m.Called(ctx, workspaceID, datasetID)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockConnector) UpdateSchedule(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) (interface{}, error) {
	args := m.Called(ctx, workspaceID, datasetID, schedule)
	return args.Get(0), args.Error(1)
}

func (m *MockConnector) TakeOver(ctx context.Context, workspaceID, datasetID string) (interface{}, error) {
	args := m.Called(ctx, workspaceID, datasetID)
	return args.Get(0), args.Error(1)
}

type event struct {
	Type string
	Data map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) Publish(eventType string, data map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{Type: eventType, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	conn   *MockConnector
	repos  *database.Repositories
	events *recordingPublisher
	logger *logrus.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Path: database.MemoryPath, MaxConnections: 1})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		conn:   &MockConnector{},
		repos:  database.NewRepositories(db),
		events: &recordingPublisher{},
		logger: logger,
	}
	engine := analytics.NewEngine(analytics.DefaultPolicy(), analytics.WithClock(func() time.Time { return testNow }))
	f.svc = NewService(f.repos, f.conn, engine, Options{CapacityID: "cap-default", CacheSeconds: 300}, f.events, nil, logger)
	return f
}

func sp(s string) *string { return &s }
