package connector

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: args})
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func (f *fakeRunner) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func testConfig() config.ConnectorConfig {
	return config.ConnectorConfig{
		Shell:      "pwsh",
		ScriptPath: "/opt/helper.ps1",
		TenantID:   "tenant-1",
		Timeout:    time.Minute,
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  3,
			FailureRatio: 0.6,
		},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestConnector(runner *fakeRunner) *PowerShellConnector {
	return NewPowerShellConnector(testConfig(), runner, nil, quietLogger())
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestPowerShellConnector_ListWorkspaces(t *testing.T) {
	runner := &fakeRunner{stdout: `{"workspaces":[{"id":"ws1","name":"Finance"},{"id":"ws2","name":"Ops"}]}`}
	c := newTestConnector(runner)

	workspaces, err := c.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Workspace{{ID: "ws1", Name: "Finance"}, {ID: "ws2", Name: "Ops"}}, workspaces)

	got := runner.last()
	assert.Equal(t, "pwsh", got.name)
	assert.Equal(t, []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File", "/opt/helper.ps1", "-TenantId", "tenant-1"}, got.args)
}

func TestPowerShellConnector_ModeArguments(t *testing.T) {
	runner := &fakeRunner{stdout: `{"refreshes":[{"startTime":"2024-01-01T00:00:00Z","endTime":"2024-01-01T00:05:00Z","status":"Completed"}]}`}
	c := newTestConnector(runner)

	refreshes, err := c.ListRefreshes(context.Background(), "ws1", "ds1", 100)
	require.NoError(t, err)
	require.Len(t, refreshes, 1)
	assert.Equal(t, "Completed", *refreshes[0].Status)

	args := runner.last().args
	assert.Equal(t, "refreshes", argValue(args, "-Mode"))
	assert.Equal(t, "ws1", argValue(args, "-WorkspaceId"))
	assert.Equal(t, "ds1", argValue(args, "-DatasetId"))
	assert.Equal(t, "100", argValue(args, "-Top"))
}

func TestPowerShellConnector_Datasets(t *testing.T) {
	runner := &fakeRunner{stdout: `{"datasets":[{"id":"d1","name":"Sales"},{"model_id":"d2","displayName":"Stock"},{"id":"d3"}]}`}
	c := newTestConnector(runner)

	datasets, err := c.ListDatasets(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, datasets, 3)
	assert.Equal(t, "d2", datasets[1].Key())
	assert.Equal(t, "Stock", datasets[1].Label())
	assert.Equal(t, "(unnamed)", datasets[2].Label())
	assert.Equal(t, "models", argValue(runner.last().args, "-Mode"))
}

func TestPowerShellConnector_Schedule(t *testing.T) {
	runner := &fakeRunner{stdout: `{"schedule":{"enabled":true,"days":["Monday"]}}`}
	c := newTestConnector(runner)

	schedule, err := c.GetSchedule(context.Background(), "ws1", "ds1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":true,"days":["Monday"]}`, string(schedule))

	runner.stdout = `{"status":"ok"}`
	reply, err := c.UpdateSchedule(context.Background(), "ws1", "ds1", json.RawMessage("{ \"enabled\" : false }"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, reply)
	assert.Equal(t, `{"enabled":false}`, argValue(runner.last().args, "-ScheduleJson"))

	_, err = c.UpdateSchedule(context.Background(), "ws1", "ds1", json.RawMessage("{"))
	assert.Error(t, err)
}

func TestPowerShellConnector_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		c := newTestConnector(&fakeRunner{stdout: `{"value":[]}`})
		_, err := c.ListReports(context.Background(), "ws1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected response")
	})

	t.Run("not json", func(t *testing.T) {
		c := newTestConnector(&fakeRunner{stdout: "Connect-PowerBIServiceAccount: failed"})
		_, err := c.TriggerRefresh(context.Background(), "ws1", "ds1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse PowerShell output")
	})

	t.Run("runner failure", func(t *testing.T) {
		boom := errors.New("executable not found")
		c := newTestConnector(&fakeRunner{err: boom})
		_, err := c.ListWorkspaces(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, ErrUnavailable))
	})
}

func TestPowerShellConnector_BreakerOpens(t *testing.T) {
	runner := &fakeRunner{err: errors.New("helper crashed")}
	c := newTestConnector(runner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.ListWorkspaces(ctx)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.ListWorkspaces(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, runner.calls, 3, "open breaker must not invoke the helper")
}

func TestReportRecord(t *testing.T) {
	name, ds := "Board", "d1"
	rec := Report{ID: "r1", Name: &name, DatasetID: &ds}.Record("ws1")
	assert.Equal(t, "ws1", rec.WorkspaceID)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, "d1", *rec.DatasetID)
	assert.Nil(t, rec.WebURL)
}

func TestMemoryWorkspaceCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryWorkspaceCache(5 * time.Minute)
	cache.now = func() time.Time { return now }

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, []types.Workspace{{ID: "ws1"}})
	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "ws1", got[0].ID)

	now = now.Add(5 * time.Minute)
	_, ok = cache.Get(ctx)
	assert.False(t, ok, "entry expires exactly at ttl")

	cache.Set(ctx, nil)
	got, ok = cache.Get(ctx)
	assert.True(t, ok)
	assert.Empty(t, got)

	cache.Invalidate(ctx)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	disabled := NewMemoryWorkspaceCache(0)
	disabled.Set(ctx, []types.Workspace{{ID: "ws1"}})
	_, ok = disabled.Get(ctx)
	assert.False(t, ok)
}

func TestRedisWorkspaceCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	cache := NewRedisWorkspaceCache(client, "pbimon:", time.Minute, quietLogger())

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, []types.Workspace{{ID: "ws1", Name: "Finance"}})
	assert.True(t, mr.Exists("pbimon:workspaces"))

	got, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, []types.Workspace{{ID: "ws1", Name: "Finance"}}, got)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, mr.Set("pbimon:workspaces", "not-json"))
	_, ok = cache.Get(ctx)
	assert.False(t, ok)

	cache.Set(ctx, []types.Workspace{{ID: "ws2"}})
	cache.Invalidate(ctx)
	assert.False(t, mr.Exists("pbimon:workspaces"))
}

func TestCachedConnector(t *testing.T) {
	runner := &fakeRunner{stdout: `{"workspaces":[{"id":"ws1","name":"Finance"}]}`}
	cached := NewCachedConnector(newTestConnector(runner), NewMemoryWorkspaceCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		workspaces, err := cached.ListWorkspaces(ctx)
		require.NoError(t, err)
		assert.Len(t, workspaces, 1)
	}
	assert.Len(t, runner.calls, 1)

	cached.InvalidateWorkspaces(ctx)
	_, err := cached.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, runner.calls, 2)

	runner.stdout = `{"datasets":[]}`
	_, err = cached.ListDatasets(ctx, "ws1")
	require.NoError(t, err)
	assert.Len(t, runner.calls, 3, "non-workspace calls are never cached")
}

func TestCachedConnector_ErrorsAreNotCached(t *testing.T) {
	runner := &fakeRunner{stdout: "garbage"}
	cached := NewCachedConnector(newTestConnector(runner), NewMemoryWorkspaceCache(time.Minute))

	_, err := cached.ListWorkspaces(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "could not parse"))

	runner.stdout = `{"workspaces":[]}`
	workspaces, err := cached.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, workspaces)
}

func TestOffline(t *testing.T) {
	var c Connector = Offline{}
	ctx := context.Background()

	_, err := c.ListWorkspaces(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = c.ListDatasets(ctx, "ws1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = c.GetSchedule(ctx, "ws1", "ds1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = c.TriggerRefresh(ctx, "ws1", "ds1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
