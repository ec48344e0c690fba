package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "./data/pbi_monitor.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxConnections)
	assert.Equal(t, "powershell", cfg.Connector.Shell)
	assert.Equal(t, "common", cfg.Connector.TenantID)
	assert.Equal(t, 2*time.Minute, cfg.Connector.Timeout)
	assert.Equal(t, 300*time.Second, cfg.Connector.WorkspaceCacheTTL())
	assert.Equal(t, uint32(3), cfg.Connector.Breaker.MinRequests)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "@every 30m", cfg.Sync.Schedule)
	assert.Equal(t, 100, cfg.Sync.InitialTop)
	assert.Equal(t, 10, cfg.Sync.IncrementalTop)

	policy := cfg.Analytics.Policy()
	assert.Equal(t, 1.1, policy.DegradationFactor)
	assert.Equal(t, 300.0, policy.EfficientCeilingSeconds)
	assert.Equal(t, 10, policy.TopN)
	assert.Equal(t, 168*time.Hour, policy.LongWindow)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PBI_DB_PATH", "/tmp/monitor.db")
	t.Setenv("PBI_TENANT_ID", "contoso")
	t.Setenv("PBI_WORKSPACE_CACHE_SECONDS", "60")
	t.Setenv("PBI_CAPACITY_ID", "cap-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/tmp/monitor.db", cfg.Database.Path)
	assert.Equal(t, "contoso", cfg.Connector.TenantID)
	assert.Equal(t, time.Minute, cfg.Connector.WorkspaceCacheTTL())
	assert.Equal(t, "cap-1", cfg.Connector.CapacityID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	content := `
server:
  port: 9000
analytics:
  degradation_factor: 1.5
  top_n: 5
  short_window: 12h
sync:
  enabled: true
  schedule: "*/15 * * * *"
cache:
  backend: redis
  redis:
    addr: redis:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 1.5, cfg.Analytics.DegradationFactor)
	assert.Equal(t, 5, cfg.Analytics.TopN)
	assert.Equal(t, 12*time.Hour, cfg.Analytics.ShortWindow)
	assert.Equal(t, 24*time.Hour, cfg.Analytics.HistoryWindow)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "pbimon:", cfg.Cache.Redis.KeyPrefix)
}

func TestValidate_AggregatesProblems(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Auth.Enabled = true
	cfg.Cache.Backend = "memcached"
	cfg.Analytics.TopN = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "cache.backend")
	assert.Contains(t, err.Error(), "analytics.top_n")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
