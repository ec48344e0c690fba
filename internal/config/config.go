package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Connector  ConnectorConfig  `mapstructure:"connector"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ConnectorConfig configures the PowerShell helper that talks to the BI service
type ConnectorConfig struct {
	Shell      string        `mapstructure:"shell"`
	ScriptPath string        `mapstructure:"script_path"`
	TenantID   string        `mapstructure:"tenant_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// WorkspaceCacheSeconds is kept in whole seconds to match the PBI_WORKSPACE_CACHE_SECONDS variable
	WorkspaceCacheSeconds int           `mapstructure:"workspace_cache_seconds"`
	CapacityID            string        `mapstructure:"capacity_id"`
	Breaker               BreakerConfig `mapstructure:"breaker"`
}

// WorkspaceCacheTTL returns the workspace list cache lifetime
func (c ConnectorConfig) WorkspaceCacheTTL() time.Duration {
	return time.Duration(c.WorkspaceCacheSeconds) * time.Second
}

type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

type CacheConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type AnalyticsConfig struct {
	DegradationFactor       float64       `mapstructure:"degradation_factor"`
	EfficientCeilingSeconds float64       `mapstructure:"efficient_ceiling_seconds"`
	TopN                    int           `mapstructure:"top_n"`
	HistoryWindow           time.Duration `mapstructure:"history_window"`
	ShortWindow             time.Duration `mapstructure:"short_window"`
	LongWindow              time.Duration `mapstructure:"long_window"`
}

// Policy converts the analytics section into engine thresholds
func (a AnalyticsConfig) Policy() analytics.Policy {
	return analytics.Policy{
		DegradationFactor:       a.DegradationFactor,
		EfficientCeilingSeconds: a.EfficientCeilingSeconds,
		TopN:                    a.TopN,
		HistoryWindow:           a.HistoryWindow,
		ShortWindow:             a.ShortWindow,
		LongWindow:              a.LongWindow,
	}
}

type SyncConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Schedule       string `mapstructure:"schedule"`
	InitialTop     int    `mapstructure:"initial_top"`
	IncrementalTop int    `mapstructure:"incremental_top"`
}

type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type WebSocketConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load reads config.yaml from ./configs or the working directory, then applies environment overrides
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return load(v)
}

// LoadFile reads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables understood by the existing deployment scripts
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("database.path", "PBI_DB_PATH")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("connector.script_path", "PBI_WORKSPACES_SCRIPT")
	_ = v.BindEnv("connector.tenant_id", "PBI_TENANT_ID")
	_ = v.BindEnv("connector.workspace_cache_seconds", "PBI_WORKSPACE_CACHE_SECONDS")
	_ = v.BindEnv("connector.capacity_id", "PBI_CAPACITY_ID")
	_ = v.BindEnv("cache.redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis.password", "REDIS_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for completeness and correctness
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "server.port must be between 1 and 65535")
	}
	if c.Server.Host == "" {
		errors = append(errors, "server.host is required")
	}

	if c.Database.Path == "" {
		errors = append(errors, "database.path is required")
	}
	if c.Database.MaxConnections <= 0 {
		errors = append(errors, "database.max_connections must be greater than 0")
	}

	if c.Auth.Enabled && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "your-secret-key-here") {
		errors = append(errors, "auth.jwt_secret must be set to a secure value when enabled")
	}

	if c.Connector.Shell == "" {
		errors = append(errors, "connector.shell is required")
	}
	if c.Connector.ScriptPath == "" {
		errors = append(errors, "connector.script_path is required")
	}
	if c.Connector.WorkspaceCacheSeconds < 0 {
		errors = append(errors, "connector.workspace_cache_seconds must be non-negative")
	}
	if r := c.Connector.Breaker.FailureRatio; r <= 0 || r > 1 {
		errors = append(errors, "connector.breaker.failure_ratio must be in (0, 1]")
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errors = append(errors, "cache.redis.addr is required when cache.backend is redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}

	if c.Analytics.DegradationFactor <= 0 {
		errors = append(errors, "analytics.degradation_factor must be greater than 0")
	}
	if c.Analytics.TopN <= 0 {
		errors = append(errors, "analytics.top_n must be greater than 0")
	}

	if c.Sync.Enabled && c.Sync.Schedule == "" {
		errors = append(errors, "sync.schedule is required when sync is enabled")
	}
	if c.Sync.InitialTop <= 0 || c.Sync.IncrementalTop <= 0 {
		errors = append(errors, "sync.initial_top and sync.incremental_top must be greater than 0")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("database.path", "./data/pbi_monitor.db")
	v.SetDefault("database.max_connections", 1)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("auth.enabled", false)

	v.SetDefault("connector.shell", "powershell")
	v.SetDefault("connector.script_path", "./backend/Get-PBIWorkspaces.ps1")
	v.SetDefault("connector.tenant_id", "common")
	v.SetDefault("connector.timeout", "2m")
	v.SetDefault("connector.workspace_cache_seconds", 300)
	v.SetDefault("connector.capacity_id", "")
	v.SetDefault("connector.breaker.max_requests", 1)
	v.SetDefault("connector.breaker.interval", "60s")
	v.SetDefault("connector.breaker.timeout", "30s")
	v.SetDefault("connector.breaker.min_requests", 3)
	v.SetDefault("connector.breaker.failure_ratio", 0.6)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", "pbimon:")

	def := analytics.DefaultPolicy()
	v.SetDefault("analytics.degradation_factor", def.DegradationFactor)
	v.SetDefault("analytics.efficient_ceiling_seconds", def.EfficientCeilingSeconds)
	v.SetDefault("analytics.top_n", def.TopN)
	v.SetDefault("analytics.history_window", def.HistoryWindow.String())
	v.SetDefault("analytics.short_window", def.ShortWindow.String())
	v.SetDefault("analytics.long_window", def.LongWindow.String())

	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.schedule", "@every 30m")
	v.SetDefault("sync.initial_top", 100)
	v.SetDefault("sync.incremental_top", 10)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.path", "/metrics")

	v.SetDefault("websocket.enabled", true)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_timeout", "10s")
}
