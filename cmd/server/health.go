package main

import (
	"context"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
)

func registerHealthChecks(h *metrics.HealthChecker, cfg *config.Config, db *sqlx.DB, ps *connector.PowerShellConnector, rdb *redis.Client, collector metrics.MetricsCollector) {
	h.Register("database", func(ctx context.Context) metrics.HealthStatus {
		if err := db.PingContext(ctx); err != nil {
			return metrics.NewHealthStatus(metrics.StatusUnhealthy, err.Error())
		}
		version, dirty, err := database.MigrationVersion(db)
		if err != nil {
			return metrics.NewHealthStatus(metrics.StatusDegraded, err.Error())
		}
		status := metrics.NewHealthStatus(metrics.StatusHealthy, "connected")
		if dirty {
			status = metrics.NewHealthStatus(metrics.StatusDegraded, "schema migration left dirty")
		}
		return status.WithDetail("schema_version", version)
	})

	// An open breaker means the helper keeps failing; stored data is still served.
	h.Register("connector", func(ctx context.Context) metrics.HealthStatus {
		state := ps.BreakerState()
		if state == "open" {
			return metrics.NewHealthStatus(metrics.StatusDegraded, "circuit breaker open").
				WithDetail("breaker", state)
		}
		return metrics.NewHealthStatus(metrics.StatusHealthy, "available").WithDetail("breaker", state)
	})

	if rdb != nil {
		h.Register("cache", func(ctx context.Context) metrics.HealthStatus {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return metrics.NewHealthStatus(metrics.StatusDegraded, err.Error())
			}
			return metrics.NewHealthStatus(metrics.StatusHealthy, "redis reachable")
		})
	}

	diskPath := "."
	if cfg.Database.Path != database.MemoryPath {
		diskPath = filepath.Dir(cfg.Database.Path)
	}
	h.Register("system", metrics.SystemResourceCheck(collector, diskPath))
}
