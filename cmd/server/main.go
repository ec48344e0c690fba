package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/api"
	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/logger"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.WithField("version", version.GetVersion()).Infof("Starting %s", version.Service)

	// Metrics
	var collector metrics.MetricsCollector = metrics.NoopCollector{}
	registry := prometheus.NewRegistry()
	if cfg.Monitoring.Prometheus.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewPrometheusCollector(&metrics.MetricsConfig{Enabled: true, Prefix: "pbimon"}, registry)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}
	repos := database.NewRepositories(db)

	// Connector behind the workspace cache
	ps := connector.NewPowerShellConnector(cfg.Connector, connector.ExecRunner{}, collector, log.Logger)
	var cache connector.WorkspaceCache
	var redisClient *redis.Client
	switch cfg.Cache.Backend {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		defer redisClient.Close()
		cache = connector.NewRedisWorkspaceCache(redisClient, cfg.Cache.Redis.KeyPrefix, cfg.Connector.WorkspaceCacheTTL(), log.Logger)
		log.WithField("addr", cfg.Cache.Redis.Addr).Info("Using Redis workspace cache")
	default:
		cache = connector.NewMemoryWorkspaceCache(cfg.Connector.WorkspaceCacheTTL())
	}
	conn := connector.NewCachedConnector(ps, cache)

	// WebSocket hub
	var wsHub *websocket.Hub
	var events fleet.Publisher
	if cfg.WebSocket.Enabled {
		wsHub = websocket.NewHub(cfg.WebSocket.PingInterval, collector, log.Logger)
		go wsHub.Run()
		events = wsHub
	}

	// Fleet service
	engine := analytics.NewEngine(cfg.Analytics.Policy())
	svc := fleet.NewService(repos, conn, engine, fleet.Options{
		CapacityID:     cfg.Connector.CapacityID,
		InitialTop:     cfg.Sync.InitialTop,
		IncrementalTop: cfg.Sync.IncrementalTop,
		CacheSeconds:   cfg.Connector.WorkspaceCacheSeconds,
	}, events, collector, log.Logger)

	var scheduler *fleet.Scheduler
	if cfg.Sync.Enabled {
		scheduler, err = fleet.NewScheduler(svc, cfg.Sync, log.Logger)
		if err != nil {
			log.Fatal("Failed to create sync scheduler: ", err)
		}
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start sync scheduler: ", err)
		}
	}

	health := metrics.NewHealthChecker(5 * time.Second)
	registerHealthChecks(health, cfg, db, ps, redisClient, collector)

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		Fleet:     svc,
		Health:    health,
		Hub:       wsHub,
		Scheduler: scheduler,
		Collector: collector,
		Gatherer:  registry,
		Logger:    log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		log.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			log.WithError(err).Warn("Sync scheduler did not stop cleanly")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if wsHub != nil {
		wsHub.Stop()
	}
	log.FlushPending()

	log.Info("Server exited")
}
