package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frostdev-ops/pbi-monitor-go/internal/api/handlers"
	"github.com/frostdev-ops/pbi-monitor-go/internal/api/middleware"
	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/logger"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/utils"
)

// Deps bundles what the router wires into handlers. Hub, Scheduler and
// Gatherer are optional.
type Deps struct {
	Config    *config.Config
	Fleet     *fleet.Service
	Health    *metrics.HealthChecker
	Hub       *websocket.Hub
	Scheduler *fleet.Scheduler
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer
	Logger    *logger.BatchLogger
}

// NewRouter creates and configures the main HTTP router
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	collector := d.Collector
	if collector == nil {
		collector = metrics.NoopCollector{}
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.RecoveryMiddleware(d.Logger.Logger))
	router.Use(middleware.LoggingMiddleware(d.Logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware(collector))

	router.NoRoute(func(c *gin.Context) {
		utils.SendError(c, http.StatusNotFound, "Endpoint not found")
	})

	h := handlers.NewHandlers(cfg, d.Fleet, d.Health, d.Hub, d.Scheduler, d.Logger.Logger)

	// Public routes
	router.GET("/health", h.Health)

	if cfg.Monitoring.Prometheus.Enabled && d.Gatherer != nil {
		path := cfg.Monitoring.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	if cfg.WebSocket.Enabled && d.Hub != nil {
		router.GET("/ws", h.WebSocketHandler())
		router.GET("/ws/stats", h.GetWebSocketStats)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/dashboard", h.Dashboard)
		api.GET("/performance", h.Performance)
		api.GET("/categorize", h.CategorizePage)
		api.GET("/workspaces", h.ListWorkspaces)
		api.GET("/workspaces/:workspace_id", h.WorkspaceDetail)
		api.GET("/workspaces/:workspace_id/datasets/:dataset_id", h.DatasetDetail)
		api.GET("/workspaces/:workspace_id/datasets/:dataset_id/schedule", h.GetSchedule)

		// Mutating routes require a bearer token when auth is enabled
		mutating := api.Group("")
		mutating.Use(middleware.MutationAuth(cfg.Auth))
		{
			mutating.POST("/categorize", h.Categorize)
			mutating.POST("/categorize/bulk", h.CategorizeBulk)
			mutating.POST("/workspaces/:workspace_id/models/fetch", h.FetchModels)
			mutating.POST("/workspaces/:workspace_id/reports/fetch", h.FetchReports)
			mutating.POST("/workspaces/:workspace_id/schedule", h.SetWorkspaceSchedule)
			mutating.POST("/workspaces/:workspace_id/datasets/:dataset_id/refreshes/fetch", h.FetchRefreshes)
			mutating.POST("/workspaces/:workspace_id/datasets/:dataset_id/schedule", h.SetSchedule)
			mutating.POST("/workspaces/:workspace_id/datasets/:dataset_id/refresh", h.TriggerRefresh)
			mutating.POST("/capacity-metrics", h.IngestCapacity)
		}
	}

	return router
}
