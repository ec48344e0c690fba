package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/utils"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/version"
)

// Health reports component health, build info and sync status. An unhealthy
// component turns the response into a 503.
func (h *Handlers) Health(c *gin.Context) {
	report := h.health.Report(c.Request.Context())

	body := gin.H{
		"status":     report.Status,
		"message":    report.Message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"uptime":     metrics.Uptime().Round(time.Second).String(),
		"build":      version.GetBuildInfo(),
		"components": report.Components,
		"system":     report.SystemInfo,
	}
	if h.scheduler != nil {
		body["sync"] = gin.H{
			"running":  h.scheduler.IsRunning(),
			"last_run": h.scheduler.LastRun(),
		}
	}
	if h.wsHub != nil {
		body["websocket"] = h.wsHub.GetStats()
	}

	if report.Status == metrics.StatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, utils.Response{
			Success:   false,
			Data:      body,
			Error:     report.Message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	utils.SendSuccess(c, body)
}
