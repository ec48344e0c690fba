package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/utils"
)

// WebSocketHandler upgrades dashboard connections
func (h *Handlers) WebSocketHandler() gin.HandlerFunc {
	return websocket.HandleWebSocketGin(h.wsHub, websocket.ClientOptions{
		PingInterval: h.cfg.WebSocket.PingInterval,
		WriteTimeout: h.cfg.WebSocket.WriteTimeout,
	})
}

// GetWebSocketStats returns hub statistics
func (h *Handlers) GetWebSocketStats(c *gin.Context) {
	utils.SendSuccess(c, h.wsHub.GetStats())
}
