package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
)

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	cfg       *config.Config
	fleet     *fleet.Service
	health    *metrics.HealthChecker
	wsHub     *websocket.Hub
	scheduler *fleet.Scheduler
	log       *logrus.Logger
}

// NewHandlers creates a new handlers instance. wsHub and scheduler may be nil
// when those features are disabled.
func NewHandlers(cfg *config.Config, svc *fleet.Service, health *metrics.HealthChecker, wsHub *websocket.Hub, scheduler *fleet.Scheduler, logger *logrus.Logger) *Handlers {
	return &Handlers{
		cfg:       cfg,
		fleet:     svc,
		health:    health,
		wsHub:     wsHub,
		scheduler: scheduler,
		log:       logger,
	}
}
