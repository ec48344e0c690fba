package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker states as exported on the breaker gauge
var breakerStates = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// PrometheusCollector implements MetricsCollector using Prometheus metrics
type PrometheusCollector struct {
	config *MetricsConfig

	// HTTP Metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// WebSocket Metrics
	websocketConnections prometheus.Gauge
	websocketEvents      *prometheus.CounterVec

	// Connector Metrics
	connectorCalls    *prometheus.CounterVec
	connectorDuration *prometheus.HistogramVec
	breakerState      *prometheus.GaugeVec

	// Ingestion Metrics
	syncRuns    *prometheus.CounterVec
	syncRecords *prometheus.CounterVec

	// Engine Metrics
	engineDuration *prometheus.HistogramVec

	// Fleet Metrics
	fleetWorkspaces prometheus.Gauge
	fleetModels     prometheus.Gauge
	fleetFailed     prometheus.Gauge
	fleetSlow       prometheus.Gauge

	// System Metrics
	systemCPU    prometheus.Gauge
	systemMemory prometheus.Gauge
	systemDisk   prometheus.Gauge
}

// NewPrometheusCollector creates a collector registered on reg, or on the
// default registry when reg is nil
func NewPrometheusCollector(config *MetricsConfig, reg prometheus.Registerer) *PrometheusCollector {
	if config == nil {
		config = &MetricsConfig{
			Enabled: true,
			Prefix:  "pbimon",
		}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	prefix := config.Prefix
	factory := promauto.With(reg)

	collector := &PrometheusCollector{config: config}

	collector.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	collector.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	collector.websocketConnections = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_websocket_connections",
			Help: "Number of connected dashboard clients",
		},
	)

	collector.websocketEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_websocket_connection_events_total",
			Help: "Dashboard client connects and disconnects",
		},
		[]string{"action"},
	)

	collector.connectorCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_connector_calls_total",
			Help: "Total number of BI connector invocations",
		},
		[]string{"mode", "status"},
	)

	// PowerShell helper calls take seconds to minutes
	collector.connectorDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_connector_call_duration_seconds",
			Help:    "BI connector invocation duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"mode"},
	)

	collector.breakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_connector_breaker_state",
			Help: "Connector circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	collector.syncRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sync_runs_total",
			Help: "Ingestion runs by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	collector.syncRecords = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sync_records_total",
			Help: "Records persisted by ingestion runs",
		},
		[]string{"kind"},
	)

	collector.engineDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_engine_duration_seconds",
			Help:    "Analytics engine computation time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	collector.fleetWorkspaces = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_fleet_workspaces",
		Help: "Categorized live workspaces in the last summary",
	})
	collector.fleetModels = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_fleet_models",
		Help: "Semantic models in the last summary",
	})
	collector.fleetFailed = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_fleet_failed_models",
		Help: "Models whose latest refresh failed",
	})
	collector.fleetSlow = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_fleet_slow_models",
		Help: "Models whose latest refresh was degraded",
	})

	collector.systemCPU = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_system_cpu_usage_percent",
		Help: "System CPU usage percentage",
	})
	collector.systemMemory = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_system_memory_usage_percent",
		Help: "System memory usage percentage",
	})
	collector.systemDisk = factory.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_system_disk_usage_percent",
		Help: "System disk usage percentage",
	})

	return collector
}

// RecordHTTPRequest records HTTP request metrics
func (p *PrometheusCollector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if !p.config.Enabled {
		return
	}
	p.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWebSocketConnection records a client connect or disconnect
func (p *PrometheusCollector) RecordWebSocketConnection(action string) {
	if !p.config.Enabled {
		return
	}
	switch action {
	case "connect":
		p.websocketConnections.Inc()
	case "disconnect":
		p.websocketConnections.Dec()
	}
	p.websocketEvents.WithLabelValues(action).Inc()
}

// RecordConnectorCall records one helper invocation
func (p *PrometheusCollector) RecordConnectorCall(mode string, success bool, duration time.Duration) {
	if !p.config.Enabled {
		return
	}
	p.connectorCalls.WithLabelValues(mode, statusLabel(success)).Inc()
	p.connectorDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordBreakerState exports a breaker state transition
func (p *PrometheusCollector) RecordBreakerState(name string, state string) {
	if !p.config.Enabled {
		return
	}
	if v, ok := breakerStates[state]; ok {
		p.breakerState.WithLabelValues(name).Set(v)
	}
}

// RecordSync records an ingestion run and the records it stored
func (p *PrometheusCollector) RecordSync(kind string, success bool, records int) {
	if !p.config.Enabled {
		return
	}
	p.syncRuns.WithLabelValues(kind, statusLabel(success)).Inc()
	if records > 0 {
		p.syncRecords.WithLabelValues(kind).Add(float64(records))
	}
}

// RecordEngineRun records how long an analytics computation took
func (p *PrometheusCollector) RecordEngineRun(operation string, duration time.Duration) {
	if !p.config.Enabled {
		return
	}
	p.engineDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFleetHealth publishes the totals of the latest summary
func (p *PrometheusCollector) RecordFleetHealth(workspaces, models, failed, slow int) {
	if !p.config.Enabled {
		return
	}
	p.fleetWorkspaces.Set(float64(workspaces))
	p.fleetModels.Set(float64(models))
	p.fleetFailed.Set(float64(failed))
	p.fleetSlow.Set(float64(slow))
}

// RecordSystemResource records system resource usage
func (p *PrometheusCollector) RecordSystemResource(cpu, memory, disk float64) {
	if !p.config.Enabled {
		return
	}
	p.systemCPU.Set(cpu)
	p.systemMemory.Set(memory)
	p.systemDisk.Set(disk)
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
