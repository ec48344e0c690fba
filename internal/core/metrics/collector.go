package metrics

import (
	"time"
)

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
	RecordWebSocketConnection(action string)
	RecordConnectorCall(mode string, success bool, duration time.Duration)
	RecordBreakerState(name string, state string)
	RecordSync(kind string, success bool, records int)
	RecordEngineRun(operation string, duration time.Duration)
	RecordFleetHealth(workspaces, models, failed, slow int)
	RecordSystemResource(cpu, memory, disk float64)
}

// MetricsConfig contains configuration for metrics collection
type MetricsConfig struct {
	Enabled bool
	Prefix  string
}

// NoopCollector discards every observation
type NoopCollector struct{}

func (NoopCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NoopCollector) RecordWebSocketConnection(string)                     {}
func (NoopCollector) RecordConnectorCall(string, bool, time.Duration)      {}
func (NoopCollector) RecordBreakerState(string, string)                    {}
func (NoopCollector) RecordSync(string, bool, int)                         {}
func (NoopCollector) RecordEngineRun(string, time.Duration)                {}
func (NoopCollector) RecordFleetHealth(int, int, int, int)                 {}
func (NoopCollector) RecordSystemResource(float64, float64, float64)       {}
