package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(&MetricsConfig{Enabled: true, Prefix: "test"}, reg)

	c.RecordConnectorCall("refreshes", true, time.Second)
	c.RecordConnectorCall("refreshes", false, time.Second)
	c.RecordConnectorCall("refreshes", false, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connectorCalls.WithLabelValues("refreshes", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.connectorCalls.WithLabelValues("refreshes", "error")))

	c.RecordBreakerState("connector", "open")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.breakerState.WithLabelValues("connector")))
	c.RecordBreakerState("connector", "bogus")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.breakerState.WithLabelValues("connector")))

	c.RecordSync("refreshes", true, 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(c.syncRecords.WithLabelValues("refreshes")))

	c.RecordFleetHealth(3, 12, 2, 1)
	assert.Equal(t, 12.0, testutil.ToFloat64(c.fleetModels))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fleetSlow))

	c.RecordWebSocketConnection("connect")
	c.RecordWebSocketConnection("connect")
	c.RecordWebSocketConnection("disconnect")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.websocketConnections))
}

func TestPrometheusCollector_Disabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(&MetricsConfig{Enabled: false, Prefix: "off"}, reg)

	c.RecordFleetHealth(1, 1, 1, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.fleetModels))
}

func TestHealthChecker_Report(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.Register("database", func(context.Context) HealthStatus {
		return NewHealthStatus(StatusHealthy, "ok")
	})
	h.Register("connector", func(context.Context) HealthStatus {
		return NewHealthStatus(StatusDegraded, "breaker half-open")
	})

	report := h.Report(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	require.Len(t, report.Components, 2)
	assert.True(t, report.Components["database"].IsHealthy())
	assert.Contains(t, report.SystemInfo, "uptime")

	h.Register("connector", func(context.Context) HealthStatus {
		return NewHealthStatus(StatusUnhealthy, "breaker open")
	})
	assert.Equal(t, StatusUnhealthy, h.Report(context.Background()).Status)
}

func TestHealthCheckWithTimeout(t *testing.T) {
	slow := func(context.Context) HealthStatus {
		time.Sleep(200 * time.Millisecond)
		return NewHealthStatus(StatusHealthy, "late")
	}
	result := HealthCheckWithTimeout(context.Background(), 10*time.Millisecond, slow)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "10ms", result.Details["timeout"])
}
