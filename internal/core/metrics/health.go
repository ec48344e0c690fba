package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Component states
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusUnknown   = "unknown"
)

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
}

// HealthReport represents the overall health report
type HealthReport struct {
	Status     string                  `json:"status"`
	Message    string                  `json:"message"`
	Timestamp  time.Time               `json:"timestamp"`
	Duration   time.Duration           `json:"duration"`
	Components map[string]HealthStatus `json:"components"`
	SystemInfo map[string]interface{}  `json:"system_info"`
}

// HealthCheck probes a single component
type HealthCheck func(ctx context.Context) HealthStatus

// HealthChecker runs the registered component checks
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthChecker creates a checker that bounds each check by timeout
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		checks:  make(map[string]HealthCheck),
		timeout: timeout,
	}
}

// Register adds or replaces a named check
func (h *HealthChecker) Register(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Report runs every check and derives the overall status
func (h *HealthChecker) Report(ctx context.Context) HealthReport {
	start := time.Now()

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	components := make(map[string]HealthStatus, len(names))
	for _, name := range names {
		checkStart := time.Now()
		result := HealthCheckWithTimeout(ctx, h.timeout, checks[name])
		result.Duration = time.Since(checkStart)
		components[name] = result
	}

	status, message := calculateOverallStatus(components)
	return HealthReport{
		Status:     status,
		Message:    message,
		Timestamp:  time.Now(),
		Duration:   time.Since(start),
		Components: components,
		SystemInfo: gatherSystemInfo(),
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func calculateOverallStatus(components map[string]HealthStatus) (string, string) {
	var degraded, unhealthy, unknown int
	total := len(components)

	for _, status := range components {
		switch status.Status {
		case StatusHealthy:
		case StatusDegraded:
			degraded++
		case StatusUnhealthy:
			unhealthy++
		default:
			unknown++
		}
	}

	if unhealthy > 0 {
		return StatusUnhealthy, fmt.Sprintf("%d/%d components unhealthy", unhealthy, total)
	}
	if degraded > 0 {
		return StatusDegraded, fmt.Sprintf("%d/%d components degraded", degraded, total)
	}
	if unknown > 0 {
		return StatusUnknown, fmt.Sprintf("%d/%d components unknown", unknown, total)
	}
	return StatusHealthy, fmt.Sprintf("All %d components healthy", total)
}

// gatherSystemInfo collects system information
func gatherSystemInfo() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}
}

// startTime tracks when the application started
var startTime = time.Now()

// Uptime returns the time since process start
func Uptime() time.Duration {
	return time.Since(startTime)
}

// NewHealthStatus creates a new health status
func NewHealthStatus(status, message string) HealthStatus {
	return HealthStatus{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Details:   make(map[string]interface{}),
	}
}

// WithDetail adds a single detail to a health status
func (h HealthStatus) WithDetail(key string, value interface{}) HealthStatus {
	if h.Details == nil {
		h.Details = make(map[string]interface{})
	}
	h.Details[key] = value
	return h
}

// IsHealthy returns true if the status is healthy
func (h HealthStatus) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// HealthCheckWithTimeout performs a health check with timeout
func HealthCheckWithTimeout(ctx context.Context, timeout time.Duration, check HealthCheck) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultChan := make(chan HealthStatus, 1)
	go func() {
		resultChan <- check(ctx)
	}()

	select {
	case result := <-resultChan:
		return result
	case <-ctx.Done():
		return NewHealthStatus(StatusUnhealthy, "Health check timed out").
			WithDetail("timeout", timeout.String())
	}
}

// SystemResourceCheck samples CPU, memory and disk usage of diskPath and
// forwards them to collector. Usage above 90% on any resource is degraded.
func SystemResourceCheck(collector MetricsCollector, diskPath string) HealthCheck {
	return func(ctx context.Context) HealthStatus {
		cpuPercent, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
		if err != nil || len(cpuPercent) == 0 {
			return NewHealthStatus(StatusUnknown, "failed to sample CPU usage")
		}
		vmem, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return NewHealthStatus(StatusUnknown, fmt.Sprintf("failed to get memory stats: %v", err))
		}
		usage, err := disk.UsageWithContext(ctx, diskPath)
		if err != nil {
			return NewHealthStatus(StatusUnknown, fmt.Sprintf("failed to get disk usage: %v", err))
		}

		if collector != nil {
			collector.RecordSystemResource(cpuPercent[0], vmem.UsedPercent, usage.UsedPercent)
		}

		status := NewHealthStatus(StatusHealthy, "system resources within limits")
		if cpuPercent[0] > 90 || vmem.UsedPercent > 90 || usage.UsedPercent > 90 {
			status = NewHealthStatus(StatusDegraded, "system resources under pressure")
		}
		return status.
			WithDetail("cpu_percent", cpuPercent[0]).
			WithDetail("memory_percent", vmem.UsedPercent).
			WithDetail("disk_percent", usage.UsedPercent)
	}
}
