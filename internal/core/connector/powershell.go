package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// Helper modes
const (
	modeWorkspaces = "workspaces"
	modeModels     = "models"
	modeRefreshes  = "refreshes"
	modeTrigger    = "trigger"
	modeReports    = "reports"
	modeSchedule   = "schedule"
	modeTakeover   = "takeover"
)

// PowerShellConnector drives the Get-PBIWorkspaces helper script
type PowerShellConnector struct {
	config  config.ConnectorConfig
	runner  CommandRunner
	breaker *gobreaker.CircuitBreaker
	metrics metrics.MetricsCollector
	logger  *logrus.Logger
}

// NewPowerShellConnector creates a connector that runs the helper through runner
func NewPowerShellConnector(cfg config.ConnectorConfig, runner CommandRunner, collector metrics.MetricsCollector, logger *logrus.Logger) *PowerShellConnector {
	if runner == nil {
		runner = ExecRunner{}
	}
	if collector == nil {
		collector = metrics.NoopCollector{}
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &PowerShellConnector{
		config:  cfg,
		runner:  runner,
		metrics: collector,
		logger:  logger,
	}

	minRequests := cfg.Breaker.MinRequests
	ratio := cfg.Breaker.FailureRatio
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pbi-connector",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Connector circuit breaker changed state")
			collector.RecordBreakerState(name, to.String())
		},
	})
	collector.RecordBreakerState("pbi-connector", gobreaker.StateClosed.String())

	return c
}

// BreakerState reports the current circuit breaker state
func (c *PowerShellConnector) BreakerState() string {
	return c.breaker.State().String()
}

// ListWorkspaces lists every workspace visible to the tenant
func (c *PowerShellConnector) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	var workspaces []types.Workspace
	if err := c.callKeyed(ctx, modeWorkspaces, "workspaces", nil, &workspaces, "workspaces"); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// ListDatasets lists the semantic models of a workspace
func (c *PowerShellConnector) ListDatasets(ctx context.Context, workspaceID string) ([]Dataset, error) {
	var datasets []Dataset
	args := []string{"-Mode", modeModels, "-WorkspaceId", workspaceID}
	if err := c.callKeyed(ctx, modeModels, "datasets", args, &datasets, "models "+workspaceID); err != nil {
		return nil, err
	}
	return datasets, nil
}

// ListRefreshes returns up to top most recent refreshes of a dataset
func (c *PowerShellConnector) ListRefreshes(ctx context.Context, workspaceID, datasetID string, top int) ([]Refresh, error) {
	var refreshes []Refresh
	args := []string{"-Mode", modeRefreshes, "-WorkspaceId", workspaceID, "-DatasetId", datasetID, "-Top", strconv.Itoa(top)}
	label := fmt.Sprintf("refreshes %s/%s top=%d", workspaceID, datasetID, top)
	if err := c.callKeyed(ctx, modeRefreshes, "refreshes", args, &refreshes, label); err != nil {
		return nil, err
	}
	return refreshes, nil
}

// TriggerRefresh requests an on-demand refresh and returns the helper's reply
func (c *PowerShellConnector) TriggerRefresh(ctx context.Context, workspaceID, datasetID string) (interface{}, error) {
	args := []string{"-Mode", modeTrigger, "-WorkspaceId", workspaceID, "-DatasetId", datasetID}
	return c.callAny(ctx, modeTrigger, args, fmt.Sprintf("trigger %s/%s", workspaceID, datasetID))
}

// ListReports lists the reports of a workspace
func (c *PowerShellConnector) ListReports(ctx context.Context, workspaceID string) ([]Report, error) {
	var reports []Report
	args := []string{"-Mode", modeReports, "-WorkspaceId", workspaceID}
	if err := c.callKeyed(ctx, modeReports, "reports", args, &reports, "reports "+workspaceID); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetSchedule returns the refresh schedule of a dataset as raw JSON
func (c *PowerShellConnector) GetSchedule(ctx context.Context, workspaceID, datasetID string) (json.RawMessage, error) {
	var schedule json.RawMessage
	args := []string{"-Mode", modeSchedule, "-WorkspaceId", workspaceID, "-DatasetId", datasetID}
	label := fmt.Sprintf("schedule-get %s/%s", workspaceID, datasetID)
	if err := c.callKeyed(ctx, modeSchedule, "schedule", args, &schedule, label); err != nil {
		return nil, err
	}
	return schedule, nil
}

// UpdateSchedule replaces the refresh schedule of a dataset
func (c *PowerShellConnector) UpdateSchedule(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) (interface{}, error) {
	compact := new(bytes.Buffer)
	if err := json.Compact(compact, schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule payload: %w", err)
	}
	args := []string{"-Mode", modeSchedule, "-WorkspaceId", workspaceID, "-DatasetId", datasetID, "-ScheduleJson", compact.String()}
	return c.callAny(ctx, modeSchedule, args, fmt.Sprintf("schedule-set %s/%s", workspaceID, datasetID))
}

// TakeOver makes the service principal the owner of a dataset
func (c *PowerShellConnector) TakeOver(ctx context.Context, workspaceID, datasetID string) (interface{}, error) {
	args := []string{"-Mode", modeTakeover, "-WorkspaceId", workspaceID, "-DatasetId", datasetID}
	return c.callAny(ctx, modeTakeover, args, fmt.Sprintf("takeover %s/%s", workspaceID, datasetID))
}

// callKeyed runs the helper and decodes the value stored under key into out
func (c *PowerShellConnector) callKeyed(ctx context.Context, mode, key string, args []string, out interface{}, label string) error {
	_, err := c.execute(ctx, mode, args, label, func(stdout []byte) (interface{}, error) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(stdout, &envelope); err != nil {
			return nil, fmt.Errorf("could not parse PowerShell output: %w\nRaw output:\n%s", err, stdout)
		}
		raw, ok := envelope[key]
		if !ok {
			return nil, fmt.Errorf("unexpected response: missing %q in %s", key, truncate(stdout, 512))
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", key, err)
		}
		return nil, nil
	})
	return err
}

// callAny runs the helper and returns its decoded JSON reply
func (c *PowerShellConnector) callAny(ctx context.Context, mode string, args []string, label string) (interface{}, error) {
	return c.execute(ctx, mode, args, label, func(stdout []byte) (interface{}, error) {
		var reply interface{}
		if err := json.Unmarshal(stdout, &reply); err != nil {
			return nil, fmt.Errorf("could not parse PowerShell output: %w\nRaw output:\n%s", err, stdout)
		}
		return reply, nil
	})
}

// execute runs one helper invocation through the circuit breaker
func (c *PowerShellConnector) execute(ctx context.Context, mode string, args []string, label string, decode func([]byte) (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		stdout, err := c.run(ctx, args, label)
		if err != nil {
			return nil, err
		}
		return decode(stdout)
	})
	c.metrics.RecordConnectorCall(mode, err == nil, time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}

// run executes the helper script and returns stdout on a zero exit
func (c *PowerShellConnector) run(ctx context.Context, extra []string, label string) ([]byte, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	args := append([]string{
		"-NoProfile",
		"-ExecutionPolicy", "Bypass",
		"-File", c.config.ScriptPath,
		"-TenantId", c.config.TenantID,
	}, extra...)

	stdout, stderr, err := c.runner.Run(ctx, c.config.Shell, args...)

	output := stdout
	if len(output) == 0 {
		output = stderr
	}
	c.logger.WithField("label", label).Debug(string(output))

	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = strings.TrimSpace(string(stdout))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("PowerShell exited %d: %s", exitErr.ExitCode(), msg)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("PowerShell call %q aborted: %w", label, ctx.Err())
		}
		return nil, fmt.Errorf("failed to run PowerShell helper: %w", err)
	}
	return stdout, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
