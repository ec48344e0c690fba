package analytics

import (
	"strings"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// UnassignedModule labels models whose workspace has no module
const UnassignedModule = "Unassigned"

// ModelMetrics are the refresh statistics of one semantic model
type ModelMetrics struct {
	AvgSec           float64 `json:"avg_sec"`
	LastSec          float64 `json:"last_sec"`
	Failures         int     `json:"failures"`
	Successes        int     `json:"successes"`
	Total            int     `json:"total"`
	FreqPerHour      float64 `json:"freq_per_hour"`
	AvgIntervalHours float64 `json:"avg_interval_hours"`
	LastStatus       string  `json:"last_status"`
	Outlier          bool    `json:"outlier"`
	Efficient        bool    `json:"efficient"`
}

// ModelPerformance is one row of the performance listing
type ModelPerformance struct {
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	Env           string `json:"env"`
	Module        string `json:"module"`
	ModelID       string `json:"model_id"`
	ModelName     string `json:"model_name"`
	ModelMetrics
}

// meanDuration averages the non-null durations, returning false when there are none
func meanDuration(records []types.RefreshRecord) (float64, bool) {
	var sum float64
	var n int
	for _, r := range records {
		if r.DurationSeconds != nil {
			sum += *r.DurationSeconds
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// latestDuration is the duration of the list head, zero when absent
func latestDuration(records []types.RefreshRecord) float64 {
	if len(records) == 0 || records[0].DurationSeconds == nil {
		return 0
	}
	return *records[0].DurationSeconds
}

// AggregateModel computes metrics for one model from its refresh list, newest first
func AggregateModel(records []types.RefreshRecord, policy Policy) ModelMetrics {
	policy = policy.withDefaults()

	m := ModelMetrics{Total: len(records)}
	for _, r := range records {
		if r.Completed() {
			m.Successes++
		} else {
			m.Failures++
		}
	}
	m.AvgSec, _ = meanDuration(records)
	m.LastSec = latestDuration(records)
	if len(records) > 0 {
		m.LastStatus = records[0].Status
	}
	m.Outlier = policy.degraded(m.LastSec, m.AvgSec)
	m.Efficient = policy.efficient(m.Failures, m.AvgSec)

	cadence := EstimateCadence(records)
	m.FreqPerHour = cadence.FreqPerHour
	m.AvgIntervalHours = cadence.AvgIntervalHours
	return m
}

// BuildPerformance lists per-model metrics for every semantic model in the
// snapshot, using refreshes in place of the snapshot's own history so callers
// can pass a window-filtered copy. With skipEmpty, models without refreshes are
// omitted. Workspaces are visited in id order and models in their stored order.
func BuildPerformance(snap Snapshot, refreshes map[string]types.RefreshMap, policy Policy, skipEmpty bool) []ModelPerformance {
	names := snap.workspaceNames()
	var out []ModelPerformance

	for _, workspaceID := range sortedKeys(snap.Models) {
		cat := snap.Categories[workspaceID]
		env := strings.ToUpper(string(cat.Env))
		module := cat.ModuleName()
		if module == "" {
			module = UnassignedModule
		}
		wsName := names[workspaceID]
		if wsName == "" {
			wsName = workspaceID
		}
		refreshMap := refreshes[workspaceID]

		for _, model := range snap.Models[workspaceID] {
			records := refreshMap[model.ModelID]
			if skipEmpty && len(records) == 0 {
				continue
			}
			out = append(out, ModelPerformance{
				WorkspaceID:   workspaceID,
				WorkspaceName: wsName,
				Env:           env,
				Module:        module,
				ModelID:       model.ModelID,
				ModelName:     model.DisplayName(),
				ModelMetrics:  AggregateModel(records, policy),
			})
		}
	}
	return out
}
