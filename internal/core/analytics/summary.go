package analytics

import (
	"strings"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// Buckets used when a category lacks a module or environment
const (
	UnassignedModuleBucket = "Unassigned module"
	UnspecifiedEnvBucket   = "UNSPECIFIED"
)

// WorkspaceStats is the health rollup of one workspace
type WorkspaceStats struct {
	ModelCount   int      `json:"model_count"`
	FailedCount  int      `json:"failed_count"`
	SlowCount    int      `json:"slow_count"`
	FailedModels []string `json:"failed_models"`
	SlowModels   []string `json:"slow_models"`
}

// WorkspaceEntry is a categorized workspace placed in the summary
type WorkspaceEntry struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Models []types.SemanticModel `json:"models"`
	WorkspaceStats
}

// Summary groups workspace entries by module then environment
type Summary map[string]map[string][]WorkspaceEntry

// WorkspaceHealth computes the rollup for one workspace's models. A model is
// failed when its latest refresh did not complete and slow when its latest
// duration is degraded against its own mean.
func WorkspaceHealth(models []types.SemanticModel, refreshes types.RefreshMap, policy Policy) WorkspaceStats {
	policy = policy.withDefaults()
	stats := WorkspaceStats{
		ModelCount:   len(models),
		FailedModels: []string{},
		SlowModels:   []string{},
	}

	for _, m := range models {
		records := refreshes[m.ModelID]
		if len(records) == 0 {
			continue
		}
		if !records[0].Completed() {
			stats.FailedModels = append(stats.FailedModels, m.DisplayName())
		}
		if avg, ok := meanDuration(records); ok && policy.degraded(latestDuration(records), avg) {
			stats.SlowModels = append(stats.SlowModels, m.DisplayName())
		}
	}

	stats.FailedCount = len(stats.FailedModels)
	stats.SlowCount = len(stats.SlowModels)
	return stats
}

// BuildSummary places every categorized live workspace under module and
// environment and returns the per-workspace stats alongside. Categories for
// workspaces missing from the live list are treated as stale and skipped.
func BuildSummary(snap Snapshot, policy Policy) (Summary, map[string]WorkspaceStats) {
	names := make(map[string]string, len(snap.Workspaces))
	live := make(map[string]bool, len(snap.Workspaces))
	for _, ws := range snap.Workspaces {
		names[ws.ID] = ws.Name
		live[ws.ID] = true
	}

	summary := make(Summary)
	stats := make(map[string]WorkspaceStats)

	for _, workspaceID := range sortedKeys(snap.Categories) {
		if !live[workspaceID] {
			continue
		}
		cat := snap.Categories[workspaceID]
		models := snap.Models[workspaceID]
		if models == nil {
			models = []types.SemanticModel{}
		}

		wsStats := WorkspaceHealth(models, snap.Refreshes[workspaceID], policy)
		stats[workspaceID] = wsStats

		module := cat.ModuleName()
		if module == "" {
			module = UnassignedModuleBucket
		}
		env := strings.ToUpper(string(cat.Env))
		if env == "" {
			env = UnspecifiedEnvBucket
		}
		if summary[module] == nil {
			summary[module] = make(map[string][]WorkspaceEntry)
		}
		summary[module][env] = append(summary[module][env], WorkspaceEntry{
			ID:             workspaceID,
			Name:           names[workspaceID],
			Models:         models,
			WorkspaceStats: wsStats,
		})
	}
	return summary, stats
}
