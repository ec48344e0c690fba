package analytics

import (
	"time"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// FilterRefreshes returns a copy of refreshes keeping only records whose start
// time is at or after cutoff. A nil cutoff returns the input unchanged. Records
// whose start time cannot be parsed are dropped. Every dataset key of the input
// is present in the result, possibly with an empty list.
func FilterRefreshes(refreshes types.RefreshMap, cutoff *time.Time) types.RefreshMap {
	if cutoff == nil {
		return refreshes
	}
	filtered := make(types.RefreshMap, len(refreshes))
	for datasetID, records := range refreshes {
		kept := make([]types.RefreshRecord, 0, len(records))
		for _, r := range records {
			ts, ok := ParseTimestamp(r.StartTime)
			if !ok {
				continue
			}
			if !ts.Before(*cutoff) {
				kept = append(kept, r)
			}
		}
		filtered[datasetID] = kept
	}
	return filtered
}

// FilterWorkspaceRefreshes applies FilterRefreshes to every workspace
func FilterWorkspaceRefreshes(byWorkspace map[string]types.RefreshMap, cutoff *time.Time) map[string]types.RefreshMap {
	if cutoff == nil {
		return byWorkspace
	}
	filtered := make(map[string]types.RefreshMap, len(byWorkspace))
	for workspaceID, refreshes := range byWorkspace {
		filtered[workspaceID] = FilterRefreshes(refreshes, cutoff)
	}
	return filtered
}
