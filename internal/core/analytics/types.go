package analytics

import (
	"sort"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// Snapshot is the fully materialized input of one engine pass
type Snapshot struct {
	// Workspaces is the live workspace list; it may be empty when the connector is unavailable
	Workspaces []types.Workspace
	Categories map[string]types.Category
	Models     map[string][]types.SemanticModel
	// Refreshes maps workspace id to dataset id to records, newest first
	Refreshes map[string]types.RefreshMap
	Capacity  []types.CapacityPoint
}

// workspaceNames indexes the live workspace list by id
func (s Snapshot) workspaceNames() map[string]string {
	names := make(map[string]string, len(s.Workspaces))
	for _, ws := range s.Workspaces {
		names[ws.ID] = ws.Name
	}
	return names
}

// sortedKeys returns map keys in ascending order so output is deterministic
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Point is a single plot coordinate
type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// Series is a labelled line of points
type Series struct {
	Label string  `json:"label"`
	Env   string  `json:"env"`
	Data  []Point `json:"data"`
}
