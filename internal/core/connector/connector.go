package connector

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// ErrUnavailable is returned while the circuit breaker rejects calls
var ErrUnavailable = errors.New("BI connector unavailable")

// Connector talks to the BI service
type Connector interface {
	ListWorkspaces(ctx context.Context) ([]types.Workspace, error)
	ListDatasets(ctx context.Context, workspaceID string) ([]Dataset, error)
	ListRefreshes(ctx context.Context, workspaceID, datasetID string, top int) ([]Refresh, error)
	TriggerRefresh(ctx context.Context, workspaceID, datasetID string) (interface{}, error)
	ListReports(ctx context.Context, workspaceID string) ([]Report, error)
	GetSchedule(ctx context.Context, workspaceID, datasetID string) (json.RawMessage, error)
	UpdateSchedule(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) (interface{}, error)
	TakeOver(ctx context.Context, workspaceID, datasetID string) (interface{}, error)
}

// Dataset is a semantic model as listed by the helper
type Dataset struct {
	ID          string `json:"id"`
	ModelID     string `json:"model_id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// Key returns the dataset id, accepting either spelling
func (d Dataset) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.ModelID
}

// Label returns the best available name, or "(unnamed)"
func (d Dataset) Label() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.DisplayName != "":
		return d.DisplayName
	}
	return "(unnamed)"
}

// Refresh is one refresh as reported by the helper
type Refresh struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Status    *string `json:"status"`
}

// Report is a report as listed by the helper
type Report struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	DatasetID   *string `json:"datasetId"`
	WebURL      *string `json:"webUrl"`
	EmbedURL    *string `json:"embedUrl"`
	CreatedDate *string `json:"createdDate"`
}

// Record converts the listing entry into a stored report
func (r Report) Record(workspaceID string) types.Report {
	return types.Report{
		WorkspaceID: workspaceID,
		ID:          r.ID,
		Name:        r.Name,
		DatasetID:   r.DatasetID,
		WebURL:      r.WebURL,
		EmbedURL:    r.EmbedURL,
		CreatedAt:   r.CreatedDate,
	}
}
