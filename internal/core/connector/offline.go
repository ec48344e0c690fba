package connector

import (
	"context"
	"encoding/json"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// Offline is a Connector that never reaches the BI service. Views built on
// it fall back to stored data only.
type Offline struct{}

func (Offline) ListWorkspaces(context.Context) ([]types.Workspace, error) {
	return nil, ErrUnavailable
}

func (Offline) ListDatasets(context.Context, string) ([]Dataset, error) {
	return nil, ErrUnavailable
}

func (Offline) ListRefreshes(context.Context, string, string, int) ([]Refresh, error) {
	return nil, ErrUnavailable
}

func (Offline) TriggerRefresh(context.Context, string, string) (interface{}, error) {
	return nil, ErrUnavailable
}

func (Offline) ListReports(context.Context, string) ([]Report, error) {
	return nil, ErrUnavailable
}

func (Offline) GetSchedule(context.Context, string, string) (json.RawMessage, error) {
	return nil, ErrUnavailable
}

func (Offline) UpdateSchedule(context.Context, string, string, json.RawMessage) (interface{}, error) {
	return nil, ErrUnavailable
}

func (Offline) TakeOver(context.Context, string, string) (interface{}, error) {
	return nil, ErrUnavailable
}
