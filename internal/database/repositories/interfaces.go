package repositories

import (
	"context"
	"encoding/json"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// CategoryRepository defines workspace categorization data access methods
type CategoryRepository interface {
	GetAll(ctx context.Context) (map[string]types.Category, error)
	Upsert(ctx context.Context, workspaceID string, env types.Environment, module *string) error
}

// SemanticModelRepository defines semantic model data access methods
type SemanticModelRepository interface {
	// GetAllByWorkspace returns every known model, soft-deleted ones included, keyed by workspace
	GetAllByWorkspace(ctx context.Context) (map[string][]types.SemanticModel, error)
	GetByWorkspace(ctx context.Context, workspaceID string) ([]types.SemanticModel, error)
	// Sync reconciles the stored models of a workspace with a fresh listing
	Sync(ctx context.Context, workspaceID string, incoming []types.SemanticModel) error
}

// RefreshRepository defines refresh history data access methods
type RefreshRepository interface {
	GetByWorkspace(ctx context.Context, workspaceID string) (types.RefreshMap, error)
	GetByWorkspaces(ctx context.Context, workspaceIDs []string) (map[string]types.RefreshMap, error)
	Count(ctx context.Context, workspaceID, datasetID string) (int, error)
	Save(ctx context.Context, workspaceID, datasetID string, records []types.RefreshRecord) (int, error)
}

// CapacityRepository defines capacity sample data access methods
type CapacityRepository interface {
	Save(ctx context.Context, capacityID string, points []types.CapacityPoint) (int, error)
	// Get returns samples ordered by timestamp; empty bounds are open
	Get(ctx context.Context, capacityID, start, end string) ([]types.CapacityPoint, error)
}

// ReportRepository defines report data access methods
type ReportRepository interface {
	Save(ctx context.Context, workspaceID string, reports []types.Report) error
	GetByWorkspace(ctx context.Context, workspaceID string) (map[string][]types.Report, error)
}

// ScheduleRepository defines refresh schedule data access methods
type ScheduleRepository interface {
	Save(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) error
	// GetByWorkspace returns each dataset's schedule as parsed JSON, or the raw text when it does not parse
	GetByWorkspace(ctx context.Context, workspaceID string) (map[string]interface{}, error)
}
