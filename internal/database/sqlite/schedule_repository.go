package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// ScheduleRepository implements repositories.ScheduleRepository
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save stores the schedule of a dataset as JSON text
func (r *ScheduleRepository) Save(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) error {
	if workspaceID == "" || datasetID == "" {
		return nil
	}

	var text *string
	if schedule != nil {
		s := string(schedule)
		text = &s
	}

	query := `
		INSERT OR REPLACE INTO schedules (workspace_id, dataset_id, schedule_json, updated_at)
		VALUES (?, ?, ?, datetime('now'))
	`
	if _, err := r.db.ExecContext(ctx, query, workspaceID, datasetID, text); err != nil {
		return fmt.Errorf("failed to save schedule for %s/%s: %w", workspaceID, datasetID, err)
	}
	return nil
}

// GetByWorkspace returns the decoded schedule of every dataset in a workspace
func (r *ScheduleRepository) GetByWorkspace(ctx context.Context, workspaceID string) (map[string]interface{}, error) {
	schedules := make(map[string]interface{})
	if workspaceID == "" {
		return schedules, nil
	}

	var rows []types.Schedule
	query := `SELECT workspace_id, dataset_id, schedule_json, updated_at FROM schedules WHERE workspace_id = ?`
	if err := r.db.SelectContext(ctx, &rows, query, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to load schedules for %s: %w", workspaceID, err)
	}

	for _, s := range rows {
		schedules[s.DatasetID] = s.Decoded()
	}
	return schedules, nil
}
