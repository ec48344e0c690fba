package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// RefreshRepository implements repositories.RefreshRepository
type RefreshRepository struct {
	db *sqlx.DB
}

// NewRefreshRepository creates a new refresh history repository
func NewRefreshRepository(db *sqlx.DB) *RefreshRepository {
	return &RefreshRepository{db: db}
}

const selectRefreshes = `
	SELECT workspace_id, dataset_id, start_time, end_time, COALESCE(status, '') AS status, duration_seconds
	FROM refresh_history`

// GetByWorkspace returns the history of a workspace grouped by dataset, newest first
func (r *RefreshRepository) GetByWorkspace(ctx context.Context, workspaceID string) (types.RefreshMap, error) {
	var rows []types.RefreshRecord
	query := selectRefreshes + ` WHERE workspace_id = ? ORDER BY start_time DESC`
	if err := r.db.SelectContext(ctx, &rows, query, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to load refreshes for %s: %w", workspaceID, err)
	}

	refreshes := make(types.RefreshMap)
	for _, rec := range rows {
		refreshes[rec.DatasetID] = append(refreshes[rec.DatasetID], rec)
	}
	return refreshes, nil
}

// GetByWorkspaces loads the history of several workspaces in one query
func (r *RefreshRepository) GetByWorkspaces(ctx context.Context, workspaceIDs []string) (map[string]types.RefreshMap, error) {
	out := make(map[string]types.RefreshMap, len(workspaceIDs))
	if len(workspaceIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(selectRefreshes+` WHERE workspace_id IN (?) ORDER BY start_time DESC`, workspaceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh query: %w", err)
	}

	var rows []types.RefreshRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load refreshes: %w", err)
	}

	for _, id := range workspaceIDs {
		out[id] = make(types.RefreshMap)
	}
	for _, rec := range rows {
		out[rec.WorkspaceID][rec.DatasetID] = append(out[rec.WorkspaceID][rec.DatasetID], rec)
	}
	return out, nil
}

// Count returns how many refreshes are stored for a dataset
func (r *RefreshRepository) Count(ctx context.Context, workspaceID, datasetID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM refresh_history WHERE workspace_id = ? AND dataset_id = ?`
	if err := r.db.GetContext(ctx, &n, query, workspaceID, datasetID); err != nil {
		return 0, fmt.Errorf("failed to count refreshes: %w", err)
	}
	return n, nil
}

// Save inserts or replaces refresh records keyed by start time. The duration
// is derived here from the start and end times and is null when either is
// missing or unparseable. Records without a start time are skipped.
func (r *RefreshRepository) Save(ctx context.Context, workspaceID, datasetID string, records []types.RefreshRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin refresh save: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO refresh_history
			(workspace_id, dataset_id, start_time, end_time, status, duration_seconds, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
	`

	saved := 0
	for _, rec := range records {
		if rec.StartTime == "" {
			continue
		}
		var status *string
		if rec.Status != "" {
			status = &rec.Status
		}
		if _, err := tx.ExecContext(ctx, query,
			workspaceID, datasetID, rec.StartTime, rec.EndTime, status, refreshDuration(rec),
		); err != nil {
			return 0, fmt.Errorf("failed to save refresh %s: %w", rec.StartTime, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit refreshes: %w", err)
	}
	return saved, nil
}

// refreshDuration returns end minus start in seconds
func refreshDuration(rec types.RefreshRecord) *float64 {
	if rec.EndTime == nil {
		return nil
	}
	start, ok := analytics.ParseTimestamp(rec.StartTime)
	if !ok {
		return nil
	}
	end, ok := analytics.ParseTimestamp(*rec.EndTime)
	if !ok {
		return nil
	}
	d := end.Sub(start).Seconds()
	return &d
}
