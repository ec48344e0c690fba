package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// ReportRepository implements repositories.ReportRepository
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts or replaces the reports of a workspace; reports without an id are skipped
func (r *ReportRepository) Save(ctx context.Context, workspaceID string, reports []types.Report) error {
	if workspaceID == "" {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin report save: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO reports (workspace_id, report_id, name, dataset_id, web_url, embed_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, rep := range reports {
		if rep.ID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query,
			workspaceID, rep.ID, rep.Name, rep.DatasetID, rep.WebURL, rep.EmbedURL, rep.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save report %s: %w", rep.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reports: %w", err)
	}
	return nil
}

// GetByWorkspace returns reports grouped by dataset id, with "" for reports bound to no dataset
func (r *ReportRepository) GetByWorkspace(ctx context.Context, workspaceID string) (map[string][]types.Report, error) {
	grouped := make(map[string][]types.Report)
	if workspaceID == "" {
		return grouped, nil
	}

	var rows []types.Report
	query := `
		SELECT workspace_id, report_id, name, dataset_id, web_url, embed_url, created_at
		FROM reports WHERE workspace_id = ? ORDER BY rowid
	`
	if err := r.db.SelectContext(ctx, &rows, query, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", workspaceID, err)
	}

	for _, rep := range rows {
		key := ""
		if rep.DatasetID != nil {
			key = *rep.DatasetID
		}
		grouped[key] = append(grouped[key], rep)
	}
	return grouped, nil
}
