package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// UnnamedModel is stored when the listing carries no name
const UnnamedModel = "(unnamed)"

// SemanticModelRepository implements repositories.SemanticModelRepository
type SemanticModelRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSemanticModelRepository creates a new semantic model repository
func NewSemanticModelRepository(db *sqlx.DB) *SemanticModelRepository {
	return &SemanticModelRepository{db: db, now: time.Now}
}

const selectModels = `SELECT workspace_id, model_id, name, added_at, deleted_at FROM semantic_models`

// GetAllByWorkspace returns every stored model grouped by workspace, in insertion order
func (r *SemanticModelRepository) GetAllByWorkspace(ctx context.Context) (map[string][]types.SemanticModel, error) {
	var rows []types.SemanticModel
	if err := r.db.SelectContext(ctx, &rows, selectModels+` ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("failed to load semantic models: %w", err)
	}

	models := make(map[string][]types.SemanticModel)
	for _, m := range rows {
		models[m.WorkspaceID] = append(models[m.WorkspaceID], m)
	}
	return models, nil
}

// GetByWorkspace returns the stored models of one workspace
func (r *SemanticModelRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]types.SemanticModel, error) {
	models := []types.SemanticModel{}
	if err := r.db.SelectContext(ctx, &models, selectModels+` WHERE workspace_id = ? ORDER BY rowid`, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to load semantic models for %s: %w", workspaceID, err)
	}
	return models, nil
}

// Sync upserts every incoming model, keeping its original added_at and
// clearing any deletion mark, then soft-deletes stored models that are
// missing from incoming. Entries without a model id are ignored.
func (r *SemanticModelRepository) Sync(ctx context.Context, workspaceID string, incoming []types.SemanticModel) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin model sync: %w", err)
	}
	defer tx.Rollback()

	var existing []types.SemanticModel
	if err := tx.SelectContext(ctx, &existing, selectModels+` WHERE workspace_id = ?`, workspaceID); err != nil {
		return fmt.Errorf("failed to load existing models: %w", err)
	}

	now := r.now().UTC().Format(time.RFC3339)
	seen := make(map[string]bool, len(incoming))

	upsert := `
		INSERT INTO semantic_models (workspace_id, model_id, name, added_at, deleted_at)
		VALUES (?, ?, ?, ?, NULL)
		ON CONFLICT(workspace_id, model_id) DO UPDATE SET
			name = excluded.name,
			deleted_at = NULL
	`
	for _, m := range incoming {
		if m.ModelID == "" {
			continue
		}
		seen[m.ModelID] = true
		name := m.Name
		if name == "" {
			name = UnnamedModel
		}
		if _, err := tx.ExecContext(ctx, upsert, workspaceID, m.ModelID, name, now); err != nil {
			return fmt.Errorf("failed to upsert model %s: %w", m.ModelID, err)
		}
	}

	for _, m := range existing {
		if seen[m.ModelID] || m.DeletedAt != nil {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE semantic_models SET deleted_at = ? WHERE workspace_id = ? AND model_id = ?`,
			now, workspaceID, m.ModelID)
		if err != nil {
			return fmt.Errorf("failed to mark model %s deleted: %w", m.ModelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model sync: %w", err)
	}
	return nil
}
