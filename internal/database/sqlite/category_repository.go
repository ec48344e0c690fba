package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// CategoryRepository implements repositories.CategoryRepository
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetAll returns every category keyed by workspace id
func (r *CategoryRepository) GetAll(ctx context.Context) (map[string]types.Category, error) {
	query := `SELECT workspace_id, env, module, updated_at FROM categories`

	var rows []types.Category
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	categories := make(map[string]types.Category, len(rows))
	for _, c := range rows {
		categories[c.WorkspaceID] = c
	}
	return categories, nil
}

// Upsert inserts or replaces the category of a workspace
func (r *CategoryRepository) Upsert(ctx context.Context, workspaceID string, env types.Environment, module *string) error {
	query := `
		INSERT INTO categories (workspace_id, env, module, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(workspace_id) DO UPDATE SET
			env = excluded.env,
			module = excluded.module,
			updated_at = datetime('now')
	`

	if _, err := r.db.ExecContext(ctx, query, workspaceID, string(env), module); err != nil {
		return fmt.Errorf("failed to upsert category for %s: %w", workspaceID, err)
	}
	return nil
}
