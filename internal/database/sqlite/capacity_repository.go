package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// CapacityRepository implements repositories.CapacityRepository
type CapacityRepository struct {
	db *sqlx.DB
}

// NewCapacityRepository creates a new capacity metrics repository
func NewCapacityRepository(db *sqlx.DB) *CapacityRepository {
	return &CapacityRepository{db: db}
}

// Save stores samples for a capacity. Samples without a timestamp are skipped
// and a missing metric name defaults to "cu".
func (r *CapacityRepository) Save(ctx context.Context, capacityID string, points []types.CapacityPoint) (int, error) {
	if capacityID == "" || len(points) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin capacity save: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO capacity_metrics (capacity_id, ts, metric, value, recorded_at)
		VALUES (?, ?, ?, ?, datetime('now'))
	`

	saved := 0
	for _, p := range points {
		if p.TS == "" {
			continue
		}
		metric := p.Metric
		if metric == "" {
			metric = types.DefaultCapacityMetric
		}
		if _, err := tx.ExecContext(ctx, query, capacityID, p.TS, metric, p.Value); err != nil {
			return 0, fmt.Errorf("failed to save capacity sample %s: %w", p.TS, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit capacity samples: %w", err)
	}
	return saved, nil
}

// Get returns the samples of a capacity within [start, end], ascending by timestamp
func (r *CapacityRepository) Get(ctx context.Context, capacityID, start, end string) ([]types.CapacityPoint, error) {
	points := []types.CapacityPoint{}
	if capacityID == "" {
		return points, nil
	}

	query := `SELECT capacity_id, ts, COALESCE(metric, 'cu') AS metric, value FROM capacity_metrics WHERE capacity_id = ?`
	args := []interface{}{capacityID}
	if start != "" {
		query += ` AND ts >= ?`
		args = append(args, start)
	}
	if end != "" {
		query += ` AND ts <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY ts ASC`

	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load capacity samples: %w", err)
	}
	return points, nil
}
