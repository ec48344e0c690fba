package database

import (
	"github.com/jmoiron/sqlx"

	"github.com/frostdev-ops/pbi-monitor-go/internal/database/repositories"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database/sqlite"
)

// Repositories holds all repository instances
type Repositories struct {
	Category repositories.CategoryRepository
	Model    repositories.SemanticModelRepository
	Refresh  repositories.RefreshRepository
	Capacity repositories.CapacityRepository
	Report   repositories.ReportRepository
	Schedule repositories.ScheduleRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Category: sqlite.NewCategoryRepository(db),
		Model:    sqlite.NewSemanticModelRepository(db),
		Refresh:  sqlite.NewRefreshRepository(db),
		Capacity: sqlite.NewCapacityRepository(db),
		Report:   sqlite.NewReportRepository(db),
		Schedule: sqlite.NewScheduleRepository(db),
	}
}
