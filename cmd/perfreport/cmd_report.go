package main

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/logger"
)

const reportTimeout = 5 * time.Minute

func newCmdSummary() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the module/environment dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, func(ctx context.Context, svc *fleet.Service) (interface{}, error) {
				return svc.Dashboard(ctx)
			})
		},
	}
}

func newCmdPerformance() *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Print the windowed performance sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, func(ctx context.Context, svc *fleet.Service) (interface{}, error) {
				return svc.Performance(ctx)
			})
		},
	}
}

func runReport(cmd *cobra.Command, build func(context.Context, *fleet.Service) (interface{}, error)) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	live, _ := cmd.Flags().GetBool("live")
	svc := newService(cfg, db, live, log.Logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
	defer cancel()
	view, err := build(ctx, svc)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, view)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	return cfg, nil
}

// storedWorkspaces stands in for the live listing when the BI service is not
// consulted: every categorized workspace counts as live, named by its id.
type storedWorkspaces struct {
	connector.Offline
	repos *database.Repositories
}

func (s storedWorkspaces) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	workspaces := make([]types.Workspace, 0, len(categories))
	for id := range categories {
		workspaces = append(workspaces, types.Workspace{ID: id, Name: id})
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })
	return workspaces, nil
}

func newService(cfg *config.Config, db *sqlx.DB, live bool, log *logrus.Logger) *fleet.Service {
	repos := database.NewRepositories(db)
	var conn connector.Connector = storedWorkspaces{repos: repos}
	if live {
		conn = connector.NewPowerShellConnector(cfg.Connector, connector.ExecRunner{}, metrics.NoopCollector{}, log)
	}
	return fleet.NewService(repos, conn, analytics.NewEngine(cfg.Analytics.Policy()), fleet.Options{
		CapacityID:     cfg.Connector.CapacityID,
		InitialTop:     cfg.Sync.InitialTop,
		IncrementalTop: cfg.Sync.IncrementalTop,
		CacheSeconds:   cfg.Connector.WorkspaceCacheSeconds,
	}, nil, nil, log)
}
