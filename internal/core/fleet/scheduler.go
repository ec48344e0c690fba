package fleet

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/config"
	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
)

// SyncReport summarizes one periodic sync run
type SyncReport struct {
	Workspaces int           `json:"workspaces"`
	Models     int           `json:"models"`
	Saved      int           `json:"saved"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// Scheduler periodically pulls refresh history for every categorized workspace
type Scheduler struct {
	service  *Service
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *logrus.Logger

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
	lastRun *SyncReport
}

// NewScheduler creates a sync scheduler. The schedule accepts six-field cron
// expressions and descriptors such as "@every 30m".
func NewScheduler(service *Service, cfg config.SyncConfig, logger *logrus.Logger) (*Scheduler, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	cronLogger := cron.PrintfLogger(logger)
	s := &Scheduler{
		service:  service,
		schedule: schedule,
		timeout:  10 * time.Minute,
		logger:   logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
			cron.WithChain(
				cron.SkipIfStillRunning(cronLogger),
				cron.Recover(cronLogger),
			),
		),
	}

	id, err := s.cron.AddFunc(schedule, s.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	s.entryID = id
	return s, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.cron.Start()
	s.running = true
	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": s.cron.Entry(s.entryID).Next,
	}).Info("Refresh sync scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running sync up to ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Refresh sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timeout waiting for refresh sync to complete")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastRun returns the report of the most recent sync, nil before the first
func (s *Scheduler) LastRun() *SyncReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.WithError(err).Error("Refresh sync run failed")
	}
}

// RunOnce syncs the refresh history of every live model in every categorized
// workspace. Per-model failures are logged and counted; only failing to read
// the stored fleet aborts the run.
func (s *Scheduler) RunOnce(ctx context.Context) (*SyncReport, error) {
	start := time.Now()
	svc := s.service

	categories, err := svc.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	workspaceIDs := make([]string, 0, len(categories))
	for id := range categories {
		workspaceIDs = append(workspaceIDs, id)
	}
	sort.Strings(workspaceIDs)

	report := &SyncReport{Workspaces: len(workspaceIDs)}
	for _, wsID := range workspaceIDs {
		models, err := svc.repos.Model.GetByWorkspace(ctx, wsID)
		if err != nil {
			return nil, err
		}
		for _, m := range models {
			if m.DeletedAt != nil {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Models++
			saved, err := svc.syncRefreshes(ctx, wsID, m.ModelID)
			if err != nil {
				report.Failed++
				s.logger.WithError(err).WithFields(logrus.Fields{
					"workspace_id": wsID,
					"dataset_id":   m.ModelID,
				}).Warn("Refresh sync failed for model")
				continue
			}
			report.Saved += saved
		}
	}
	report.Duration = time.Since(start)

	s.mu.Lock()
	s.lastRun = report
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"workspaces": report.Workspaces,
		"models":     report.Models,
		"saved":      report.Saved,
		"failed":     report.Failed,
		"duration":   report.Duration.String(),
	}).Info("Refresh sync completed")
	svc.events.Publish(websocket.MessageTypeSyncCompleted, map[string]interface{}{
		"workspaces": report.Workspaces,
		"models":     report.Models,
		"saved":      report.Saved,
		"failed":     report.Failed,
	})
	return report, nil
}
