package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/analytics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/metrics"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
	"github.com/frostdev-ops/pbi-monitor-go/internal/database"
	"github.com/frostdev-ops/pbi-monitor-go/internal/websocket"
)

// Publisher receives fleet change events
type Publisher interface {
	Publish(eventType string, data map[string]interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]interface{}) {}

// Options configures the service
type Options struct {
	// CapacityID is used when an ingest does not name a capacity
	CapacityID string
	// InitialTop is the history depth fetched for a model with no stored refreshes
	InitialTop int
	// IncrementalTop is the history depth fetched once a model has refreshes
	IncrementalTop int
	// CacheSeconds is echoed to views so clients know how stale the workspace list may be
	CacheSeconds int
}

// Service loads fleet snapshots, runs the analytics engine over them and
// performs ingestion through the connector.
type Service struct {
	repos     *database.Repositories
	conn      connector.Connector
	engine    *analytics.Engine
	opts      Options
	events    Publisher
	collector metrics.MetricsCollector
	logger    *logrus.Logger
}

// NewService creates a fleet service. events and collector may be nil.
func NewService(repos *database.Repositories, conn connector.Connector, engine *analytics.Engine, opts Options, events Publisher, collector metrics.MetricsCollector, logger *logrus.Logger) *Service {
	if opts.InitialTop <= 0 {
		opts.InitialTop = 100
	}
	if opts.IncrementalTop <= 0 {
		opts.IncrementalTop = 10
	}
	if events == nil {
		events = noopPublisher{}
	}
	if collector == nil {
		collector = metrics.NoopCollector{}
	}
	return &Service{
		repos:     repos,
		conn:      conn,
		engine:    engine,
		opts:      opts,
		events:    events,
		collector: collector,
		logger:    logger,
	}
}

// DashboardView is the module/environment overview
type DashboardView struct {
	Workspaces     []types.Workspace                   `json:"workspaces"`
	Categories     map[string]types.Category           `json:"categories"`
	SemanticModels map[string][]types.SemanticModel    `json:"semantic_models"`
	Summary        analytics.Summary                   `json:"summary"`
	WorkspaceStats map[string]analytics.WorkspaceStats `json:"ws_stats"`
	CacheSeconds   int                                 `json:"cache_seconds"`
	Error          string                              `json:"error,omitempty"`
}

// PerformanceView carries the windowed performance sets
type PerformanceView struct {
	Perf  analytics.PerformanceSets `json:"perf"`
	Error string                    `json:"error,omitempty"`
}

// CategorizeView lists workspaces alongside their categories and known modules
type CategorizeView struct {
	Workspaces   []types.Workspace         `json:"workspaces"`
	Categories   map[string]types.Category `json:"categories"`
	Modules      []string                  `json:"modules"`
	CacheSeconds int                       `json:"cache_seconds"`
	Error        string                    `json:"error,omitempty"`
}

// WorkspacesView is the live workspace listing with categories
type WorkspacesView struct {
	Workspaces []types.Workspace         `json:"workspaces"`
	Categories map[string]types.Category `json:"categories"`
}

// CategorizeItem is one requested categorization
type CategorizeItem struct {
	ID     string `json:"id" form:"id"`
	Env    string `json:"env" form:"env"`
	Module string `json:"module" form:"module"`
}

// CategorizeResult is returned by Categorize
type CategorizeResult struct {
	Category   *types.Category           `json:"category"`
	Categories map[string]types.Category `json:"categories"`
}

// BulkCategorizeResult is returned by CategorizeBulk
type BulkCategorizeResult struct {
	Updated    []string                  `json:"updated"`
	Categories map[string]types.Category `json:"categories"`
}

// ScheduleUpdateResult is the connector's answer plus non-fatal problems
type ScheduleUpdateResult struct {
	Result   interface{} `json:"result"`
	Warnings []string    `json:"warnings,omitempty"`
}

// WorkspaceScheduleResult reports a schedule applied to every model of a workspace
type WorkspaceScheduleResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed"`
}

// CapacityIngestResult reports a capacity upload
type CapacityIngestResult struct {
	CapacityID string `json:"capacity_id"`
	Saved      int    `json:"saved"`
}

// WorkspaceDetailView is everything known about one workspace
type WorkspaceDetailView struct {
	Workspace        types.Workspace           `json:"workspace"`
	Models           []types.SemanticModel     `json:"models"`
	Refreshes        types.RefreshMap          `json:"refreshes"`
	ReportsByModel   map[string][]types.Report `json:"reports_by_model"`
	Schedules        map[string]interface{}    `json:"schedules"`
	AvgIntervalHours map[string]float64        `json:"avg_interval_hours"`
	Categories       map[string]types.Category `json:"categories"`
}

// DatasetDetailView is the refresh history of one dataset
type DatasetDetailView struct {
	Workspace *types.Workspace      `json:"workspace"`
	Dataset   *types.SemanticModel  `json:"dataset"`
	DatasetID string                `json:"dataset_id"`
	Refreshes []types.RefreshRecord `json:"refreshes"`
	Error     string                `json:"error,omitempty"`
}

// liveWorkspaces lists workspaces, degrading a connector failure to an empty list and its message
func (s *Service) liveWorkspaces(ctx context.Context) ([]types.Workspace, string) {
	workspaces, err := s.conn.ListWorkspaces(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list workspaces")
		return []types.Workspace{}, err.Error()
	}
	if workspaces == nil {
		workspaces = []types.Workspace{}
	}
	return workspaces, ""
}

// Dashboard builds the module/environment summary for categorized workspaces
func (s *Service) Dashboard(ctx context.Context) (*DashboardView, error) {
	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	models, err := s.repos.Model.GetAllByWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	refreshes, err := s.repos.Refresh.GetByWorkspaces(ctx, sortedIDs(categories))
	if err != nil {
		return nil, err
	}
	workspaces, errText := s.liveWorkspaces(ctx)

	snap := analytics.Snapshot{
		Workspaces: workspaces,
		Categories: categories,
		Models:     models,
		Refreshes:  refreshes,
	}

	start := time.Now()
	summary, stats := s.engine.Summary(snap)
	s.collector.RecordEngineRun("summary", time.Since(start))
	s.recordFleetHealth(len(workspaces), stats)

	return &DashboardView{
		Workspaces:     workspaces,
		Categories:     categories,
		SemanticModels: models,
		Summary:        summary,
		WorkspaceStats: stats,
		CacheSeconds:   s.opts.CacheSeconds,
		Error:          errText,
	}, nil
}

func (s *Service) recordFleetHealth(workspaces int, stats map[string]analytics.WorkspaceStats) {
	var models, failed, slow int
	for _, st := range stats {
		models += st.ModelCount
		failed += st.FailedCount
		slow += st.SlowCount
	}
	s.collector.RecordFleetHealth(workspaces, models, failed, slow)
}

// Performance computes the windowed performance sets for every known workspace
func (s *Service) Performance(ctx context.Context) (*PerformanceView, error) {
	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	models, err := s.repos.Model.GetAllByWorkspace(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(categories)+len(models))
	for id := range categories {
		ids[id] = struct{}{}
	}
	for id := range models {
		ids[id] = struct{}{}
	}
	refreshes, err := s.repos.Refresh.GetByWorkspaces(ctx, sortedIDs(ids))
	if err != nil {
		return nil, err
	}
	capacity, err := s.repos.Capacity.Get(ctx, s.opts.CapacityID, "", "")
	if err != nil {
		return nil, err
	}
	workspaces, errText := s.liveWorkspaces(ctx)

	start := time.Now()
	sets := s.engine.PerformanceSets(analytics.Snapshot{
		Workspaces: workspaces,
		Categories: categories,
		Models:     models,
		Refreshes:  refreshes,
		Capacity:   capacity,
	})
	s.collector.RecordEngineRun("performance_sets", time.Since(start))

	return &PerformanceView{Perf: sets, Error: errText}, nil
}

// CategorizePage lists every live workspace with the modules already in use
func (s *Service) CategorizePage(ctx context.Context) (*CategorizeView, error) {
	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, errText := s.liveWorkspaces(ctx)

	return &CategorizeView{
		Workspaces:   workspaces,
		Categories:   categories,
		Modules:      distinctModules(categories),
		CacheSeconds: s.opts.CacheSeconds,
		Error:        errText,
	}, nil
}

// distinctModules returns the trimmed module names, sorted case-insensitively
func distinctModules(categories map[string]types.Category) []string {
	seen := make(map[string]struct{})
	modules := []string{}
	for _, c := range categories {
		m := strings.TrimSpace(c.ModuleName())
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		li, lj := strings.ToLower(modules[i]), strings.ToLower(modules[j])
		if li != lj {
			return li < lj
		}
		return modules[i] < modules[j]
	})
	return modules
}

// ListWorkspaces returns the live listing; connector failures propagate
func (s *Service) ListWorkspaces(ctx context.Context) (*WorkspacesView, error) {
	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := s.conn.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	if workspaces == nil {
		workspaces = []types.Workspace{}
	}
	return &WorkspacesView{Workspaces: workspaces, Categories: categories}, nil
}

func (s *Service) upsertCategory(ctx context.Context, item CategorizeItem) (bool, error) {
	id := strings.TrimSpace(item.ID)
	env, ok := types.ParseEnvironment(item.Env)
	if id == "" || !ok {
		return false, nil
	}
	var module *string
	if m := strings.TrimSpace(item.Module); m != "" {
		module = &m
	}
	if err := s.repos.Category.Upsert(ctx, id, env, module); err != nil {
		return false, err
	}
	return true, nil
}

// Categorize assigns one workspace to an environment and module
func (s *Service) Categorize(ctx context.Context, item CategorizeItem) (*CategorizeResult, error) {
	ok, err := s.upsertCategory(ctx, item)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCategory
	}

	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(item.ID)
	result := &CategorizeResult{Categories: categories}
	if c, found := categories[id]; found {
		result.Category = &c
	}

	s.events.Publish(websocket.MessageTypeCategoriesUpdated, map[string]interface{}{
		"updated": []string{id},
	})
	return result, nil
}

// CategorizeBulk applies every valid item and skips the rest
func (s *Service) CategorizeBulk(ctx context.Context, items []CategorizeItem) (*BulkCategorizeResult, error) {
	updated := []string{}
	for _, item := range items {
		ok, err := s.upsertCategory(ctx, item)
		if err != nil {
			return nil, err
		}
		if ok {
			updated = append(updated, strings.TrimSpace(item.ID))
		}
	}

	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(updated) > 0 {
		s.events.Publish(websocket.MessageTypeCategoriesUpdated, map[string]interface{}{
			"updated": updated,
		})
	}
	return &BulkCategorizeResult{Updated: updated, Categories: categories}, nil
}

// SyncModels reconciles the stored semantic models of a workspace with the connector's listing
func (s *Service) SyncModels(ctx context.Context, workspaceID string) ([]types.SemanticModel, error) {
	datasets, err := s.conn.ListDatasets(ctx, workspaceID)
	if err != nil {
		s.collector.RecordSync("models", false, 0)
		return nil, err
	}

	incoming := make([]types.SemanticModel, 0, len(datasets))
	for _, d := range datasets {
		incoming = append(incoming, types.SemanticModel{
			WorkspaceID: workspaceID,
			ModelID:     d.Key(),
			Name:        d.Label(),
		})
	}
	if err := s.repos.Model.Sync(ctx, workspaceID, incoming); err != nil {
		s.collector.RecordSync("models", false, 0)
		return nil, err
	}
	s.collector.RecordSync("models", true, len(incoming))

	models, err := s.repos.Model.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"models":       len(incoming),
	}).Info("Synced semantic models")
	s.events.Publish(websocket.MessageTypeModelsSynced, map[string]interface{}{
		"workspace_id": workspaceID,
		"count":        len(models),
	})
	return models, nil
}

// SyncRefreshes pulls the recent refresh history of a dataset and stores it.
// The first pull of a dataset fetches a deeper history than later ones.
func (s *Service) SyncRefreshes(ctx context.Context, workspaceID, datasetID string) ([]types.RefreshRecord, error) {
	saved, err := s.syncRefreshes(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, err
	}

	byDataset, err := s.repos.Refresh.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(websocket.MessageTypeRefreshesSynced, map[string]interface{}{
		"workspace_id": workspaceID,
		"dataset_id":   datasetID,
		"saved":        saved,
	})
	return nonNilRecords(byDataset[datasetID]), nil
}

func (s *Service) syncRefreshes(ctx context.Context, workspaceID, datasetID string) (int, error) {
	existing, err := s.repos.Refresh.Count(ctx, workspaceID, datasetID)
	if err != nil {
		return 0, err
	}
	top := s.opts.InitialTop
	if existing > 0 {
		top = s.opts.IncrementalTop
	}

	refreshes, err := s.conn.ListRefreshes(ctx, workspaceID, datasetID, top)
	if err != nil {
		s.collector.RecordSync("refreshes", false, 0)
		return 0, err
	}
	saved, err := s.repos.Refresh.Save(ctx, workspaceID, datasetID, refreshRecords(workspaceID, datasetID, refreshes))
	if err != nil {
		s.collector.RecordSync("refreshes", false, 0)
		return 0, err
	}
	s.collector.RecordSync("refreshes", true, saved)

	s.logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"dataset_id":   datasetID,
		"top":          top,
		"saved":        saved,
	}).Debug("Synced refresh history")
	return saved, nil
}

func refreshRecords(workspaceID, datasetID string, refreshes []connector.Refresh) []types.RefreshRecord {
	records := make([]types.RefreshRecord, 0, len(refreshes))
	for _, r := range refreshes {
		rec := types.RefreshRecord{
			WorkspaceID: workspaceID,
			DatasetID:   datasetID,
			EndTime:     r.EndTime,
		}
		if r.StartTime != nil {
			rec.StartTime = *r.StartTime
		}
		if r.Status != nil {
			rec.Status = *r.Status
		}
		records = append(records, rec)
	}
	return records
}

func nonNilRecords(records []types.RefreshRecord) []types.RefreshRecord {
	if records == nil {
		return []types.RefreshRecord{}
	}
	return records
}

// SyncReports pulls the report listing of a workspace and returns the stored reports grouped by dataset
func (s *Service) SyncReports(ctx context.Context, workspaceID string) (map[string][]types.Report, error) {
	reports, err := s.conn.ListReports(ctx, workspaceID)
	if err != nil {
		s.collector.RecordSync("reports", false, 0)
		return nil, err
	}

	records := make([]types.Report, 0, len(reports))
	for _, r := range reports {
		records = append(records, r.Record(workspaceID))
	}
	if err := s.repos.Report.Save(ctx, workspaceID, records); err != nil {
		s.collector.RecordSync("reports", false, 0)
		return nil, err
	}
	s.collector.RecordSync("reports", true, len(records))

	grouped, err := s.repos.Report.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(websocket.MessageTypeReportsSynced, map[string]interface{}{
		"workspace_id": workspaceID,
		"count":        len(records),
	})
	return grouped, nil
}

// GetSchedule returns the live refresh schedule of a dataset
func (s *Service) GetSchedule(ctx context.Context, workspaceID, datasetID string) (json.RawMessage, error) {
	return s.conn.GetSchedule(ctx, workspaceID, datasetID)
}

func isEmptySchedule(schedule json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(schedule))
	switch trimmed {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}

// SetSchedule takes over the dataset, updates its schedule and stores it.
// Only the update itself is fatal; takeover and storage failures become warnings.
func (s *Service) SetSchedule(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) (*ScheduleUpdateResult, error) {
	if isEmptySchedule(schedule) {
		return nil, ErrEmptySchedule
	}

	result, warnings, err := s.applySchedule(ctx, workspaceID, datasetID, schedule)
	if err != nil {
		return nil, err
	}

	s.events.Publish(websocket.MessageTypeScheduleUpdated, map[string]interface{}{
		"workspace_id": workspaceID,
		"dataset_ids":  []string{datasetID},
	})
	return &ScheduleUpdateResult{Result: result, Warnings: warnings}, nil
}

func (s *Service) applySchedule(ctx context.Context, workspaceID, datasetID string, schedule json.RawMessage) (interface{}, []string, error) {
	var warnings []string
	log := s.logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"dataset_id":   datasetID,
	})

	if _, err := s.conn.TakeOver(ctx, workspaceID, datasetID); err != nil {
		log.WithError(err).Warn("Dataset takeover failed")
		warnings = append(warnings, fmt.Sprintf("takeover failed: %v", err))
	}

	result, err := s.conn.UpdateSchedule(ctx, workspaceID, datasetID, schedule)
	if err != nil {
		s.collector.RecordSync("schedule", false, 0)
		return nil, warnings, err
	}
	s.collector.RecordSync("schedule", true, 1)

	if err := s.repos.Schedule.Save(ctx, workspaceID, datasetID, schedule); err != nil {
		log.WithError(err).Warn("Failed to store schedule")
		warnings = append(warnings, fmt.Sprintf("schedule not stored: %v", err))
	}
	return result, warnings, nil
}

// SetWorkspaceSchedule applies one schedule to every stored model of a workspace
func (s *Service) SetWorkspaceSchedule(ctx context.Context, workspaceID string, schedule json.RawMessage) (*WorkspaceScheduleResult, error) {
	if isEmptySchedule(schedule) {
		return nil, ErrEmptySchedule
	}
	models, err := s.repos.Model.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	res := &WorkspaceScheduleResult{Updated: []string{}, Failed: map[string]string{}}
	for _, m := range models {
		if m.ModelID == "" {
			continue
		}
		if _, _, err := s.applySchedule(ctx, workspaceID, m.ModelID, schedule); err != nil {
			res.Failed[m.ModelID] = err.Error()
			continue
		}
		res.Updated = append(res.Updated, m.ModelID)
	}

	if len(res.Updated) > 0 {
		s.events.Publish(websocket.MessageTypeScheduleUpdated, map[string]interface{}{
			"workspace_id": workspaceID,
			"dataset_ids":  res.Updated,
		})
	}
	return res, nil
}

// IngestCapacity stores capacity samples, falling back to the configured capacity id
func (s *Service) IngestCapacity(ctx context.Context, ingest CapacityIngest) (*CapacityIngestResult, error) {
	capacityID := ingest.CapacityID
	if capacityID == "" {
		capacityID = s.opts.CapacityID
	}
	if capacityID == "" {
		return nil, ErrMissingCapacityID
	}
	if len(ingest.Points) == 0 {
		return nil, ErrNoCapacityPoints
	}

	saved, err := s.repos.Capacity.Save(ctx, capacityID, ingest.Points)
	if err != nil {
		s.collector.RecordSync("capacity", false, 0)
		return nil, err
	}
	s.collector.RecordSync("capacity", true, saved)

	s.events.Publish(websocket.MessageTypeCapacityIngested, map[string]interface{}{
		"capacity_id": capacityID,
		"saved":       saved,
	})
	return &CapacityIngestResult{CapacityID: capacityID, Saved: saved}, nil
}

// WorkspaceDetail gathers models, history, reports and schedules of a live workspace
func (s *Service) WorkspaceDetail(ctx context.Context, workspaceID string) (*WorkspaceDetailView, error) {
	workspaces, err := s.conn.ListWorkspaces(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list workspaces")
	}
	ws, found := findWorkspace(workspaces, workspaceID)
	if !found {
		return nil, ErrWorkspaceNotFound
	}

	categories, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	models, err := s.repos.Model.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	refreshes, err := s.repos.Refresh.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.repos.Schedule.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	reports, err := s.repos.Report.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return &WorkspaceDetailView{
		Workspace:        ws,
		Models:           models,
		Refreshes:        refreshes,
		ReportsByModel:   reports,
		Schedules:        schedules,
		AvgIntervalHours: analytics.EstimateIntervals(refreshes),
		Categories:       categories,
	}, nil
}

func findWorkspace(workspaces []types.Workspace, id string) (types.Workspace, bool) {
	for _, ws := range workspaces {
		if ws.ID == id {
			return ws, true
		}
	}
	return types.Workspace{}, false
}

// DatasetDetail returns the stored history of a dataset, pulling fresh history
// first when refresh is set and the workspace is live. Failures are reported
// in the view rather than returned.
func (s *Service) DatasetDetail(ctx context.Context, workspaceID, datasetID string, refresh bool) (*DatasetDetailView, error) {
	view := &DatasetDetailView{DatasetID: datasetID}

	workspaces, err := s.conn.ListWorkspaces(ctx)
	if err != nil {
		view.Error = err.Error()
	} else if ws, found := findWorkspace(workspaces, workspaceID); found {
		view.Workspace = &ws
	}

	models, err := s.repos.Model.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].ModelID == datasetID {
			view.Dataset = &models[i]
			break
		}
	}

	if refresh && view.Workspace != nil {
		if _, err := s.syncRefreshes(ctx, workspaceID, datasetID); err != nil {
			s.logger.WithError(err).WithField("dataset_id", datasetID).Warn("Refresh history sync failed")
			view.Error = err.Error()
		}
	}

	byDataset, err := s.repos.Refresh.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	view.Refreshes = nonNilRecords(byDataset[datasetID])
	return view, nil
}

// TriggerRefresh asks the BI service to refresh a dataset now
func (s *Service) TriggerRefresh(ctx context.Context, workspaceID, datasetID string) (interface{}, error) {
	result, err := s.conn.TriggerRefresh(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"dataset_id":   datasetID,
	}).Info("Triggered dataset refresh")
	s.events.Publish(websocket.MessageTypeRefreshTriggered, map[string]interface{}{
		"workspace_id": workspaceID,
		"dataset_id":   datasetID,
	})
	return result, nil
}

// sortedIDs returns the keys of an id-keyed map in ascending order
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
