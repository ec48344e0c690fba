package analytics

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// PerformanceWindow is the dashboard payload for one time window
type PerformanceWindow struct {
	Models    []ModelPerformance `json:"models"`
	TopSlow   []ModelPerformance `json:"top_slow"`
	TopFail   []ModelPerformance `json:"top_fail"`
	Efficient []ModelPerformance `json:"efficient"`
	Outliers  []ModelPerformance `json:"outliers"`
	History24 []Series           `json:"history24"`
	Capacity  []Point            `json:"capacity"`
}

// PerformanceSets holds one PerformanceWindow per window name
type PerformanceSets map[string]PerformanceWindow

// Engine computes dashboard aggregates from snapshots. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	policy Policy
	now    func() time.Time
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithClock overrides the clock used to place window cutoffs
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with the given policy; unset policy fields take defaults
func NewEngine(policy Policy, opts ...EngineOption) *Engine {
	e := &Engine{
		policy: policy.withDefaults(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the effective thresholds
func (e *Engine) Policy() Policy {
	return e.policy
}

// Summary builds the module/environment grouping and workspace stats
func (e *Engine) Summary(snap Snapshot) (Summary, map[string]WorkspaceStats) {
	return BuildSummary(snap, e.policy)
}

// Performance lists metrics for models that have refresh history
func (e *Engine) Performance(snap Snapshot) []ModelPerformance {
	return BuildPerformance(snap, snap.Refreshes, e.policy, true)
}

// PerformanceSets computes the short, long and all-time windows. The windows
// share no state and are computed concurrently.
func (e *Engine) PerformanceSets(snap Snapshot) PerformanceSets {
	now := e.now().UTC()
	windows := []struct {
		name   string
		cutoff *time.Time
	}{
		{WindowShort, cutoffFrom(now, e.policy.ShortWindow)},
		{WindowLong, cutoffFrom(now, e.policy.LongWindow)},
		{WindowAll, nil},
	}
	historyCutoff := now.Add(-e.policy.HistoryWindow)

	results := make([]PerformanceWindow, len(windows))
	var g errgroup.Group
	for i, w := range windows {
		g.Go(func() error {
			results[i] = e.window(snap, w.cutoff, historyCutoff)
			return nil
		})
	}
	_ = g.Wait()

	sets := make(PerformanceSets, len(windows))
	for i, w := range windows {
		sets[w.name] = results[i]
	}
	return sets
}

// window computes a single PerformanceWindow
func (e *Engine) window(snap Snapshot, cutoff *time.Time, historyCutoff time.Time) PerformanceWindow {
	filtered := FilterWorkspaceRefreshes(snap.Refreshes, cutoff)
	models := BuildPerformance(snap, filtered, e.policy, false)
	if models == nil {
		models = []ModelPerformance{}
	}

	pw := PerformanceWindow{
		Models: models,
		TopSlow: topN(models, e.policy.TopN,
			func(m ModelPerformance) bool { return m.AvgSec > 0 },
			func(a, b ModelPerformance) bool { return a.AvgSec > b.AvgSec }),
		TopFail: topN(models, e.policy.TopN,
			func(m ModelPerformance) bool { return m.Failures > 0 },
			func(a, b ModelPerformance) bool { return a.Failures > b.Failures }),
		Efficient: selectModels(models, func(m ModelPerformance) bool { return m.Efficient }),
		Outliers:  selectModels(models, func(m ModelPerformance) bool { return m.Outlier }),
		History24: durationHistory(snap, filtered, historyCutoff),
		Capacity:  CapacitySeries(snap.Capacity, cutoff),
	}
	return pw
}

// selectModels keeps models matching keep, preserving order
func selectModels(models []ModelPerformance, keep func(ModelPerformance) bool) []ModelPerformance {
	out := []ModelPerformance{}
	for _, m := range models {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// topN ranks the models matching keep with a stable sort so ties keep input order
func topN(models []ModelPerformance, n int, keep func(ModelPerformance) bool, greater func(a, b ModelPerformance) bool) []ModelPerformance {
	ranked := selectModels(models, keep)
	sort.SliceStable(ranked, func(i, j int) bool { return greater(ranked[i], ranked[j]) })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// durationHistory builds one series per dataset with a refresh at or after
// cutoff. Points carry the duration in minutes and are ordered by start time.
func durationHistory(snap Snapshot, refreshes map[string]types.RefreshMap, cutoff time.Time) []Series {
	names := snap.workspaceNames()
	out := []Series{}

	for _, workspaceID := range sortedKeys(refreshes) {
		wsName := names[workspaceID]
		if wsName == "" {
			wsName = workspaceID
		}
		env := ""
		if cat, ok := snap.Categories[workspaceID]; ok {
			env = strings.ToUpper(string(cat.Env))
		}
		modelNames := make(map[string]string, len(snap.Models[workspaceID]))
		for _, m := range snap.Models[workspaceID] {
			modelNames[m.ModelID] = m.Name
		}

		datasets := refreshes[workspaceID]
		for _, datasetID := range sortedKeys(datasets) {
			type sample struct {
				at    time.Time
				point Point
			}
			var samples []sample
			for _, r := range datasets[datasetID] {
				at, ok := ParseTimestamp(r.StartTime)
				if !ok || at.Before(cutoff) {
					continue
				}
				var minutes float64
				if r.DurationSeconds != nil {
					minutes = *r.DurationSeconds / 60
				}
				samples = append(samples, sample{at: at, point: Point{X: r.StartTime, Y: minutes}})
			}
			if len(samples) == 0 {
				continue
			}
			sort.SliceStable(samples, func(i, j int) bool { return samples[i].at.Before(samples[j].at) })

			label := modelNames[datasetID]
			if label == "" {
				label = datasetID
			}
			series := Series{Label: label + " (" + wsName + ")", Env: env, Data: make([]Point, len(samples))}
			for i, s := range samples {
				series.Data[i] = s.point
			}
			out = append(out, series)
		}
	}
	return out
}
