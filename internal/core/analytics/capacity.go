package analytics

import (
	"sort"
	"time"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// CapacitySeries turns capacity samples into a chronologically ordered plot
// series. Samples without a timestamp, without a value, with an unparseable
// timestamp, or before cutoff (when set) are dropped. Ordering uses the parsed
// instant; x keeps the timestamp as it was recorded.
func CapacitySeries(points []types.CapacityPoint, cutoff *time.Time) []Point {
	type sample struct {
		at    time.Time
		point Point
	}
	samples := make([]sample, 0, len(points))
	for _, p := range points {
		if p.TS == "" || p.Value == nil {
			continue
		}
		at, ok := ParseTimestamp(p.TS)
		if !ok {
			continue
		}
		if cutoff != nil && at.Before(*cutoff) {
			continue
		}
		samples = append(samples, sample{at: at, point: Point{X: p.TS, Y: *p.Value}})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].at.Before(samples[j].at)
	})

	series := make([]Point, len(samples))
	for i, s := range samples {
		series[i] = s.point
	}
	return series
}
