package analytics

import (
	"sort"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// Cadence is the observed refresh rhythm of one dataset
type Cadence struct {
	AvgIntervalHours float64 `json:"avg_interval_hours"`
	FreqPerHour      float64 `json:"freq_per_hour"`
}

// EstimateCadence computes the mean gap in hours between consecutive refresh
// starts and its reciprocal. Unparseable start times are skipped and fewer than
// two valid starts yield a zero cadence.
func EstimateCadence(records []types.RefreshRecord) Cadence {
	starts := make([]int64, 0, len(records))
	for _, r := range records {
		if ts, ok := ParseTimestamp(r.StartTime); ok {
			starts = append(starts, ts.UnixNano())
		}
	}
	if len(starts) < 2 {
		return Cadence{}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var total float64
	for i := 1; i < len(starts); i++ {
		total += float64(starts[i]-starts[i-1]) / float64(3600*1e9)
	}
	avg := total / float64(len(starts)-1)

	c := Cadence{AvgIntervalHours: avg}
	if avg != 0 {
		c.FreqPerHour = 1 / avg
	}
	return c
}

// EstimateIntervals returns the mean interval hours for every dataset of a workspace
func EstimateIntervals(refreshes types.RefreshMap) map[string]float64 {
	out := make(map[string]float64, len(refreshes))
	for datasetID, records := range refreshes {
		out[datasetID] = EstimateCadence(records).AvgIntervalHours
	}
	return out
}
