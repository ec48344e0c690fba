package fleet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// CapacityIngest is a decoded capacity-metrics upload
type CapacityIngest struct {
	CapacityID string
	Points     []types.CapacityPoint
}

// ParseCapacityIngest accepts {capacity_id?, points: [...]}, {capacity_id?, points: {...}},
// a bare list of samples or a single sample. Samples name their instant as ts or
// timestamp and their value as cu or value.
func ParseCapacityIngest(body []byte) (CapacityIngest, error) {
	var ingest CapacityIngest
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ingest, nil
	}

	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return ingest, fmt.Errorf("invalid capacity payload: %w", err)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if id, ok := v["capacity_id"].(string); ok {
			ingest.CapacityID = strings.TrimSpace(id)
		}
		if pts, ok := v["points"]; ok {
			switch p := pts.(type) {
			case []interface{}:
				items = p
			case map[string]interface{}:
				items = []interface{}{p}
			}
		} else if looksLikeSample(v) {
			items = []interface{}{v}
		}
	default:
		return ingest, fmt.Errorf("invalid capacity payload: unexpected %T", raw)
	}

	for _, item := range items {
		sample, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		ingest.Points = append(ingest.Points, samplePoint(sample))
	}
	return ingest, nil
}

func looksLikeSample(m map[string]interface{}) bool {
	for _, k := range []string{"ts", "timestamp", "cu", "value"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func samplePoint(m map[string]interface{}) types.CapacityPoint {
	p := types.CapacityPoint{
		TS:     firstString(m, "ts", "timestamp"),
		Metric: firstString(m, "metric"),
	}
	for _, k := range []string{"cu", "value"} {
		if v, ok := numberValue(m[k]); ok {
			p.Value = &v
			break
		}
	}
	return p
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
