package analytics

import "time"

// Window names used in performance set payloads
const (
	WindowShort = "24h"
	WindowLong  = "7d"
	WindowAll   = "all"
)

// Policy holds the thresholds the engine applies when flagging models
type Policy struct {
	// DegradationFactor is the multiple of a model's mean duration its latest run must exceed to be flagged slow
	DegradationFactor float64 `json:"degradation_factor" yaml:"degradation_factor"`
	// EfficientCeilingSeconds is the highest mean duration an efficient model may have
	EfficientCeilingSeconds float64 `json:"efficient_ceiling_seconds" yaml:"efficient_ceiling_seconds"`
	// TopN bounds the top_slow and top_fail rankings
	TopN int `json:"top_n" yaml:"top_n"`
	// HistoryWindow is the span of the fine-grained duration series
	HistoryWindow time.Duration `json:"history_window" yaml:"history_window"`
	ShortWindow   time.Duration `json:"short_window" yaml:"short_window"`
	LongWindow    time.Duration `json:"long_window" yaml:"long_window"`
}

// DefaultPolicy returns the stock operational thresholds
func DefaultPolicy() Policy {
	return Policy{
		DegradationFactor:       1.1,
		EfficientCeilingSeconds: 300,
		TopN:                    10,
		HistoryWindow:           24 * time.Hour,
		ShortWindow:             24 * time.Hour,
		LongWindow:              7 * 24 * time.Hour,
	}
}

// withDefaults replaces unset fields with their defaults
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.DegradationFactor <= 0 {
		p.DegradationFactor = def.DegradationFactor
	}
	if p.EfficientCeilingSeconds <= 0 {
		p.EfficientCeilingSeconds = def.EfficientCeilingSeconds
	}
	if p.TopN <= 0 {
		p.TopN = def.TopN
	}
	if p.HistoryWindow <= 0 {
		p.HistoryWindow = def.HistoryWindow
	}
	if p.ShortWindow <= 0 {
		p.ShortWindow = def.ShortWindow
	}
	if p.LongWindow <= 0 {
		p.LongWindow = def.LongWindow
	}
	return p
}

// degraded reports whether the latest duration is strictly above the mean scaled by the degradation factor.
// Used by both the model listing and the workspace rollup so the two agree.
func (p Policy) degraded(last, avg float64) bool {
	return avg > 0 && last > avg*p.DegradationFactor
}

// efficient reports whether a model with the given failures and mean duration meets the efficiency ceiling
func (p Policy) efficient(failures int, avg float64) bool {
	return failures == 0 && avg > 0 && avg <= p.EfficientCeilingSeconds
}
