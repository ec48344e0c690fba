package analytics

import (
	"strings"
	"time"
)

// Layouts tried in order. Fractional seconds are accepted after the seconds
// field even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp converts an ISO-8601 style timestamp to a UTC instant.
// A trailing "Z" or an explicit offset is honoured; a value without an offset
// is taken as UTC. The second return value is false for empty or malformed input.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// cutoffFrom returns the instant d before now
func cutoffFrom(now time.Time, d time.Duration) *time.Time {
	c := now.Add(-d)
	return &c
}
