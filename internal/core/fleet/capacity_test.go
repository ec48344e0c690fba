package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapacityIngest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		capacityID  string
		points      int
		firstTS     string
		firstValue  *float64
		firstMetric string
	}{
		{
			name:       "wrapped list",
			body:       `{"capacity_id":"cap1","points":[{"ts":"2024-01-01T00:00:00Z","cu":12.5},{"timestamp":"2024-01-01T00:05:00Z","value":3}]}`,
			capacityID: "cap1",
			points:     2,
			firstTS:    "2024-01-01T00:00:00Z",
			firstValue: f64(12.5),
		},
		{
			name:        "wrapped single point",
			body:        `{"points":{"timestamp":"2024-01-01T00:00:00Z","value":"7.25","metric":"memory"}}`,
			points:      1,
			firstTS:     "2024-01-01T00:00:00Z",
			firstValue:  f64(7.25),
			firstMetric: "memory",
		},
		{
			name:       "bare list",
			body:       `[{"ts":"2024-01-01T00:00:00Z","cu":1},{"ts":"2024-01-01T01:00:00Z"},"junk"]`,
			points:     2,
			firstTS:    "2024-01-01T00:00:00Z",
			firstValue: f64(1),
		},
		{
			name:       "single bare point",
			body:       `{"ts":"2024-01-01T00:00:00Z","cu":0}`,
			points:     1,
			firstTS:    "2024-01-01T00:00:00Z",
			firstValue: f64(0),
		},
		{
			name:       "cu wins over value",
			body:       `[{"ts":"t","cu":2,"value":9}]`,
			points:     1,
			firstTS:    "t",
			firstValue: f64(2),
		},
		{
			name:       "capacity only",
			body:       `{"capacity_id":" cap2 "}`,
			capacityID: "cap2",
		},
		{
			name: "empty body",
			body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest, err := ParseCapacityIngest([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.capacityID, ingest.CapacityID)
			require.Len(t, ingest.Points, tt.points)
			if tt.points == 0 {
				return
			}
			first := ingest.Points[0]
			assert.Equal(t, tt.firstTS, first.TS)
			assert.Equal(t, tt.firstMetric, first.Metric)
			if tt.firstValue == nil {
				assert.Nil(t, first.Value)
			} else {
				require.NotNil(t, first.Value)
				assert.Equal(t, *tt.firstValue, *first.Value)
			}
		})
	}
}

func TestParseCapacityIngest_MissingValue(t *testing.T) {
	ingest, err := ParseCapacityIngest([]byte(`[{"ts":"2024-01-01T00:00:00Z","cu":"n/a"}]`))
	require.NoError(t, err)
	require.Len(t, ingest.Points, 1)
	assert.Nil(t, ingest.Points[0].Value)
}

func TestParseCapacityIngest_Invalid(t *testing.T) {
	_, err := ParseCapacityIngest([]byte(`{"points":`))
	assert.Error(t, err)

	_, err = ParseCapacityIngest([]byte(`42`))
	assert.Error(t, err)
}
