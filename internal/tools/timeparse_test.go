package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, loc)

	tests := []struct {
		name  string
		value string
		bound dayBound
		want  time.Time
	}{
		{
			name:  "rfc3339",
			value: "2026-03-12T09:00:00-05:00",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 9, 0, 0, 0, loc),
		},
		{
			name:  "rfc3339 zulu",
			value: "2026-03-12T14:00:00Z",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "datetime with seconds without zone",
			value: "2026-03-12T09:00:30",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 9, 0, 30, 0, loc),
		},
		{
			name:  "datetime without zone uses local",
			value: "2026-03-12T09:00",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 9, 0, 0, 0, loc),
		},
		{
			name:  "space separated datetime",
			value: "2026-03-12 09:00",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 9, 0, 0, 0, loc),
		},
		{
			name:  "date only snaps to start of day",
			value: "2026-03-12",
			bound: boundStart,
			want:  time.Date(2026, 3, 12, 0, 0, 0, 0, loc),
		},
		{
			name:  "date only snaps to end of day",
			value: "2026-03-12",
			bound: boundEnd,
			want:  time.Date(2026, 3, 12, 23, 59, 59, 0, loc),
		},
		{
			name:  "now",
			value: "now",
			bound: boundStart,
			want:  now,
		},
		{
			name:  "today as lower bound",
			value: "today",
			bound: boundStart,
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		},
		{
			name:  "today as upper bound",
			value: "today",
			bound: boundEnd,
			want:  time.Date(2026, 3, 10, 23, 59, 59, 0, loc),
		},
		{
			name:  "tomorrow",
			value: "Tomorrow",
			bound: boundStart,
			want:  time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
		},
		{
			name:  "yesterday",
			value: "yesterday",
			bound: boundEnd,
			want:  time.Date(2026, 3, 9, 23, 59, 59, 0, loc),
		},
		{
			name:  "end of prefix overrides bound",
			value: "end of tomorrow",
			bound: boundStart,
			want:  time.Date(2026, 3, 11, 23, 59, 59, 0, loc),
		},
		{
			name:  "start of prefix overrides bound",
			value: "start of today",
			bound: boundEnd,
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		},
		{
			name:  "whitespace trimmed",
			value: "  today  ",
			bound: boundStart,
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTime(tt.value, tt.bound, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseTime_Errors(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	for _, value := range []string{"", "   ", "next thursday", "12/03/2026", "noon"} {
		t.Run("invalid "+value, func(t *testing.T) {
			_, err := parseTime(value, boundStart, now)
			assert.Error(t, err)
		})
	}
}
