package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonth(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"January", time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC), "2026-M01"},
		{"December", time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC), "2025-M12"},
		{"Converted to UTC", time.Date(2026, time.March, 1, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)), "2026-M02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Month(tt.at))
		})
	}
}

func TestWeek(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"Mid year", time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC), "2026-W05"},
		{"New year belongs to previous ISO year", time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
		{"Late December in next ISO year", time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), "2026-W01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Week(tt.at))
		})
	}
}

func TestWeek_SameWeekSameLabel(t *testing.T) {
	monday := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, time.October, 18, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, Week(monday), Week(sunday))
	assert.NotEqual(t, Week(monday), Week(sunday.Add(time.Second)))
}
