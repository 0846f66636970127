package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/core/internal/domain/entities"
)

func date(s string) entities.Date {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWindowFor(t *testing.T) {
	orgStart := date("2024-01-01")
	today := date("2025-06-15")

	tests := []struct {
		name    string
		month   entities.Month
		wantLen int
		wantMin string
		wantMax string
	}{
		{
			name:    "past month yields full day count",
			month:   entities.Month{Year: 2025, Month: time.May},
			wantLen: 31,
			wantMin: "2025-05-01",
			wantMax: "2025-05-31",
		},
		{
			name:    "current month clamps at today",
			month:   entities.Month{Year: 2025, Month: time.June},
			wantLen: 15,
			wantMin: "2025-06-01",
			wantMax: "2025-06-15",
		},
		{
			name:    "future month is empty",
			month:   entities.Month{Year: 2025, Month: time.July},
			wantLen: 0,
		},
		{
			name:    "month before organization start is empty",
			month:   entities.Month{Year: 2023, Month: time.December},
			wantLen: 0,
		},
		{
			name:    "february of a leap year",
			month:   entities.Month{Year: 2024, Month: time.February},
			wantLen: 29,
			wantMin: "2024-02-01",
			wantMax: "2024-02-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WindowFor(tt.month, orgStart, today)
			assert.Equal(t, tt.wantLen, w.Len())
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantMin, w.MinDate.String())
				assert.Equal(t, tt.wantMax, w.MaxDate.String())
			}
		})
	}
}

func TestWindowFor_NeverIncludesFutureDates(t *testing.T) {
	orgStart := date("2024-01-01")
	today := date("2025-06-15")

	for m := (entities.Month{Year: 2024, Month: time.January}); m.Before(entities.Month{Year: 2026, Month: time.January}); m = m.Next() {
		w := WindowFor(m, orgStart, today)
		for _, d := range w.Dates {
			assert.False(t, d.After(today), "window for %s contains future date %s", m, d)
		}
	}
}

func TestWindowFor_DatesAreOrderedAndContiguous(t *testing.T) {
	w := WindowFor(entities.Month{Year: 2025, Month: time.April}, date("2024-01-01"), date("2025-06-15"))
	require.Equal(t, 30, w.Len())
	for i := 1; i < len(w.Dates); i++ {
		assert.Equal(t, w.Dates[i-1].AddDays(1), w.Dates[i])
	}
}

func TestWeekendsBetween(t *testing.T) {
	weekends := WeekendsBetween(date("2025-06-01"), date("2025-06-30"))

	var got []string
	for _, d := range weekends {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{
		"2025-06-01", // June 2025 starts on a Sunday
		"2025-06-07", "2025-06-08",
		"2025-06-14", "2025-06-15",
		"2025-06-21", "2025-06-22",
		"2025-06-28", "2025-06-29",
	}, got)
}

func TestDatesBetween_InvertedRange(t *testing.T) {
	assert.Nil(t, DatesBetween(date("2025-06-10"), date("2025-06-01")))
}
