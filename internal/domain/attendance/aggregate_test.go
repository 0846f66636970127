package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/core/internal/domain/calendar"
	"github.com/attendly/core/internal/domain/entities"
)

func date(s string) entities.Date {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func closedEvent(userID, day, in, out string) entities.ClockEvent {
	return entities.ClockEvent{
		Date:     date(day),
		UserID:   userID,
		ClockIn:  instant(day + "T" + in + ":00Z"),
		ClockOut: instant(day + "T" + out + ":00Z"),
	}
}

func TestSummarize(t *testing.T) {
	orgStart := date("2024-01-01")
	today := date("2025-06-05")
	window := calendar.WindowFor(entities.Month{Year: 2025, Month: time.June}, orgStart, today)
	require.Equal(t, 5, window.Len())

	events := map[entities.Date]map[string]entities.ClockEvent{
		date("2025-06-02"): {
			"alice": closedEvent("alice", "2025-06-02", "09:00", "17:30"),
			"bob":   closedEvent("bob", "2025-06-02", "10:00", "18:00"),
		},
		date("2025-06-03"): {
			// open event on a past day: incomplete, not counted present
			"alice": {Date: date("2025-06-03"), UserID: "alice", ClockIn: instant("2025-06-03T09:00:00Z")},
		},
		date("2025-06-05"): {
			// open event today: optimistically present
			"alice": {Date: date("2025-06-05"), UserID: "alice", ClockIn: instant("2025-06-05T09:00:00Z")},
		},
	}
	holidays := map[entities.Date]string{
		date("2025-06-01"): "Weekend",
		date("2025-06-04"): "Eid",
	}

	summary := Summarize(window, events, holidays, today)

	assert.Equal(t, 5, summary.TotalDays)
	assert.Equal(t, 2, summary.TotalHolidays)
	assert.Equal(t, 3, summary.TotalWorkingDays)
	assert.Equal(t, 2, summary.PresentCount["alice"])
	assert.Equal(t, 1, summary.PresentCount["bob"])
}

func TestSummarize_WorkingDaysPlusHolidaysEqualsWindowLength(t *testing.T) {
	orgStart := date("2024-01-01")
	today := date("2025-12-31")

	holidays := map[entities.Date]string{
		date("2025-03-01"): "Weekend",
		date("2025-03-02"): "Weekend",
		date("2025-03-10"): "Founders Day",
	}

	for m := (entities.Month{Year: 2025, Month: time.January}); m.Before(entities.Month{Year: 2026, Month: time.January}); m = m.Next() {
		window := calendar.WindowFor(m, orgStart, today)
		summary := Summarize(window, nil, holidays, today)
		assert.Equal(t, window.Len(), summary.TotalWorkingDays+summary.TotalHolidays, "month %s", m)
	}
}

func TestSummarize_HolidayExcludedFromPresentTallies(t *testing.T) {
	orgStart := date("2024-01-01")
	today := date("2025-06-30")
	window := calendar.WindowFor(entities.Month{Year: 2025, Month: time.June}, orgStart, today)

	// nobody clocked in on the holiday
	holidays := map[entities.Date]string{date("2025-06-07"): "Weekend"}

	summary := Summarize(window, nil, holidays, today)
	assert.Empty(t, summary.PresentCount)
	assert.Equal(t, 1, summary.TotalHolidays)
	assert.Equal(t, 29, summary.TotalWorkingDays)
}

func TestSummarize_EmptyWindow(t *testing.T) {
	today := date("2025-06-15")
	window := calendar.WindowFor(entities.Month{Year: 2025, Month: time.July}, date("2024-01-01"), today)

	summary := Summarize(window, nil, nil, today)
	assert.Equal(t, 0, summary.TotalDays)
	assert.Equal(t, 0, summary.TotalHolidays)
	assert.Equal(t, 0, summary.TotalWorkingDays)
	assert.Empty(t, summary.PresentCount)
}
