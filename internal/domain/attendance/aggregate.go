package attendance

import (
	"github.com/attendly/core/internal/domain/calendar"
	"github.com/attendly/core/internal/domain/entities"
)

// Summarize rolls a window's worth of clock events and holidays into a
// MonthlySummary. events is keyed by date, then user. The result is a pure
// function of the inputs; callers recompute it whenever the month selection
// or the underlying maps change, never patch it.
//
// Invariant: TotalWorkingDays + TotalHolidays == window length.
func Summarize(window calendar.Window, events map[entities.Date]map[string]entities.ClockEvent, holidays map[entities.Date]string, today entities.Date) entities.MonthlySummary {
	summary := entities.MonthlySummary{
		Month:        window.Month,
		TotalDays:    window.Len(),
		PresentCount: make(map[string]int),
	}

	for _, date := range window.Dates {
		reason := holidays[date]
		if reason != "" {
			summary.TotalHolidays++
		}

		for userID, event := range events[date] {
			event := event
			res := Resolve(&event, date == today, reason)
			if res.Status == entities.DayStatusPresent {
				summary.PresentCount[userID]++
			}
		}
	}

	summary.TotalWorkingDays = summary.TotalDays - summary.TotalHolidays
	return summary
}
