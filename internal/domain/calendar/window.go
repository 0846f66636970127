// Package calendar computes the bounded, today-clamped date windows every
// "days so far" consumer works from.
package calendar

import (
	"github.com/attendly/core/internal/domain/entities"
)

// Window is the ordered date sequence considered for a selected month.
type Window struct {
	Month   entities.Month  `json:"month"`
	MinDate entities.Date   `json:"minDate"`
	MaxDate entities.Date   `json:"maxDate"`
	Dates   []entities.Date `json:"dates"`
}

// Len returns the number of days in the window.
func (w Window) Len() int {
	return len(w.Dates)
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d entities.Date) bool {
	if len(w.Dates) == 0 {
		return false
	}
	return !d.Before(w.MinDate) && !d.After(w.MaxDate)
}

// WindowFor returns the dates from day 1 of month through
// min(lastDayOfMonth, today). A month entirely in the future, or entirely
// before the organization's first month, yields an empty window; past months
// yield their full day count.
func WindowFor(month entities.Month, orgMinDate, today entities.Date) Window {
	w := Window{Month: month}

	if month.Before(entities.Month{Year: orgMinDate.Year, Month: orgMinDate.Month}) {
		return w
	}

	first := month.First()
	if first.After(today) {
		return w
	}

	last := month.Last()
	if last.After(today) {
		last = today
	}

	w.MinDate = first
	w.MaxDate = last
	for d := first; !d.After(last); d = d.AddDays(1) {
		w.Dates = append(w.Dates, d)
	}
	return w
}

// DatesBetween returns every date from start through end inclusive. An
// inverted range yields nil.
func DatesBetween(start, end entities.Date) []entities.Date {
	if start.After(end) {
		return nil
	}
	var dates []entities.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// WeekendsBetween returns every Saturday and Sunday from start through end
// inclusive, in order.
func WeekendsBetween(start, end entities.Date) []entities.Date {
	var weekends []entities.Date
	for _, d := range DatesBetween(start, end) {
		if d.Weekend() {
			weekends = append(weekends, d)
		}
	}
	return weekends
}
