// Package attendance derives per-day status labels and monthly rollups from
// raw clock events, the holiday calendar and a date window. Everything here is
// a pure function of its inputs.
package attendance

import (
	"time"

	"github.com/attendly/core/internal/domain/entities"
)

// Resolution is the derived outcome for one (date, user) pair.
type Resolution struct {
	Status entities.DayStatus `json:"status"`
	// Duration is clockOut-clockIn when the event is closed, zero otherwise.
	// A negative span from a skewed or hand-corrected event clamps to zero;
	// writes reject such events, so this only shows up on legacy records.
	Duration time.Duration `json:"duration"`
	// Reason carries the holiday reason when Status is Holiday.
	Reason string `json:"reason,omitempty"`
}

// Resolve derives the status for one day. Precedence is load-bearing: a
// clock-in on a holiday still resolves Present or Incomplete, never Holiday;
// holiday status only applies to days with no clock activity at all.
func Resolve(event *entities.ClockEvent, isToday bool, holidayReason string) Resolution {
	switch {
	case event != nil && event.Closed():
		d := event.ClockOut.Sub(*event.ClockIn)
		if d < 0 {
			d = 0
		}
		return Resolution{Status: entities.DayStatusPresent, Duration: d}

	case event != nil && event.ClockIn != nil && isToday:
		// still in progress, counted optimistically
		return Resolution{Status: entities.DayStatusPresent}

	case event != nil && event.ClockIn != nil:
		return Resolution{Status: entities.DayStatusIncomplete}

	case holidayReason != "":
		return Resolution{Status: entities.DayStatusHoliday, Reason: holidayReason}

	default:
		return Resolution{Status: entities.DayStatusAbsent}
	}
}
