package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// AttendanceRepositoryImpl implements the AttendanceRepository interface
type AttendanceRepositoryImpl struct {
	store ports.KeyValueRangeStore
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(store ports.KeyValueRangeStore) ports.AttendanceRepository {
	return &AttendanceRepositoryImpl{store: store}
}

// storedClockEvent is the wire form at attendance/{date}/{userId}. Date and
// user are carried by the path, not repeated in the value.
type storedClockEvent struct {
	ClockIn  *time.Time `json:"clockIn,omitempty"`
	ClockOut *time.Time `json:"clockOut,omitempty"`
}

func (r *AttendanceRepositoryImpl) GetEvent(ctx context.Context, date entities.Date, userID string) (*entities.ClockEvent, error) {
	raw, err := r.store.Get(ctx, attendanceEventPath(date, userID))
	if err != nil {
		return nil, err
	}

	var stored storedClockEvent
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode clock event %s/%s: %w", date, userID, err)
	}

	return &entities.ClockEvent{
		Date:     date,
		UserID:   userID,
		ClockIn:  stored.ClockIn,
		ClockOut: stored.ClockOut,
	}, nil
}

func (r *AttendanceRepositoryImpl) EventsInRange(ctx context.Context, start, end entities.Date) (map[entities.Date]map[string]entities.ClockEvent, error) {
	days, err := r.store.RangeQuery(ctx, attendanceRoot, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list attendance days: %w", err)
	}

	events := make(map[entities.Date]map[string]entities.ClockEvent, len(days))
	for _, day := range days {
		date, err := entities.ParseDate(day.Key)
		if err != nil {
			return nil, fmt.Errorf("attendance day key %q: %w", day.Key, err)
		}

		var byUser map[string]storedClockEvent
		if err := json.Unmarshal(day.Value, &byUser); err != nil {
			return nil, fmt.Errorf("decode attendance day %s: %w", day.Key, err)
		}

		dayEvents := make(map[string]entities.ClockEvent, len(byUser))
		for userID, stored := range byUser {
			dayEvents[userID] = entities.ClockEvent{
				Date:     date,
				UserID:   userID,
				ClockIn:  stored.ClockIn,
				ClockOut: stored.ClockOut,
			}
		}
		events[date] = dayEvents
	}
	return events, nil
}

func (r *AttendanceRepositoryImpl) SaveEvent(ctx context.Context, event *entities.ClockEvent) error {
	stored := storedClockEvent{ClockIn: event.ClockIn, ClockOut: event.ClockOut}
	if err := r.store.Set(ctx, attendanceEventPath(event.Date, event.UserID), stored); err != nil {
		return fmt.Errorf("save clock event %s/%s: %w", event.Date, event.UserID, err)
	}
	return nil
}
