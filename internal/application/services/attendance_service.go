package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/core/internal/domain/attendance"
	"github.com/attendly/core/internal/domain/calendar"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// AttendanceService handles clock events and derived attendance views
type AttendanceService struct {
	attendanceRepo ports.AttendanceRepository
	holidayRepo    ports.HolidayRepository
	clock          ports.Clock
	live           ports.LiveStore // nil when the store has no change feed
	cache          *OverviewCache
	orgStart       entities.Date
	pollInterval   time.Duration
	logger         *logger.Logger
}

// NewAttendanceService creates a new attendance service. live may be nil, in
// which case WatchToday falls back to polling at pollInterval.
func NewAttendanceService(
	attendanceRepo ports.AttendanceRepository,
	holidayRepo ports.HolidayRepository,
	clock ports.Clock,
	live ports.LiveStore,
	cache *OverviewCache,
	orgStart entities.Date,
	pollInterval time.Duration,
	logger *logger.Logger,
) *AttendanceService {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		holidayRepo:    holidayRepo,
		clock:          clock,
		live:           live,
		cache:          cache,
		orgStart:       orgStart,
		pollInterval:   pollInterval,
		logger:         logger,
	}
}

// ClockIn opens today's clock event for the user. A day gets at most one
// event; a second clock-in is rejected rather than overwriting the first.
func (s *AttendanceService) ClockIn(ctx context.Context, userID string) (*entities.ClockEvent, error) {
	today := s.clock.Today()

	existing, err := s.attendanceRepo.GetEvent(ctx, today, userID)
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("check existing clock event: %w", err)
	}
	if existing != nil && existing.ClockIn != nil {
		return nil, entities.ErrAlreadyClockedIn
	}

	now := s.clock.Now()
	event := &entities.ClockEvent{
		Date:    today,
		UserID:  userID,
		ClockIn: &now,
	}
	if err := s.attendanceRepo.SaveEvent(ctx, event); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.LogUserAction(userID, "clock_in", map[string]interface{}{"date": today.String()})
	return event, nil
}

// ClockOut closes today's clock event. The event is immutable afterwards.
func (s *AttendanceService) ClockOut(ctx context.Context, userID string) (*entities.ClockEvent, error) {
	today := s.clock.Today()

	event, err := s.attendanceRepo.GetEvent(ctx, today, userID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.ErrNotClockedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load clock event: %w", err)
	}
	if event.ClockIn == nil {
		return nil, entities.ErrNotClockedIn
	}
	if event.ClockOut != nil {
		return nil, entities.ErrAlreadyClockedOut
	}

	now := s.clock.Now()
	if now.Before(*event.ClockIn) {
		return nil, entities.ErrClockOutBeforeIn
	}

	event.ClockOut = &now
	if err := s.attendanceRepo.SaveEvent(ctx, event); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.logger.LogUserAction(userID, "clock_out", map[string]interface{}{
		"date":             today.String(),
		"duration_minutes": int(now.Sub(*event.ClockIn).Minutes()),
	})
	return event, nil
}

// MonthForUser resolves one status per calendar day of the user's month, most
// recent window first day to last. Days outside the window (future, or before
// the organization start) are omitted entirely.
func (s *AttendanceService) MonthForUser(ctx context.Context, userID string, month entities.Month) ([]ports.DayRecord, error) {
	today := s.clock.Today()
	window := calendar.WindowFor(month, s.orgStart, today)
	if window.Len() == 0 {
		return []ports.DayRecord{}, nil
	}

	events := s.eventsByDate(ctx, window.MinDate, window.MaxDate)
	holidays := s.holidaysByDate(ctx, window.MinDate, window.MaxDate)

	records := make([]ports.DayRecord, 0, window.Len())
	for _, date := range window.Dates {
		var event *entities.ClockEvent
		if dayEvents, ok := events[date]; ok {
			if ev, ok := dayEvents[userID]; ok {
				event = &ev
			}
		}

		res := attendance.Resolve(event, date == today, holidays[date])
		records = append(records, ports.DayRecord{
			Date:            date,
			Status:          res.Status,
			DurationMinutes: int(res.Duration.Minutes()),
			HolidayReason:   res.Reason,
		})
	}
	return records, nil
}

// MonthlyOverview returns the month's rollup across all users, cached until
// the next attendance or holiday write or the next calendar day.
func (s *AttendanceService) MonthlyOverview(ctx context.Context, month entities.Month) (*entities.MonthlySummary, error) {
	today := s.clock.Today()
	if summary, ok := s.cache.lookup(month, today); ok {
		return &summary, nil
	}

	gen := s.cache.begin()
	window := calendar.WindowFor(month, s.orgStart, today)

	var events map[entities.Date]map[string]entities.ClockEvent
	var holidays map[entities.Date]string
	if window.Len() > 0 {
		events = s.eventsByDate(ctx, window.MinDate, window.MaxDate)
		holidays = s.holidaysByDate(ctx, window.MinDate, window.MaxDate)
	}

	summary := attendance.Summarize(window, events, holidays, today)
	s.cache.store(month, gen, today, summary)
	return &summary, nil
}

// WatchToday streams the user's clock event for the current date until ctx is
// cancelled. Each delivery is the full current event.
func (s *AttendanceService) WatchToday(ctx context.Context, userID string) (<-chan entities.ClockEvent, error) {
	today := s.clock.Today()
	if s.live != nil {
		return s.watchLive(ctx, today, userID)
	}
	return s.watchPolling(ctx, today, userID), nil
}

func (s *AttendanceService) watchLive(ctx context.Context, date entities.Date, userID string) (<-chan entities.ClockEvent, error) {
	// Path layout per the store contract: attendance/{date}/{userId}.
	snapshots, err := s.live.Subscribe(ctx, "attendance/"+date.String()+"/"+userID)
	if err != nil {
		return nil, fmt.Errorf("subscribe to clock event feed: %w", err)
	}

	out := make(chan entities.ClockEvent, 1)
	go func() {
		defer close(out)
		for snap := range snapshots {
			var wire struct {
				ClockIn  *time.Time `json:"clockIn"`
				ClockOut *time.Time `json:"clockOut"`
			}
			if err := json.Unmarshal(snap.Value, &wire); err != nil {
				s.logger.Warn("Undecodable clock event snapshot", "path", snap.Path, "error", err)
				continue
			}
			select {
			case out <- entities.ClockEvent{Date: date, UserID: userID, ClockIn: wire.ClockIn, ClockOut: wire.ClockOut}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *AttendanceService) watchPolling(ctx context.Context, date entities.Date, userID string) <-chan entities.ClockEvent {
	out := make(chan entities.ClockEvent, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var last *entities.ClockEvent
		emit := func() {
			event, err := s.attendanceRepo.GetEvent(ctx, date, userID)
			if errors.Is(err, entities.ErrNotFound) {
				event = &entities.ClockEvent{Date: date, UserID: userID}
			} else if err != nil {
				s.logger.Warn("Clock event poll failed", "user_id", userID, "error", err)
				return
			}
			if last != nil && sameEvent(last, event) {
				return
			}
			last = event
			select {
			case out <- *event:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}()
	return out
}

func sameEvent(a, b *entities.ClockEvent) bool {
	return sameInstant(a.ClockIn, b.ClockIn) && sameInstant(a.ClockOut, b.ClockOut)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// eventsByDate loads the window's clock events. A failed read degrades to no
// events, so derived views still resolve every day instead of failing whole.
func (s *AttendanceService) eventsByDate(ctx context.Context, start, end entities.Date) map[entities.Date]map[string]entities.ClockEvent {
	events, err := s.attendanceRepo.EventsInRange(ctx, start, end)
	if err != nil {
		s.logger.Warn("Clock event range read failed, treating window as eventless", "error", err)
		return nil
	}
	return events
}

// holidaysByDate loads the window's holidays. A failed read degrades to an
// empty calendar so attendance views stay available.
func (s *AttendanceService) holidaysByDate(ctx context.Context, start, end entities.Date) map[entities.Date]string {
	holidays, err := s.holidayRepo.Range(ctx, start, end)
	if err != nil {
		s.logger.Warn("Holiday range read failed, treating window as holiday-free", "error", err)
		return nil
	}
	byDate := make(map[entities.Date]string, len(holidays))
	for _, holiday := range holidays {
		byDate[holiday.Date] = holiday.Reason
	}
	return byDate
}
