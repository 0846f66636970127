package services

import (
	"context"
	"fmt"

	"github.com/attendly/core/internal/domain/attendance"
	"github.com/attendly/core/internal/domain/calendar"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// ReportService renders monthly attendance tables and spreadsheet exports
type ReportService struct {
	attendanceRepo ports.AttendanceRepository
	holidayRepo    ports.HolidayRepository
	userRepo       ports.UserRepository
	exporter       ports.TableExporter
	clock          ports.Clock
	orgStart       entities.Date
	logger         *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(
	attendanceRepo ports.AttendanceRepository,
	holidayRepo ports.HolidayRepository,
	userRepo ports.UserRepository,
	exporter ports.TableExporter,
	clock ports.Clock,
	orgStart entities.Date,
	logger *logger.Logger,
) *ReportService {
	return &ReportService{
		attendanceRepo: attendanceRepo,
		holidayRepo:    holidayRepo,
		userRepo:       userRepo,
		exporter:       exporter,
		clock:          clock,
		orgStart:       orgStart,
		logger:         logger,
	}
}

// MonthlyAttendanceTable renders the month as one row per calendar day and
// one column per user. Closed events show their duration next to the status.
func (s *ReportService) MonthlyAttendanceTable(ctx context.Context, month entities.Month) (*ports.Table, error) {
	today := s.clock.Today()
	window := calendar.WindowFor(month, s.orgStart, today)

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	table := &ports.Table{
		Title:   month.Title(),
		Headers: make([]string, 0, len(users)+1),
		Rows:    make([][]string, 0, window.Len()),
	}
	table.Headers = append(table.Headers, "Date")
	for _, user := range users {
		table.Headers = append(table.Headers, user.DisplayName)
	}

	if window.Len() == 0 {
		return table, nil
	}

	events, err := s.attendanceRepo.EventsInRange(ctx, window.MinDate, window.MaxDate)
	if err != nil {
		s.logger.Warn("Clock event range read failed, exporting without events", "error", err)
		events = nil
	}

	holidays := make(map[entities.Date]string)
	holidayList, err := s.holidayRepo.Range(ctx, window.MinDate, window.MaxDate)
	if err != nil {
		s.logger.Warn("Holiday range read failed, exporting without holidays", "error", err)
	}
	for _, holiday := range holidayList {
		holidays[holiday.Date] = holiday.Reason
	}

	for _, date := range window.Dates {
		row := make([]string, 0, len(users)+1)
		row = append(row, date.String())
		for _, user := range users {
			var event *entities.ClockEvent
			if dayEvents, ok := events[date]; ok {
				if ev, ok := dayEvents[user.UID]; ok {
					event = &ev
				}
			}
			res := attendance.Resolve(event, date == today, holidays[date])
			row = append(row, cellLabel(res))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ExportMonthlyAttendance renders the month's table as an xlsx workbook and
// returns the bytes with a download filename.
func (s *ReportService) ExportMonthlyAttendance(ctx context.Context, month entities.Month) ([]byte, string, error) {
	table, err := s.MonthlyAttendanceTable(ctx, month)
	if err != nil {
		return nil, "", err
	}

	cells := make([][]string, 0, len(table.Rows)+1)
	cells = append(cells, table.Headers)
	cells = append(cells, table.Rows...)

	data, err := s.exporter.Export(table.Title, cells)
	if err != nil {
		return nil, "", fmt.Errorf("export workbook: %w", err)
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", month.String())
	s.logger.Info("Attendance export generated", "month", month.String(), "bytes", len(data))
	return data, filename, nil
}

func cellLabel(res attendance.Resolution) string {
	if res.Status == entities.DayStatusPresent && res.Duration > 0 {
		hours := int(res.Duration.Hours())
		minutes := int(res.Duration.Minutes()) % 60
		return fmt.Sprintf("%s (%dh%02dm)", res.Status, hours, minutes)
	}
	return string(res.Status)
}
