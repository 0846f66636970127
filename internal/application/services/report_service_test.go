package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/attendly/core/internal/adapters/export"
	"github.com/attendly/core/internal/adapters/repository"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
)

func newReportHarness(t *testing.T, nowRFC3339 string) (*harness, *ReportService) {
	t.Helper()
	h := newHarness(nowRFC3339)

	userRepo := repository.NewUserRepository(h.store)
	require.NoError(t, userRepo.Save(context.Background(), &entities.User{
		UID: "u1", Email: "alice@example.com", DisplayName: "Alice", Role: entities.UserRoleAdmin,
	}))
	require.NoError(t, userRepo.Save(context.Background(), &entities.User{
		UID: "u2", Email: "bob@example.com", DisplayName: "Bob", Role: entities.UserRoleMember,
	}))

	reports := NewReportService(
		repository.NewAttendanceRepository(h.store),
		repository.NewHolidayRepository(h.store),
		userRepo,
		export.NewExcelExporter(),
		h.clock,
		entities.NewDate(2024, time.January, 1),
		logger.NewNop(),
	)
	return h, reports
}

func TestReportService_MonthlyAttendanceTable(t *testing.T) {
	ctx := context.Background()
	h, reports := newReportHarness(t, "2025-06-02T09:00:00Z")

	require.NoError(t, h.holidays.Set(ctx, entities.NewDate(2025, time.June, 1), entities.HolidayReasonWeekend))
	_, err := h.attendance.ClockIn(ctx, "u1")
	require.NoError(t, err)
	h.clock.Advance(8*time.Hour + 30*time.Minute)
	_, err = h.attendance.ClockOut(ctx, "u1")
	require.NoError(t, err)

	month, _ := entities.ParseMonth("2025-06")
	table, err := reports.MonthlyAttendanceTable(ctx, month)
	require.NoError(t, err)

	assert.Equal(t, "June 2025", table.Title)
	assert.Equal(t, []string{"Date", "Alice", "Bob"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2025-06-01", "Holiday", "Holiday"}, table.Rows[0])
	assert.Equal(t, []string{"2025-06-02", "Present (8h30m)", "Absent"}, table.Rows[1])
}

func TestReportService_TableForFutureMonthHasNoRows(t *testing.T) {
	_, reports := newReportHarness(t, "2025-06-02T09:00:00Z")

	month, _ := entities.ParseMonth("2025-09")
	table, err := reports.MonthlyAttendanceTable(context.Background(), month)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Alice", "Bob"}, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestReportService_TableSurvivesEventReadFailure(t *testing.T) {
	ctx := context.Background()
	h, _ := newReportHarness(t, "2025-06-02T09:00:00Z")

	_, err := h.attendance.ClockIn(ctx, "u1")
	require.NoError(t, err)

	degraded := NewReportService(
		rangeFailingAttendanceRepo{repository.NewAttendanceRepository(h.store)},
		repository.NewHolidayRepository(h.store),
		repository.NewUserRepository(h.store),
		export.NewExcelExporter(),
		h.clock,
		entities.NewDate(2024, time.January, 1),
		logger.NewNop(),
	)

	month, _ := entities.ParseMonth("2025-06")
	table, err := degraded.MonthlyAttendanceTable(ctx, month)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	// the table still covers every day, with events degraded to absences
	assert.Equal(t, []string{"2025-06-02", "Absent", "Absent"}, table.Rows[1])
}

func TestReportService_ExportMonthlyAttendance(t *testing.T) {
	ctx := context.Background()
	h, reports := newReportHarness(t, "2025-06-02T09:00:00Z")

	_, err := h.attendance.ClockIn(ctx, "u1")
	require.NoError(t, err)

	month, _ := entities.ParseMonth("2025-06")
	data, filename, err := reports.ExportMonthlyAttendance(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, "attendance-2025-06.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("June 2025")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Alice", "Bob"}, rows[0])
	// open event on the current day still counts as present
	assert.Equal(t, "Present", rows[2][1])
}
