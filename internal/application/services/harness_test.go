package services

import (
	"fmt"
	"time"

	"github.com/attendly/core/internal/adapters/repository"
	"github.com/attendly/core/internal/adapters/store/memory"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// testClock is a settable clock so derivations are deterministic.
type testClock struct {
	now time.Time
}

func newTestClock(s string) *testClock {
	now, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Today() entities.Date    { return entities.DateOf(c.now) }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seqIDs hands out id-1, id-2, ... so assertions can name records.
type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// harness wires every service onto one in-memory store.
type harness struct {
	store      *memory.Store
	clock      *testClock
	cache      *OverviewCache
	attendance *AttendanceService
	holidays   *HolidayService
	tasks      *TaskService
}

func newHarness(nowRFC3339 string) *harness {
	store := memory.New()
	clock := newTestClock(nowRFC3339)
	cache := NewOverviewCache()
	log := logger.NewNop()
	ids := &seqIDs{}
	orgStart := entities.NewDate(2024, time.January, 1)

	attendanceRepo := repository.NewAttendanceRepository(store)
	holidayRepo := repository.NewHolidayRepository(store)
	taskRepo := repository.NewTaskRepository(store)

	return &harness{
		store: store,
		clock: clock,
		cache: cache,
		attendance: NewAttendanceService(
			attendanceRepo, holidayRepo, clock, store, cache, orgStart, 10*time.Millisecond, log),
		holidays: NewHolidayService(holidayRepo, cache, log),
		tasks:    NewTaskService(taskRepo, clock, ids, log),
	}
}

var _ ports.AttendanceService = (*AttendanceService)(nil)
var _ ports.HolidayService = (*HolidayService)(nil)
var _ ports.TaskService = (*TaskService)(nil)
var _ ports.ReportService = (*ReportService)(nil)
var _ ports.AuthService = (*AuthService)(nil)
var _ ports.UserService = (*UserService)(nil)
