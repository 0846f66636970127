package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/core/internal/adapters/store/memory"
	"github.com/attendly/core/internal/domain/entities"
)

func TestAttendanceRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(memory.New())

	date := entities.NewDate(2025, time.June, 2)
	in := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveEvent(ctx, &entities.ClockEvent{
		Date: date, UserID: "u1", ClockIn: &in,
	}))

	event, err := repo.GetEvent(ctx, date, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, date, event.Date)
	require.NotNil(t, event.ClockIn)
	assert.True(t, event.ClockIn.Equal(in))
	assert.Nil(t, event.ClockOut)

	_, err = repo.GetEvent(ctx, date, "u2")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAttendanceRepository_EventsInRange(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(memory.New())

	at := func(day, hour int) *time.Time {
		ts := time.Date(2025, time.June, day, hour, 0, 0, 0, time.UTC)
		return &ts
	}
	for _, ev := range []entities.ClockEvent{
		{Date: entities.NewDate(2025, time.May, 31), UserID: "u1", ClockIn: at(31, 9)},
		{Date: entities.NewDate(2025, time.June, 2), UserID: "u1", ClockIn: at(2, 9), ClockOut: at(2, 17)},
		{Date: entities.NewDate(2025, time.June, 2), UserID: "u2", ClockIn: at(2, 10)},
		{Date: entities.NewDate(2025, time.July, 1), UserID: "u1", ClockIn: at(1, 9)},
	} {
		ev := ev
		require.NoError(t, repo.SaveEvent(ctx, &ev))
	}

	events, err := repo.EventsInRange(ctx,
		entities.NewDate(2025, time.June, 1), entities.NewDate(2025, time.June, 30))
	require.NoError(t, err)

	require.Len(t, events, 1)
	day := events[entities.NewDate(2025, time.June, 2)]
	require.Len(t, day, 2)
	u1 := day["u1"]
	u2 := day["u2"]
	assert.True(t, u1.Closed())
	assert.False(t, u2.Closed())
}

func TestHolidayRepository_RangeOrderedAndBulkSet(t *testing.T) {
	ctx := context.Background()
	repo := NewHolidayRepository(memory.New())

	require.NoError(t, repo.Set(ctx, entities.NewDate(2025, time.June, 15), "Eid"))
	require.NoError(t, repo.BulkSet(ctx, []entities.Holiday{
		{Date: entities.NewDate(2025, time.June, 7), Reason: entities.HolidayReasonWeekend},
		{Date: entities.NewDate(2025, time.June, 1), Reason: entities.HolidayReasonWeekend},
	}))

	holidays, err := repo.Range(ctx,
		entities.NewDate(2025, time.June, 1), entities.NewDate(2025, time.June, 30))
	require.NoError(t, err)

	require.Len(t, holidays, 3)
	assert.Equal(t, "2025-06-01", holidays[0].Date.String())
	assert.Equal(t, "2025-06-07", holidays[1].Date.String())
	assert.Equal(t, "2025-06-15", holidays[2].Date.String())
	assert.Equal(t, "Eid", holidays[2].Reason)

	require.NoError(t, repo.Remove(ctx, entities.NewDate(2025, time.June, 15)))
	_, err = repo.Get(ctx, entities.NewDate(2025, time.June, 15))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestHolidayRepository_BulkSetOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewHolidayRepository(memory.New())

	date := entities.NewDate(2025, time.June, 7)
	require.NoError(t, repo.Set(ctx, date, "Eid"))
	require.NoError(t, repo.BulkSet(ctx, []entities.Holiday{
		{Date: date, Reason: entities.HolidayReasonWeekend},
	}))

	reason, err := repo.Get(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, entities.HolidayReasonWeekend, reason)
}

func TestTaskRepository_ListOrderedByAddedOn(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(memory.New())

	date := entities.NewDate(2025, time.June, 2)
	base := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"t-c", "t-a", "t-b"} {
		require.NoError(t, repo.Save(ctx, &entities.TaskRecord{
			ID: id, UserID: "u1", Date: date,
			Description: "task " + id,
			Status:      entities.TaskStatusPending,
			Hours:       2,
			AddedOn:     base.Add(time.Duration(i) * time.Minute),
			UpdatedOn:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	tasks, err := repo.List(ctx, "u1", date)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "t-c", tasks[0].ID)
	assert.Equal(t, "t-a", tasks[1].ID)
	assert.Equal(t, "t-b", tasks[2].ID)
	assert.Equal(t, "u1", tasks[0].UserID)
	assert.Equal(t, date, tasks[0].Date)
}

func TestTaskRepository_EmptyBucket(t *testing.T) {
	repo := NewTaskRepository(memory.New())

	tasks, err := repo.List(context.Background(), "u1", entities.NewDate(2025, time.June, 2))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_SaveAllAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(memory.New())

	date := entities.NewDate(2025, time.June, 3)
	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveAll(ctx, "u1", date, []entities.TaskRecord{
		{ID: "t1", UserID: "u1", Date: date, Description: "one", Status: entities.TaskStatusPending, AddedOn: now, UpdatedOn: now},
		{ID: "t2", UserID: "u1", Date: date, Description: "two", Status: entities.TaskStatusInProgress, AddedOn: now.Add(time.Minute), UpdatedOn: now.Add(time.Minute)},
	}))

	require.NoError(t, repo.Remove(ctx, "u1", date, "t1"))

	tasks, err := repo.List(ctx, "u1", date)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)

	_, err = repo.Get(ctx, "u1", date, "t1")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestUserRepository_RoundTripAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(memory.New())

	require.NoError(t, repo.Save(ctx, &entities.User{
		UID: "u2", Email: "bob@example.com", DisplayName: "Bob", Role: entities.UserRoleMember,
	}))
	require.NoError(t, repo.Save(ctx, &entities.User{
		UID: "u1", Email: "alice@example.com", DisplayName: "Alice", Role: entities.UserRoleAdmin, PasswordHash: "hash",
	}))

	user, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	byEmail, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", byEmail.UID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].DisplayName)
	assert.Equal(t, "Bob", users[1].DisplayName)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
}
