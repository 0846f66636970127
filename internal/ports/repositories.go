package ports

import (
	"context"

	"github.com/attendly/core/internal/domain/entities"
)

// AttendanceRepository defines the interface for clock event persistence.
type AttendanceRepository interface {
	// GetEvent returns the single event for (date, user), or
	// entities.ErrNotFound.
	GetEvent(ctx context.Context, date entities.Date, userID string) (*entities.ClockEvent, error)

	// EventsInRange returns all users' events with start <= date <= end,
	// keyed by date then user.
	EventsInRange(ctx context.Context, start, end entities.Date) (map[entities.Date]map[string]entities.ClockEvent, error)

	// SaveEvent upserts the event at attendance/{date}/{userId}.
	SaveEvent(ctx context.Context, event *entities.ClockEvent) error
}

// HolidayRepository defines the interface for the organization holiday
// calendar. Values at holidays/{date} are bare reason strings.
type HolidayRepository interface {
	// Get returns the reason for date, or entities.ErrNotFound.
	Get(ctx context.Context, date entities.Date) (string, error)

	// Range returns holidays with start <= date <= end, ordered by date.
	Range(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error)

	// Set upserts one holiday.
	Set(ctx context.Context, date entities.Date, reason string) error

	// Remove deletes the holiday at date, if any.
	Remove(ctx context.Context, date entities.Date) error

	// BulkSet upserts every given holiday in one store update, overwriting
	// pre-existing reasons on those dates.
	BulkSet(ctx context.Context, holidays []entities.Holiday) error
}

// TaskRepository defines the interface for per-(user, date) task buckets.
type TaskRepository interface {
	// List returns the bucket's tasks ordered by AddedOn ascending. The
	// ordering is applied explicitly; store iteration order is not trusted.
	List(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error)

	// Get returns one task by id, or entities.ErrNotFound.
	Get(ctx context.Context, userID string, date entities.Date, id string) (*entities.TaskRecord, error)

	// Save upserts one task at tasks/{userId}/{date}/{taskId}.
	Save(ctx context.Context, task *entities.TaskRecord) error

	// SaveAll upserts several tasks into one (user, date) bucket in a single
	// store update.
	SaveAll(ctx context.Context, userID string, date entities.Date, tasks []entities.TaskRecord) error

	// Remove deletes one task from its bucket.
	Remove(ctx context.Context, userID string, date entities.Date, id string) error
}

// UserRepository defines the interface for user records.
type UserRepository interface {
	Get(ctx context.Context, uid string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	// List returns all users sorted by display name.
	List(ctx context.Context) ([]entities.User, error)
	Save(ctx context.Context, user *entities.User) error
}
