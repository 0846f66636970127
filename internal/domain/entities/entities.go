package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyClockedIn   = errors.New("already clocked in for this date")
	ErrNotClockedIn       = errors.New("no clock-in recorded for this date")
	ErrAlreadyClockedOut  = errors.New("clock event already closed")
	ErrClockOutBeforeIn   = errors.New("clock-out earlier than clock-in")
	ErrTaskNotEligible    = errors.New("task is not eligible for carry-over")
)

// Enums and types
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// TaskStatus values use the display spelling because they are stored verbatim
// and rendered verbatim; there is no separate wire form.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusOnHold     TaskStatus = "On Hold"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// DayStatus is the derived attendance label for one (date, user) pair.
type DayStatus string

const (
	DayStatusPresent    DayStatus = "Present"
	DayStatusIncomplete DayStatus = "Incomplete"
	DayStatusAbsent     DayStatus = "Absent"
	DayStatusHoliday    DayStatus = "Holiday"
)

// Task hour bounds, per company policy.
const (
	MinTaskHours = 0
	MaxTaskHours = 8
)

// HolidayReasonWeekend is the reason written by the bulk weekend fill.
const HolidayReasonWeekend = "Weekend"

// ClockEvent is a user's single day's clock-in/clock-out record. It is created
// on clock-in, mutated exactly once on clock-out and immutable thereafter; the
// next working day creates a fresh record.
type ClockEvent struct {
	Date     Date       `json:"date"`
	UserID   string     `json:"userId"`
	ClockIn  *time.Time `json:"clockIn,omitempty"`
	ClockOut *time.Time `json:"clockOut,omitempty"`
}

// Closed reports whether the event has both end points.
func (e *ClockEvent) Closed() bool {
	return e != nil && e.ClockIn != nil && e.ClockOut != nil
}

// Holiday is an organization-wide non-working day.
type Holiday struct {
	Date   Date   `json:"date"`
	Reason string `json:"reason"`
}

// TaskRecord is one entry in a user's daily task log. ID never changes across
// edits; carry-over creates a new record under a fresh ID.
type TaskRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Date        Date       `json:"date"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Hours       int        `json:"hours"`
	AddedOn     time.Time  `json:"addedOn"`
	UpdatedOn   time.Time  `json:"updatedOn"`
}

// Validate checks the writable fields before any store call.
func (t *TaskRecord) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	if t.Hours < MinTaskHours || t.Hours > MaxTaskHours {
		return fmt.Errorf("%w: hours must be between %d and %d", ErrValidation, MinTaskHours, MaxTaskHours)
	}
	return nil
}

// MonthlySummary is the per-month attendance rollup. It is recomputed whole
// from its inputs, never patched incrementally.
type MonthlySummary struct {
	Month            Month          `json:"month"`
	TotalDays        int            `json:"totalDays"`
	TotalHolidays    int            `json:"totalHolidays"`
	TotalWorkingDays int            `json:"totalWorkingDays"`
	PresentCount     map[string]int `json:"presentCount"`
}

// User represents a user in the system.
type User struct {
	UID          string   `json:"uid"`
	Email        string   `json:"email"`
	DisplayName  string   `json:"displayName"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"passwordHash,omitempty"`
}

// Utility methods
func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleMember:
		return true
	default:
		return false
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOnHold, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CarriesOver reports whether a task with this status is offered as a
// carry-over candidate.
func (ts TaskStatus) CarriesOver() bool {
	return ts == TaskStatusPending || ts == TaskStatusInProgress
}
