package ports

import (
	"context"

	"github.com/attendly/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserService interface for user management operations
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*entities.User, error)
	Get(ctx context.Context, uid string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
}

// AttendanceService interface for clock events and attendance derivation
type AttendanceService interface {
	ClockIn(ctx context.Context, userID string) (*entities.ClockEvent, error)
	ClockOut(ctx context.Context, userID string) (*entities.ClockEvent, error)
	MonthForUser(ctx context.Context, userID string, month entities.Month) ([]DayRecord, error)
	MonthlyOverview(ctx context.Context, month entities.Month) (*entities.MonthlySummary, error)
	WatchToday(ctx context.Context, userID string) (<-chan entities.ClockEvent, error)
}

// HolidayService interface for the organization holiday registry
type HolidayService interface {
	Get(ctx context.Context, date entities.Date) (*entities.Holiday, error)
	Range(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error)
	Set(ctx context.Context, date entities.Date, reason string) error
	Remove(ctx context.Context, date entities.Date) error
	FillWeekends(ctx context.Context, start, end entities.Date) ([]entities.Holiday, error)
}

// TaskService interface for the daily task ledger
type TaskService interface {
	List(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error)
	Upsert(ctx context.Context, userID string, date entities.Date, req UpsertTaskRequest) (*entities.TaskRecord, error)
	Remove(ctx context.Context, userID string, date entities.Date, id string) error
	CarryOverCandidates(ctx context.Context, userID string, date entities.Date) ([]entities.TaskRecord, error)
	CarryOver(ctx context.Context, userID string, req CarryOverRequest) ([]entities.TaskRecord, error)
}

// ReportService interface for table rendering and spreadsheet export
type ReportService interface {
	MonthlyAttendanceTable(ctx context.Context, month entities.Month) (*Table, error)
	ExportMonthlyAttendance(ctx context.Context, month entities.Month) ([]byte, string, error)
}

// Request/Response Types

// Auth related types
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email"`
	Role   entities.UserRole `json:"role"`
}

// User related types
type CreateUserRequest struct {
	Email       string            `json:"email" validate:"required,email"`
	DisplayName string            `json:"display_name" validate:"required,max=100"`
	Password    string            `json:"password" validate:"required,min=8"`
	Role        entities.UserRole `json:"role" validate:"required"`
}

// Attendance related types

// DayRecord is one resolved day in a user's month view.
type DayRecord struct {
	Date            entities.Date      `json:"date"`
	Status          entities.DayStatus `json:"status"`
	DurationMinutes int                `json:"duration_minutes"`
	HolidayReason   string             `json:"holiday_reason,omitempty"`
}

// Task related types
type UpsertTaskRequest struct {
	// ID is empty for a new task; an unknown explicit ID is rejected.
	ID          string              `json:"id"`
	Description string              `json:"description" validate:"required,max=2000"`
	Status      entities.TaskStatus `json:"status" validate:"required"`
	Hours       int                 `json:"hours" validate:"min=0,max=8"`
}

// TaskEdit overrides status and/or hours of one carried-over task.
type TaskEdit struct {
	Status *entities.TaskStatus `json:"status"`
	Hours  *int                 `json:"hours"`
}

type CarryOverRequest struct {
	SourceDate entities.Date       `json:"source_date" validate:"required"`
	TargetDate entities.Date       `json:"target_date" validate:"required"`
	TaskIDs    []string            `json:"task_ids" validate:"required,min=1"`
	Edits      map[string]TaskEdit `json:"edits"`
}

// Report related types

// Table is the rendered table model handed to the exporter: header plus
// string rows, exactly what a caller already displays.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
