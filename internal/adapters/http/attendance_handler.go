package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// AttendanceHandler handles clock events and attendance views
type AttendanceHandler struct {
	attendanceService ports.AttendanceService
	logger            *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService ports.AttendanceService, logger *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		logger:            logger,
	}
}

// ClockIn opens today's clock event for the authenticated user
func (h *AttendanceHandler) ClockIn(c echo.Context) error {
	userID := getUserIDFromContext(c)

	event, err := h.attendanceService.ClockIn(c.Request().Context(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, event)
}

// ClockOut closes today's clock event for the authenticated user
func (h *AttendanceHandler) ClockOut(c echo.Context) error {
	userID := getUserIDFromContext(c)

	event, err := h.attendanceService.ClockOut(c.Request().Context(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, event)
}

// GetMonth returns the resolved day-by-day month view for one user
func (h *AttendanceHandler) GetMonth(c echo.Context) error {
	month, err := parseMonthParam(c, "month")
	if err != nil {
		return err
	}
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	records, err := h.attendanceService.MonthForUser(c.Request().Context(), userID, month)
	if err != nil {
		h.logger.Error("Month view failed", "error", err, "user_id", userID, "month", month.String())
		return mapError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// GetMonthlyOverview returns the month's rollup across all users
func (h *AttendanceHandler) GetMonthlyOverview(c echo.Context) error {
	month, err := parseMonthParam(c, "month")
	if err != nil {
		return err
	}

	summary, err := h.attendanceService.MonthlyOverview(c.Request().Context(), month)
	if err != nil {
		h.logger.Error("Monthly overview failed", "error", err, "month", month.String())
		return mapError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// WatchToday streams the user's current-day clock event as server-sent
// events, one full event per change, until the client disconnects.
func (h *AttendanceHandler) WatchToday(c echo.Context) error {
	userID := getUserIDFromContext(c)
	ctx := c.Request().Context()

	events, err := h.attendanceService.WatchToday(ctx, userID)
	if err != nil {
		return mapError(err)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Encode clock event failed", "error", err, "user_id", userID)
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
