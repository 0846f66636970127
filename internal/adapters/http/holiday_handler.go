package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// HolidayHandler handles the organization holiday calendar
type HolidayHandler struct {
	holidayService ports.HolidayService
	logger         *logger.Logger
}

// NewHolidayHandler creates a new holiday handler
func NewHolidayHandler(holidayService ports.HolidayService, logger *logger.Logger) *HolidayHandler {
	return &HolidayHandler{
		holidayService: holidayService,
		logger:         logger,
	}
}

// ListHolidays returns holidays in the [start, end] query range
func (h *HolidayHandler) ListHolidays(c echo.Context) error {
	start, err := parseDateParam(c, "start")
	if err != nil {
		return err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return err
	}

	holidays, err := h.holidayService.Range(c.Request().Context(), start, end)
	if err != nil {
		h.logger.Error("List holidays failed", "error", err)
		return mapError(err)
	}
	return c.JSON(http.StatusOK, holidays)
}

// GetHoliday returns the holiday on one date
func (h *HolidayHandler) GetHoliday(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}

	holiday, err := h.holidayService.Get(c.Request().Context(), date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, holiday)
}

type setHolidayRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

// SetHoliday declares one date a holiday
func (h *HolidayHandler) SetHoliday(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}

	var req setHolidayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.holidayService.Set(c.Request().Context(), date, req.Reason); err != nil {
		h.logger.Error("Set holiday failed", "error", err, "date", date.String())
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Holiday saved"})
}

// RemoveHoliday deletes the holiday on one date
func (h *HolidayHandler) RemoveHoliday(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}

	if err := h.holidayService.Remove(c.Request().Context(), date); err != nil {
		h.logger.Error("Remove holiday failed", "error", err, "date", date.String())
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Holiday removed"})
}

// FillWeekends writes weekend holidays over the [start, end] query range
func (h *HolidayHandler) FillWeekends(c echo.Context) error {
	start, err := parseDateParam(c, "start")
	if err != nil {
		return err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return err
	}

	written, err := h.holidayService.FillWeekends(c.Request().Context(), start, end)
	if err != nil {
		h.logger.Error("Fill weekends failed", "error", err)
		return mapError(err)
	}
	return c.JSON(http.StatusOK, written)
}
