package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles attendance tables and spreadsheet exports
type ReportHandler struct {
	reportService ports.ReportService
	logger        *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService ports.ReportService, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// GetMonthlyTable returns the month's attendance table as JSON
func (h *ReportHandler) GetMonthlyTable(c echo.Context) error {
	month, err := parseMonthParam(c, "month")
	if err != nil {
		return err
	}

	table, err := h.reportService.MonthlyAttendanceTable(c.Request().Context(), month)
	if err != nil {
		h.logger.Error("Monthly table failed", "error", err, "month", month.String())
		return mapError(err)
	}
	return c.JSON(http.StatusOK, table)
}

// ExportMonthly returns the month's attendance table as an xlsx download
func (h *ReportHandler) ExportMonthly(c echo.Context) error {
	month, err := parseMonthParam(c, "month")
	if err != nil {
		return err
	}

	data, filename, err := h.reportService.ExportMonthlyAttendance(c.Request().Context(), month)
	if err != nil {
		h.logger.Error("Monthly export failed", "error", err, "month", month.String())
		return mapError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}
