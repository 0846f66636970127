package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// TaskHandler handles the daily task ledger
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the day's task log
func (h *TaskHandler) ListTasks(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), userID, date)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "user_id", userID)
		return mapError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// UpsertTask creates or edits one task in the day's log
func (h *TaskHandler) UpsertTask(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	var req ports.UpsertTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Upsert(c.Request().Context(), userID, date, req)
	if err != nil {
		return mapError(err)
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, task)
}

// RemoveTask deletes one task from the day's log
func (h *TaskHandler) RemoveTask(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.taskService.Remove(c.Request().Context(), userID, date, id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task removed"})
}

// CarryOverCandidates returns the day's unfinished tasks
func (h *TaskHandler) CarryOverCandidates(c echo.Context) error {
	date, err := parseDateParam(c, "date")
	if err != nil {
		return err
	}
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	candidates, err := h.taskService.CarryOverCandidates(c.Request().Context(), userID, date)
	if err != nil {
		h.logger.Error("Carry-over candidates failed", "error", err, "user_id", userID)
		return mapError(err)
	}
	return c.JSON(http.StatusOK, candidates)
}

// CarryOver copies selected unfinished tasks into a later day
func (h *TaskHandler) CarryOver(c echo.Context) error {
	userID, err := targetUserID(c)
	if err != nil {
		return err
	}

	var req ports.CarryOverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	carried, err := h.taskService.CarryOver(c.Request().Context(), userID, req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, carried)
}
