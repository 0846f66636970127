package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warn("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// UserHandler handles user-related requests
type UserHandler struct {
	userService ports.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService ports.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser handles user creation
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create user failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// GetCurrentUser handles getting current user info
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userService.Get(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Get current user failed", "error", err, "user_id", userID)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// GetUser handles getting user by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userService.Get(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("Get user failed", "error", err, "user_id", userID)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// ListUsers handles listing users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("List users failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, users)
}

// Utility functions and helper types

func getUserIDFromContext(c echo.Context) string {
	if claims, ok := c.Get("claims").(*ports.Claims); ok {
		return claims.UserID
	}
	return ""
}

func getClaimsFromContext(c echo.Context) *ports.Claims {
	claims, _ := c.Get("claims").(*ports.Claims)
	return claims
}

// targetUserID resolves which user's data a request addresses. Admins may
// name any user via the user_id query parameter; everyone else is pinned to
// their own records.
func targetUserID(c echo.Context) (string, error) {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	requested := c.QueryParam("user_id")
	if requested == "" || requested == claims.UserID {
		return claims.UserID, nil
	}
	if claims.Role != entities.UserRoleAdmin {
		return "", echo.NewHTTPError(http.StatusForbidden, "Cannot access another user's records")
	}
	return requested, nil
}

// mapError converts domain errors to HTTP status codes.
func mapError(err error) error {
	switch {
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrClockOutBeforeIn):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, entities.ErrAlreadyClockedIn),
		errors.Is(err, entities.ErrAlreadyClockedOut),
		errors.Is(err, entities.ErrNotClockedIn),
		errors.Is(err, entities.ErrTaskNotEligible):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func parseDateParam(c echo.Context, name string) (entities.Date, error) {
	raw := c.Param(name)
	if raw == "" {
		raw = c.QueryParam(name)
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		return entities.Date{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected yyyy-MM-dd")
	}
	return date, nil
}

func parseMonthParam(c echo.Context, name string) (entities.Month, error) {
	raw := c.Param(name)
	if raw == "" {
		raw = c.QueryParam(name)
	}
	month, err := entities.ParseMonth(raw)
	if err != nil {
		return entities.Month{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid month, expected yyyy-MM")
	}
	return month, nil
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
