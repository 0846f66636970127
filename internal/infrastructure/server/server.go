package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/attendly/core/internal/adapters/export"
	httpHandlers "github.com/attendly/core/internal/adapters/http"
	"github.com/attendly/core/internal/adapters/identity"
	"github.com/attendly/core/internal/adapters/repository"
	"github.com/attendly/core/internal/adapters/store/firebase"
	"github.com/attendly/core/internal/adapters/store/memory"
	"github.com/attendly/core/internal/adapters/store/postgres"
	"github.com/attendly/core/internal/application/services"
	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/config"
	"github.com/attendly/core/internal/infrastructure/database"
	"github.com/attendly/core/internal/infrastructure/logger"
	"github.com/attendly/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	db     *database.DB // nil unless the postgres backend is selected
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	// Initialize the persistence backend
	store, err := server.buildStore(cfg)
	if err != nil {
		return nil, err
	}

	orgStart, err := entities.ParseDate(cfg.Attendance.OrgStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid org start date: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	holidayRepo := repository.NewHolidayRepository(store)
	taskRepo := repository.NewTaskRepository(store)

	// Live feeds are a store capability, not a requirement
	live, _ := store.(ports.LiveStore)

	clock := identity.NewSystemClock()
	ids := identity.NewUUIDGenerator()
	cache := services.NewOverviewCache()

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, appLogger)
	userService := services.NewUserService(userRepo, ids, appLogger)
	attendanceService := services.NewAttendanceService(
		attendanceRepo, holidayRepo, clock, live, cache, orgStart,
		cfg.Attendance.WatchPollInterval, appLogger)
	holidayService := services.NewHolidayService(holidayRepo, cache, appLogger)
	taskService := services.NewTaskService(taskRepo, clock, ids, appLogger)
	reportService := services.NewReportService(
		attendanceRepo, holidayRepo, userRepo, export.NewExcelExporter(),
		clock, orgStart, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	userHandler := httpHandlers.NewUserHandler(userService, appLogger)
	attendanceHandler := httpHandlers.NewAttendanceHandler(attendanceService, appLogger)
	holidayHandler := httpHandlers.NewHolidayHandler(holidayService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	reportHandler := httpHandlers.NewReportHandler(reportService, appLogger)

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(authHandler, userHandler, attendanceHandler, holidayHandler, taskHandler, reportHandler, authService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// buildStore selects and connects the persistence backend.
func (s *Server) buildStore(cfg *config.Config) (ports.KeyValueRangeStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		s.logger.Info("Using in-memory store")
		return memory.New(), nil

	case config.StoreBackendPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.db = db
		s.logger.Info("Using postgres store", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return postgres.New(db), nil

	case config.StoreBackendFirebase:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := firebase.New(ctx, cfg.Firebase.DatabaseURL, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("connect to firebase: %w", err)
		}
		s.logger.Info("Using firebase store", "database_url", cfg.Firebase.DatabaseURL)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware; the live watch endpoint streams indefinitely
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/watch")
		},
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	authHandler *httpHandlers.AuthHandler,
	userHandler *httpHandlers.UserHandler,
	attendanceHandler *httpHandlers.AttendanceHandler,
	holidayHandler *httpHandlers.HolidayHandler,
	taskHandler *httpHandlers.TaskHandler,
	reportHandler *httpHandlers.ReportHandler,
	authService ports.AuthService,
) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	// User routes (authenticated)
	userGroup := v1.Group("/users", s.authMiddleware(authService))
	userGroup.GET("/me", userHandler.GetCurrentUser)
	userGroup.GET("", userHandler.ListUsers, s.requireRole("admin"))
	userGroup.POST("", userHandler.CreateUser, s.requireRole("admin"))
	userGroup.GET("/:id", userHandler.GetUser, s.requireRole("admin"))

	// Attendance routes (authenticated)
	attendanceGroup := v1.Group("/attendance", s.authMiddleware(authService))
	attendanceGroup.POST("/clock-in", attendanceHandler.ClockIn)
	attendanceGroup.POST("/clock-out", attendanceHandler.ClockOut)
	attendanceGroup.GET("/month/:month", attendanceHandler.GetMonth)
	attendanceGroup.GET("/overview/:month", attendanceHandler.GetMonthlyOverview, s.requireRole("admin"))
	attendanceGroup.GET("/watch", attendanceHandler.WatchToday)

	// Holiday routes (authenticated; writes are admin only)
	holidayGroup := v1.Group("/holidays", s.authMiddleware(authService))
	holidayGroup.GET("", holidayHandler.ListHolidays)
	holidayGroup.GET("/:date", holidayHandler.GetHoliday)
	holidayGroup.PUT("/:date", holidayHandler.SetHoliday, s.requireRole("admin"))
	holidayGroup.DELETE("/:date", holidayHandler.RemoveHoliday, s.requireRole("admin"))
	holidayGroup.POST("/fill-weekends", holidayHandler.FillWeekends, s.requireRole("admin"))

	// Task routes (authenticated)
	taskGroup := v1.Group("/tasks", s.authMiddleware(authService))
	taskGroup.GET("/:date", taskHandler.ListTasks)
	taskGroup.POST("/:date", taskHandler.UpsertTask)
	taskGroup.DELETE("/:date/:id", taskHandler.RemoveTask)
	taskGroup.GET("/:date/carry-over-candidates", taskHandler.CarryOverCandidates)
	taskGroup.POST("/carry-over", taskHandler.CarryOver)

	// Report routes (admin only)
	reportGroup := v1.Group("/reports", s.authMiddleware(authService), s.requireRole("admin"))
	reportGroup.GET("/attendance/:month", reportHandler.GetMonthlyTable)
	reportGroup.GET("/attendance/:month/export", reportHandler.ExportMonthly)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	// Only the postgres backend has a connection to probe
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "database_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	if s.db != nil {
		defer s.db.Close()
	}
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(*validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
