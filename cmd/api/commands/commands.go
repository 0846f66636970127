package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/attendly/core/internal/adapters/export"
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
	"github.com/attendly/core/internal/infrastructure/server"
	"github.com/attendly/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Attendly API server",
		Long:  "Start the Attendly API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage postgres store migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create and manage users in the system",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			displayName, _ := cmd.Flags().GetString("display-name")

			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}

			createUser(email, password, role, displayName)
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("role", "member", "User role (admin, member)")
	createUserCmd.Flags().String("display-name", "", "User display name")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewHolidaysCommand creates the holiday calendar command
func NewHolidaysCommand() *cobra.Command {
	holidaysCmd := &cobra.Command{
		Use:   "holidays",
		Short: "Holiday calendar commands",
	}

	fillCmd := &cobra.Command{
		Use:   "fill-weekends",
		Short: "Write weekend holidays over a date range",
		Run: func(cmd *cobra.Command, args []string) {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			fillWeekends(start, end)
		},
	}
	fillCmd.Flags().String("start", "", "Range start, yyyy-MM-dd (required)")
	fillCmd.Flags().String("end", "", "Range end, yyyy-MM-dd (required)")

	holidaysCmd.AddCommand(fillCmd)
	return holidaysCmd
}

// NewExportCommand creates the report export command
func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Report export commands",
	}

	attendanceCmd := &cobra.Command{
		Use:   "attendance",
		Short: "Export one month's attendance table as xlsx",
		Run: func(cmd *cobra.Command, args []string) {
			month, _ := cmd.Flags().GetString("month")
			out, _ := cmd.Flags().GetString("out")
			exportAttendance(month, out)
		},
	}
	attendanceCmd.Flags().String("month", "", "Month to export, yyyy-MM (required)")
	attendanceCmd.Flags().String("out", "", "Output path (defaults to attendance-<month>.xlsx)")

	exportCmd.AddCommand(attendanceCmd)
	return exportCmd
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting Attendly API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store", cfg.Store.Backend,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatal("Server failed to start", "error", err)
	}
}

func runMigration(direction string) {
	m := newMigrator()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	version, dirty, err := newMigrator().Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newMigrator() *migrate.Migrate {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Store.Backend != config.StoreBackendPostgres {
		log.Fatalf("Migrations apply to the postgres backend only (current: %s)", cfg.Store.Backend)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := migratepg.WithInstance(db.DB.DB, &migratepg.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	return m
}

// openStore connects the configured persistence backend for CLI operations.
func openStore(cfg *config.Config) ports.KeyValueRangeStore {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return memory.New()
	case config.StoreBackendPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		return postgres.New(db)
	case config.StoreBackendFirebase:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := firebase.New(ctx, cfg.Firebase.DatabaseURL, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to connect to firebase: %v", err)
		}
		return store
	default:
		log.Fatalf("Unknown store backend %q", cfg.Store.Backend)
		return nil
	}
}

func createUser(email, password, role, displayName string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	store := openStore(cfg)

	userService := services.NewUserService(
		repository.NewUserRepository(store), identity.NewUUIDGenerator(), logger.NewNop())

	if displayName == "" {
		displayName = email
	}

	user, err := userService.Create(context.Background(), ports.CreateUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		Role:        entities.UserRole(role),
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  UID: %s\n", user.UID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Name: %s\n", user.DisplayName)
	fmt.Printf("  Role: %s\n", user.Role)
}

func fillWeekends(start, end string) {
	startDate, err := entities.ParseDate(start)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	endDate, err := entities.ParseDate(end)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	store := openStore(cfg)

	holidayService := services.NewHolidayService(
		repository.NewHolidayRepository(store), services.NewOverviewCache(), logger.NewNop())

	written, err := holidayService.FillWeekends(context.Background(), startDate, endDate)
	if err != nil {
		log.Fatalf("Failed to fill weekends: %v", err)
	}

	fmt.Printf("Wrote %d weekend holidays between %s and %s\n", len(written), start, end)
}

func exportAttendance(month, out string) {
	m, err := entities.ParseMonth(month)
	if err != nil {
		log.Fatalf("Invalid month: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	orgStart, err := entities.ParseDate(cfg.Attendance.OrgStartDate)
	if err != nil {
		log.Fatalf("Invalid org start date: %v", err)
	}
	store := openStore(cfg)

	reportService := services.NewReportService(
		repository.NewAttendanceRepository(store),
		repository.NewHolidayRepository(store),
		repository.NewUserRepository(store),
		export.NewExcelExporter(),
		identity.NewSystemClock(),
		orgStart,
		logger.NewNop(),
	)

	data, filename, err := reportService.ExportMonthlyAttendance(context.Background(), m)
	if err != nil {
		log.Fatalf("Failed to export attendance: %v", err)
	}

	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
}
