package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/audit"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	authPostgres "github.com/tesoreria-cl/tesoreria/internal/auth/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/category"
	categoryPostgres "github.com/tesoreria-cl/tesoreria/internal/category/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/dashboard"
	dashboardPostgres "github.com/tesoreria-cl/tesoreria/internal/dashboard/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
	notificationPostgres "github.com/tesoreria-cl/tesoreria/internal/notification/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/obs"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
	prPostgres "github.com/tesoreria-cl/tesoreria/internal/paymentrequest/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/reminder"
	reminderPostgres "github.com/tesoreria-cl/tesoreria/internal/reminder/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/transaction"
	transactionPostgres "github.com/tesoreria-cl/tesoreria/internal/transaction/postgres"
	"github.com/tesoreria-cl/tesoreria/internal/transport"
	"github.com/tesoreria-cl/tesoreria/internal/transport/rest"
	"github.com/tesoreria-cl/tesoreria/internal/user"
	userPostgres "github.com/tesoreria-cl/tesoreria/internal/user/postgres"
	"github.com/tesoreria-cl/tesoreria/pkg/logger"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Logger   *slog.Logger
	Handler  http.Handler
	Reminder *reminder.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Handler,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	if deps.Config.Reminder.Interval > 0 {
		go deps.Reminder.Run(schedulerCtx, deps.Config.Reminder.Interval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		stopScheduler()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopScheduler()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	specBytes, err := loadOpenAPISpec("api/openapi.yml")
	if err != nil {
		return nil, err
	}

	obs.Init()
	bus := events.NewEventBus(lg)
	paymentrequest.NewEventHandler(lg).RegisterEventHandlers(bus)
	recorder := audit.NewRecorder(lg)
	base := transport.NewBaseHandler(lg)

	privKey, err := config.Security.GetPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	pubKey, err := config.Security.GetPublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	tokenGen := auth.NewJWTTokenGenerator(privKey, pubKey,
		config.Security.AccessTokenDuration, config.Security.RefreshTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	prService := paymentrequest.NewService(
		prPostgres.NewPaymentRequestRepository(gormDB, recorder), categoryService, bus, lg)
	transactionService := transaction.NewService(
		transactionPostgres.NewTransactionRepository(gormDB, recorder), categoryService, lg)
	notificationService := notification.NewService(
		notificationPostgres.NewNotificationRepository(gormDB), lg)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), authService, lg)
	dashboardService := dashboard.NewService(dashboardPostgres.NewDashboardRepository(db), lg)
	reminderService := reminder.NewService(
		reminderPostgres.NewReminderRepository(gormDB), bus,
		config.Reminder.GetAgingThreshold(), lg)

	handlers := rest.Handlers{
		Auth:           authHandler,
		PaymentRequest: paymentrequest.NewHandler(base, prService),
		Transaction:    transaction.NewHandler(base, transactionService),
		Category:       category.NewHandler(base, categoryService),
		Notification:   notification.NewHandler(base, notificationService),
		User:           user.NewHandler(base, userService),
		Dashboard:      dashboard.NewHandler(base, dashboardService),
	}

	router := rest.NewRouter(handlers, db.DB, lg, config.Server.AllowedOrigins, specBytes)

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Logger:   lg,
		Handler:  router,
		Reminder: reminderService,
	}, nil
}

// loadOpenAPISpec reads and validates the contract at startup so a broken
// spec fails the boot instead of serving garbage at /openapi.yml.
func loadOpenAPISpec(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read openapi spec: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("openapi spec validation failed: %w", err)
	}

	return data, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
