package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/adapters/category"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/adapters/events"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/handlers"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/repositories/database/memory"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/repositories/database/pgsql"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/repositories/database/seed"
	"github.com/Cheker-dimassi/banking-system-microservices/pkg/database"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 15 * time.Second

// @title Transaction Service API
// @version 1.0
// @description Deposits, withdrawals, transfers, reversals and automation rules.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	repos, cleanup, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	if err := seedAccounts(ctx, cfg, repos, logger); err != nil {
		logger.Error("Failed to seed accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	options := []services.TransactionServiceOption{}
	if cfg.RedisAddr != "" {
		redisClient, err := events.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Events are best effort, the service runs without them.
			logger.Warn("Event publishing disabled", slog.String("error", err.Error()))
		} else {
			defer redisClient.Close()
			options = append(options, services.WithEventPublisher(events.NewRedisPublisher(redisClient, cfg.EventStream)))
		}
	}
	if cfg.CategoryServiceURL != "" {
		resolver, err := category.NewHTTPResolver(cfg.CategoryServiceURL, cfg.CategoryTimeout, cfg.CategoryCacheTTL)
		if err != nil {
			logger.Error("Failed to initialize category resolver", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer resolver.Close()
		options = append(options, services.WithCategoryResolver(resolver))
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, options...)

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// In-flight sagas finish before the process exits.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}

// seedAccounts loads SEED_ACCOUNTS_FILE when set. Without a file the memory
// driver gets the demo accounts unless SEED_DEMO_ACCOUNTS is off.
func seedAccounts(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) error {
	var seeds []config.SeedAccount
	switch {
	case cfg.SeedAccountsFile != "":
		loaded, err := config.LoadSeedAccounts(cfg.SeedAccountsFile)
		if err != nil {
			return err
		}
		seeds = loaded
	case cfg.StorageDriver == config.StorageDriverMemory && cfg.SeedDemoAccounts:
		seeds = config.DemoSeedAccounts()
	default:
		return nil
	}

	created, err := seed.Accounts(middleware.WithLogger(ctx, logger), repos.AccountStore, seeds, cfg.DefaultCurrency)
	if err != nil {
		return err
	}
	logger.Info("Accounts seeded", slog.Int("created", created), slog.Int("entries", len(seeds)))
	return nil
}

// setupRepositories builds the stores for the configured driver. The returned
// func releases whatever was opened.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// runMigrations applies every pending "up" migration.
func runMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// golang-migrate needs database/sql, served by the pgx stdlib driver.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
