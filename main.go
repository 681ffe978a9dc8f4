package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/audit"
	"github.com/social-scuba/divelog/pkg/auth"
	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/database"
	"github.com/social-scuba/divelog/pkg/handlers"
	"github.com/social-scuba/divelog/pkg/ingest"
	"github.com/social-scuba/divelog/pkg/logging"
	"github.com/social-scuba/divelog/pkg/middleware"
	"github.com/social-scuba/divelog/pkg/repositories"
	"github.com/social-scuba/divelog/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connStr := cfg.Database.ConnectionString()
	if err := database.MigrateURL(connStr, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	buddyRepo := repositories.NewBuddyRepository(db)
	siteRepo := repositories.NewDiveSiteRepository(db)
	diveRepo := repositories.NewDiveRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, logger)
	userService := services.NewUserService(userRepo, diveRepo, logger)
	buddyService := services.NewBuddyService(buddyRepo, userRepo, diveRepo, logger)
	siteService := services.NewDiveSiteService(siteRepo, ingest.DefaultVocabulary(), logger)
	diveService := services.NewDiveService(diveRepo, siteRepo, buddyRepo, logger)
	searchService := services.NewSearchService(userRepo, siteRepo)

	sessions := auth.NewSessionStore(cfg.Session)
	authMiddleware := auth.NewMiddleware(sessions, logger)
	auditor := audit.NewSecurityAuditor(logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, userService, sessions, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUsersHandler(userService, buddyService, sessions, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDiveSitesHandler(siteService, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDivesHandler(diveService, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSearchHandler(searchService, logger).RegisterRoutes(mux, authMiddleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Metrics reads r.Pattern, so it must sit directly on the mux.
	handler := middleware.RequestID(
		middleware.NoCache(
			middleware.RequestLogger(logger)(
				middleware.Metrics(mux))))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting divelog server",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
