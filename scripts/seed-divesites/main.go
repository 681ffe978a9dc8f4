// seed-divesites reloads the divesites table from the responses cached by
// fetch-divesites.
//
// The load is a full refresh: the table is truncated and every unique site
// is inserted in one transaction. Dives that reference the old rows are
// removed with them. An empty cache is refused and leaves the table as it was.
//
// Usage: go run ./scripts/seed-divesites
//
// Configuration: config.yaml or PG*, INGEST_* and REDIS_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/database"
	"github.com/social-scuba/divelog/pkg/ingest"
	"github.com/social-scuba/divelog/pkg/logging"
	"github.com/social-scuba/divelog/pkg/repositories"
)

func main() {
	cfg, err := config.LoadIngest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Seed failed", zap.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	connStr := cfg.Database.ConnectionString()
	if err := database.MigrateURL(connStr, logger); err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store, closeStore, err := ingest.OpenCacheStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	normalizer := ingest.NewNormalizer(ingest.DefaultVocabulary(), logger)
	seeder := ingest.NewSeeder(store, normalizer, repositories.NewDiveSiteRepository(db), logger)

	report, err := seeder.Run(ctx)
	if report != nil {
		fmt.Println(report.NormalizeReport.String())
	}
	if err != nil {
		return err
	}
	fmt.Printf("loaded: %d\n", report.Loaded)
	return nil
}
