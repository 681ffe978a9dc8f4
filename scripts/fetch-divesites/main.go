// fetch-divesites requests dive sites from the dive site API, one country per
// request, and caches each response for seed-divesites.
//
// The run walks the pending query terms and stops at the first non-success
// response, which the API uses to signal that the daily quota is spent. Terms
// fetched before that point are recorded as completed; run again later to
// continue. A quota stop exits 0.
//
// Usage: go run ./scripts/fetch-divesites
//
// Configuration: config.yaml or DIVE_API_*, INGEST_* and REDIS_* environment
// variables. DIVE_API_KEY is required.
//
// Flags:
//
//	-status   Print pending and completed counts without fetching
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/ingest"
	"github.com/social-scuba/divelog/pkg/logging"
)

func main() {
	status := flag.Bool("status", false, "Print pending and completed counts without fetching")
	flag.Parse()

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

	os.Exit(run(ctx, cfg, *status, logger))
}

func run(ctx context.Context, cfg *config.Config, statusOnly bool, logger *zap.Logger) int {
	ledger := ingest.NewLedger(ingest.LedgerPathsFrom(cfg.Ingest), logger)
	if err := ledger.Initialize(); err != nil {
		logger.Error("Failed to initialize query ledger", zap.Error(err))
		return 1
	}

	if statusOnly {
		pending, completed, err := ledger.Snapshot()
		if err != nil {
			logger.Error("Failed to read query ledger", zap.Error(err))
			return 1
		}
		fmt.Printf("pending: %d\ncompleted: %d\n", len(pending), len(completed))
		return 0
	}

	if cfg.DiveAPI.Key == "" {
		logger.Error("DIVE_API_KEY must be set")
		return 1
	}

	store, closeStore, err := ingest.OpenCacheStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open response cache", zap.String("error", logging.SanitizeError(err)))
		return 1
	}
	defer closeStore()

	client := ingest.NewAPIClient(cfg.DiveAPI, logger)
	report, err := ingest.NewFetcher(ledger, client, store, logger).Run(ctx)

	if report != nil {
		fmt.Printf("attempted: %d\ncompleted: %d\nremaining: %d\n",
			report.Attempted, len(report.Completed), report.Remaining())
	}

	switch {
	case err == nil:
		return 0
	case ingest.IsQuotaStop(err):
		logger.Info("API refused a request, stopping until the quota resets",
			zap.String("term", report.HaltedAt))
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("Fetch interrupted")
		return 130
	default:
		logger.Error("Fetch failed", zap.String("error", logging.SanitizeError(err)))
		return 1
	}
}
