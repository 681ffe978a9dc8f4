package ingest

import (
	"context"
	"errors"

	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/database"
)

// OpenCacheStore returns the cache store selected by cfg.Ingest.CacheBackend.
// The returned close function releases any connection and is never nil.
func OpenCacheStore(ctx context.Context, cfg *config.Config) (CacheStore, func(), error) {
	if cfg.Ingest.CacheBackend != "redis" {
		return NewFileCacheStore(cfg.Ingest.Path(cfg.Ingest.CacheDir)), func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, func() {}, &ConfigurationError{Source: "redis", Err: err}
	}
	if client == nil {
		return nil, func() {}, &ConfigurationError{Source: "redis", Err: errors.New("REDIS_HOST must be set for the redis cache backend")}
	}
	return NewRedisCacheStore(client, ""), func() { _ = client.Close() }, nil
}

// LedgerPathsFrom resolves the ledger files configured in cfg.
func LedgerPathsFrom(cfg config.IngestConfig) LedgerPaths {
	return LedgerPaths{
		Reference: cfg.Path(cfg.ReferenceFile),
		Pending:   cfg.Path(cfg.PendingFile),
		Completed: cfg.Path(cfg.CompletedFile),
		Lock:      cfg.Path(cfg.LockFile),
	}
}
