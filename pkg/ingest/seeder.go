package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/metrics"
	"github.com/social-scuba/divelog/pkg/models"
)

// Loader replaces the whole dive site table with sites in one transaction and
// returns the number of rows written.
type Loader interface {
	ReplaceAll(ctx context.Context, sites []models.DiveSite) (int64, error)
}

// SeedReport summarizes one seed pass.
type SeedReport struct {
	NormalizeReport
	Loaded int64
}

// Seeder reads every cached response, normalizes it and reloads the dive
// site table.
type Seeder struct {
	store      CacheStore
	normalizer *Normalizer
	loader     Loader
	logger     *zap.Logger
}

func NewSeeder(store CacheStore, normalizer *Normalizer, loader Loader, logger *zap.Logger) *Seeder {
	return &Seeder{
		store:      store,
		normalizer: normalizer,
		loader:     loader,
		logger:     logger.Named("ingest.seed"),
	}
}

// Run performs a full refresh. An empty cache is an error and leaves the
// table as it was; any load failure is returned as a *StorageError after the
// loader has rolled back.
func (s *Seeder) Run(ctx context.Context) (*SeedReport, error) {
	responses, err := s.store.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list cached responses", Err: err}
	}
	if len(responses) == 0 {
		return nil, &ConfigurationError{Source: "cache store", Err: ErrEmptyCache}
	}

	sites, normReport := s.normalizer.Normalize(responses)
	report := &SeedReport{NormalizeReport: normReport}

	metrics.AddSeedRecords(metrics.SeedDuplicate, normReport.Duplicates)
	metrics.AddSeedRecords(metrics.SeedMalformed, normReport.Malformed)

	loaded, err := s.loader.ReplaceAll(ctx, sites)
	if err != nil {
		return report, &StorageError{Op: "reload divesites", Err: err}
	}
	report.Loaded = loaded

	metrics.AddSeedRecords(metrics.SeedLoaded, int(loaded))
	metrics.DiveSitesLoaded.Set(float64(loaded))

	s.logger.Info("Seeded dive sites",
		zap.Int64("loaded", loaded),
		zap.Int("duplicates", normReport.Duplicates),
		zap.Int("malformed", normReport.Malformed))

	return report, nil
}
