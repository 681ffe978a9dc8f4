package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/social-scuba/divelog/pkg/config"
	"github.com/social-scuba/divelog/pkg/logging"
	"github.com/social-scuba/divelog/pkg/metrics"
	"github.com/social-scuba/divelog/pkg/retry"
)

const divesitePath = "/api/divesite"

// APIClient queries the dive site API one country at a time.
type APIClient struct {
	http   *resty.Client
	retry  *retry.Config
	logger *zap.Logger
}

// NewAPIClient creates a client for cfg. Requests time out after cfg.Timeout;
// transport failures are retried up to cfg.MaxRetries times.
func NewAPIClient(cfg config.DiveAPIConfig, logger *zap.Logger) *APIClient {
	logger = logger.Named("ingest.api")

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-RapidAPI-Key", cfg.Key).
		SetHeader("X-RapidAPI-Host", cfg.Host).
		SetHeader("Accept", "application/json")

	logger.Debug("Dive site API client configured",
		zap.String("base_url", cfg.BaseURL),
		zap.String("host", cfg.Host),
		zap.String("key", logging.RedactSecret(cfg.Key)),
		zap.Duration("timeout", cfg.Timeout))

	return &APIClient{
		http:   client,
		retry:  retry.HTTPConfig(cfg.MaxRetries),
		logger: logger,
	}
}

// WithRetry replaces the backoff policy for transport failures.
func (c *APIClient) WithRetry(cfg *retry.Config) *APIClient {
	c.retry = cfg
	return c
}

// FetchCountry returns the raw body of GET /api/divesite?country=term.
// Any status other than 200 is returned as a *FetchError without retrying.
func (c *APIClient) FetchCountry(ctx context.Context, term string) ([]byte, error) {
	attempt := 0
	return retry.DoIfRetryableWithResult(ctx, c.retry, func() ([]byte, error) {
		attempt++
		start := time.Now()

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("country", term).
			Get(divesitePath)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			metrics.ObserveFetch(metrics.FetchTransport, elapsed)
			c.logger.Warn("Dive site API request failed",
				zap.String("term", term),
				zap.Int("attempt", attempt),
				zap.String("error", logging.SanitizeError(err)))
			return nil, &FetchError{Term: term, Err: err, Interrupted: ctx.Err() != nil}
		}

		if resp.StatusCode() != http.StatusOK {
			metrics.ObserveFetch(metrics.FetchBadStatus, elapsed)
			body := logging.TruncateString(string(resp.Body()), logging.MaxBodyLogLength)
			c.logger.Warn("Dive site API returned non-success status",
				zap.String("term", term),
				zap.Int("status", resp.StatusCode()),
				zap.String("body", body))
			return nil, &FetchError{Term: term, StatusCode: resp.StatusCode(), Body: body}
		}

		metrics.ObserveFetch(metrics.FetchOK, elapsed)
		c.logger.Debug("Fetched dive sites",
			zap.String("term", term),
			zap.Int("bytes", len(resp.Body())),
			zap.Float64("seconds", elapsed))
		return resp.Body(), nil
	})
}
