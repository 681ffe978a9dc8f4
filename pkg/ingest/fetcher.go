package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CountryFetcher fetches the raw API response for one query term.
type CountryFetcher interface {
	FetchCountry(ctx context.Context, term string) ([]byte, error)
}

// TermLedger is the part of the Ledger the fetch loop needs.
type TermLedger interface {
	PendingTerms() ([]string, error)
	MarkCompleted(terms ...string) error
}

var _ TermLedger = (*Ledger)(nil)
var _ CountryFetcher = (*APIClient)(nil)

// FetchReport summarizes one fetch run.
type FetchReport struct {
	Pending   int      // terms pending when the run started
	Attempted int      // requests sent
	Completed []string // terms cached and marked completed, in request order
	HaltedAt  string   // term whose request stopped the run, if any
}

// Remaining is the number of terms left for a later run.
func (r *FetchReport) Remaining() int {
	return r.Pending - len(r.Completed)
}

// Fetcher walks the pending terms one request at a time and caches each
// successful response.
type Fetcher struct {
	ledger TermLedger
	client CountryFetcher
	store  CacheStore
	logger *zap.Logger
}

func NewFetcher(ledger TermLedger, client CountryFetcher, store CacheStore, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		ledger: ledger,
		client: client,
		store:  store,
		logger: logger.Named("ingest.fetch"),
	}
}

// Run fetches pending terms in ascending order until they run out or a request
// fails. The first failure stops the run. Completed terms are written to the
// ledger once, at the end, including when the run stops early; a crash before
// that point means those terms are fetched again next time.
//
// The returned error is the *FetchError or *StorageError that stopped the run.
// The report is non-nil whenever the pending terms could be read.
func (f *Fetcher) Run(ctx context.Context) (*FetchReport, error) {
	terms, err := f.ledger.PendingTerms()
	if err != nil {
		return nil, err
	}

	report := &FetchReport{Pending: len(terms)}
	f.logger.Info("Starting fetch run", zap.Int("pending", len(terms)))

	var runErr error
	for len(terms) > 0 {
		term := terms[len(terms)-1]
		terms = terms[:len(terms)-1]

		if err := ctx.Err(); err != nil {
			runErr = &FetchError{Term: term, Err: err, Interrupted: true}
			report.HaltedAt = term
			break
		}

		report.Attempted++
		if runErr = f.fetchOne(ctx, term); runErr != nil {
			report.HaltedAt = term
			break
		}
		report.Completed = append(report.Completed, term)
	}

	if err := f.ledger.MarkCompleted(report.Completed...); err != nil {
		f.logger.Error("Failed to record completed terms",
			zap.Strings("terms", report.Completed),
			zap.Error(err))
		runErr = errors.Join(runErr, err)
	}

	fields := []zap.Field{
		zap.Int("attempted", report.Attempted),
		zap.Int("completed", len(report.Completed)),
		zap.Int("remaining", report.Remaining()),
	}
	if runErr != nil {
		f.logger.Warn("Fetch run stopped",
			append(fields, zap.String("halted_at", report.HaltedAt), zap.Error(runErr))...)
	} else {
		f.logger.Info("Fetch run finished", fields...)
	}

	return report, runErr
}

func (f *Fetcher) fetchOne(ctx context.Context, term string) error {
	body, err := f.client.FetchCountry(ctx, term)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return err
		}
		return &FetchError{Term: term, Err: err}
	}

	pretty, err := indentJSON(body)
	if err != nil {
		return &FetchError{Term: term, Err: fmt.Errorf("response is not JSON: %w", err)}
	}

	if err := f.store.Put(ctx, term, pretty); err != nil {
		return &StorageError{Op: "cache response for " + term, Err: err}
	}

	f.logger.Info("Cached dive sites", zap.String("term", term), zap.Int("bytes", len(pretty)))
	return nil
}

// indentJSON re-renders body with two-space indentation.
func indentJSON(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
