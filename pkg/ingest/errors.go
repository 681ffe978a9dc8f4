package ingest

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyCache is returned when a seed pass finds no cached responses at all.
// The destination table is left untouched in that case.
var ErrEmptyCache = errors.New("no cached responses to load")

// ConfigurationError reports missing or unusable input that the operator has
// to fix, such as the reference query list.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// FetchError reports a failed request to the dive site API. StatusCode is zero
// for transport failures (timeouts, DNS, refused connections).
type FetchError struct {
	Term       string
	StatusCode int
	Body       string // truncated response body, for logging
	Err        error

	// Interrupted is set when the caller's context had ended by the time the
	// request failed. The client's own per-request timeout does not set it.
	Interrupted bool
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %q: unexpected status %d", e.Term, e.StatusCode)
	}
	return fmt.Sprintf("fetch %q: %v", e.Term, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsStatus reports whether the API answered with a non-success status.
func (e *FetchError) IsStatus() bool { return e.StatusCode != 0 }

// IsRetryable marks transport failures as transient. A status response is
// never retried: the API gives no retry signal, so it is treated as a quota
// cutoff. Only the caller's context ending is final; a request that hit the
// client timeout is retried like any other transport failure.
func (e *FetchError) IsRetryable() bool {
	if e.StatusCode != 0 || e.Err == nil || e.Interrupted {
		return false
	}
	return !errors.Is(e.Err, context.Canceled)
}

// IsQuotaStop reports whether err ended a fetch run because the API refused a
// request. Such runs are a normal end of the day's quota, not a failure.
func IsQuotaStop(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.IsStatus()
}

// MalformedRecordError reports a cached record that cannot be normalized.
type MalformedRecordError struct {
	Term       string
	ExternalID string
	Field      string
	Err        error
}

func (e *MalformedRecordError) Error() string {
	if e.ExternalID != "" {
		return fmt.Sprintf("malformed record %s in %q: field %s: %v", e.ExternalID, e.Term, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed record in %q: field %s: %v", e.Term, e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// StorageError reports a failure of the ledger, cache store or destination database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
