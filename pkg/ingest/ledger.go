package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// LedgerPaths locates the ledger's files.
type LedgerPaths struct {
	Reference string // text listing every query term in quotes
	Pending   string // terms not yet fetched, written once
	Completed string // append-only log of fetched terms
	Lock      string // guards mutation of Pending and Completed
}

// Ledger records which query terms have been fetched. The effective pending
// set is always pending minus completed, so the two never overlap.
type Ledger struct {
	paths  LedgerPaths
	lock   *flock.Flock
	logger *zap.Logger
}

// NewLedger creates a ledger over paths. Nothing is touched on disk until
// Initialize.
func NewLedger(paths LedgerPaths, logger *zap.Logger) *Ledger {
	return &Ledger{
		paths:  paths,
		lock:   flock.New(paths.Lock),
		logger: logger.Named("ingest.ledger"),
	}
}

// Initialize creates the pending file from the reference text if it does not
// exist yet, and makes sure a completed file exists. Safe to call on every run.
func (l *Ledger) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(l.paths.Pending), 0o755); err != nil {
		return &StorageError{Op: "create ledger directory", Err: err}
	}

	return l.withLock(func() error {
		if _, err := os.Stat(l.paths.Pending); errors.Is(err, fs.ErrNotExist) {
			reference, err := os.ReadFile(l.paths.Reference)
			if err != nil {
				return &ConfigurationError{Source: l.paths.Reference, Err: err}
			}

			terms := ParseReferenceTerms(reference)
			if err := createFile(l.paths.Pending, terms.Encode()); err != nil {
				return &StorageError{Op: "write pending terms", Err: err}
			}
			l.logger.Info("Created pending term list",
				zap.String("path", l.paths.Pending),
				zap.Int("terms", len(terms)))
		} else if err != nil {
			return &StorageError{Op: "stat pending terms", Err: err}
		}

		if _, err := os.Stat(l.paths.Completed); errors.Is(err, fs.ErrNotExist) {
			if err := createFile(l.paths.Completed, nil); err != nil {
				return &StorageError{Op: "create completed terms", Err: err}
			}
		} else if err != nil {
			return &StorageError{Op: "stat completed terms", Err: err}
		}
		return nil
	})
}

// Snapshot returns the effective pending set and the completed set.
func (l *Ledger) Snapshot() (pending, completed TermSet, err error) {
	all, err := ReadTermSet(l.paths.Pending)
	if err != nil {
		return nil, nil, &StorageError{Op: "read pending terms", Err: err}
	}
	completed, err = ReadTermSet(l.paths.Completed)
	if err != nil {
		return nil, nil, &StorageError{Op: "read completed terms", Err: err}
	}
	return all.Difference(completed), completed, nil
}

// PendingTerms returns the terms still to fetch, sorted descending.
func (l *Ledger) PendingTerms() ([]string, error) {
	pending, _, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	return pending.SortedDesc(), nil
}

// MarkCompleted appends terms to the completed file. Duplicates are harmless
// because the file is read back as a set.
func (l *Ledger) MarkCompleted(terms ...string) error {
	if len(terms) == 0 {
		return nil
	}

	var b strings.Builder
	for _, t := range terms {
		b.WriteString(t)
		b.WriteByte('\n')
	}

	return l.withLock(func() error {
		f, err := os.OpenFile(l.paths.Completed, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return &StorageError{Op: "open completed terms", Err: err}
		}
		if _, err := f.WriteString(b.String()); err != nil {
			f.Close()
			return &StorageError{Op: "append completed terms", Err: err}
		}
		if err := f.Close(); err != nil {
			return &StorageError{Op: "close completed terms", Err: err}
		}
		l.logger.Debug("Marked terms completed", zap.Strings("terms", terms))
		return nil
	})
}

func (l *Ledger) withLock(fn func() error) error {
	if err := l.lock.Lock(); err != nil {
		return &StorageError{Op: "lock ledger", Err: err}
	}
	defer func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("Failed to unlock ledger", zap.Error(err))
		}
	}()
	return fn()
}

// createFile writes data to a new file, failing if it already exists.
func createFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
