package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"github.com/noticiando/rssingest/pkg/domain"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = domain.ErrNotFound

// errCritical marks errors that must not be retried
var errCritical = errors.New("critical database error")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error { return e.err }

func (e *criticalError) Is(target error) bool { return target == errCritical }

// isLockError checks if an error is a SQLite lock/busy error or a postgres serialization conflict
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "deadlock detected") ||
		strings.Contains(errStr, "could not serialize access")
}

// withRetry runs fn, retrying lock errors with backoff. Any other error stops immediately.
func withRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		err := fn()
		if err == nil || isLockError(err) {
			return err
		}
		return &criticalError{err: err}
	}, errCritical)

	var ce *criticalError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

// notFound maps sql.ErrNoRows to ErrNotFound, other errors pass through
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// nullable turns an empty string into NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
