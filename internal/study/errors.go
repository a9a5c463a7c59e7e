package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/at-ishikawa/vocabox/internal/database"
)

var (
	// ErrNotAuthenticated is returned when an operation has no valid user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when no active study status exists for a key.
	ErrNotFound = errors.New("study status not found")
	// ErrConcurrentModification is returned when a concurrent insert won the unique key.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrPersistenceUnavailable is returned for storage failures that may succeed on retry.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrPersistenceUnavailable) || errors.Is(err, ErrConcurrentModification)
}

// wrapError prefixes err with op and attaches the matching sentinel.
func wrapError(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrPersistenceUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConcurrentModification, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrPersistenceUnavailable, err)
	}
}
