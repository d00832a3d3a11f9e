package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrHasReplies    = errors.New("comment has replies")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IOError means the file source could not be enumerated or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("file source: %v", e.Err)
	}
	return fmt.Sprintf("file source: %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DuplicateSlugError means two or more source files resolve to the same slug.
type DuplicateSlugError struct {
	Slug  string
	Paths []string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %q in %s", e.Slug, strings.Join(e.Paths, ", "))
}

// PersistenceError wraps a repository read or write failure during sync.
type PersistenceError struct {
	Op   string
	Slug string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Slug == "" {
		return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence: %s %q: %v", e.Op, e.Slug, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SyncInProgressError is returned when a sync is requested while another one is running.
type SyncInProgressError struct{}

func (e *SyncInProgressError) Error() string {
	return "sync already in progress"
}

// SyncErrorKind names the class of a sync failure for API responses and metrics.
func SyncErrorKind(err error) string {
	var (
		ioErr   *IOError
		dupErr  *DuplicateSlugError
		persErr *PersistenceError
		busyErr *SyncInProgressError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &busyErr):
		return "sync_in_progress"
	case errors.As(err, &dupErr):
		return "duplicate_slug"
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &persErr):
		return "persistence"
	default:
		return "unknown"
	}
}
