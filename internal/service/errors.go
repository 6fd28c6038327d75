package service

import (
	"errors"
	"fmt"

	"vocabnotes/internal/notes"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = notes.ErrValidation
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = notes.ErrNotFound
	// ErrImportParse matches every ImportParseError.
	ErrImportParse = errors.New("import parse error")
	// ErrPersistence matches every PersistenceError.
	ErrPersistence = errors.New("persistence error")
	// ErrWatchUnsupported is returned by Watch when the adapter cannot push changes.
	ErrWatchUnsupported = errors.New("persistence adapter does not support watching")
)

// ValidationError is returned when a required field is blank or a category is unknown.
type ValidationError = notes.ValidationError

// NotFoundError is returned when an edit or delete targets a note that no longer exists.
type NotFoundError = notes.NotFoundError

// ImportParseError is returned when a structured import is not well formed.
// Nothing is imported when it occurs.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return fmt.Sprintf("import failed: %v", e.Err)
}

func (e *ImportParseError) Unwrap() []error { return []error{ErrImportParse, e.Err} }

// PersistenceError is returned when the persistence adapter fails. The
// in-memory sequence is restored to its state before the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
