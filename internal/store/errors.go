package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store,
	// or exists only as a soft-deleted row on a path that excludes deleted rows.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert or update would violate one of the
	// uniqueness rules among non-deleted rows.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when the database rejects a row for
	// referential or check-constraint reasons.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStaleWrite is returned by conditional updates when the row no longer
	// matches the state the caller observed.
	ErrStaleWrite = errors.New("row changed since it was read")

	// Entity-specific "not found" errors

	ErrPackNotFound     = fmt.Errorf("%w: pack", ErrNotFound)
	ErrExamNotFound     = fmt.Errorf("%w: exam", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrFeedbackNotFound = fmt.Errorf("%w: feedback", ErrNotFound)
	ErrAttemptNotFound  = fmt.Errorf("%w: attempt", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrPackTitleExists is returned for a second live pack with the same system and title.
	ErrPackTitleExists = fmt.Errorf("%w: pack title", ErrDuplicate)

	// ErrSectionTaken is returned for a second live exam for the same pack section.
	ErrSectionTaken = fmt.Errorf("%w: pack section", ErrDuplicate)

	// ErrQuestionNumberTaken is returned for a second live question with the same number in an exam.
	ErrQuestionNumberTaken = fmt.Errorf("%w: question number", ErrDuplicate)

	// ErrAttemptNumberTaken is returned when two live attempts would share a number.
	ErrAttemptNumberTaken = fmt.Errorf("%w: attempt number", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "attempt", "pack")
	Operation string // The operation that failed (e.g., "create", "soft_delete")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
