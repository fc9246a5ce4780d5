// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually wrapped by a ValidationError naming the offending field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when an attempt status change does not
	// move strictly forward along draft < in_progress < submitted < reviewed < graded.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownSystem is returned when an exam system value is not recognized.
	ErrUnknownSystem = fmt.Errorf("%w: unknown exam system", ErrValidation)

	// ErrUnknownSection is returned when a section value is not recognized.
	ErrUnknownSection = fmt.Errorf("%w: unknown exam section", ErrValidation)

	// ErrUnknownStatus is returned when an attempt status value is not recognized.
	ErrUnknownStatus = fmt.Errorf("%w: unknown attempt status", ErrValidation)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransitionError carries the statuses involved in a rejected transition.
type TransitionError struct {
	From AttemptStatus
	To   AttemptStatus
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

// Unwrap lets errors.Is(err, ErrInvalidTransition) match.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
