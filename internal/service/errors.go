package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/examprep-api/internal/store"
)

// Service-level sentinel errors. Store and domain sentinels (store.ErrNotFound,
// domain.ErrValidation, domain.ErrInvalidTransition) pass through wrapped, so
// callers match all of them with errors.Is.
var (
	// ErrNotOwned indicates a learner tried to act on another learner's attempt.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrConflict indicates a write lost a race and bounded retries were
	// exhausted. API layer should map this to HTTP 409 Conflict.
	ErrConflict = errors.New("conflicting concurrent update")
)

// ServiceError records which service operation failed.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with the service and operation names.
// It returns nil when err is nil, and ErrConflict and ErrNotOwned unchanged.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotOwned) {
		return err
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}

func errNilDependency(name string) error {
	return fmt.Errorf("%s cannot be nil", name)
}

// asConflict marks uniqueness violations as ErrConflict while keeping the
// store error reachable through errors.Is.
func asConflict(err error) error {
	if err != nil && store.IsDuplicateError(err) && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
