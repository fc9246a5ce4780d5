package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/events"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// AttemptService is the attempt ledger: it numbers, advances and deletes a
// learner's attempts at an exam.
type AttemptService interface {
	// CreateAttempt records a new attempt numbered one past the highest live
	// attempt of the (user, exam) pair. An empty status means draft.
	// Concurrent creates for the same pair never share a number; a create that
	// keeps losing the race fails with ErrConflict.
	CreateAttempt(ctx context.Context, userID uuid.UUID, examID int64, status domain.AttemptStatus) (*domain.Attempt, error)

	// GetAttempt returns a live attempt.
	GetAttempt(ctx context.Context, attemptID int64) (*domain.Attempt, error)

	// AuthorizeOwner returns the attempt when userID owns it, ErrNotOwned otherwise.
	AuthorizeOwner(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error)

	// ListAttempts returns the live attempts of the pair ordered by attempt number.
	ListAttempts(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error)

	// AdvanceStatus moves the attempt strictly forward to target.
	AdvanceStatus(ctx context.Context, attemptID int64, target domain.AttemptStatus) (*domain.Attempt, error)

	// RecordResponse stores the learner's answer while the attempt is draft or in_progress.
	RecordResponse(ctx context.Context, attemptID int64, response domain.Response) (*domain.Attempt, error)

	// SoftDeleteAttempt hides the attempt. Sibling numbers are left as they are.
	SoftDeleteAttempt(ctx context.Context, attemptID int64) error

	// DeleteOwnAttempt soft-deletes an attempt on behalf of its owner.
	// Deleting an already deleted attempt succeeds; ErrNotOwned is returned
	// when userID does not own it.
	DeleteOwnAttempt(ctx context.Context, userID uuid.UUID, attemptID int64) error
}

type attemptService struct {
	db       *sql.DB
	attempts store.AttemptStore
	catalog  store.CatalogStore
	opts     options
}

// NewAttemptService creates an AttemptService.
func NewAttemptService(
	db *sql.DB,
	attempts store.AttemptStore,
	catalog store.CatalogStore,
	opts ...Option,
) (AttemptService, error) {
	switch {
	case db == nil:
		return nil, &ServiceError{Service: "attempt", Op: "create_service", Err: errNilDependency("database")}
	case attempts == nil:
		return nil, &ServiceError{Service: "attempt", Op: "create_service", Err: errNilDependency("attempt store")}
	case catalog == nil:
		return nil, &ServiceError{Service: "attempt", Op: "create_service", Err: errNilDependency("catalog store")}
	}
	return &attemptService{
		db:       db,
		attempts: attempts,
		catalog:  catalog,
		opts:     buildOptions("attempt_service", opts),
	}, nil
}

func (s *attemptService) fail(op string, err error) error {
	return NewServiceError("attempt", op, err)
}

func attemptPayload(a *domain.Attempt) events.AttemptPayload {
	return events.AttemptPayload{
		AttemptID: a.ID,
		UserID:    a.UserID,
		ExamID:    a.ExamID,
		AttemptNo: a.AttemptNo,
		Status:    string(a.Status),
	}
}

// requireLiveExam fails with ErrExamNotFound unless the exam and the pack it
// belongs to are both live.
func requireLiveExam(ctx context.Context, catalog store.CatalogStore, examID int64) error {
	exam, err := catalog.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	if exam.PackID == nil {
		return nil
	}
	if _, err := catalog.GetPack(ctx, *exam.PackID); err != nil {
		if errors.Is(err, store.ErrPackNotFound) {
			return fmt.Errorf("%w: pack %d is deleted", store.ErrExamNotFound, *exam.PackID)
		}
		return err
	}
	return nil
}

func (s *attemptService) CreateAttempt(
	ctx context.Context,
	userID uuid.UUID,
	examID int64,
	status domain.AttemptStatus,
) (*domain.Attempt, error) {
	if status == "" {
		status = domain.AttemptStatusDraft
	}
	if !status.Valid() {
		return nil, s.fail("create_attempt", domain.ErrUnknownStatus)
	}
	if userID == uuid.Nil {
		return nil, s.fail("create_attempt", &domain.ValidationError{Field: "user_id", Message: "cannot be empty"})
	}

	var created *domain.Attempt
	err := s.opts.withRetry(ctx, "create_attempt", isAttemptNumberTaken, func(ctx context.Context) error {
		return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			attempts := s.attempts.WithTx(tx)

			if err := attempts.LockPair(ctx, userID, examID); err != nil {
				return err
			}
			if err := requireLiveExam(ctx, s.catalog.WithTx(tx), examID); err != nil {
				return err
			}
			next, err := attempts.NextAttemptNo(ctx, userID, examID)
			if err != nil {
				return err
			}
			attempt, err := domain.NewAttempt(userID, examID, next, status, s.opts.clock())
			if err != nil {
				return err
			}
			if err := attempts.Create(ctx, attempt); err != nil {
				return err
			}
			created = attempt
			return nil
		})
	})
	if err != nil {
		return nil, s.fail("create_attempt", err)
	}

	s.opts.emit(ctx, events.TypeAttemptCreated, attemptPayload(created))
	return created, nil
}

func (s *attemptService) GetAttempt(ctx context.Context, attemptID int64) (*domain.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, s.fail("get_attempt", err)
	}
	return attempt, nil
}

func (s *attemptService) AuthorizeOwner(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		logger.FromContextOrDefault(ctx, s.opts.logger).Warn("attempt access denied",
			slog.Int64("attempt_id", attemptID),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return attempt, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error) {
	if _, err := s.catalog.GetExam(ctx, examID); err != nil {
		return nil, s.fail("list_attempts", err)
	}
	attempts, err := s.attempts.ListForUserExam(ctx, userID, examID)
	if err != nil {
		return nil, s.fail("list_attempts", err)
	}
	return attempts, nil
}

func (s *attemptService) AdvanceStatus(
	ctx context.Context,
	attemptID int64,
	target domain.AttemptStatus,
) (*domain.Attempt, error) {
	var (
		updated *domain.Attempt
		from    domain.AttemptStatus
	)
	err := s.opts.withRetry(ctx, "advance_status", isStaleWrite, func(ctx context.Context) error {
		attempt, err := s.attempts.GetByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if err := attempt.Status.CanAdvanceTo(target); err != nil {
			return err
		}
		at := s.opts.clock()
		if err := s.attempts.UpdateStatus(ctx, attemptID, attempt.Status, target, at); err != nil {
			return err
		}
		from = attempt.Status
		attempt.Status = target
		attempt.UpdatedAt = at
		updated = attempt
		return nil
	})
	if err != nil {
		return nil, s.fail("advance_status", err)
	}

	payload := attemptPayload(updated)
	payload.FromStatus = string(from)
	s.opts.emit(ctx, events.TypeAttemptStatusAdvanced, payload)
	return updated, nil
}

func (s *attemptService) RecordResponse(
	ctx context.Context,
	attemptID int64,
	response domain.Response,
) (*domain.Attempt, error) {
	if err := response.Validate(); err != nil {
		return nil, s.fail("record_response", err)
	}

	at := s.opts.clock()
	if err := s.attempts.UpdateResponse(ctx, attemptID, response, at); err != nil {
		return nil, s.fail("record_response", err)
	}
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, s.fail("record_response", err)
	}
	return attempt, nil
}

func (s *attemptService) SoftDeleteAttempt(ctx context.Context, attemptID int64) error {
	if err := s.attempts.SoftDelete(ctx, attemptID, s.opts.clock()); err != nil {
		return s.fail("soft_delete_attempt", err)
	}
	s.opts.emit(ctx, events.TypeAttemptDeleted, events.AttemptPayload{AttemptID: attemptID})
	return nil
}

func (s *attemptService) DeleteOwnAttempt(ctx context.Context, userID uuid.UUID, attemptID int64) error {
	owner, err := s.attempts.GetOwner(ctx, attemptID)
	if err != nil {
		return s.fail("delete_own_attempt", err)
	}
	if owner != userID {
		logger.FromContextOrDefault(ctx, s.opts.logger).Warn("attempt access denied",
			slog.Int64("attempt_id", attemptID),
			slog.String("user_id", userID.String()))
		return ErrNotOwned
	}
	return s.SoftDeleteAttempt(ctx, attemptID)
}
