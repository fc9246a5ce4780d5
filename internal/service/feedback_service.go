package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/events"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// FeedbackService links feedback records to attempts.
type FeedbackService interface {
	// CreateFeedback stores a new feedback record.
	CreateFeedback(ctx context.Context, description string) (*domain.Feedback, error)

	// AttachFeedback points a live attempt at live feedback, whatever the
	// attempt's status.
	AttachFeedback(ctx context.Context, attemptID, feedbackID int64) (*domain.Attempt, error)

	// DeleteFeedback soft-deletes the feedback and, in the same transaction,
	// clears the reference from every attempt that points at it.
	DeleteFeedback(ctx context.Context, feedbackID int64) error
}

type feedbackService struct {
	db       *sql.DB
	feedback store.FeedbackStore
	attempts store.AttemptStore
	opts     options
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(
	db *sql.DB,
	feedback store.FeedbackStore,
	attempts store.AttemptStore,
	opts ...Option,
) (FeedbackService, error) {
	switch {
	case db == nil:
		return nil, &ServiceError{Service: "feedback", Op: "create_service", Err: errNilDependency("database")}
	case feedback == nil:
		return nil, &ServiceError{Service: "feedback", Op: "create_service", Err: errNilDependency("feedback store")}
	case attempts == nil:
		return nil, &ServiceError{Service: "feedback", Op: "create_service", Err: errNilDependency("attempt store")}
	}
	return &feedbackService{
		db:       db,
		feedback: feedback,
		attempts: attempts,
		opts:     buildOptions("feedback_service", opts),
	}, nil
}

func (s *feedbackService) fail(op string, err error) error {
	return NewServiceError("feedback", op, err)
}

func (s *feedbackService) CreateFeedback(ctx context.Context, description string) (*domain.Feedback, error) {
	fb, err := domain.NewFeedback(description, s.opts.clock())
	if err != nil {
		return nil, s.fail("create_feedback", err)
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, s.fail("create_feedback", err)
	}
	return fb, nil
}

func (s *feedbackService) AttachFeedback(ctx context.Context, attemptID, feedbackID int64) (*domain.Attempt, error) {
	var attached *domain.Attempt
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		attempts := s.attempts.WithTx(tx)

		if _, err := s.feedback.WithTx(tx).GetByID(ctx, feedbackID); err != nil {
			return err
		}
		attempt, err := attempts.GetByID(ctx, attemptID)
		if err != nil {
			return err
		}
		at := s.opts.clock()
		if err := attempts.SetFeedback(ctx, attemptID, feedbackID, at); err != nil {
			return err
		}
		attempt.FeedbackID = &feedbackID
		attempt.UpdatedAt = at
		attached = attempt
		return nil
	})
	if err != nil {
		return nil, s.fail("attach_feedback", err)
	}

	s.opts.emit(ctx, events.TypeFeedbackAttached, events.FeedbackPayload{
		FeedbackID: feedbackID,
		AttemptID:  attemptID,
	})
	return attached, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, feedbackID int64) error {
	var cleared int64
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		at := s.opts.clock()
		if err := s.feedback.WithTx(tx).SoftDelete(ctx, feedbackID, at); err != nil {
			return err
		}
		n, err := s.attempts.WithTx(tx).ClearFeedback(ctx, feedbackID, at)
		if err != nil {
			return err
		}
		cleared = n
		return nil
	})
	if err != nil {
		return s.fail("delete_feedback", err)
	}

	logger.FromContextOrDefault(ctx, s.opts.logger).Info("feedback deleted",
		slog.Int64("feedback_id", feedbackID),
		slog.Int64("cleared_attempts", cleared))
	s.opts.emit(ctx, events.TypeFeedbackDeleted, events.FeedbackPayload{
		FeedbackID:      feedbackID,
		ClearedAttempts: cleared,
	})
	return nil
}
