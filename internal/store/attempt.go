package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/domain/progress"
)

// AttemptStore defines persistence for learner attempts.
type AttemptStore interface {
	// LockPair serializes writers for one (user, exam) pair until the
	// surrounding transaction ends. It MUST be called inside a transaction.
	// Backends that already serialize all writers may implement it as a no-op.
	LockPair(ctx context.Context, userID uuid.UUID, examID int64) error

	// NextAttemptNo returns 1 + the highest attempt number among live attempts
	// of the pair, or 1 when there are none.
	NextAttemptNo(ctx context.Context, userID uuid.UUID, examID int64) (int, error)

	// Create inserts the attempt and sets its ID.
	// Returns ErrAttemptNumberTaken if a live attempt already has the number.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// GetByID returns a live attempt. Returns ErrAttemptNotFound for unknown or deleted ids.
	GetByID(ctx context.Context, id int64) (*domain.Attempt, error)

	// GetOwner returns the user who owns the attempt, deleted or not.
	// Returns ErrAttemptNotFound only if the id was never stored.
	GetOwner(ctx context.Context, id int64) (uuid.UUID, error)

	// ListForUserExam returns live attempts of the pair ordered by attempt number.
	ListForUserExam(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error)

	// UpdateStatus moves a live attempt from one status to another.
	// Returns ErrStaleWrite if the attempt is no longer in status from,
	// and ErrAttemptNotFound if it does not exist or is deleted.
	UpdateStatus(ctx context.Context, id int64, from, to domain.AttemptStatus, at time.Time) error

	// UpdateResponse stores the learner's response fields on a live attempt
	// that is still draft or in_progress. Returns domain.ErrInvalidTransition
	// if the attempt has moved past in_progress, and ErrAttemptNotFound if it
	// does not exist or is deleted.
	UpdateResponse(ctx context.Context, id int64, response domain.Response, at time.Time) error

	// SetFeedback points a live attempt at a feedback record.
	SetFeedback(ctx context.Context, id int64, feedbackID int64, at time.Time) error

	// ClearFeedback removes the reference to feedbackID from every attempt,
	// deleted or not, and returns how many attempts were changed.
	ClearFeedback(ctx context.Context, feedbackID int64, at time.Time) (int64, error)

	// SoftDelete flags an attempt as deleted. Idempotent.
	// Returns ErrAttemptNotFound if the id was never stored.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// ListFinishedForProgress returns the user's live, finished attempts whose
	// exam and pack are live, most recent first (created_at DESC, id DESC).
	ListFinishedForProgress(ctx context.Context, userID uuid.UUID) ([]progress.Entry, error)

	// WithTx returns an AttemptStore bound to tx.
	WithTx(tx *sql.Tx) AttemptStore
}

// FeedbackStore defines persistence for feedback records.
type FeedbackStore interface {
	// Create inserts the feedback and sets its ID.
	Create(ctx context.Context, feedback *domain.Feedback) error

	// GetByID returns live feedback. Returns ErrFeedbackNotFound for unknown or deleted ids.
	GetByID(ctx context.Context, id int64) (*domain.Feedback, error)

	// SoftDelete flags the feedback as deleted. Idempotent.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// WithTx returns a FeedbackStore bound to tx.
	WithTx(tx *sql.Tx) FeedbackStore
}
