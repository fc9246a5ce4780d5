package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// FeedbackStore implements store.FeedbackStore.
type FeedbackStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewFeedbackStore creates a FeedbackStore on db.
func NewFeedbackStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *FeedbackStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "feedback_store")),
	}
}

var _ store.FeedbackStore = (*FeedbackStore)(nil)

// WithTx implements store.FeedbackStore.
func (s *FeedbackStore) WithTx(tx *sql.Tx) store.FeedbackStore {
	return &FeedbackStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// Create implements store.FeedbackStore.
func (s *FeedbackStore) Create(ctx context.Context, feedback *domain.Feedback) error {
	if err := feedback.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO feedback (description, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		feedback.Description,
		s.dialect.timeArg(feedback.CreatedAt),
		s.dialect.timeArg(feedback.UpdatedAt),
	).Scan(&feedback.ID)
	if err != nil {
		return MapError(err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("feedback created", slog.Int64("feedback_id", feedback.ID))
	return nil
}

// GetByID implements store.FeedbackStore.
func (s *FeedbackStore) GetByID(ctx context.Context, id int64) (*domain.Feedback, error) {
	query := `
		SELECT id, description, is_deleted, deleted_at, created_at, updated_at
		FROM feedback
		WHERE id = $1 AND NOT is_deleted
	`
	var f domain.Feedback
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID,
		&f.Description,
		&f.IsDeleted,
		scanNullTime(&f.DeletedAt),
		scanTime(&f.CreatedAt),
		scanTime(&f.UpdatedAt),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFeedbackNotFound
		}
		return nil, MapError(err)
	}
	return &f, nil
}

// SoftDelete implements store.FeedbackStore.
func (s *FeedbackStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return softDeleteRow(ctx, s.db, s.dialect, "feedback", id, at, store.ErrFeedbackNotFound)
}
