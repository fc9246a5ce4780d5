package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/domain/progress"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// AttemptStore implements store.AttemptStore over the user_exams table.
type AttemptStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewAttemptStore creates an AttemptStore on db. If logger is nil, the
// default logger is used.
func NewAttemptStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *AttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "attempt_store")),
	}
}

var _ store.AttemptStore = (*AttemptStore)(nil)

// WithTx implements store.AttemptStore.
func (s *AttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &AttemptStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// pairLockKey names the advisory lock guarding one (user, exam) pair.
func pairLockKey(userID uuid.UUID, examID int64) string {
	return fmt.Sprintf("user_exam:%s:%d", userID, examID)
}

// LockPair implements store.AttemptStore. On Postgres it takes a
// transaction-scoped advisory lock; SQLite writers are already serialized.
func (s *AttemptStore) LockPair(ctx context.Context, userID uuid.UUID, examID int64) error {
	if s.dialect != Postgres {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		pairLockKey(userID, examID))
	if err != nil {
		return fmt.Errorf("failed to lock attempt pair: %w", err)
	}
	return nil
}

// NextAttemptNo implements store.AttemptStore.
func (s *AttemptStore) NextAttemptNo(ctx context.Context, userID uuid.UUID, examID int64) (int, error) {
	query := `
		SELECT COALESCE(MAX(attempt_no), 0) + 1
		FROM user_exams
		WHERE user_id = $1 AND exam_id = $2 AND NOT is_deleted
	`
	var next int
	if err := s.db.QueryRowContext(ctx, query, userID, examID).Scan(&next); err != nil {
		return 0, MapError(err)
	}
	return next, nil
}

// Create implements store.AttemptStore.
func (s *AttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO user_exams (
			user_id, exam_id, attempt_no, status,
			response_text, response_voice_path, feedback_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		attempt.UserID,
		attempt.ExamID,
		attempt.AttemptNo,
		string(attempt.Status),
		attempt.ResponseText,
		attempt.ResponseVoicePath,
		attempt.FeedbackID,
		s.dialect.timeArg(attempt.CreatedAt),
		s.dialect.timeArg(attempt.UpdatedAt),
	).Scan(&attempt.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("attempt number already taken",
				slog.String("user_id", attempt.UserID.String()),
				slog.Int64("exam_id", attempt.ExamID),
				slog.Int("attempt_no", attempt.AttemptNo))
		}
		return MapUniqueViolation(err, store.ErrAttemptNumberTaken)
	}

	log.Info("attempt created",
		slog.Int64("attempt_id", attempt.ID),
		slog.String("user_id", attempt.UserID.String()),
		slog.Int64("exam_id", attempt.ExamID),
		slog.Int("attempt_no", attempt.AttemptNo))
	return nil
}

const attemptColumns = `
	id, user_id, exam_id, attempt_no, status,
	response_text, response_voice_path, feedback_id,
	is_deleted, deleted_at, created_at, updated_at
`

func scanAttempt(row rowScanner) (*domain.Attempt, error) {
	var a domain.Attempt
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ExamID,
		&a.AttemptNo,
		&a.Status,
		&a.ResponseText,
		&a.ResponseVoicePath,
		&a.FeedbackID,
		&a.IsDeleted,
		scanNullTime(&a.DeletedAt),
		scanTime(&a.CreatedAt),
		scanTime(&a.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID implements store.AttemptStore.
func (s *AttemptStore) GetByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM user_exams WHERE id = $1 AND NOT is_deleted`

	a, err := scanAttempt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get attempt",
			slog.String("error", err.Error()),
			slog.Int64("attempt_id", id))
		return nil, MapError(err)
	}
	return a, nil
}

// GetOwner implements store.AttemptStore.
func (s *AttemptStore) GetOwner(ctx context.Context, id int64) (uuid.UUID, error) {
	var owner uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM user_exams WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrAttemptNotFound
		}
		return uuid.Nil, MapError(err)
	}
	return owner, nil
}

// ListForUserExam implements store.AttemptStore.
func (s *AttemptStore) ListForUserExam(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM user_exams
		WHERE user_id = $1 AND exam_id = $2 AND NOT is_deleted
		ORDER BY attempt_no`

	rows, err := s.db.QueryContext(ctx, query, userID, examID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	attempts := make([]*domain.Attempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return attempts, nil
}

// UpdateStatus implements store.AttemptStore as a compare-and-set on status.
func (s *AttemptStore) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.AttemptStatus,
	at time.Time,
) error {
	query := `
		UPDATE user_exams
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2 AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query, id, string(from), string(to), s.dialect.timeArg(at))
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStaleWrite); err != nil {
		if !errors.Is(err, store.ErrStaleWrite) {
			return err
		}
		// distinguish a lost race from a missing row
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("attempt status advanced",
		slog.Int64("attempt_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
}

// UpdateResponse implements store.AttemptStore. Nil parts of response leave
// the stored value unchanged.
func (s *AttemptStore) UpdateResponse(ctx context.Context, id int64, response domain.Response, at time.Time) error {
	query := `
		UPDATE user_exams
		SET response_text = COALESCE($2, response_text),
		    response_voice_path = COALESCE($3, response_voice_path),
		    updated_at = $4
		WHERE id = $1 AND status IN ($5, $6) AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query,
		id, response.Text, response.VoicePath, s.dialect.timeArg(at),
		string(domain.AttemptStatusDraft), string(domain.AttemptStatusInProgress))
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrAttemptNotFound); err != nil {
		if !errors.Is(err, store.ErrAttemptNotFound) {
			return err
		}
		current, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: responses are closed once an attempt is %s",
			domain.ErrInvalidTransition, current.Status)
	}
	return nil
}

// SetFeedback implements store.AttemptStore.
func (s *AttemptStore) SetFeedback(ctx context.Context, id int64, feedbackID int64, at time.Time) error {
	query := `
		UPDATE user_exams
		SET feedback_id = $2, updated_at = $3
		WHERE id = $1 AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query, id, feedbackID, s.dialect.timeArg(at))
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAttemptNotFound)
}

// ClearFeedback implements store.AttemptStore.
func (s *AttemptStore) ClearFeedback(ctx context.Context, feedbackID int64, at time.Time) (int64, error) {
	query := `
		UPDATE user_exams
		SET feedback_id = NULL, updated_at = $2
		WHERE feedback_id = $1
	`
	result, err := s.db.ExecContext(ctx, query, feedbackID, s.dialect.timeArg(at))
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// SoftDelete implements store.AttemptStore.
func (s *AttemptStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if err := softDeleteRow(ctx, s.db, s.dialect, "user_exams", id, at, store.ErrAttemptNotFound); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("attempt soft-deleted", slog.Int64("attempt_id", id))
	return nil
}

// ListFinishedForProgress implements store.AttemptStore.
func (s *AttemptStore) ListFinishedForProgress(ctx context.Context, userID uuid.UUID) ([]progress.Entry, error) {
	args := []any{userID}
	for _, st := range domain.FinishedStatuses {
		args = append(args, string(st))
	}

	query := `
		SELECT ue.id, e.pack_id, p.title, p.system, e.section, ue.created_at
		FROM user_exams ue
		JOIN exams e ON e.id = ue.exam_id
		JOIN exam_packs p ON p.id = e.pack_id
		WHERE ue.user_id = $1
		  AND ue.status IN (` + placeholders(2, len(domain.FinishedStatuses)) + `)
		  AND NOT ue.is_deleted
		  AND NOT e.is_deleted
		  AND NOT p.is_deleted
		ORDER BY ue.created_at DESC, ue.id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]progress.Entry, 0)
	for rows.Next() {
		var e progress.Entry
		if err := rows.Scan(
			&e.AttemptID,
			&e.PackID,
			&e.PackTitle,
			&e.System,
			&e.Section,
			scanTime(&e.CreatedAt),
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}
