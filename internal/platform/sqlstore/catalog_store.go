package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// CatalogStore implements store.CatalogStore.
type CatalogStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewCatalogStore creates a CatalogStore on db. If logger is nil, the default
// logger is used.
func NewCatalogStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "catalog_store")),
	}
}

var _ store.CatalogStore = (*CatalogStore)(nil)

// WithTx implements store.CatalogStore.
func (s *CatalogStore) WithTx(tx *sql.Tx) store.CatalogStore {
	return &CatalogStore{db: tx, dialect: s.dialect, logger: s.logger}
}

const packColumns = `id, system, title, is_deleted, deleted_at, created_at, updated_at`

func scanPack(row rowScanner) (*domain.Pack, error) {
	var p domain.Pack
	err := row.Scan(
		&p.ID,
		&p.System,
		&p.Title,
		&p.IsDeleted,
		scanNullTime(&p.DeletedAt),
		scanTime(&p.CreatedAt),
		scanTime(&p.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePack implements store.CatalogStore.
func (s *CatalogStore) CreatePack(ctx context.Context, pack *domain.Pack) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := pack.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO exam_packs (system, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		string(pack.System),
		pack.Title,
		s.dialect.timeArg(pack.CreatedAt),
		s.dialect.timeArg(pack.UpdatedAt),
	).Scan(&pack.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate pack title",
				slog.String("system", string(pack.System)),
				slog.String("title", pack.Title))
		}
		return MapUniqueViolation(err, store.ErrPackTitleExists)
	}

	log.Info("pack created",
		slog.Int64("pack_id", pack.ID),
		slog.String("system", string(pack.System)))
	return nil
}

// GetPack implements store.CatalogStore.
func (s *CatalogStore) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	query := `SELECT ` + packColumns + ` FROM exam_packs WHERE id = $1 AND NOT is_deleted`

	p, err := scanPack(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPackNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get pack",
			slog.String("error", err.Error()),
			slog.Int64("pack_id", id))
		return nil, MapError(err)
	}
	return p, nil
}

// ListPacks implements store.CatalogStore.
func (s *CatalogStore) ListPacks(ctx context.Context, system domain.ExamSystem) ([]*domain.Pack, error) {
	query := `SELECT ` + packColumns + ` FROM exam_packs WHERE system = $1 AND NOT is_deleted ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, string(system))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	packs := make([]*domain.Pack, 0)
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pack: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return packs, nil
}

// softDeleteRow flags one row of table as deleted. A row that is already
// deleted keeps its original deleted_at.
func softDeleteRow(ctx context.Context, db store.DBTX, d Dialect, table string, id int64, at time.Time, notFound error) error {
	query := `
		UPDATE ` + table + `
		SET deleted_at = CASE WHEN is_deleted THEN deleted_at ELSE $2 END,
		    updated_at = CASE WHEN is_deleted THEN updated_at ELSE $2 END,
		    is_deleted = TRUE
		WHERE id = $1
	`
	result, err := db.ExecContext(ctx, query, id, d.timeArg(at))
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, notFound)
}

// SoftDeletePack implements store.CatalogStore.
func (s *CatalogStore) SoftDeletePack(ctx context.Context, id int64, at time.Time) error {
	if err := softDeleteRow(ctx, s.db, s.dialect, "exam_packs", id, at, store.ErrPackNotFound); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("pack soft-deleted", slog.Int64("pack_id", id))
	return nil
}

const examColumns = `id, pack_id, section, system, exam_time_seconds, is_deleted, deleted_at, created_at, updated_at`

func scanExam(row rowScanner) (*domain.Exam, error) {
	var e domain.Exam
	err := row.Scan(
		&e.ID,
		&e.PackID,
		&e.Section,
		&e.System,
		&e.TimeLimitSeconds,
		&e.IsDeleted,
		scanNullTime(&e.DeletedAt),
		scanTime(&e.CreatedAt),
		scanTime(&e.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanExams(rows *sql.Rows) ([]*domain.Exam, error) {
	defer func() { _ = rows.Close() }()

	exams := make([]*domain.Exam, 0)
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return exams, nil
}

// CreateExam implements store.CatalogStore.
func (s *CatalogStore) CreateExam(ctx context.Context, exam *domain.Exam) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := exam.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO exams (pack_id, section, system, exam_time_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		exam.PackID,
		string(exam.Section),
		string(exam.System),
		exam.TimeLimitSeconds,
		s.dialect.timeArg(exam.CreatedAt),
		s.dialect.timeArg(exam.UpdatedAt),
	).Scan(&exam.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("pack section already has an exam", slog.String("section", string(exam.Section)))
		}
		return MapUniqueViolation(err, store.ErrSectionTaken)
	}

	log.Info("exam created",
		slog.Int64("exam_id", exam.ID),
		slog.String("section", string(exam.Section)))
	return nil
}

// GetExam implements store.CatalogStore.
func (s *CatalogStore) GetExam(ctx context.Context, id int64) (*domain.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1 AND NOT is_deleted`

	e, err := scanExam(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExamNotFound
		}
		return nil, MapError(err)
	}
	return e, nil
}

// ListExamsForPack implements store.CatalogStore.
func (s *CatalogStore) ListExamsForPack(ctx context.Context, packID int64) ([]*domain.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE pack_id = $1 AND NOT is_deleted ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, packID)
	if err != nil {
		return nil, MapError(err)
	}
	return scanExams(rows)
}

// ListExamsForPacks implements store.CatalogStore.
func (s *CatalogStore) ListExamsForPacks(ctx context.Context, packIDs []int64) ([]*domain.Exam, error) {
	if len(packIDs) == 0 {
		return []*domain.Exam{}, nil
	}

	args := make([]any, len(packIDs))
	for i, id := range packIDs {
		args[i] = id
	}
	query := `SELECT ` + examColumns + ` FROM exams
		WHERE pack_id IN (` + placeholders(1, len(packIDs)) + `) AND NOT is_deleted
		ORDER BY pack_id, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	return scanExams(rows)
}

// SoftDeleteExam implements store.CatalogStore.
func (s *CatalogStore) SoftDeleteExam(ctx context.Context, id int64, at time.Time) error {
	if err := softDeleteRow(ctx, s.db, s.dialect, "exams", id, at, store.ErrExamNotFound); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("exam soft-deleted", slog.Int64("exam_id", id))
	return nil
}

// CreateQuestion implements store.CatalogStore.
func (s *CatalogStore) CreateQuestion(ctx context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO questions (exam_id, number, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		question.ExamID,
		question.Number,
		question.Description,
		s.dialect.timeArg(question.CreatedAt),
		s.dialect.timeArg(question.UpdatedAt),
	).Scan(&question.ID)
	if err != nil {
		return MapUniqueViolation(err, store.ErrQuestionNumberTaken)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("question created",
		slog.Int64("question_id", question.ID),
		slog.Int64("exam_id", question.ExamID))
	return nil
}

// ListQuestions implements store.CatalogStore.
func (s *CatalogStore) ListQuestions(ctx context.Context, examID int64) ([]*domain.Question, error) {
	query := `
		SELECT id, exam_id, number, description, is_deleted, deleted_at, created_at, updated_at
		FROM questions
		WHERE exam_id = $1 AND NOT is_deleted
		ORDER BY number
	`
	rows, err := s.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	questions := make([]*domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(
			&q.ID,
			&q.ExamID,
			&q.Number,
			&q.Description,
			&q.IsDeleted,
			scanNullTime(&q.DeletedAt),
			scanTime(&q.CreatedAt),
			scanTime(&q.UpdatedAt),
		); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return questions, nil
}

// SoftDeleteQuestion implements store.CatalogStore.
func (s *CatalogStore) SoftDeleteQuestion(ctx context.Context, id int64, at time.Time) error {
	return softDeleteRow(ctx, s.db, s.dialect, "questions", id, at, store.ErrQuestionNotFound)
}
