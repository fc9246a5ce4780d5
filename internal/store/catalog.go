package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
)

// CatalogStore defines persistence for packs, exams and questions.
// Every read excludes soft-deleted rows unless stated otherwise.
type CatalogStore interface {
	// CreatePack inserts a pack and sets its ID.
	// Returns ErrPackTitleExists if a live pack has the same system and title.
	CreatePack(ctx context.Context, pack *domain.Pack) error

	// GetPack returns a live pack. Returns ErrPackNotFound for unknown or deleted ids.
	GetPack(ctx context.Context, id int64) (*domain.Pack, error)

	// ListPacks returns live packs of a system ordered by id ascending.
	// Returns an empty slice when none match.
	ListPacks(ctx context.Context, system domain.ExamSystem) ([]*domain.Pack, error)

	// SoftDeletePack flags a pack as deleted. Idempotent.
	// Returns ErrPackNotFound if the id was never stored.
	SoftDeletePack(ctx context.Context, id int64, at time.Time) error

	// CreateExam inserts an exam and sets its ID.
	// Returns ErrSectionTaken if the pack already has a live exam for the section.
	CreateExam(ctx context.Context, exam *domain.Exam) error

	// GetExam returns a live exam. Returns ErrExamNotFound for unknown or deleted ids.
	GetExam(ctx context.Context, id int64) (*domain.Exam, error)

	// ListExamsForPack returns live exams belonging to packID ordered by id.
	// It does not check the pack itself.
	ListExamsForPack(ctx context.Context, packID int64) ([]*domain.Exam, error)

	// ListExamsForPacks returns live exams for any of packIDs, ordered by pack then id.
	ListExamsForPacks(ctx context.Context, packIDs []int64) ([]*domain.Exam, error)

	// SoftDeleteExam flags an exam as deleted. Idempotent.
	SoftDeleteExam(ctx context.Context, id int64, at time.Time) error

	// CreateQuestion inserts a question and sets its ID.
	// Returns ErrQuestionNumberTaken on a live number clash within the exam.
	CreateQuestion(ctx context.Context, question *domain.Question) error

	// ListQuestions returns live questions of an exam ordered by number.
	ListQuestions(ctx context.Context, examID int64) ([]*domain.Question, error)

	// SoftDeleteQuestion flags a question as deleted. Idempotent.
	SoftDeleteQuestion(ctx context.Context, id int64, at time.Time) error

	// WithTx returns a CatalogStore bound to tx.
	WithTx(tx *sql.Tx) CatalogStore
}
