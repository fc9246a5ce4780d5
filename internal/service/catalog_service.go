package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/store"
)

// CatalogService exposes packs, exams and questions.
type CatalogService interface {
	// CreatePack adds a pack. Fails with store.ErrPackTitleExists on a live duplicate.
	CreatePack(ctx context.Context, system domain.ExamSystem, title string) (*domain.Pack, error)

	// ListPacks returns live packs of system ordered by id.
	ListPacks(ctx context.Context, system domain.ExamSystem) ([]*domain.Pack, error)

	// ListPackCards returns ListPacks with each pack's section-to-exam map.
	ListPackCards(ctx context.Context, system domain.ExamSystem) ([]domain.PackCard, error)

	// GetExamsForPack returns the live exams of a live pack in canonical
	// section order. Fails with store.ErrPackNotFound for unknown or deleted packs.
	GetExamsForPack(ctx context.Context, packID int64) ([]domain.SectionExam, error)

	// CreateExam adds an exam, optionally inside a pack. A pack exam inherits
	// nothing from the pack but must share its system.
	CreateExam(
		ctx context.Context,
		packID *int64,
		section domain.Section,
		system domain.ExamSystem,
		timeLimitSeconds int,
	) (*domain.Exam, error)

	// GetExam returns a live exam.
	GetExam(ctx context.Context, examID int64) (*domain.Exam, error)

	// CreateQuestion adds a numbered question to a live exam.
	CreateQuestion(ctx context.Context, examID int64, number int, description string) (*domain.Question, error)

	// ListQuestions returns the live questions of a live exam ordered by number.
	ListQuestions(ctx context.Context, examID int64) ([]*domain.Question, error)

	// SoftDeletePack, SoftDeleteExam and SoftDeleteQuestion are idempotent and
	// fail with a not-found error only for ids that were never stored.
	SoftDeletePack(ctx context.Context, packID int64) error
	SoftDeleteExam(ctx context.Context, examID int64) error
	SoftDeleteQuestion(ctx context.Context, questionID int64) error
}

type catalogService struct {
	catalog store.CatalogStore
	opts    options
}

// NewCatalogService creates a CatalogService backed by catalog.
func NewCatalogService(catalog store.CatalogStore, opts ...Option) (CatalogService, error) {
	if catalog == nil {
		return nil, &ServiceError{Service: "catalog", Op: "create_service", Err: errNilDependency("catalog store")}
	}
	return &catalogService{catalog: catalog, opts: buildOptions("catalog_service", opts)}, nil
}

func (s *catalogService) fail(op string, err error) error {
	return NewServiceError("catalog", op, asConflict(err))
}

func (s *catalogService) CreatePack(ctx context.Context, system domain.ExamSystem, title string) (*domain.Pack, error) {
	pack, err := domain.NewPack(system, title, s.opts.clock())
	if err != nil {
		return nil, s.fail("create_pack", err)
	}
	if err := s.catalog.CreatePack(ctx, pack); err != nil {
		return nil, s.fail("create_pack", err)
	}
	return pack, nil
}

func (s *catalogService) ListPacks(ctx context.Context, system domain.ExamSystem) ([]*domain.Pack, error) {
	if !system.Valid() {
		return nil, s.fail("list_packs", domain.ErrUnknownSystem)
	}
	packs, err := s.catalog.ListPacks(ctx, system)
	if err != nil {
		return nil, s.fail("list_packs", err)
	}
	return packs, nil
}

func (s *catalogService) ListPackCards(ctx context.Context, system domain.ExamSystem) ([]domain.PackCard, error) {
	packs, err := s.ListPacks(ctx, system)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(packs))
	for i, p := range packs {
		ids[i] = p.ID
	}
	exams, err := s.catalog.ListExamsForPacks(ctx, ids)
	if err != nil {
		return nil, s.fail("list_pack_cards", err)
	}

	byPack := make(map[int64]*domain.SectionSlots, len(packs))
	cards := make([]domain.PackCard, len(packs))
	for i, p := range packs {
		cards[i] = domain.PackCard{PackID: p.ID, Title: p.Title, System: p.System}
		byPack[p.ID] = &cards[i].Sections
	}
	for _, e := range exams {
		if e.PackID == nil {
			continue
		}
		if slots, ok := byPack[*e.PackID]; ok {
			slots.Set(e.Section, e.ID)
		}
	}

	logger.FromContextOrDefault(ctx, s.opts.logger).Debug("built pack cards",
		slog.String("system", string(system)),
		slog.Int("count", len(cards)))
	return cards, nil
}

func (s *catalogService) GetExamsForPack(ctx context.Context, packID int64) ([]domain.SectionExam, error) {
	if _, err := s.catalog.GetPack(ctx, packID); err != nil {
		return nil, s.fail("get_exams_for_pack", err)
	}
	exams, err := s.catalog.ListExamsForPack(ctx, packID)
	if err != nil {
		return nil, s.fail("get_exams_for_pack", err)
	}

	out := make([]domain.SectionExam, 0, len(exams))
	for _, sec := range domain.Sections {
		for _, e := range exams {
			if e.Section == sec {
				out = append(out, domain.SectionExam{Section: sec, ExamID: e.ID})
			}
		}
	}
	return out, nil
}

func (s *catalogService) CreateExam(
	ctx context.Context,
	packID *int64,
	section domain.Section,
	system domain.ExamSystem,
	timeLimitSeconds int,
) (*domain.Exam, error) {
	exam, err := domain.NewExam(packID, section, system, timeLimitSeconds, s.opts.clock())
	if err != nil {
		return nil, s.fail("create_exam", err)
	}
	if packID != nil {
		pack, err := s.catalog.GetPack(ctx, *packID)
		if err != nil {
			return nil, s.fail("create_exam", err)
		}
		if pack.System != system {
			return nil, s.fail("create_exam", &domain.ValidationError{
				Field:   "system",
				Message: "must match the pack system " + string(pack.System),
			})
		}
	}
	if err := s.catalog.CreateExam(ctx, exam); err != nil {
		return nil, s.fail("create_exam", err)
	}
	return exam, nil
}

func (s *catalogService) GetExam(ctx context.Context, examID int64) (*domain.Exam, error) {
	exam, err := s.catalog.GetExam(ctx, examID)
	if err != nil {
		return nil, s.fail("get_exam", err)
	}
	return exam, nil
}

func (s *catalogService) CreateQuestion(
	ctx context.Context,
	examID int64,
	number int,
	description string,
) (*domain.Question, error) {
	q, err := domain.NewQuestion(examID, number, description, s.opts.clock())
	if err != nil {
		return nil, s.fail("create_question", err)
	}
	if _, err := s.catalog.GetExam(ctx, examID); err != nil {
		return nil, s.fail("create_question", err)
	}
	if err := s.catalog.CreateQuestion(ctx, q); err != nil {
		return nil, s.fail("create_question", err)
	}
	return q, nil
}

func (s *catalogService) ListQuestions(ctx context.Context, examID int64) ([]*domain.Question, error) {
	if _, err := s.catalog.GetExam(ctx, examID); err != nil {
		return nil, s.fail("list_questions", err)
	}
	qs, err := s.catalog.ListQuestions(ctx, examID)
	if err != nil {
		return nil, s.fail("list_questions", err)
	}
	return qs, nil
}

func (s *catalogService) SoftDeletePack(ctx context.Context, packID int64) error {
	return s.fail("soft_delete_pack", s.catalog.SoftDeletePack(ctx, packID, s.opts.clock()))
}

func (s *catalogService) SoftDeleteExam(ctx context.Context, examID int64) error {
	return s.fail("soft_delete_exam", s.catalog.SoftDeleteExam(ctx, examID, s.opts.clock()))
}

func (s *catalogService) SoftDeleteQuestion(ctx context.Context, questionID int64) error {
	return s.fail("soft_delete_question", s.catalog.SoftDeleteQuestion(ctx, questionID, s.opts.clock()))
}
