package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/domain/progress"
	"github.com/stretchr/testify/require"
)

type mockCatalogService struct {
	createPackFn      func(ctx context.Context, system domain.ExamSystem, title string) (*domain.Pack, error)
	listPackCardsFn   func(ctx context.Context, system domain.ExamSystem) ([]domain.PackCard, error)
	getExamsForPackFn func(ctx context.Context, packID int64) ([]domain.SectionExam, error)
	createExamFn      func(ctx context.Context, packID *int64, section domain.Section, system domain.ExamSystem, seconds int) (*domain.Exam, error)
	createQuestionFn  func(ctx context.Context, examID int64, number int, description string) (*domain.Question, error)
	listQuestionsFn   func(ctx context.Context, examID int64) ([]*domain.Question, error)
	softDeleteFn      func(ctx context.Context, id int64) error
}

func (m *mockCatalogService) CreatePack(ctx context.Context, system domain.ExamSystem, title string) (*domain.Pack, error) {
	return m.createPackFn(ctx, system, title)
}

func (m *mockCatalogService) ListPacks(context.Context, domain.ExamSystem) ([]*domain.Pack, error) {
	panic("not used by handlers")
}

func (m *mockCatalogService) ListPackCards(ctx context.Context, system domain.ExamSystem) ([]domain.PackCard, error) {
	return m.listPackCardsFn(ctx, system)
}

func (m *mockCatalogService) GetExamsForPack(ctx context.Context, packID int64) ([]domain.SectionExam, error) {
	return m.getExamsForPackFn(ctx, packID)
}

func (m *mockCatalogService) CreateExam(
	ctx context.Context,
	packID *int64,
	section domain.Section,
	system domain.ExamSystem,
	seconds int,
) (*domain.Exam, error) {
	return m.createExamFn(ctx, packID, section, system, seconds)
}

func (m *mockCatalogService) GetExam(context.Context, int64) (*domain.Exam, error) {
	panic("not used by handlers")
}

func (m *mockCatalogService) CreateQuestion(
	ctx context.Context,
	examID int64,
	number int,
	description string,
) (*domain.Question, error) {
	return m.createQuestionFn(ctx, examID, number, description)
}

func (m *mockCatalogService) ListQuestions(ctx context.Context, examID int64) ([]*domain.Question, error) {
	return m.listQuestionsFn(ctx, examID)
}

func (m *mockCatalogService) SoftDeletePack(ctx context.Context, id int64) error {
	return m.softDeleteFn(ctx, id)
}

func (m *mockCatalogService) SoftDeleteExam(ctx context.Context, id int64) error {
	return m.softDeleteFn(ctx, id)
}

func (m *mockCatalogService) SoftDeleteQuestion(ctx context.Context, id int64) error {
	return m.softDeleteFn(ctx, id)
}

type mockAttemptService struct {
	createFn    func(ctx context.Context, userID uuid.UUID, examID int64, status domain.AttemptStatus) (*domain.Attempt, error)
	getFn       func(ctx context.Context, attemptID int64) (*domain.Attempt, error)
	authorizeFn func(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error)
	listFn      func(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error)
	advanceFn   func(ctx context.Context, attemptID int64, target domain.AttemptStatus) (*domain.Attempt, error)
	responseFn  func(ctx context.Context, attemptID int64, response domain.Response) (*domain.Attempt, error)
	deleteFn    func(ctx context.Context, attemptID int64) error
	deleteOwnFn func(ctx context.Context, userID uuid.UUID, attemptID int64) error
}

func (m *mockAttemptService) CreateAttempt(
	ctx context.Context,
	userID uuid.UUID,
	examID int64,
	status domain.AttemptStatus,
) (*domain.Attempt, error) {
	return m.createFn(ctx, userID, examID, status)
}

func (m *mockAttemptService) GetAttempt(ctx context.Context, attemptID int64) (*domain.Attempt, error) {
	return m.getFn(ctx, attemptID)
}

func (m *mockAttemptService) AuthorizeOwner(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error) {
	return m.authorizeFn(ctx, userID, attemptID)
}

func (m *mockAttemptService) ListAttempts(ctx context.Context, userID uuid.UUID, examID int64) ([]*domain.Attempt, error) {
	return m.listFn(ctx, userID, examID)
}

func (m *mockAttemptService) AdvanceStatus(
	ctx context.Context,
	attemptID int64,
	target domain.AttemptStatus,
) (*domain.Attempt, error) {
	return m.advanceFn(ctx, attemptID, target)
}

func (m *mockAttemptService) RecordResponse(
	ctx context.Context,
	attemptID int64,
	response domain.Response,
) (*domain.Attempt, error) {
	return m.responseFn(ctx, attemptID, response)
}

func (m *mockAttemptService) SoftDeleteAttempt(ctx context.Context, attemptID int64) error {
	return m.deleteFn(ctx, attemptID)
}

func (m *mockAttemptService) DeleteOwnAttempt(ctx context.Context, userID uuid.UUID, attemptID int64) error {
	return m.deleteOwnFn(ctx, userID, attemptID)
}

type mockFeedbackService struct {
	createFn func(ctx context.Context, description string) (*domain.Feedback, error)
	attachFn func(ctx context.Context, attemptID, feedbackID int64) (*domain.Attempt, error)
	deleteFn func(ctx context.Context, feedbackID int64) error
}

func (m *mockFeedbackService) CreateFeedback(ctx context.Context, description string) (*domain.Feedback, error) {
	return m.createFn(ctx, description)
}

func (m *mockFeedbackService) AttachFeedback(ctx context.Context, attemptID, feedbackID int64) (*domain.Attempt, error) {
	return m.attachFn(ctx, attemptID, feedbackID)
}

func (m *mockFeedbackService) DeleteFeedback(ctx context.Context, feedbackID int64) error {
	return m.deleteFn(ctx, feedbackID)
}

type mockProgressService struct {
	buildFn func(ctx context.Context, userID uuid.UUID) ([]progress.Card, error)
}

func (m *mockProgressService) BuildProgressCards(ctx context.Context, userID uuid.UUID) ([]progress.Card, error) {
	return m.buildFn(ctx, userID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes one request through a chi router so URL params resolve.
// A nil userID leaves the request unauthenticated.
func serve(
	t *testing.T,
	method, pattern, target, body string,
	userID uuid.UUID,
	h http.HandlerFunc,
) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
