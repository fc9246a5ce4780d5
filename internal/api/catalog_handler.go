package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/service"
)

// defaultSystem is listed when the client names no system or an unknown one.
const defaultSystem = domain.ExamSystemIELTS

// CatalogHandler serves packs, exams and questions.
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CatalogHandler")
	}
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListPackCards handles GET /api/packs?system=
func (h *CatalogHandler) ListPackCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	system, err := domain.ParseExamSystem(r.URL.Query().Get("system"))
	if err != nil {
		system = defaultSystem
	}

	cards, err := h.catalogService.ListPackCards(r.Context(), system)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list packs")
		return
	}

	log.Debug("listed packs", slog.String("system", string(system)), slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// GetExamsForPack handles GET /api/packs/{packID}/exams
func (h *CatalogHandler) GetExamsForPack(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	packID, ok := requirePathID(w, r, "packID", log)
	if !ok {
		return
	}

	exams, err := h.catalogService.GetExamsForPack(r.Context(), packID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get exams for pack")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, exams)
}

// ListQuestions handles GET /api/exams/{examID}/questions
func (h *CatalogHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	examID, ok := requirePathID(w, r, "examID", log)
	if !ok {
		return
	}

	questions, err := h.catalogService.ListQuestions(r.Context(), examID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list questions")
		return
	}

	response := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		response = append(response, questionToResponse(q))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreatePack handles POST /api/admin/packs
func (h *CatalogHandler) CreatePack(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreatePackRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	pack, err := h.catalogService.CreatePack(r.Context(), domain.ExamSystem(req.System), req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create pack")
		return
	}

	log.Info("pack created", slog.Int64("pack_id", pack.ID), slog.String("system", string(pack.System)))
	shared.RespondWithJSON(w, r, http.StatusCreated, packToResponse(pack))
}

// CreatePackExam handles POST /api/admin/packs/{packID}/exams
func (h *CatalogHandler) CreatePackExam(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	packID, ok := requirePathID(w, r, "packID", log)
	if !ok {
		return
	}
	h.createExam(w, r, &packID, log)
}

// CreateExam handles POST /api/admin/exams for exams outside any pack.
func (h *CatalogHandler) CreateExam(w http.ResponseWriter, r *http.Request) {
	h.createExam(w, r, nil, logger.FromContextOrDefault(r.Context(), h.logger))
}

func (h *CatalogHandler) createExam(w http.ResponseWriter, r *http.Request, packID *int64, log *slog.Logger) {
	var req CreateExamRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	exam, err := h.catalogService.CreateExam(
		r.Context(),
		packID,
		domain.Section(req.Section),
		domain.ExamSystem(req.System),
		req.ExamTimeSeconds,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create exam")
		return
	}

	log.Info("exam created", slog.Int64("exam_id", exam.ID), slog.String("section", string(exam.Section)))
	shared.RespondWithJSON(w, r, http.StatusCreated, examToResponse(exam))
}

// CreateQuestion handles POST /api/admin/exams/{examID}/questions
func (h *CatalogHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	examID, ok := requirePathID(w, r, "examID", log)
	if !ok {
		return
	}

	var req CreateQuestionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	question, err := h.catalogService.CreateQuestion(r.Context(), examID, req.Number, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, questionToResponse(question))
}

// DeletePack handles DELETE /api/admin/packs/{id}
func (h *CatalogHandler) DeletePack(w http.ResponseWriter, r *http.Request) {
	softDeleteByPathID(w, r, logger.FromContextOrDefault(r.Context(), h.logger), "pack", h.catalogService.SoftDeletePack)
}

// DeleteExam handles DELETE /api/admin/exams/{id}
func (h *CatalogHandler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	softDeleteByPathID(w, r, logger.FromContextOrDefault(r.Context(), h.logger), "exam", h.catalogService.SoftDeleteExam)
}

// DeleteQuestion handles DELETE /api/admin/questions/{id}
func (h *CatalogHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	softDeleteByPathID(w, r, logger.FromContextOrDefault(r.Context(), h.logger), "question", h.catalogService.SoftDeleteQuestion)
}
