package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/redact"
	"github.com/phrazzld/examprep-api/internal/service"
)

// AttemptHandler serves a learner's attempts and the grader's status route.
type AttemptHandler struct {
	attemptService service.AttemptService
	logger         *slog.Logger
}

// NewAttemptHandler creates a new AttemptHandler
func NewAttemptHandler(attemptService service.AttemptService, logger *slog.Logger) *AttemptHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AttemptHandler")
	}
	return &AttemptHandler{
		attemptService: attemptService,
		logger:         logger.With(slog.String("component", "attempt_handler")),
	}
}

// CreateAttempt handles POST /api/exams/{examID}/attempts
// The body is optional; without one the attempt starts as a draft.
func (h *AttemptHandler) CreateAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, examID, ok := handleUserIDAndPathID(w, r, "examID", log)
	if !ok {
		return
	}

	var req CreateAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		log.Warn("invalid request format", redact.ErrorAttr(err))
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	attempt, err := h.attemptService.CreateAttempt(r.Context(), userID, examID, domain.AttemptStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create attempt")
		return
	}

	log.Debug("attempt created",
		slog.Int64("attempt_id", attempt.ID),
		slog.Int("attempt_no", attempt.AttemptNo))
	shared.RespondWithJSON(w, r, http.StatusCreated, attemptToResponse(attempt))
}

// ListAttempts handles GET /api/exams/{examID}/attempts
func (h *AttemptHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, examID, ok := handleUserIDAndPathID(w, r, "examID", log)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListAttempts(r.Context(), userID, examID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list attempts")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, attemptsToResponse(attempts))
}

// GetAttempt handles GET /api/attempts/{attemptID}
func (h *AttemptHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, attemptID, ok := handleUserIDAndPathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	attempt, err := h.attemptService.AuthorizeOwner(r.Context(), userID, attemptID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get attempt")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, attemptToResponse(attempt))
}

// RecordResponse handles PUT /api/attempts/{attemptID}/response
func (h *AttemptHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, attemptID, ok := handleUserIDAndPathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	var req RecordResponseRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if _, err := h.attemptService.AuthorizeOwner(r.Context(), userID, attemptID); err != nil {
		HandleAPIError(w, r, err, "Failed to record response")
		return
	}

	attempt, err := h.attemptService.RecordResponse(r.Context(), attemptID, domain.Response{
		Text:      req.ResponseText,
		VoicePath: req.ResponseVoicePath,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record response")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, attemptToResponse(attempt))
}

// AdvanceStatus handles POST /api/attempts/{attemptID}/status
func (h *AttemptHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, attemptID, ok := handleUserIDAndPathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	var req AdvanceStatusRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if _, err := h.attemptService.AuthorizeOwner(r.Context(), userID, attemptID); err != nil {
		HandleAPIError(w, r, err, "Failed to update attempt status")
		return
	}

	h.advance(w, r, log, attemptID, domain.AttemptStatus(req.Status))
}

// GradeStatus handles POST /api/admin/attempts/{attemptID}/status
// Graders may move any attempt to reviewed or graded.
func (h *AttemptHandler) GradeStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	attemptID, ok := requirePathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	var req GradeStatusRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	h.advance(w, r, log, attemptID, domain.AttemptStatus(req.Status))
}

func (h *AttemptHandler) advance(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	attemptID int64,
	target domain.AttemptStatus,
) {
	attempt, err := h.attemptService.AdvanceStatus(r.Context(), attemptID, target)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update attempt status")
		return
	}

	log.Debug("attempt status advanced",
		slog.Int64("attempt_id", attempt.ID),
		slog.String("status", string(attempt.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, attemptToResponse(attempt))
}

// DeleteAttempt handles DELETE /api/attempts/{attemptID}
func (h *AttemptHandler) DeleteAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, attemptID, ok := handleUserIDAndPathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	if err := h.attemptService.DeleteOwnAttempt(r.Context(), userID, attemptID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete attempt")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteAttempt handles DELETE /api/admin/attempts/{id}
func (h *AttemptHandler) AdminDeleteAttempt(w http.ResponseWriter, r *http.Request) {
	softDeleteByPathID(
		w, r,
		logger.FromContextOrDefault(r.Context(), h.logger),
		"attempt",
		h.attemptService.SoftDeleteAttempt,
	)
}
