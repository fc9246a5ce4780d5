package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/service"
)

// FeedbackHandler serves the grader's feedback routes.
type FeedbackHandler struct {
	feedbackService service.FeedbackService
	logger          *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackService service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FeedbackHandler")
	}
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger.With(slog.String("component", "feedback_handler")),
	}
}

// CreateFeedback handles POST /api/admin/feedback
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateFeedbackRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	feedback, err := h.feedbackService.CreateFeedback(r.Context(), req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create feedback")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, feedbackToResponse(feedback))
}

// AttachFeedback handles POST /api/admin/attempts/{attemptID}/feedback
func (h *FeedbackHandler) AttachFeedback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	attemptID, ok := requirePathID(w, r, "attemptID", log)
	if !ok {
		return
	}

	var req AttachFeedbackRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	attempt, err := h.feedbackService.AttachFeedback(r.Context(), attemptID, req.FeedbackID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to attach feedback")
		return
	}

	log.Info("feedback attached",
		slog.Int64("attempt_id", attemptID),
		slog.Int64("feedback_id", req.FeedbackID))
	shared.RespondWithJSON(w, r, http.StatusOK, attemptToResponse(attempt))
}

// DeleteFeedback handles DELETE /api/admin/feedback/{id}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	softDeleteByPathID(
		w, r,
		logger.FromContextOrDefault(r.Context(), h.logger),
		"feedback",
		h.feedbackService.DeleteFeedback,
	)
}
