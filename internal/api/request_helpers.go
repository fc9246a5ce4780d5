package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/redact"
	"github.com/phrazzld/examprep-api/internal/service/auth"
)

// getPathID extracts a positive int64 id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, &domain.ValidationError{Field: paramName, Message: "is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: paramName, Message: "must be a positive integer"}
	}
	return id, nil
}

// requireUserID returns the authenticated user, writing a 401 when the
// context carries none.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrInvalidToken, "")
		return uuid.Nil, false
	}
	return userID, true
}

// requirePathID parses paramName, writing a 400 when it is missing or malformed.
func requirePathID(w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger) (int64, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName, slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// handleUserIDAndPathID is a composite helper that extracts both the user ID
// from context and an id from the path. It writes an error response if either
// extraction fails.
func handleUserIDAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, int64, bool) {
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return uuid.Nil, 0, false
	}
	id, ok := requirePathID(w, r, paramName, log)
	if !ok {
		return uuid.Nil, 0, false
	}
	return userID, id, true
}

// decodeAndValidate reads the JSON body into req and validates it, writing
// a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", redact.ErrorAttr(err))
		HandleValidationError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", redact.ErrorAttr(err))
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

// softDeleteByPathID runs del for the {id} path parameter and answers 204.
func softDeleteByPathID(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	entity string,
	del func(ctx context.Context, id int64) error,
) {
	id, ok := requirePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := del(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete "+entity)
		return
	}

	log.Info(entity+" deleted", slog.Int64(entity+"_id", id))
	w.WriteHeader(http.StatusNoContent)
}
