package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/examprep-api/internal/api/shared"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/service"
	"github.com/phrazzld/examprep-api/internal/service/auth"
	"github.com/phrazzld/examprep-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var transitionErr *domain.TransitionError
	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this attempt"

	// Not found errors
	case errors.Is(err, store.ErrPackNotFound):
		return "Pack not found"
	case errors.Is(err, store.ErrExamNotFound):
		return "Exam not found"
	case errors.Is(err, store.ErrQuestionNotFound):
		return "Question not found"
	case errors.Is(err, store.ErrAttemptNotFound):
		return "Attempt not found"
	case errors.Is(err, store.ErrFeedbackNotFound):
		return "Feedback not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrPackTitleExists):
		return "A pack with this title already exists"
	case errors.Is(err, store.ErrSectionTaken):
		return "The pack already has an exam for this section"
	case errors.Is(err, store.ErrQuestionNumberTaken):
		return "The exam already has a question with this number"
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return "The request conflicted with a concurrent change, please retry"

	// Bad request errors
	case errors.As(err, &transitionErr):
		return fmt.Sprintf("Cannot move attempt from %s to %s", transitionErr.From, transitionErr.To)
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Attempt no longer accepts responses"
	case errors.Is(err, domain.ErrUnknownSystem):
		return "Unknown exam system"
	case errors.Is(err, domain.ErrUnknownSection):
		return "Unknown exam section"
	case errors.Is(err, domain.ErrUnknownStatus):
		return "Unknown attempt status"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	errMsg := err.Error()
	if strings.HasPrefix(errMsg, "invalid JSON body") {
		return "Invalid request format"
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. fallbackMsg
// replaces the generic text of 500 responses when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)
	if statusCode == http.StatusInternalServerError && fallbackMsg != "" {
		safeMessage = fallbackMsg
	}

	var opts []shared.ResponseOption
	if statusCode == http.StatusForbidden || statusCode == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err, opts...)
}

// HandleValidationError writes a 400 for a request that failed decoding or
// struct validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
