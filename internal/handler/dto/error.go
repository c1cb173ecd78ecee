package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shiftops/taskline/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Definition errors
	case errors.Is(err, domain.ErrDefinitionNotFound):
		return http.StatusNotFound, "DEFINITION_NOT_FOUND", message
	case errors.Is(err, domain.ErrInvalidRecurrence):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrConflictingAssignment):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrMissingStart):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Occurrence / pipeline errors
	case errors.Is(err, domain.ErrInvalidOccurrenceID):
		return http.StatusBadRequest, "INVALID_REQUEST", message
	case errors.Is(err, domain.ErrInvalidDayKey):
		return http.StatusBadRequest, "INVALID_REQUEST", message
	case errors.Is(err, domain.ErrInvalidViewMode):
		return http.StatusBadRequest, "INVALID_REQUEST", message
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, "INVALID_REQUEST", message
	case errors.Is(err, domain.ErrNoOccurrence):
		return http.StatusNotFound, "OCCURRENCE_NOT_FOUND", message

	// Completion errors
	case errors.Is(err, domain.ErrCompletionTooEarly):
		return http.StatusConflict, "COMPLETION_LOCKED", message
	case errors.Is(err, domain.ErrCompletionTooLate):
		return http.StatusConflict, "COMPLETION_LOCKED", message

	// Company / calendar errors
	case errors.Is(err, domain.ErrCompanyNotFound):
		return http.StatusNotFound, "COMPANY_NOT_FOUND", message
	case errors.Is(err, domain.ErrInvalidTimezone):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Employee errors
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return http.StatusUnauthorized, "INVALID_TOKEN", message
	case errors.Is(err, domain.ErrEmployeeInactive):
		return http.StatusUnauthorized, "EMPLOYEE_INACTIVE", message
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
