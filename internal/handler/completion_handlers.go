package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/shiftops/taskline/internal/handler/dto"
	"github.com/shiftops/taskline/internal/middleware"
	"github.com/shiftops/taskline/internal/service"
)

// handleCompleteOccurrence records a completion for an occurrence.
// @Summary Complete a task occurrence
// @Description Marks a dated occurrence as done by the authenticated employee. The id is either a stored definition id or a virtual "<id>@YYYY-MM-DD" identity. Repeating the call returns the first stored completion unchanged.
// @Tags occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param request body dto.CompleteOccurrenceRequest false "Optional evidence reference"
// @Success 201 {object} dto.CompletionResponse
// @Success 200 {object} dto.CompletionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /occurrences/{id}/complete [post]
func (h *Handler) handleCompleteOccurrence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employee, err := middleware.GetEmployeeFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	occurrenceID := r.PathValue("id")
	if occurrenceID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "occurrence id is required")
		return
	}

	// The body is optional: an empty body completes without evidence.
	var req dto.CompleteOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	completion, created, err := h.occurrenceService.CompleteOccurrence(ctx, service.CompleteParams{
		CompanyID:    employee.CompanyID,
		OccurrenceID: occurrenceID,
		EmployeeID:   employee.ID,
		EvidenceRef:  req.EvidenceRef,
		Now:          time.Now(),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, dto.ToCompletionResponse(completion, occurrenceID))
}
