package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/handler/dto"
	"github.com/shiftops/taskline/internal/middleware"
	"github.com/shiftops/taskline/internal/schedule"
	"github.com/shiftops/taskline/internal/service"
)

// boardQuery parses the query parameters shared by all board endpoints.
// Returns (params, true) if valid, (zero, false) if invalid (error already
// sent to client).
func (h *Handler) boardQuery(w http.ResponseWriter, r *http.Request) (service.BoardParams, bool) {
	employee, err := middleware.GetEmployeeFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return service.BoardParams{}, false
	}

	q := r.URL.Query()

	mode := schedule.ViewModeExecution
	if raw := q.Get("mode"); raw != "" {
		mode = schedule.ViewMode(raw)
		if !mode.IsValid() {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "mode must be 'execution' or 'planning'")
			return service.BoardParams{}, false
		}
	}

	var filters schedule.Filters
	if loc := q.Get("location"); loc != "" {
		if !validUUID(loc) {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "location must be a valid UUID")
			return service.BoardParams{}, false
		}
		filters.LocationID = &loc
	}
	if emp := q.Get("employee"); emp != "" {
		if !validUUID(emp) {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "employee must be a valid UUID")
			return service.BoardParams{}, false
		}
		filters.EmployeeID = &emp
	}
	if role := q.Get("role"); role != "" {
		filters.Role = &role
	}

	opts := schedule.DefaultOptions()
	if raw := q.Get("include_completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "include_completed must be a boolean")
			return service.BoardParams{}, false
		}
		opts.IncludeCompleted = v
	}
	if raw := q.Get("include_virtual"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "include_virtual must be a boolean")
			return service.BoardParams{}, false
		}
		opts.IncludeVirtual = v
	}

	return service.BoardParams{
		CompanyID: employee.CompanyID,
		Filters:   filters,
		ViewMode:  mode,
		Options:   opts,
		Now:       time.Now(),
	}, true
}

// dayKeyParam parses a required YYYY-MM-DD query parameter.
func dayKeyParam(w http.ResponseWriter, r *http.Request, name string) (domain.DayKey, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" query parameter is required")
		return "", false
	}
	date, err := domain.ParseDayKey(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a YYYY-MM-DD date")
		return "", false
	}
	return date, true
}

// handleBoard returns the task board for a specific business day.
// @Summary Get task board for a date
// @Description Returns the occurrences for one business day, grouped by status. Mode 'execution' drops uncovered occurrences, 'planning' keeps and flags them.
// @Tags board
// @Produce json
// @Param date query string true "Business day (YYYY-MM-DD)"
// @Param mode query string false "View mode: execution (default) or planning"
// @Param location query string false "Filter to one location"
// @Param employee query string false "Filter to one employee's work"
// @Param role query string false "Filter to one role's work"
// @Param include_completed query bool false "Include completed occurrences (default true)"
// @Param include_virtual query bool false "Include recurring expansions (default true)"
// @Success 200 {object} dto.BoardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /board [get]
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	params, ok := h.boardQuery(w, r)
	if !ok {
		return
	}
	date, ok := dayKeyParam(w, r, "date")
	if !ok {
		return
	}

	result, err := h.occurrenceService.BoardForDate(r.Context(), params, date)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.ToBoardResponse(result, params.ViewMode)
	resp.Date = string(date)
	respondJSON(w, http.StatusOK, resp)
}

// handleBoardToday returns the board for the company's current business day.
// @Summary Get today's task board
// @Description Returns the board for the current business day in the company's timezone, honoring the day-start offset.
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Security BearerAuth
// @Router /board/today [get]
func (h *Handler) handleBoardToday(w http.ResponseWriter, r *http.Request) {
	params, ok := h.boardQuery(w, r)
	if !ok {
		return
	}

	result, date, err := h.occurrenceService.BoardToday(r.Context(), params)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.ToBoardResponse(result, params.ViewMode)
	resp.Date = string(date)
	respondJSON(w, http.StatusOK, resp)
}

// handleBoardTomorrow returns the board for the next business day.
// @Summary Get tomorrow's task board
// @Description Returns the board for the business day after the current one.
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Security BearerAuth
// @Router /board/tomorrow [get]
func (h *Handler) handleBoardTomorrow(w http.ResponseWriter, r *http.Request) {
	params, ok := h.boardQuery(w, r)
	if !ok {
		return
	}

	result, date, err := h.occurrenceService.BoardTomorrow(r.Context(), params)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.ToBoardResponse(result, params.ViewMode)
	resp.Date = string(date)
	respondJSON(w, http.StatusOK, resp)
}

// handleBoardRange returns the board over an inclusive date range.
// @Summary Get task board for a date range
// @Description Returns the union of per-day boards over [start, end], de-duplicated by occurrence identity. Coverage is checked against each occurrence's own day.
// @Tags board
// @Produce json
// @Param start query string true "First business day (YYYY-MM-DD)"
// @Param end query string true "Last business day (YYYY-MM-DD)"
// @Success 200 {object} dto.BoardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /board/range [get]
func (h *Handler) handleBoardRange(w http.ResponseWriter, r *http.Request) {
	params, ok := h.boardQuery(w, r)
	if !ok {
		return
	}
	start, ok := dayKeyParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := dayKeyParam(w, r, "end")
	if !ok {
		return
	}

	result, err := h.occurrenceService.BoardForRange(r.Context(), params, start, end)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.ToBoardResponse(result, params.ViewMode)
	resp.Start = string(start)
	resp.End = string(end)
	respondJSON(w, http.StatusOK, resp)
}
