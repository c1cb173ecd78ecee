package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftops/taskline/internal/handler/dto"
	"github.com/shiftops/taskline/internal/middleware"
	"github.com/shiftops/taskline/internal/repository"
	"github.com/shiftops/taskline/internal/service"
	"github.com/shiftops/taskline/internal/static"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool              *pgxpool.Pool
	occurrenceService *service.OccurrenceService
	companyRepo       *repository.CompanyRepository
	employeeRepo      *repository.EmployeeRepository
	authMiddleware    *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	// Create repositories
	companyRepo := repository.NewCompanyRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	definitionRepo := repository.NewTaskDefinitionRepository(pool)
	shiftRepo := repository.NewShiftRepository(pool)
	completionRepo := repository.NewCompletionRepository(pool)

	// Create services
	occurrenceService := service.NewOccurrenceService(pool, companyRepo, definitionRepo, shiftRepo, completionRepo)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(employeeRepo)

	return &Handler{
		pool:              pool,
		occurrenceService: occurrenceService,
		companyRepo:       companyRepo,
		employeeRepo:      employeeRepo,
		authMiddleware:    authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Static files for API integrators
	mux.HandleFunc("GET /api.md", h.handleAPIMd)

	// API v1 routes with authentication
	mux.Handle("GET /api/v1/board", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleBoard)))
	mux.Handle("GET /api/v1/board/today", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleBoardToday)))
	mux.Handle("GET /api/v1/board/tomorrow", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleBoardTomorrow)))
	mux.Handle("GET /api/v1/board/range", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleBoardRange)))
	mux.Handle("POST /api/v1/occurrences/{id}/complete", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleCompleteOccurrence)))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleAPIMd serves the embedded api.md file for integrators.
func (h *Handler) handleAPIMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.APIMd))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes the error response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// validUUID reports whether s is a well-formed UUID.
func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
