package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/repository"
)

type contextKey string

const (
	// ContextKeyEmployee is the key for storing the employee in request context.
	ContextKeyEmployee contextKey = "employee"
)

// AuthMiddleware handles Bearer token authentication for kiosk and mobile
// devices. Tokens are opaque per-employee credentials issued out of band.
type AuthMiddleware struct {
	employeeRepo *repository.EmployeeRepository
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(employeeRepo *repository.EmployeeRepository) *AuthMiddleware {
	return &AuthMiddleware{
		employeeRepo: employeeRepo,
	}
}

// Authenticate validates the Bearer token and adds the employee to the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		employee, err := m.employeeRepo.GetByToken(r.Context(), token)
		if err != nil {
			if err == domain.ErrEmployeeNotFound {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if !employee.IsActive {
			http.Error(w, "employee inactive", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyEmployee, employee)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetEmployeeFromContext retrieves the authenticated employee from request context.
func GetEmployeeFromContext(ctx context.Context) (*domain.Employee, error) {
	employee, ok := ctx.Value(ContextKeyEmployee).(*domain.Employee)
	if !ok || employee == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return employee, nil
}
