package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftops/taskline/internal/domain"
)

var companyColumns = []string{"id", "name", "timezone", "day_start_minutes", "created_at"}

// CompanyRepository handles database operations for companies.
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var company domain.Company
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Calendar.Timezone,
		&company.Calendar.DayStartMinutes,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &company, nil
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query, args, err := psql.
		Select(companyColumns...).
		From("companies").
		Where(sq.Eq{"id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for company: %w", err)
	}

	return scanCompany(r.pool.QueryRow(ctx, query, args...))
}

// List retrieves all companies ordered by name.
func (r *CompanyRepository) List(ctx context.Context) ([]*domain.Company, error) {
	query, args, err := psql.
		Select(companyColumns...).
		From("companies").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for companies: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return companies, nil
}
