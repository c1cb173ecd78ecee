package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftops/taskline/internal/domain"
)

// definitionColumns is the shared list of columns for task definition queries.
var definitionColumns = []string{
	"id", "company_id", "location_id", "employee_id", "role",
	"title", "priority", "status",
	"recurrence_kind", "recurrence_weekdays", "recurrence_day_of_month",
	"start_at", "deadline_offset_minutes", "duration_minutes",
	"created_at", "updated_at",
}

// TaskDefinitionRepository handles database operations for task definitions.
type TaskDefinitionRepository struct {
	pool *pgxpool.Pool
}

// NewTaskDefinitionRepository creates a new TaskDefinitionRepository.
func NewTaskDefinitionRepository(pool *pgxpool.Pool) *TaskDefinitionRepository {
	return &TaskDefinitionRepository{pool: pool}
}

// scanDefinition scans a single row into a TaskDefinition struct.
func scanDefinition(row pgx.Row) (*domain.TaskDefinition, error) {
	var def domain.TaskDefinition
	var weekdays []int32
	var dayOfMonth *int

	err := row.Scan(
		&def.ID,
		&def.CompanyID,
		&def.LocationID,
		&def.EmployeeID,
		&def.Role,
		&def.Title,
		&def.Priority,
		&def.Status,
		&def.Recurrence.Kind,
		&weekdays,
		&dayOfMonth,
		&def.StartAt,
		&def.DeadlineOffsetMinutes,
		&def.DurationMinutes,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("scan task definition: %w", err)
	}

	for _, wd := range weekdays {
		def.Recurrence.Weekdays = append(def.Recurrence.Weekdays, time.Weekday(wd))
	}
	if dayOfMonth != nil {
		def.Recurrence.DayOfMonth = *dayOfMonth
	}
	return &def, nil
}

// scanDefinitions scans multiple rows into a slice of TaskDefinition structs.
func scanDefinitions(rows pgx.Rows) ([]*domain.TaskDefinition, error) {
	defer rows.Close()

	var defs []*domain.TaskDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return defs, nil
}

// GetByID retrieves a task definition by ID.
func (r *TaskDefinitionRepository) GetByID(ctx context.Context, definitionID string) (*domain.TaskDefinition, error) {
	query, args, err := psql.
		Select(definitionColumns...).
		From("task_definitions").
		Where(sq.Eq{"id": definitionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task definition: %w", err)
	}

	return scanDefinition(r.pool.QueryRow(ctx, query, args...))
}

// ListActiveByCompany retrieves all active definitions of a company, ordered
// deterministically so pipeline snapshots are reproducible.
func (r *TaskDefinitionRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]*domain.TaskDefinition, error) {
	query, args, err := psql.
		Select(definitionColumns...).
		From("task_definitions").
		Where(sq.Eq{
			"company_id": companyID,
			"status":     domain.DefinitionStatusActive,
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListActiveByCompany query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task definitions: %w", err)
	}

	return scanDefinitions(rows)
}

// Create inserts a task definition. It exists for fixtures and the owning
// store's editors; the engine itself never writes definitions.
func (r *TaskDefinitionRepository) Create(ctx context.Context, def *domain.TaskDefinition) (*domain.TaskDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.Priority == "" {
		def.Priority = domain.TaskPriorityNormal
	}
	if def.Status == "" {
		def.Status = domain.DefinitionStatusActive
	}

	weekdays := make([]int32, 0, len(def.Recurrence.Weekdays))
	for _, wd := range def.Recurrence.Weekdays {
		weekdays = append(weekdays, int32(wd))
	}
	var dayOfMonth *int
	if def.Recurrence.Kind == domain.RecurrenceMonthly {
		dayOfMonth = &def.Recurrence.DayOfMonth
	}

	query, args, err := psql.
		Insert("task_definitions").
		Columns(
			"company_id", "location_id", "employee_id", "role",
			"title", "priority", "status",
			"recurrence_kind", "recurrence_weekdays", "recurrence_day_of_month",
			"start_at", "deadline_offset_minutes", "duration_minutes",
		).
		Values(
			def.CompanyID,
			def.LocationID,
			def.EmployeeID,
			def.Role,
			def.Title,
			def.Priority,
			def.Status,
			def.Recurrence.Kind,
			weekdays,
			dayOfMonth,
			def.StartAt,
			def.DeadlineOffsetMinutes,
			def.DurationMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task definition: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&def.ID, &def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task definition: %w", err)
	}

	return def, nil
}
