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

// completionColumns are prefixed because listing joins task_definitions for
// company scoping.
var completionColumns = []string{
	"c.id", "c.task_definition_id", "c.occurrence_date",
	"c.completed_by", "c.completed_at", "c.late", "c.evidence_ref", "c.created_at",
}

// CompletionRepository handles database operations for task completions.
// Rows are append-only, keyed by (task_definition_id, occurrence_date).
type CompletionRepository struct {
	pool *pgxpool.Pool
}

// NewCompletionRepository creates a new CompletionRepository.
func NewCompletionRepository(pool *pgxpool.Pool) *CompletionRepository {
	return &CompletionRepository{pool: pool}
}

func scanCompletion(row pgx.Row) (*domain.TaskCompletion, error) {
	var c domain.TaskCompletion
	var date time.Time
	err := row.Scan(
		&c.ID,
		&c.TaskDefinitionID,
		&date,
		&c.CompletedBy,
		&c.CompletedAt,
		&c.Late,
		&c.EvidenceRef,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan completion: %w", err)
	}
	c.Date = domain.NewDayKey(date)
	return &c, nil
}

// ListByCompanyRange retrieves all completions of a company for occurrence
// dates in [start, end].
func (r *CompletionRepository) ListByCompanyRange(ctx context.Context, companyID string, start, end domain.DayKey) ([]*domain.TaskCompletion, error) {
	query, args, err := psql.
		Select(completionColumns...).
		From("task_completions c").
		Join("task_definitions d ON d.id = c.task_definition_id").
		Where(sq.Eq{"d.company_id": companyID}).
		Where(sq.GtOrEq{"c.occurrence_date": string(start)}).
		Where(sq.LtOrEq{"c.occurrence_date": string(end)}).
		OrderBy("c.occurrence_date ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByCompanyRange query for completions: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var completions []*domain.TaskCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return completions, nil
}

// GetByKey retrieves the completion for one (definition, date) key, or nil
// when none exists.
func (r *CompletionRepository) GetByKey(ctx context.Context, key domain.CompletionKey) (*domain.TaskCompletion, error) {
	query, args, err := psql.
		Select(completionColumns...).
		From("task_completions c").
		Where(sq.Eq{
			"c.task_definition_id": key.DefinitionID,
			"c.occurrence_date":    string(key.Date),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByKey query for completion: %w", err)
	}

	c, err := scanCompletion(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// Create inserts a completion unless one already exists for the key.
// Returns (row, true) when this call inserted it, and (existing, false) when
// a concurrent or earlier write got there first — the stored row wins.
func (r *CompletionRepository) Create(ctx context.Context, tx pgx.Tx, completion *domain.TaskCompletion) (*domain.TaskCompletion, bool, error) {
	query, args, err := psql.
		Insert("task_completions").
		Columns("task_definition_id", "occurrence_date", "completed_by", "completed_at", "late", "evidence_ref").
		Values(
			completion.TaskDefinitionID,
			string(completion.Date),
			completion.CompletedBy,
			completion.CompletedAt,
			completion.Late,
			completion.EvidenceRef,
		).
		Suffix("ON CONFLICT (task_definition_id, occurrence_date) DO NOTHING RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build Create query for completion: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&completion.ID, &completion.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := r.GetByKey(ctx, completion.Key())
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create completion: %w", err)
	}
	return completion, true, nil
}
