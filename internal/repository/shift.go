package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftops/taskline/internal/domain"
)

var shiftColumns = []string{
	"id", "company_id", "location_id", "date", "start_minute", "end_minute", "role", "published",
}

// ShiftRepository handles database operations for shifts and their
// assignments. The engine consumes shifts read-only; writes belong to the
// external scheduling workflow.
type ShiftRepository struct {
	pool *pgxpool.Pool
}

// NewShiftRepository creates a new ShiftRepository.
func NewShiftRepository(pool *pgxpool.Pool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// ListByCompanyRange retrieves all shifts of a company whose date falls in
// [start, end], with assignments attached.
func (r *ShiftRepository) ListByCompanyRange(ctx context.Context, companyID string, start, end domain.DayKey) ([]*domain.Shift, error) {
	query, args, err := psql.
		Select(shiftColumns...).
		From("shifts").
		Where(sq.Eq{"company_id": companyID}).
		Where(sq.GtOrEq{"date": string(start)}).
		Where(sq.LtOrEq{"date": string(end)}).
		OrderBy("date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByCompanyRange query for shifts: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []*domain.Shift
	byID := make(map[string]*domain.Shift)
	for rows.Next() {
		var shift domain.Shift
		var date time.Time
		err := rows.Scan(
			&shift.ID,
			&shift.CompanyID,
			&shift.LocationID,
			&date,
			&shift.StartMinute,
			&shift.EndMinute,
			&shift.Role,
			&shift.Published,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shift.Date = domain.NewDayKey(date)
		shifts = append(shifts, &shift)
		byID[shift.ID] = &shift
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if err := r.attachAssignments(ctx, byID); err != nil {
		return nil, err
	}
	return shifts, nil
}

// ListByCompanyDate retrieves all shifts of a company on one business day.
func (r *ShiftRepository) ListByCompanyDate(ctx context.Context, companyID string, date domain.DayKey) ([]*domain.Shift, error) {
	return r.ListByCompanyRange(ctx, companyID, date, date)
}

// attachAssignments loads and attaches all assignments for the given shifts.
func (r *ShiftRepository) attachAssignments(ctx context.Context, byID map[string]*domain.Shift) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query, args, err := psql.
		Select("id", "shift_id", "worker_id", "status").
		From("shift_assignments").
		Where(sq.Eq{"shift_id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assignments query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query shift assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.ShiftAssignment
		if err := rows.Scan(&a.ID, &a.ShiftID, &a.WorkerID, &a.Status); err != nil {
			return fmt.Errorf("scan shift assignment: %w", err)
		}
		if shift, ok := byID[a.ShiftID]; ok {
			shift.Assignments = append(shift.Assignments, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
