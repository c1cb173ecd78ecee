package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/repository"
	"github.com/shiftops/taskline/internal/schedule"
)

// OccurrenceService fetches an immutable snapshot of definitions, shifts and
// completions and runs the schedule pipeline over it. All consuming surfaces
// (dashboard, kiosk, mobile, calendar) go through here so they agree on the
// same occurrence list; consistency is recompute-on-read, never stored.
type OccurrenceService struct {
	pool           *pgxpool.Pool
	companyRepo    *repository.CompanyRepository
	definitionRepo *repository.TaskDefinitionRepository
	shiftRepo      *repository.ShiftRepository
	completionRepo *repository.CompletionRepository
	lockCfg        schedule.LockConfig
}

// NewOccurrenceService creates a new OccurrenceService.
func NewOccurrenceService(
	pool *pgxpool.Pool,
	companyRepo *repository.CompanyRepository,
	definitionRepo *repository.TaskDefinitionRepository,
	shiftRepo *repository.ShiftRepository,
	completionRepo *repository.CompletionRepository,
) *OccurrenceService {
	return &OccurrenceService{
		pool:           pool,
		companyRepo:    companyRepo,
		definitionRepo: definitionRepo,
		shiftRepo:      shiftRepo,
		completionRepo: completionRepo,
		lockCfg:        schedule.DefaultLockConfig,
	}
}

// BoardParams scope one pipeline run to a company and view.
type BoardParams struct {
	CompanyID string
	Filters   schedule.Filters
	ViewMode  schedule.ViewMode
	Options   schedule.Options
	Now       time.Time
}

// pipelineFor loads the company and builds its pipeline.
func (s *OccurrenceService) pipelineFor(ctx context.Context, companyID string) (*schedule.Pipeline, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	pipeline, err := schedule.NewPipeline(company.Calendar)
	if err != nil {
		return nil, fmt.Errorf("build pipeline for company %s: %w", companyID, err)
	}
	return pipeline, nil
}

// snapshot fetches the three input sets for a date window.
func (s *OccurrenceService) snapshot(ctx context.Context, companyID string, start, end domain.DayKey) (schedule.Snapshot, error) {
	defs, err := s.definitionRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("fetch definitions: %w", err)
	}
	if defs == nil {
		defs = []*domain.TaskDefinition{}
	}
	shifts, err := s.shiftRepo.ListByCompanyRange(ctx, companyID, start, end)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("fetch shifts: %w", err)
	}
	completions, err := s.completionRepo.ListByCompanyRange(ctx, companyID, start, end)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("fetch completions: %w", err)
	}
	return schedule.Snapshot{Definitions: defs, Shifts: shifts, Completions: completions}, nil
}

// BoardForDate computes the occurrence board for one business day.
func (s *OccurrenceService) BoardForDate(ctx context.Context, params BoardParams, date domain.DayKey) (*schedule.Result, error) {
	pipeline, err := s.pipelineFor(ctx, params.CompanyID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, params.CompanyID, date, date)
	if err != nil {
		return nil, err
	}
	return pipeline.RunForDate(snap, date, params.Filters, params.ViewMode, params.Now, params.Options)
}

// BoardForRange computes the occurrence board for [start, end] inclusive.
func (s *OccurrenceService) BoardForRange(ctx context.Context, params BoardParams, start, end domain.DayKey) (*schedule.Result, error) {
	pipeline, err := s.pipelineFor(ctx, params.CompanyID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, params.CompanyID, start, end)
	if err != nil {
		return nil, err
	}
	return pipeline.RunForRange(snap, start, end, params.Filters, params.ViewMode, params.Now, params.Options)
}

// BoardToday computes the board for the company's current business day and
// returns which day that was, so surfaces can label it.
func (s *OccurrenceService) BoardToday(ctx context.Context, params BoardParams) (*schedule.Result, domain.DayKey, error) {
	pipeline, err := s.pipelineFor(ctx, params.CompanyID)
	if err != nil {
		return nil, "", err
	}
	date := pipeline.Calendar().Today(params.Now)
	res, err := s.boardOn(ctx, pipeline, params, date)
	return res, date, err
}

// BoardTomorrow computes the board for the next business day.
func (s *OccurrenceService) BoardTomorrow(ctx context.Context, params BoardParams) (*schedule.Result, domain.DayKey, error) {
	pipeline, err := s.pipelineFor(ctx, params.CompanyID)
	if err != nil {
		return nil, "", err
	}
	date := pipeline.Calendar().Tomorrow(params.Now)
	res, err := s.boardOn(ctx, pipeline, params, date)
	return res, date, err
}

func (s *OccurrenceService) boardOn(ctx context.Context, pipeline *schedule.Pipeline, params BoardParams, date domain.DayKey) (*schedule.Result, error) {
	snap, err := s.snapshot(ctx, params.CompanyID, date, date)
	if err != nil {
		return nil, err
	}
	return pipeline.RunForDate(snap, date, params.Filters, params.ViewMode, params.Now, params.Options)
}

// CompleteParams describe one completion attempt.
type CompleteParams struct {
	CompanyID    string
	OccurrenceID string
	EmployeeID   string
	EvidenceRef  *string
	Now          time.Time
}

// CompleteOccurrence records that an occurrence was done. The occurrence is
// re-derived from its identity (never trusted from the client), the time
// lock is enforced, and the write is idempotent per (definition, date):
// whichever completion reached the store first is authoritative. The bool
// reports whether this call wrote the row.
func (s *OccurrenceService) CompleteOccurrence(ctx context.Context, params CompleteParams) (*domain.TaskCompletion, bool, error) {
	id, err := domain.ParseOccurrenceID(params.OccurrenceID)
	if err != nil {
		return nil, false, err
	}

	def, err := s.definitionRepo.GetByID(ctx, id.BaseID())
	if err != nil {
		return nil, false, err
	}
	if def.CompanyID != params.CompanyID {
		return nil, false, domain.ErrDefinitionNotFound
	}

	pipeline, err := s.pipelineFor(ctx, params.CompanyID)
	if err != nil {
		return nil, false, err
	}

	occ, err := s.resolveOccurrence(pipeline, def, id)
	if err != nil {
		return nil, false, err
	}

	lock := schedule.CompletionLockStatus(occ, params.Now, s.lockCfg)
	if lock.Locked {
		switch lock.Reason {
		case schedule.LockReasonTooEarly:
			return nil, false, fmt.Errorf("%w: occurrence %s starts at %s", domain.ErrCompletionTooEarly, id, occ.StartAt)
		default:
			return nil, false, fmt.Errorf("%w: occurrence %s", domain.ErrCompletionTooLate, id)
		}
	}

	late := occ.DeadlineAt != nil && params.Now.After(*occ.DeadlineAt)
	completion := &domain.TaskCompletion{
		TaskDefinitionID: id.BaseID(),
		Date:             occ.Date,
		CompletedBy:      params.EmployeeID,
		CompletedAt:      params.Now,
		Late:             late,
		EvidenceRef:      params.EvidenceRef,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	stored, created, err := s.completionRepo.Create(ctx, tx, completion)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}

	if created {
		slog.Info("occurrence completed",
			"occurrence_id", id.String(),
			"definition_id", id.BaseID(),
			"date", occ.Date,
			"employee_id", params.EmployeeID,
			"late", late,
		)
	} else {
		slog.Info("occurrence already completed, returning stored row",
			"occurrence_id", id.String(),
			"completion_id", stored.ID,
		)
	}

	return stored, created, nil
}

// resolveOccurrence re-derives the occurrence behind an identity by running
// the expander for the identity's date. A virtual id carries its date; a
// materialized id means the definition's own anchored day.
func (s *OccurrenceService) resolveOccurrence(pipeline *schedule.Pipeline, def *domain.TaskDefinition, id domain.OccurrenceID) (*domain.TaskOccurrence, error) {
	date := id.Date()
	if !id.IsVirtual() {
		date = pipeline.Calendar().DayKey(def.StartAt)
	}

	expander := schedule.NewExpander(pipeline.Calendar())
	occs, problems := expander.ForDate([]*domain.TaskDefinition{def}, date, schedule.DefaultOptions())
	if len(problems) > 0 {
		return nil, problems[0].Err
	}
	if len(occs) != 1 || occs[0].ID != id {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrNoOccurrence, id.BaseID(), date)
	}
	return occs[0], nil
}
