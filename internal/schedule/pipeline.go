package schedule

import (
	"fmt"
	"time"

	"github.com/shiftops/taskline/internal/domain"
)

// Snapshot is the immutable input set a pipeline run computes over. The
// caller fetches it; staleness between the three slices is the caller's
// concern. The engine only guarantees determinism given identical inputs.
type Snapshot struct {
	Definitions []*domain.TaskDefinition
	Shifts      []*domain.Shift
	Completions []*domain.TaskCompletion
}

// Filters narrow a run to one location, employee or role. An occurrence
// passes the employee/role filters when its definition is assigned to that
// employee, to that (normalized) role, or to nobody — unassigned work is
// visible to everyone.
type Filters struct {
	LocationID *string
	EmployeeID *string
	Role       *string
}

// DebugCounts records how many occurrences each pipeline stage removed.
// When support asks "why don't I see this task", these counters answer it
// without re-deriving the pipeline by hand.
type DebugCounts struct {
	Definitions          int `json:"definitions"`
	Expanded             int `json:"expanded"`
	MalformedDefinitions int `json:"malformed_definitions"`
	MalformedShifts      int `json:"malformed_shifts"`
	MalformedCompletions int `json:"malformed_completions"`
	CompletedFiltered    int `json:"completed_filtered"`
	AssignmentFiltered   int `json:"assignment_filtered"`
	LocationFiltered     int `json:"location_filtered"`
	CoverageDropped      int `json:"coverage_dropped"`
	CoverageFlagged      int `json:"coverage_flagged"`
	Errors               int `json:"errors"`
}

// Groups buckets the surviving occurrences by status. Each occurrence lands
// in exactly one bucket.
type Groups struct {
	Pending    []*domain.TaskOccurrence `json:"pending"`
	Overdue    []*domain.TaskOccurrence `json:"overdue"`
	Completed  []*domain.TaskOccurrence `json:"completed"`
	NoCoverage []*domain.TaskOccurrence `json:"no_coverage"`
}

// Result is the output every consuming surface receives: the flat ordered
// occurrence list, the status groups, and the observability counters.
type Result struct {
	Occurrences []*domain.TaskOccurrence
	Groups      Groups
	Counts      DebugCounts
	Diagnostics []string
}

// Pipeline composes calendar, expander, completion index, coverage and
// overdue computation into the single entry point all surfaces call.
type Pipeline struct {
	cal      *Calendar
	expander *Expander
}

// NewPipeline builds the pipeline for one company's calendar config.
func NewPipeline(cfg domain.CalendarConfig) (*Pipeline, error) {
	cal, err := NewCalendar(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cal: cal, expander: NewExpander(cal)}, nil
}

// Calendar exposes the company calendar the pipeline anchors on.
func (p *Pipeline) Calendar() *Calendar {
	return p.cal
}

// RunForDate runs the full pipeline for one business day:
// expand -> attach completions -> filter -> coverage -> overdue -> group.
// Per-occurrence problems never abort the run; they are counted and listed
// in diagnostics. Only structurally invalid top-level input returns an error.
func (p *Pipeline) RunForDate(snap Snapshot, date domain.DayKey, filters Filters, mode ViewMode, now time.Time, opts Options) (*Result, error) {
	if err := validateInput(snap, mode); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, domain.ErrInvalidDayKey
	}

	occs, problems := p.expander.ForDate(snap.Definitions, date, opts)
	return p.finish(snap, occs, problems, singleDate{date}, filters, mode, now, opts)
}

// RunForRange runs the pipeline over [start, end] inclusive. Equal to the
// union, de-duplicated by identity, of per-day runs.
func (p *Pipeline) RunForRange(snap Snapshot, start, end domain.DayKey, filters Filters, mode ViewMode, now time.Time, opts Options) (*Result, error) {
	if err := validateInput(snap, mode); err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, domain.ErrInvalidDayKey
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s..%s", domain.ErrInvalidRange, start, end)
	}

	occs, problems := p.expander.ForRange(snap.Definitions, start, end, opts)
	return p.finish(snap, occs, problems, rangeDates{}, filters, mode, now, opts)
}

// TodayTasks runs the pipeline for the company's current business day.
func (p *Pipeline) TodayTasks(snap Snapshot, filters Filters, mode ViewMode, now time.Time, opts Options) (*Result, error) {
	return p.RunForDate(snap, p.cal.Today(now), filters, mode, now, opts)
}

// TomorrowTasks runs the pipeline for the next business day.
func (p *Pipeline) TomorrowTasks(snap Snapshot, filters Filters, mode ViewMode, now time.Time, opts Options) (*Result, error) {
	return p.RunForDate(snap, p.cal.Tomorrow(now), filters, mode, now, opts)
}

func validateInput(snap Snapshot, mode ViewMode) error {
	if snap.Definitions == nil {
		return domain.ErrNilDefinitions
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, mode)
	}
	return nil
}

// coverageDate abstracts "which day is this occurrence checked against":
// a date run checks every occurrence against the one requested day, a range
// run checks each occurrence against its own day.
type coverageDate interface {
	dateFor(occ *domain.TaskOccurrence) domain.DayKey
}

type singleDate struct{ date domain.DayKey }

func (s singleDate) dateFor(*domain.TaskOccurrence) domain.DayKey { return s.date }

type rangeDates struct{}

func (rangeDates) dateFor(occ *domain.TaskOccurrence) domain.DayKey { return occ.Date }

// finish runs the shared tail of the pipeline on expanded occurrences.
func (p *Pipeline) finish(snap Snapshot, occs []*domain.TaskOccurrence, expandProblems []Problem, cov coverageDate, filters Filters, mode ViewMode, now time.Time, opts Options) (*Result, error) {
	res := &Result{}
	res.Counts.Definitions = len(snap.Definitions)
	res.Counts.Expanded = len(occs)
	res.Counts.MalformedDefinitions = len(expandProblems)
	res.record(expandProblems)

	malformedShifts, shiftProblems := CountMalformedShifts(snap.Shifts)
	res.Counts.MalformedShifts = malformedShifts
	res.record(shiftProblems)

	idx, completionProblems := BuildCompletionIndex(snap.Completions)
	res.Counts.MalformedCompletions = len(completionProblems)
	res.record(completionProblems)
	AttachCompletions(occs, idx)

	if !opts.IncludeCompleted {
		kept := occs[:0:0]
		for _, occ := range occs {
			if occ.Completed {
				res.Counts.CompletedFiltered++
				continue
			}
			kept = append(kept, occ)
		}
		occs = kept
	}

	occs = res.applyFilters(occs, filters)

	kept := occs[:0:0]
	for _, occ := range occs {
		covRes := CheckCoverage(occ, snap.Shifts, cov.dateFor(occ))
		occ.MatchingShiftIDs = covRes.MatchingShiftIDs
		occ.NoCoverage = !covRes.Covered
		if !covRes.Covered {
			if mode == ViewModeExecution {
				res.Counts.CoverageDropped++
				continue
			}
			res.Counts.CoverageFlagged++
		}
		kept = append(kept, occ)
	}
	occs = kept

	for _, occ := range occs {
		occ.Overdue = occ.IsOverdueAt(now)
	}

	res.Occurrences = occs
	res.Groups = groupByStatus(occs)
	return res, nil
}

// applyFilters removes occurrences outside the requested location,
// employee or role scope, counting each removal.
func (r *Result) applyFilters(occs []*domain.TaskOccurrence, f Filters) []*domain.TaskOccurrence {
	kept := occs[:0:0]
	for _, occ := range occs {
		def := occ.Definition
		if f.LocationID != nil && !def.IsGlobal() && *def.LocationID != *f.LocationID {
			r.Counts.LocationFiltered++
			continue
		}
		if !matchesAssignment(def, f) {
			r.Counts.AssignmentFiltered++
			continue
		}
		kept = append(kept, occ)
	}
	return kept
}

func matchesAssignment(def *domain.TaskDefinition, f Filters) bool {
	if f.EmployeeID == nil && f.Role == nil {
		return true
	}
	if def.IsUnassigned() {
		return true
	}
	if f.EmployeeID != nil && def.IsAssignedToEmployee(*f.EmployeeID) {
		return true
	}
	if f.Role != nil && def.Role != nil && domain.RolesMatch(*def.Role, *f.Role) {
		return true
	}
	return false
}

// groupByStatus buckets each occurrence exactly once: completed beats
// no-coverage beats overdue beats pending.
func groupByStatus(occs []*domain.TaskOccurrence) Groups {
	var g Groups
	for _, occ := range occs {
		switch {
		case occ.Completed:
			g.Completed = append(g.Completed, occ)
		case occ.NoCoverage:
			g.NoCoverage = append(g.NoCoverage, occ)
		case occ.Overdue:
			g.Overdue = append(g.Overdue, occ)
		default:
			g.Pending = append(g.Pending, occ)
		}
	}
	return g
}

// record appends problems to diagnostics and bumps the error counter.
func (r *Result) record(problems []Problem) {
	for _, p := range problems {
		r.Counts.Errors++
		r.Diagnostics = append(r.Diagnostics, p.String())
	}
}
