package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/shiftops/taskline/internal/domain"
)

// Options control which occurrences the engine emits.
type Options struct {
	// IncludeVirtual emits computed occurrences for recurring definitions.
	// When false only materialized one-off rows pass through, which is what
	// consumers wanting already-committed rows (audit trails) ask for.
	IncludeVirtual bool

	// IncludeCompleted keeps occurrences whose completion already exists.
	// Honored by the pipeline after completion state is attached.
	IncludeCompleted bool
}

// DefaultOptions emit everything; surfaces narrow from here.
func DefaultOptions() Options {
	return Options{IncludeVirtual: true, IncludeCompleted: true}
}

// Problem records one input row the engine skipped and why. Problems are
// never fatal to a batch; they surface through DebugCounts and diagnostics.
type Problem struct {
	DefinitionID string
	Err          error
}

func (p Problem) String() string {
	return fmt.Sprintf("definition %s: %v", p.DefinitionID, p.Err)
}

// Expander materializes dated occurrences from task definitions.
type Expander struct {
	cal *Calendar
}

// NewExpander builds an expander for one company's calendar.
func NewExpander(cal *Calendar) *Expander {
	return &Expander{cal: cal}
}

// ForDate produces the occurrences of the given definitions on one business
// day. Malformed definitions are skipped and reported as problems. Output
// ordering is stable: effective start ascending, ties broken by definition
// id, so repeated calls with identical inputs are byte-identical.
func (e *Expander) ForDate(defs []*domain.TaskDefinition, date domain.DayKey, opts Options) ([]*domain.TaskOccurrence, []Problem) {
	var occs []*domain.TaskOccurrence
	var problems []Problem

	for _, def := range defs {
		if def == nil {
			problems = append(problems, Problem{Err: fmt.Errorf("nil definition")})
			continue
		}
		occ, err := e.occurrenceOn(def, date, opts)
		if err != nil {
			problems = append(problems, Problem{DefinitionID: def.ID, Err: err})
			continue
		}
		if occ != nil {
			occs = append(occs, occ)
		}
	}

	sortOccurrences(occs)
	return occs, problems
}

// ForRange produces occurrences for every day in [start, end] inclusive.
// The result equals the de-duplicated union of per-day calls; identity
// de-duplication matters only for one-off rows, which match a single day.
func (e *Expander) ForRange(defs []*domain.TaskDefinition, start, end domain.DayKey, opts Options) ([]*domain.TaskOccurrence, []Problem) {
	var occs []*domain.TaskOccurrence
	var problems []Problem
	seen := make(map[domain.OccurrenceID]bool)

	for day := start; !day.After(end); day = day.AddDays(1) {
		dayOccs, dayProblems := e.ForDate(defs, day, opts)
		for _, occ := range dayOccs {
			if seen[occ.ID] {
				continue
			}
			seen[occ.ID] = true
			occs = append(occs, occ)
		}
		// A definition malformed on one day is malformed on all of them;
		// report it once.
		if day == start {
			problems = dayProblems
		}
	}

	sortOccurrences(occs)
	return occs, problems
}

// occurrenceOn decides calendar membership for one definition and, on a
// match, constructs the occurrence. Returns (nil, nil) for a clean miss.
func (e *Expander) occurrenceOn(def *domain.TaskDefinition, date domain.DayKey, opts Options) (*domain.TaskOccurrence, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.IsArchived() {
		return nil, nil
	}

	anchor := e.cal.DayKey(def.StartAt)

	var matches bool
	switch def.Recurrence.Kind {
	case domain.RecurrenceNone:
		matches = anchor == date
	case domain.RecurrenceDaily:
		matches = !date.Before(anchor)
	case domain.RecurrenceWeekly:
		matches = !date.Before(anchor) && def.Recurrence.OnWeekday(date.Weekday())
	case domain.RecurrenceMonthly:
		matches = !date.Before(anchor) && matchesMonthly(def.Recurrence.DayOfMonth, date)
	default:
		return nil, domain.ErrInvalidRecurrence
	}
	if !matches {
		return nil, nil
	}

	var id domain.OccurrenceID
	if def.Recurrence.IsRecurring() {
		if !opts.IncludeVirtual {
			return nil, nil
		}
		id = domain.VirtualID(def.ID, date)
	} else {
		id = domain.MaterializedID(def.ID)
	}

	startAt := e.cal.CombineDayTime(date, def.StartAt)
	var deadlineAt *time.Time
	if def.DeadlineOffsetMinutes != nil {
		d := startAt.Add(time.Duration(*def.DeadlineOffsetMinutes) * time.Minute)
		deadlineAt = &d
	}

	return &domain.TaskOccurrence{
		ID:         id,
		Definition: def,
		Date:       date,
		StartAt:    startAt,
		DeadlineAt: deadlineAt,
	}, nil
}

// matchesMonthly applies the monthly rule with the clamp policy: in months
// shorter than the configured day the occurrence lands on the last day, so
// a day-31 chore still happens in February.
func matchesMonthly(dayOfMonth int, date domain.DayKey) bool {
	if date.DayOfMonth() == dayOfMonth {
		return true
	}
	last := date.DaysInMonth()
	return dayOfMonth > last && date.DayOfMonth() == last
}

func sortOccurrences(occs []*domain.TaskOccurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		if !occs[i].StartAt.Equal(occs[j].StartAt) {
			return occs[i].StartAt.Before(occs[j].StartAt)
		}
		if occs[i].ID.BaseID() != occs[j].ID.BaseID() {
			return occs[i].ID.BaseID() < occs[j].ID.BaseID()
		}
		return occs[i].Date.Before(occs[j].Date)
	})
}
