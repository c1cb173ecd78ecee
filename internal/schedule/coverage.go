package schedule

import (
	"errors"

	"github.com/shiftops/taskline/internal/domain"
)

var errMalformedShift = errors.New("shift missing role or location")

// ViewMode selects how occurrences without coverage are treated.
type ViewMode string

const (
	// ViewModeExecution drops uncovered occurrences: nobody scheduled today
	// could act on them, so they don't belong on an actionable list.
	ViewModeExecution ViewMode = "execution"

	// ViewModePlanning keeps uncovered occurrences flagged NoCoverage so a
	// manager can see the staffing gap.
	ViewModePlanning ViewMode = "planning"
)

// IsValid checks if the mode is one of the allowed values.
func (m ViewMode) IsValid() bool {
	return m == ViewModeExecution || m == ViewModePlanning
}

// CoverageResult is the outcome of checking one occurrence against a roster.
type CoverageResult struct {
	Covered          bool
	MatchingShiftIDs []string
}

// CheckCoverage decides whether anyone is actually scheduled to perform the
// occurrence on the given business day. Coverage is day-based, not
// minute-based: any qualifying shift anywhere in the day counts, so staff
// visibility does not flicker as exact minutes pass.
//
// Matching is by assignment kind: role-assigned occurrences need a
// qualifying shift with the same normalized role; employee-assigned
// occurrences need a qualifying shift where that worker is approved;
// unassigned occurrences are always covered (pool work is not scheduled
// work). Location must match unless the definition is global. Shifts that
// match more than one occurrence, or several shifts matching one occurrence,
// are all unioned into MatchingShiftIDs; coverage stays boolean.
func CheckCoverage(occ *domain.TaskOccurrence, shifts []*domain.Shift, date domain.DayKey) CoverageResult {
	def := occ.Definition
	if def == nil || def.IsUnassigned() {
		return CoverageResult{Covered: true}
	}

	var matching []string
	for _, shift := range shifts {
		if shift == nil || !shift.Qualifies() {
			continue
		}
		if shift.Date != date {
			continue
		}
		if !def.IsGlobal() && shift.LocationID != *def.LocationID {
			continue
		}
		switch {
		case def.Role != nil && *def.Role != "":
			if domain.RolesMatch(*def.Role, shift.Role) {
				matching = append(matching, shift.ID)
			}
		case def.EmployeeID != nil:
			if shift.ApprovedWorker(*def.EmployeeID) {
				matching = append(matching, shift.ID)
			}
		}
	}

	return CoverageResult{Covered: len(matching) > 0, MatchingShiftIDs: matching}
}

// ApplyCoverage annotates occurrences with coverage state and applies the
// view-mode policy. In execution mode uncovered occurrences are removed and
// counted; in planning mode they are retained with NoCoverage set. Returns
// the surviving occurrences and the number dropped.
func ApplyCoverage(occs []*domain.TaskOccurrence, shifts []*domain.Shift, date domain.DayKey, mode ViewMode) ([]*domain.TaskOccurrence, int) {
	kept := occs[:0:0]
	dropped := 0

	for _, occ := range occs {
		res := CheckCoverage(occ, shifts, date)
		occ.MatchingShiftIDs = res.MatchingShiftIDs
		occ.NoCoverage = !res.Covered

		if !res.Covered && mode == ViewModeExecution {
			dropped++
			continue
		}
		kept = append(kept, occ)
	}
	return kept, dropped
}

// GroupByCoverage splits occurrences into covered and uncovered, annotating
// both sides. Used by staffing-gap reports that want the split itself.
func GroupByCoverage(occs []*domain.TaskOccurrence, shifts []*domain.Shift, date domain.DayKey) (covered, noCoverage []*domain.TaskOccurrence) {
	for _, occ := range occs {
		res := CheckCoverage(occ, shifts, date)
		occ.MatchingShiftIDs = res.MatchingShiftIDs
		occ.NoCoverage = !res.Covered
		if res.Covered {
			covered = append(covered, occ)
		} else {
			noCoverage = append(noCoverage, occ)
		}
	}
	return covered, noCoverage
}

// CountMalformedShifts reports roster rows the coverage check can never
// match, for the pipeline's debug counters.
func CountMalformedShifts(shifts []*domain.Shift) (int, []Problem) {
	count := 0
	var problems []Problem
	for _, shift := range shifts {
		if shift == nil || shift.Role == "" || shift.LocationID == "" || shift.Date.IsZero() {
			count++
			problems = append(problems, Problem{Err: errMalformedShift})
		}
	}
	return count, problems
}
