package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/schedule"
)

// newShift builds a published shift with one approved worker.
func newShift(id, locationID, role string, date domain.DayKey) *domain.Shift {
	return &domain.Shift{
		ID:          id,
		CompanyID:   "company-1",
		LocationID:  locationID,
		Date:        date,
		StartMinute: 8 * 60,
		EndMinute:   16 * 60,
		Role:        role,
		Published:   true,
		Assignments: []domain.ShiftAssignment{
			{ID: id + "-a1", ShiftID: id, WorkerID: "worker-1", Status: domain.AssignmentStatusApproved},
		},
	}
}

func roleOccurrence(role, locationID string) *domain.TaskOccurrence {
	def := newDef("def-1", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")
	def.Role = strPtr(role)
	if locationID != "" {
		def.LocationID = strPtr(locationID)
	}
	return &domain.TaskOccurrence{
		ID:         domain.VirtualID(def.ID, "2024-03-04"),
		Definition: def,
		Date:       "2024-03-04",
	}
}

func TestCheckCoverage_RoleMatch(t *testing.T) {
	date := domain.DayKey("2024-03-04")

	tests := []struct {
		name    string
		occ     *domain.TaskOccurrence
		shifts  []*domain.Shift
		covered bool
	}{
		{
			name:    "matching role and location",
			occ:     roleOccurrence("cook", "loc-1"),
			shifts:  []*domain.Shift{newShift("s1", "loc-1", "cook", date)},
			covered: true,
		},
		{
			name:    "role comparison ignores case and whitespace",
			occ:     roleOccurrence("  Line  Cook ", "loc-1"),
			shifts:  []*domain.Shift{newShift("s1", "loc-1", "line cook", date)},
			covered: true,
		},
		{
			name:    "different role",
			occ:     roleOccurrence("cook", "loc-1"),
			shifts:  []*domain.Shift{newShift("s1", "loc-1", "cashier", date)},
			covered: false,
		},
		{
			name:    "different location",
			occ:     roleOccurrence("cook", "loc-1"),
			shifts:  []*domain.Shift{newShift("s1", "loc-2", "cook", date)},
			covered: false,
		},
		{
			name:    "global occurrence matches any location",
			occ:     roleOccurrence("cook", ""),
			shifts:  []*domain.Shift{newShift("s1", "loc-2", "cook", date)},
			covered: true,
		},
		{
			name:    "shift on another day does not count",
			occ:     roleOccurrence("cook", "loc-1"),
			shifts:  []*domain.Shift{newShift("s1", "loc-1", "cook", "2024-03-05")},
			covered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := schedule.CheckCoverage(tt.occ, tt.shifts, date)
			assert.Equal(t, tt.covered, res.Covered)
		})
	}
}

func TestCheckCoverage_OnlyPublishedApprovedShiftsQualify(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	occ := roleOccurrence("cook", "loc-1")

	unpublished := newShift("s1", "loc-1", "cook", date)
	unpublished.Published = false
	res := schedule.CheckCoverage(occ, []*domain.Shift{unpublished}, date)
	assert.False(t, res.Covered, "unpublished shift never covers")

	pendingOnly := newShift("s2", "loc-1", "cook", date)
	pendingOnly.Assignments[0].Status = domain.AssignmentStatusPending
	res = schedule.CheckCoverage(occ, []*domain.Shift{pendingOnly}, date)
	assert.False(t, res.Covered, "shift without an approved worker never covers")
}

func TestCheckCoverage_AmbiguousMatchUnionsShiftIDs(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	occ := roleOccurrence("cook", "loc-1")
	shifts := []*domain.Shift{
		newShift("s1", "loc-1", "cook", date),
		newShift("s2", "loc-1", "Cook", date),
	}

	res := schedule.CheckCoverage(occ, shifts, date)
	assert.True(t, res.Covered)
	assert.ElementsMatch(t, []string{"s1", "s2"}, res.MatchingShiftIDs)
}

func TestCheckCoverage_EmployeeAssigned(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	def := newDef("def-1", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")
	def.EmployeeID = strPtr("worker-1")
	def.LocationID = strPtr("loc-1")
	occ := &domain.TaskOccurrence{ID: domain.VirtualID("def-1", date), Definition: def, Date: date}

	covered := schedule.CheckCoverage(occ, []*domain.Shift{newShift("s1", "loc-1", "cook", date)}, date)
	assert.True(t, covered.Covered, "approved shift for that worker covers")

	other := newShift("s2", "loc-1", "cook", date)
	other.Assignments[0].WorkerID = "worker-2"
	uncovered := schedule.CheckCoverage(occ, []*domain.Shift{other}, date)
	assert.False(t, uncovered.Covered)
}

func TestCheckCoverage_UnassignedAlwaysCovered(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	def := newDef("def-1", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")
	occ := &domain.TaskOccurrence{ID: domain.VirtualID("def-1", date), Definition: def, Date: date}

	res := schedule.CheckCoverage(occ, nil, date)
	assert.True(t, res.Covered)
}

func TestApplyCoverage_ViewModeFork(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	uncovered := roleOccurrence("cook", "loc-1")

	execKept, dropped := schedule.ApplyCoverage(
		[]*domain.TaskOccurrence{uncovered}, nil, date, schedule.ViewModeExecution)
	assert.Empty(t, execKept, "execution mode drops uncovered occurrences")
	assert.Equal(t, 1, dropped)

	planning := roleOccurrence("cook", "loc-1")
	planKept, dropped := schedule.ApplyCoverage(
		[]*domain.TaskOccurrence{planning}, nil, date, schedule.ViewModePlanning)
	require.Len(t, planKept, 1)
	assert.Zero(t, dropped)
	assert.True(t, planKept[0].NoCoverage, "planning mode flags the gap instead")
}

func TestGroupByCoverage(t *testing.T) {
	date := domain.DayKey("2024-03-04")
	cookShift := newShift("s1", "loc-1", "cook", date)
	cook := roleOccurrence("cook", "loc-1")
	cashier := roleOccurrence("cashier", "loc-1")

	covered, noCoverage := schedule.GroupByCoverage(
		[]*domain.TaskOccurrence{cook, cashier}, []*domain.Shift{cookShift}, date)
	require.Len(t, covered, 1)
	require.Len(t, noCoverage, 1)
	assert.Equal(t, cook.ID, covered[0].ID)
	assert.Equal(t, cashier.ID, noCoverage[0].ID)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "line cook", domain.NormalizeRole("  Line   COOK "))
	assert.Equal(t, "", domain.NormalizeRole("   "))
	assert.True(t, domain.RolesMatch("Cook", " cook "))
	assert.False(t, domain.RolesMatch("", ""))
}
