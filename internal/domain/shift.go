package domain

import "strings"

// AssignmentStatus represents the approval state of one worker on a shift.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusApproved AssignmentStatus = "approved"
	AssignmentStatusDeclined AssignmentStatus = "declined"
)

// IsValid checks if the status is one of the allowed values.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusApproved, AssignmentStatusDeclined:
		return true
	default:
		return false
	}
}

// ShiftAssignment links one worker to a shift with an approval state.
type ShiftAssignment struct {
	ID       string
	ShiftID  string
	WorkerID string
	Status   AssignmentStatus
}

// Shift is one scheduled staffing block at a location. Only published shifts
// with at least one approved assignment count toward coverage.
type Shift struct {
	ID          string
	CompanyID   string
	LocationID  string
	Date        DayKey
	StartMinute int // minutes past midnight, local to the company
	EndMinute   int
	Role        string
	Published   bool
	Assignments []ShiftAssignment
}

// HasApprovedAssignment reports whether any worker is approved on the shift.
func (s *Shift) HasApprovedAssignment() bool {
	for _, a := range s.Assignments {
		if a.Status == AssignmentStatusApproved {
			return true
		}
	}
	return false
}

// ApprovedWorker reports whether the given worker is approved on the shift.
func (s *Shift) ApprovedWorker(workerID string) bool {
	for _, a := range s.Assignments {
		if a.WorkerID == workerID && a.Status == AssignmentStatusApproved {
			return true
		}
	}
	return false
}

// Qualifies reports whether the shift can count toward coverage at all:
// published, role present, and at least one approved worker.
func (s *Shift) Qualifies() bool {
	return s.Published && strings.TrimSpace(s.Role) != "" && s.HasApprovedAssignment()
}

// NormalizeRole folds a role name for comparison: lower-cased, trimmed, with
// internal whitespace runs collapsed. Every component that compares roles
// goes through this one function.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.Join(strings.Fields(role), " "))
}

// RolesMatch compares two role names under normalization.
func RolesMatch(a, b string) bool {
	n := NormalizeRole(a)
	return n != "" && n == NormalizeRole(b)
}
