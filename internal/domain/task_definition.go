package domain

import "time"

// RecurrenceKind discriminates the closed set of recurrence rules.
type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

// IsValid checks if the kind is one of the allowed values.
func (k RecurrenceKind) IsValid() bool {
	switch k {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// Recurrence is the scheduling rule of a task definition. Kind selects the
// rule; Weekdays is meaningful only for weekly, DayOfMonth only for monthly.
type Recurrence struct {
	Kind       RecurrenceKind
	Weekdays   []time.Weekday
	DayOfMonth int
}

// Validate checks structural validity of the rule.
func (r Recurrence) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidRecurrence
	}
	switch r.Kind {
	case RecurrenceWeekly:
		if len(r.Weekdays) == 0 {
			return ErrInvalidRecurrence
		}
		for _, wd := range r.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return ErrInvalidRecurrence
			}
		}
	case RecurrenceMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return ErrInvalidRecurrence
		}
	}
	return nil
}

// IsRecurring reports whether the rule produces more than one calendar day.
func (r Recurrence) IsRecurring() bool {
	return r.Kind != RecurrenceNone
}

// OnWeekday reports whether a weekly rule includes the given weekday.
func (r Recurrence) OnWeekday(wd time.Weekday) bool {
	for _, d := range r.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// DefinitionStatus represents the lifecycle state of a task definition.
type DefinitionStatus string

const (
	DefinitionStatusActive   DefinitionStatus = "active"
	DefinitionStatusArchived DefinitionStatus = "archived"
)

// TaskPriority represents the priority level of a task definition.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityNormal   TaskPriority = "normal"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh, TaskPriorityCritical:
		return true
	default:
		return false
	}
}

// TaskDefinition is a stored task template owned by the scheduling store.
// A definition with RecurrenceNone is a materialized one-off row; any other
// rule is expanded on demand into virtual occurrences.
type TaskDefinition struct {
	ID         string
	CompanyID  string
	LocationID *string // nil means company-wide ("global")

	// Assignment: at most one of EmployeeID / Role is set.
	EmployeeID *string
	Role       *string

	Title    string
	Priority TaskPriority
	Status   DefinitionStatus

	Recurrence Recurrence
	StartAt    time.Time // anchor instant; its time-of-day carries to occurrences

	DeadlineOffsetMinutes *int
	DurationMinutes       *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGlobal reports whether the definition applies to all locations.
func (d *TaskDefinition) IsGlobal() bool {
	return d.LocationID == nil
}

// IsArchived reports whether the template has been retired.
func (d *TaskDefinition) IsArchived() bool {
	return d.Status == DefinitionStatusArchived
}

// IsAssignedToEmployee checks if the definition targets the given employee.
func (d *TaskDefinition) IsAssignedToEmployee(employeeID string) bool {
	return d.EmployeeID != nil && *d.EmployeeID == employeeID
}

// IsUnassigned reports whether the definition has neither employee nor role.
func (d *TaskDefinition) IsUnassigned() bool {
	return d.EmployeeID == nil && (d.Role == nil || *d.Role == "")
}

// Validate checks invariants the scheduling store must maintain.
func (d *TaskDefinition) Validate() error {
	if err := d.Recurrence.Validate(); err != nil {
		return err
	}
	if d.EmployeeID != nil && d.Role != nil && *d.Role != "" {
		return ErrConflictingAssignment
	}
	if d.StartAt.IsZero() {
		return ErrMissingStart
	}
	return nil
}
