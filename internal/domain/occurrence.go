package domain

import (
	"fmt"
	"strings"
	"time"
)

// virtualIDSeparator joins definition id and date in a virtual identity.
// Definition ids are UUIDs, so '@' cannot collide.
const virtualIDSeparator = "@"

// OccurrenceID is the identity of one dated task instance. It is either
// materialized (the definition's own id, for one-off rows) or virtual (a
// deterministic composite of definition id and occurrence date, never
// persisted). Keeping the two shapes in one opaque type stops downstream
// code from treating a computed occurrence as a writable row; all completion
// lookups normalize through BaseID.
type OccurrenceID struct {
	definitionID string
	date         DayKey // zero for materialized ids
}

// MaterializedID wraps the id of a stored one-off row.
func MaterializedID(definitionID string) OccurrenceID {
	return OccurrenceID{definitionID: definitionID}
}

// VirtualID builds the deterministic identity of a computed occurrence.
func VirtualID(definitionID string, date DayKey) OccurrenceID {
	return OccurrenceID{definitionID: definitionID, date: date}
}

// ParseOccurrenceID parses the wire form produced by String.
func ParseOccurrenceID(s string) (OccurrenceID, error) {
	if s == "" {
		return OccurrenceID{}, fmt.Errorf("%w: empty id", ErrInvalidOccurrenceID)
	}
	base, rest, found := strings.Cut(s, virtualIDSeparator)
	if !found {
		return MaterializedID(base), nil
	}
	if base == "" {
		return OccurrenceID{}, fmt.Errorf("%w: %q", ErrInvalidOccurrenceID, s)
	}
	date, err := ParseDayKey(rest)
	if err != nil {
		return OccurrenceID{}, fmt.Errorf("%w: %q", ErrInvalidOccurrenceID, s)
	}
	return VirtualID(base, date), nil
}

// IsVirtual reports whether the identity is computed rather than stored.
func (id OccurrenceID) IsVirtual() bool {
	return !id.date.IsZero()
}

// BaseID returns the canonical task-definition id behind the identity.
func (id OccurrenceID) BaseID() string {
	return id.definitionID
}

// Date returns the occurrence date embedded in a virtual identity, or the
// zero DayKey for materialized ids.
func (id OccurrenceID) Date() DayKey {
	return id.date
}

// String renders "<definition-id>" or "<definition-id>@<YYYY-MM-DD>".
func (id OccurrenceID) String() string {
	if id.IsVirtual() {
		return id.definitionID + virtualIDSeparator + string(id.date)
	}
	return id.definitionID
}

// TaskOccurrence is a single dated instance of a task definition, computed
// per request and never mutated in place. Runtime state (completion,
// coverage, overdue) is attached by the pipeline stages.
type TaskOccurrence struct {
	ID         OccurrenceID
	Definition *TaskDefinition
	Date       DayKey

	StartAt    time.Time
	DeadlineAt *time.Time

	Completed     bool
	CompletedBy   *string
	CompletedAt   *time.Time
	CompletedLate bool

	Overdue bool

	NoCoverage       bool
	MatchingShiftIDs []string
}

// CompletionKeyOf returns the (definition, date) key completion state is
// stored under, independent of whether the identity is virtual.
func (o *TaskOccurrence) CompletionKeyOf() CompletionKey {
	return CompletionKey{DefinitionID: o.ID.BaseID(), Date: o.Date}
}

// IsOverdueAt reports whether the occurrence is past deadline and not done.
func (o *TaskOccurrence) IsOverdueAt(now time.Time) bool {
	return !o.Completed && o.DeadlineAt != nil && now.After(*o.DeadlineAt)
}
