package domain

import "time"

// CompletionKey addresses completion state by (base definition id, occurrence
// date) rather than by occurrence identity. This is what lets one weekly
// definition show "done" for this Tuesday and "pending" for next Tuesday
// without ever storing two definitions.
type CompletionKey struct {
	DefinitionID string
	Date         DayKey
}

// TaskCompletion records that one occurrence of a definition was done.
// Rows are append-only: one per (definition, date), created once.
type TaskCompletion struct {
	ID               string
	TaskDefinitionID string
	Date             DayKey
	CompletedBy      string
	CompletedAt      time.Time
	Late             bool
	EvidenceRef      *string // opaque reference to an external evidence record
	CreatedAt        time.Time
}

// Key returns the lookup key completion indexes are built on.
func (c *TaskCompletion) Key() CompletionKey {
	return CompletionKey{DefinitionID: c.TaskDefinitionID, Date: c.Date}
}
