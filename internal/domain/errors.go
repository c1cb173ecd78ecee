package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Definition errors
	ErrDefinitionNotFound    = errors.New("task definition not found")
	ErrInvalidRecurrence     = errors.New("invalid recurrence rule")
	ErrConflictingAssignment = errors.New("definition assigned to both employee and role")
	ErrMissingStart          = errors.New("definition has no start instant")

	// Occurrence / pipeline errors
	ErrInvalidOccurrenceID = errors.New("invalid occurrence id")
	ErrInvalidDayKey       = errors.New("invalid day key")
	ErrInvalidViewMode     = errors.New("invalid view mode")
	ErrInvalidRange        = errors.New("range end before start")
	ErrNilDefinitions      = errors.New("definitions snapshot is nil")
	ErrNoOccurrence        = errors.New("definition has no occurrence on that date")

	// Completion errors
	ErrCompletionTooEarly = errors.New("completion not yet open")
	ErrCompletionTooLate  = errors.New("completion window elapsed")

	// Company / calendar errors
	ErrCompanyNotFound = errors.New("company not found")
	ErrInvalidTimezone = errors.New("invalid company timezone")

	// Employee errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is inactive")
	ErrInvalidToken     = errors.New("invalid authentication token")
)
