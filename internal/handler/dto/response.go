package dto

import (
	"time"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/schedule"
)

// OccurrenceResponse is one dated task instance as returned to clients.
type OccurrenceResponse struct {
	ID               string     `json:"id"`
	TaskDefinitionID string     `json:"task_definition_id"`
	Date             string     `json:"date"`
	Virtual          bool       `json:"virtual"`
	Title            string     `json:"title"`
	Priority         string     `json:"priority"`
	LocationID       *string    `json:"location_id,omitempty"`
	EmployeeID       *string    `json:"employee_id,omitempty"`
	Role             *string    `json:"role,omitempty"`
	StartAt          time.Time  `json:"start_at"`
	DeadlineAt       *time.Time `json:"deadline_at,omitempty"`
	Completed        bool       `json:"completed"`
	CompletedBy      *string    `json:"completed_by,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CompletedLate    bool       `json:"completed_late"`
	Overdue          bool       `json:"overdue"`
	NoCoverage       bool       `json:"no_coverage"`
	MatchingShiftIDs []string   `json:"matching_shift_ids,omitempty"`
}

// GroupsResponse buckets occurrences by status.
type GroupsResponse struct {
	Pending    []OccurrenceResponse `json:"pending"`
	Overdue    []OccurrenceResponse `json:"overdue"`
	Completed  []OccurrenceResponse `json:"completed"`
	NoCoverage []OccurrenceResponse `json:"no_coverage"`
}

// BoardResponse is the response for board queries.
type BoardResponse struct {
	Date        string               `json:"date,omitempty"`
	Start       string               `json:"start,omitempty"`
	End         string               `json:"end,omitempty"`
	Mode        string               `json:"mode"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
	Groups      GroupsResponse       `json:"groups"`
	DebugCounts schedule.DebugCounts `json:"debug_counts"`
	Diagnostics []string             `json:"diagnostics,omitempty"`
}

// CompletionResponse is the response for a recorded completion.
type CompletionResponse struct {
	ID               string    `json:"id"`
	TaskDefinitionID string    `json:"task_definition_id"`
	OccurrenceID     string    `json:"occurrence_id"`
	Date             string    `json:"date"`
	CompletedBy      string    `json:"completed_by"`
	CompletedAt      time.Time `json:"completed_at"`
	Late             bool      `json:"late"`
	EvidenceRef      *string   `json:"evidence_ref,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToOccurrenceResponse converts a domain occurrence to a response DTO.
func ToOccurrenceResponse(occ *domain.TaskOccurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:               occ.ID.String(),
		TaskDefinitionID: occ.ID.BaseID(),
		Date:             string(occ.Date),
		Virtual:          occ.ID.IsVirtual(),
		Title:            occ.Definition.Title,
		Priority:         string(occ.Definition.Priority),
		LocationID:       occ.Definition.LocationID,
		EmployeeID:       occ.Definition.EmployeeID,
		Role:             occ.Definition.Role,
		StartAt:          occ.StartAt,
		DeadlineAt:       occ.DeadlineAt,
		Completed:        occ.Completed,
		CompletedBy:      occ.CompletedBy,
		CompletedAt:      occ.CompletedAt,
		CompletedLate:    occ.CompletedLate,
		Overdue:          occ.Overdue,
		NoCoverage:       occ.NoCoverage,
		MatchingShiftIDs: occ.MatchingShiftIDs,
	}
}

// ToOccurrenceResponses converts a slice of occurrences, always returning a
// non-nil slice so empty groups serialize as [].
func ToOccurrenceResponses(occs []*domain.TaskOccurrence) []OccurrenceResponse {
	responses := make([]OccurrenceResponse, 0, len(occs))
	for _, occ := range occs {
		responses = append(responses, ToOccurrenceResponse(occ))
	}
	return responses
}

// ToBoardResponse converts a pipeline result to a response DTO.
func ToBoardResponse(res *schedule.Result, mode schedule.ViewMode) BoardResponse {
	return BoardResponse{
		Mode:        string(mode),
		Occurrences: ToOccurrenceResponses(res.Occurrences),
		Groups: GroupsResponse{
			Pending:    ToOccurrenceResponses(res.Groups.Pending),
			Overdue:    ToOccurrenceResponses(res.Groups.Overdue),
			Completed:  ToOccurrenceResponses(res.Groups.Completed),
			NoCoverage: ToOccurrenceResponses(res.Groups.NoCoverage),
		},
		DebugCounts: res.Counts,
		Diagnostics: res.Diagnostics,
	}
}

// ToCompletionResponse converts a domain completion to a response DTO.
func ToCompletionResponse(c *domain.TaskCompletion, occurrenceID string) CompletionResponse {
	return CompletionResponse{
		ID:               c.ID,
		TaskDefinitionID: c.TaskDefinitionID,
		OccurrenceID:     occurrenceID,
		Date:             string(c.Date),
		CompletedBy:      c.CompletedBy,
		CompletedAt:      c.CompletedAt,
		Late:             c.Late,
		EvidenceRef:      c.EvidenceRef,
		CreatedAt:        c.CreatedAt,
	}
}
