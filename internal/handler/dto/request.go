package dto

// CompleteOccurrenceRequest is the request body for completing an occurrence.
// The body is optional; an empty body records a completion without evidence.
type CompleteOccurrenceRequest struct {
	EvidenceRef *string `json:"evidence_ref,omitempty"`
}
