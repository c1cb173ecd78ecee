package schedule

import (
	"errors"

	"github.com/shiftops/taskline/internal/domain"
)

var (
	errNilCompletion        = errors.New("nil completion row")
	errIncompleteCompletion = errors.New("completion row missing definition id or date")
)

// CompletionIndex is a fast lookup of prior completions keyed by
// (definition, date). Virtual occurrence identities never reach the index;
// everything normalizes through the base definition id first.
type CompletionIndex map[domain.CompletionKey]*domain.TaskCompletion

// BaseID maps a possibly-virtual occurrence identity back to the canonical
// task-definition id. Identity function for materialized ids.
func BaseID(id domain.OccurrenceID) string {
	return id.BaseID()
}

// CompletionKeyFor builds the stable per-date completion key of an identity.
func CompletionKeyFor(id domain.OccurrenceID, date domain.DayKey) domain.CompletionKey {
	return domain.CompletionKey{DefinitionID: id.BaseID(), Date: date}
}

// BuildCompletionIndex indexes completion rows by their (definition, date)
// key. Rows missing a definition id or date are skipped and returned as
// problems; when the store hands us duplicate rows for one key the first
// one is authoritative (the owning store rejects true duplicates).
func BuildCompletionIndex(completions []*domain.TaskCompletion) (CompletionIndex, []Problem) {
	idx := make(CompletionIndex, len(completions))
	var problems []Problem

	for _, c := range completions {
		if c == nil || c.TaskDefinitionID == "" || c.Date.IsZero() {
			problems = append(problems, Problem{Err: errMalformedCompletion(c)})
			continue
		}
		key := c.Key()
		if _, exists := idx[key]; exists {
			continue
		}
		idx[key] = c
	}
	return idx, problems
}

// Lookup returns the completion recorded for an occurrence, if any.
func (idx CompletionIndex) Lookup(occ *domain.TaskOccurrence) (*domain.TaskCompletion, bool) {
	c, ok := idx[occ.CompletionKeyOf()]
	return c, ok
}

// AttachCompletions copies completion state onto each occurrence that has a
// matching record. Occurrences without one are left untouched (pending).
func AttachCompletions(occs []*domain.TaskOccurrence, idx CompletionIndex) {
	for _, occ := range occs {
		c, ok := idx.Lookup(occ)
		if !ok {
			continue
		}
		occ.Completed = true
		occ.CompletedBy = &c.CompletedBy
		at := c.CompletedAt
		occ.CompletedAt = &at
		occ.CompletedLate = c.Late
	}
}

func errMalformedCompletion(c *domain.TaskCompletion) error {
	if c == nil {
		return errNilCompletion
	}
	return errIncompleteCompletion
}
