package schedule

import (
	"time"

	"github.com/shiftops/taskline/internal/domain"
)

// LockReason explains why a completion action is currently refused.
type LockReason string

const (
	LockReasonTooEarly LockReason = "too_early"
	LockReasonTooLate  LockReason = "too_late"
)

// LockStatus is the decision for one occurrence at one instant. Callers
// enforce it at the point of accepting a completion write; the policy
// itself never mutates anything.
type LockStatus struct {
	Locked bool
	Reason LockReason
}

// LockConfig tunes the completion window relative to an occurrence.
type LockConfig struct {
	// EarlyLead is how long before the effective start a completion is
	// already accepted. Zero disables the early lock entirely.
	EarlyLead time.Duration

	// Grace is how long past the deadline a completion is still accepted
	// (flagged late). Zero disables the late lock: late completions are
	// accepted indefinitely and only flagged. After the grace elapses the
	// item is a missed/overdue case, not a completable one.
	Grace time.Duration
}

// DefaultLockConfig opens completions two hours early and closes them for
// good one day after the deadline.
var DefaultLockConfig = LockConfig{
	EarlyLead: 2 * time.Hour,
	Grace:     24 * time.Hour,
}

// CompletionLockStatus decides whether completing the occurrence is
// permitted at `now`. Pure function of occurrence timing, config and now.
func CompletionLockStatus(occ *domain.TaskOccurrence, now time.Time, cfg LockConfig) LockStatus {
	if cfg.EarlyLead > 0 && occ.StartAt.Sub(now) > cfg.EarlyLead {
		return LockStatus{Locked: true, Reason: LockReasonTooEarly}
	}
	if cfg.Grace > 0 && occ.DeadlineAt != nil && now.After(occ.DeadlineAt.Add(cfg.Grace)) {
		return LockStatus{Locked: true, Reason: LockReasonTooLate}
	}
	return LockStatus{}
}
