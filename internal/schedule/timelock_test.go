package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/schedule"
)

func lockOccurrence(start time.Time, deadline *time.Time) *domain.TaskOccurrence {
	return &domain.TaskOccurrence{
		ID:         domain.VirtualID("def-1", "2024-03-04"),
		Date:       "2024-03-04",
		StartAt:    start,
		DeadlineAt: deadline,
	}
}

func TestCompletionLockStatus(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	deadline := start.Add(2 * time.Hour)
	cfg := schedule.LockConfig{EarlyLead: time.Hour, Grace: 4 * time.Hour}

	tests := []struct {
		name   string
		now    time.Time
		locked bool
		reason schedule.LockReason
	}{
		{
			name:   "well before the lead window",
			now:    start.Add(-3 * time.Hour),
			locked: true,
			reason: schedule.LockReasonTooEarly,
		},
		{
			name: "inside the lead window",
			now:  start.Add(-30 * time.Minute),
		},
		{
			name: "during the occurrence",
			now:  start.Add(time.Hour),
		},
		{
			name: "late but within grace",
			now:  deadline.Add(time.Hour),
		},
		{
			name:   "past the grace period",
			now:    deadline.Add(5 * time.Hour),
			locked: true,
			reason: schedule.LockReasonTooLate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.CompletionLockStatus(lockOccurrence(start, &deadline), tt.now, cfg)
			assert.Equal(t, tt.locked, got.Locked)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestCompletionLockStatus_ZeroValuesDisableLocks(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	deadline := start.Add(time.Hour)
	occ := lockOccurrence(start, &deadline)

	noEarly := schedule.CompletionLockStatus(occ, start.Add(-72*time.Hour), schedule.LockConfig{Grace: time.Hour})
	assert.False(t, noEarly.Locked, "zero lead disables the early lock")

	noLate := schedule.CompletionLockStatus(occ, deadline.Add(72*time.Hour), schedule.LockConfig{EarlyLead: time.Hour})
	assert.False(t, noLate.Locked, "zero grace disables the late lock")
}

func TestCompletionLockStatus_NoDeadlineNeverTooLate(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	occ := lockOccurrence(start, nil)

	got := schedule.CompletionLockStatus(occ, start.Add(1000*time.Hour), schedule.DefaultLockConfig)
	assert.False(t, got.Locked)
}
