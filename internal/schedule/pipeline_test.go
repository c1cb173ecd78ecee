package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/schedule"
)

func newPipeline(t *testing.T) *schedule.Pipeline {
	t.Helper()
	p, err := schedule.NewPipeline(domain.CalendarConfig{Timezone: "UTC"})
	require.NoError(t, err)
	return p
}

// cookDefinition is the canonical test definition: weekly Mon+Wed, role cook,
// location loc-1, deadline two hours after the 09:00 start.
func cookDefinition() *domain.TaskDefinition {
	def := newDef("cook-task", domain.Recurrence{
		Kind:     domain.RecurrenceWeekly,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	}, "2024-03-04")
	def.Role = strPtr("cook")
	def.LocationID = strPtr("loc-1")
	def.DeadlineOffsetMinutes = intPtr(120)
	return def
}

func TestPipeline_WeeklyCoveredScenario(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{cookDefinition()},
		Shifts:      []*domain.Shift{newShift("s1", "loc-1", "cook", "2024-03-04")},
	}

	// Monday: one covered occurrence.
	res, err := p.RunForDate(snap, "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	occ := res.Occurrences[0]
	assert.False(t, occ.NoCoverage)
	assert.Equal(t, []string{"s1"}, occ.MatchingShiftIDs)
	assert.Len(t, res.Groups.Pending, 1)

	// Tuesday: no weekday match at all.
	res, err = p.RunForDate(snap, "2024-03-05", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Occurrences)
}

func TestPipeline_CoverageViewModeFork(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	// Wednesday matches the rule but no shift is published for it.
	snap := schedule.Snapshot{Definitions: []*domain.TaskDefinition{cookDefinition()}}

	execution, err := p.RunForDate(snap, "2024-03-06", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, execution.Occurrences)
	assert.Equal(t, 1, execution.Counts.CoverageDropped)

	planning, err := p.RunForDate(snap, "2024-03-06", schedule.Filters{}, schedule.ViewModePlanning, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, planning.Occurrences, 1)
	assert.True(t, planning.Occurrences[0].NoCoverage)
	assert.Equal(t, 1, planning.Counts.CoverageFlagged)
	assert.Len(t, planning.Groups.NoCoverage, 1)
}

func TestPipeline_CompletionIndependenceAcrossWeeks(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	doneAt := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{cookDefinition()},
		Shifts: []*domain.Shift{
			newShift("s1", "loc-1", "cook", "2024-03-04"),
			newShift("s2", "loc-1", "cook", "2024-03-11"),
		},
		Completions: []*domain.TaskCompletion{
			{ID: "c1", TaskDefinitionID: "cook-task", Date: "2024-03-04", CompletedBy: "emp-1", CompletedAt: doneAt},
		},
	}

	done, err := p.RunForDate(snap, "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, done.Groups.Completed, 1)
	require.NotNil(t, done.Groups.Completed[0].CompletedBy)
	assert.Equal(t, "emp-1", *done.Groups.Completed[0].CompletedBy)

	nextWeek, err := p.RunForDate(snap, "2024-03-11", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, nextWeek.Occurrences, 1)
	assert.False(t, nextWeek.Occurrences[0].Completed)
	assert.Empty(t, nextWeek.Groups.Completed)
}

func TestPipeline_OverdueMonotonicity(t *testing.T) {
	p := newPipeline(t)
	def := cookDefinition()
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{def},
		Shifts:      []*domain.Shift{newShift("s1", "loc-1", "cook", "2024-03-04")},
	}

	deadline := time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC)
	var prev bool
	for _, offset := range []time.Duration{-2 * time.Hour, -time.Minute, time.Minute, 3 * time.Hour, 48 * time.Hour} {
		now := deadline.Add(offset)
		res, err := p.RunForDate(snap, "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, res.Occurrences, 1)

		overdue := res.Occurrences[0].Overdue
		assert.Equal(t, offset > 0, overdue, "overdue iff now is past the deadline (offset %v)", offset)
		if prev {
			assert.True(t, overdue, "overdue never flips back as now increases")
		}
		prev = overdue
	}
}

func TestPipeline_Filters(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	roleDef := cookDefinition()
	empDef := newDef("emp-task", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")
	empDef.EmployeeID = strPtr("emp-1")
	empDef.LocationID = strPtr("loc-2")
	poolDef := newDef("pool-task", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")

	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{roleDef, empDef, poolDef},
	}

	t.Run("location filter keeps matching and global definitions", func(t *testing.T) {
		res, err := p.RunForDate(snap, "2024-03-04",
			schedule.Filters{LocationID: strPtr("loc-1")},
			schedule.ViewModePlanning, now, schedule.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, res.Occurrences, 2)
		assert.Equal(t, 1, res.Counts.LocationFiltered)
	})

	t.Run("employee filter keeps own and unassigned work", func(t *testing.T) {
		res, err := p.RunForDate(snap, "2024-03-04",
			schedule.Filters{EmployeeID: strPtr("emp-1")},
			schedule.ViewModePlanning, now, schedule.DefaultOptions())
		require.NoError(t, err)
		ids := occurrenceBaseIDs(res.Occurrences)
		assert.ElementsMatch(t, []string{"emp-task", "pool-task"}, ids)
		assert.Equal(t, 1, res.Counts.AssignmentFiltered)
	})

	t.Run("role filter is normalized", func(t *testing.T) {
		res, err := p.RunForDate(snap, "2024-03-04",
			schedule.Filters{Role: strPtr("  COOK ")},
			schedule.ViewModePlanning, now, schedule.DefaultOptions())
		require.NoError(t, err)
		ids := occurrenceBaseIDs(res.Occurrences)
		assert.ElementsMatch(t, []string{"cook-task", "pool-task"}, ids)
	})

	t.Run("employee and role together widen to both", func(t *testing.T) {
		res, err := p.RunForDate(snap, "2024-03-04",
			schedule.Filters{EmployeeID: strPtr("emp-1"), Role: strPtr("cook")},
			schedule.ViewModePlanning, now, schedule.DefaultOptions())
		require.NoError(t, err)
		assert.Len(t, res.Occurrences, 3)
	})
}

func TestPipeline_IncludeCompletedFalse(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{
			newDef("a", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01"),
			newDef("b", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01"),
		},
		Completions: []*domain.TaskCompletion{
			{ID: "c1", TaskDefinitionID: "a", Date: "2024-03-04", CompletedBy: "emp-1", CompletedAt: now},
		},
	}

	opts := schedule.Options{IncludeVirtual: true, IncludeCompleted: false}
	res, err := p.RunForDate(snap, "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, opts)
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, "b", res.Occurrences[0].ID.BaseID())
	assert.Equal(t, 1, res.Counts.CompletedFiltered)
}

func TestPipeline_MalformedInputCountedNeverFatal(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{
			newDef("good", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01"),
			newDef("bad", domain.Recurrence{Kind: "hourly"}, "2024-03-01"),
		},
		Shifts:      []*domain.Shift{nil, {ID: "s-norole", LocationID: "loc-1", Date: "2024-03-04", Published: true}},
		Completions: []*domain.TaskCompletion{nil},
	}

	res, err := p.RunForDate(snap, "2024-03-04", schedule.Filters{}, schedule.ViewModePlanning, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, 1, res.Counts.MalformedDefinitions)
	assert.Equal(t, 2, res.Counts.MalformedShifts)
	assert.Equal(t, 1, res.Counts.MalformedCompletions)
	assert.Equal(t, 4, res.Counts.Errors)
	assert.Len(t, res.Diagnostics, 4)
}

func TestPipeline_StructurallyInvalidInput(t *testing.T) {
	p := newPipeline(t)
	now := time.Now()

	_, err := p.RunForDate(schedule.Snapshot{}, "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrNilDefinitions)

	snap := schedule.Snapshot{Definitions: []*domain.TaskDefinition{}}
	_, err = p.RunForDate(snap, "2024-03-04", schedule.Filters{}, "dashboard", now, schedule.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidViewMode)

	_, err = p.RunForRange(snap, "2024-03-07", "2024-03-04", schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestPipeline_TodayTomorrowAnchors(t *testing.T) {
	p, err := schedule.NewPipeline(domain.CalendarConfig{Timezone: "UTC", DayStartMinutes: 240})
	require.NoError(t, err)

	def := newDef("d", domain.Recurrence{Kind: domain.RecurrenceDaily}, "2024-03-01")
	snap := schedule.Snapshot{Definitions: []*domain.TaskDefinition{def}}

	// 2am on March 5th is still business day March 4th.
	now := time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)

	today, err := p.TodayTasks(snap, schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, today.Occurrences, 1)
	assert.Equal(t, domain.DayKey("2024-03-04"), today.Occurrences[0].Date)

	tomorrow, err := p.TomorrowTasks(snap, schedule.Filters{}, schedule.ViewModeExecution, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, tomorrow.Occurrences, 1)
	assert.Equal(t, domain.DayKey("2024-03-05"), tomorrow.Occurrences[0].Date)
}

func TestPipeline_RangeChecksCoveragePerDay(t *testing.T) {
	p := newPipeline(t)
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	snap := schedule.Snapshot{
		Definitions: []*domain.TaskDefinition{cookDefinition()},
		// Monday staffed, Wednesday not.
		Shifts: []*domain.Shift{newShift("s1", "loc-1", "cook", "2024-03-04")},
	}

	res, err := p.RunForRange(snap, "2024-03-04", "2024-03-08", schedule.Filters{}, schedule.ViewModePlanning, now, schedule.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 2)

	byDate := map[domain.DayKey]*domain.TaskOccurrence{}
	for _, occ := range res.Occurrences {
		byDate[occ.Date] = occ
	}
	assert.False(t, byDate["2024-03-04"].NoCoverage)
	assert.True(t, byDate["2024-03-06"].NoCoverage)
}

func occurrenceBaseIDs(occs []*domain.TaskOccurrence) []string {
	ids := make([]string, len(occs))
	for i, occ := range occs {
		ids[i] = occ.ID.BaseID()
	}
	return ids
}
