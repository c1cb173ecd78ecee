package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftops/taskline/internal/domain"
	"github.com/shiftops/taskline/internal/schedule"
)

func TestCalendar_DayKey_BusinessDayBoundary(t *testing.T) {
	cal, err := schedule.NewCalendar(domain.CalendarConfig{
		Timezone:        "America/New_York",
		DayStartMinutes: 4 * 60,
	})
	require.NoError(t, err)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want domain.DayKey
	}{
		{
			name: "afternoon is the same calendar day",
			at:   time.Date(2024, 3, 4, 15, 0, 0, 0, ny),
			want: "2024-03-04",
		},
		{
			name: "2am belongs to the previous business day",
			at:   time.Date(2024, 3, 5, 2, 0, 0, 0, ny),
			want: "2024-03-04",
		},
		{
			name: "exactly at the boundary starts the new day",
			at:   time.Date(2024, 3, 5, 4, 0, 0, 0, ny),
			want: "2024-03-05",
		},
		{
			name: "caller timezone is irrelevant",
			at:   time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC), // 15:00 in NY
			want: "2024-03-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.DayKey(tt.at))
		})
	}
}

func TestCalendar_SameBusinessDaySameKey(t *testing.T) {
	cal, err := schedule.NewCalendar(domain.CalendarConfig{Timezone: "UTC", DayStartMinutes: 240})
	require.NoError(t, err)

	morning := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	lateNight := time.Date(2024, 3, 5, 3, 59, 59, 0, time.UTC)
	assert.Equal(t, cal.DayKey(morning), cal.DayKey(lateNight))
}

func TestCalendar_TodayTomorrow(t *testing.T) {
	cal, err := schedule.NewCalendar(domain.CalendarConfig{Timezone: "UTC"})
	require.NoError(t, err)

	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, domain.DayKey("2024-03-04"), cal.Today(now))
	assert.Equal(t, domain.DayKey("2024-03-05"), cal.Tomorrow(now))
}

func TestCalendar_InvalidTimezone(t *testing.T) {
	_, err := schedule.NewCalendar(domain.CalendarConfig{Timezone: "Mars/Olympus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
}

func TestCalendar_CombineDayTime(t *testing.T) {
	cal, err := schedule.NewCalendar(domain.CalendarConfig{Timezone: "UTC"})
	require.NoError(t, err)

	anchor := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	got := cal.CombineDayTime("2024-03-11", anchor)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC), got)
}
