package domain

import (
	"fmt"
	"time"
)

// DefaultDayStartMinutes is the default business-day boundary: 04:00 local.
// Work logged between midnight and 4am (overnight closing) belongs to the
// previous business day.
const DefaultDayStartMinutes = 4 * 60

// CalendarConfig is a company's day-boundary policy: which timezone the
// company operates in, and how many minutes after midnight its business day
// starts.
type CalendarConfig struct {
	Timezone        string
	DayStartMinutes int
}

// Location resolves the configured timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

// DayStart returns the business-day boundary as a duration past midnight.
func (c CalendarConfig) DayStart() time.Duration {
	if c.DayStartMinutes < 0 || c.DayStartMinutes >= 24*60 {
		return time.Duration(DefaultDayStartMinutes) * time.Minute
	}
	return time.Duration(c.DayStartMinutes) * time.Minute
}

// Company represents a tenant: one business operating one or more locations.
type Company struct {
	ID        string
	Name      string
	Calendar  CalendarConfig
	CreatedAt time.Time
}
