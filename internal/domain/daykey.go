package domain

import (
	"fmt"
	"time"
)

// dayKeyLayout is the canonical wire format for business days.
const dayKeyLayout = "2006-01-02"

// DayKey identifies one business day of one company, formatted YYYY-MM-DD.
// It is the unit every component agrees on when answering "which day does
// this instant belong to"; see schedule.Calendar for how instants map to keys.
type DayKey string

// NewDayKey builds a DayKey from the calendar date of t in t's own location.
func NewDayKey(t time.Time) DayKey {
	return DayKey(t.Format(dayKeyLayout))
}

// ParseDayKey validates and parses a YYYY-MM-DD string.
func ParseDayKey(s string) (DayKey, error) {
	if _, err := time.Parse(dayKeyLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	return DayKey(s), nil
}

// IsZero reports whether the key is unset.
func (k DayKey) IsZero() bool {
	return k == ""
}

// Time returns midnight of the key's calendar date in loc.
func (k DayKey) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(dayKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the key n calendar days later (negative n goes back).
func (k DayKey) AddDays(n int) DayKey {
	return NewDayKey(k.Time(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the weekday of the key's calendar date.
func (k DayKey) Weekday() time.Weekday {
	return k.Time(time.UTC).Weekday()
}

// DayOfMonth returns the day-of-month of the key's calendar date.
func (k DayKey) DayOfMonth() int {
	return k.Time(time.UTC).Day()
}

// DaysInMonth returns the number of days in the key's month.
func (k DayKey) DaysInMonth() int {
	t := k.Time(time.UTC)
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Before reports whether k is an earlier calendar day than other.
// The YYYY-MM-DD format makes lexicographic order equal calendar order.
func (k DayKey) Before(other DayKey) bool {
	return k < other
}

// After reports whether k is a later calendar day than other.
func (k DayKey) After(other DayKey) bool {
	return k > other
}

func (k DayKey) String() string {
	return string(k)
}
