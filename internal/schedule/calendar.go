// Package schedule implements the task occurrence and shift-coverage engine:
// a pure, synchronous computation that turns stored task definitions, shift
// rosters and completion records into the dated, completion-aware,
// coverage-aware occurrence list every consuming surface shares.
//
// The engine performs no I/O, reads no system clock, and holds no cross-call
// state. Callers pass `now` and an immutable snapshot of inputs; identical
// inputs always produce identical output.
package schedule

import (
	"time"

	"github.com/shiftops/taskline/internal/domain"
)

// Calendar resolves instants to business days for one company. A business
// day is the company's local calendar day shifted by its day-start boundary,
// so a kiosk at 2am and a manager dashboard at 9am agree on "today".
type Calendar struct {
	cfg domain.CalendarConfig
	loc *time.Location
}

// NewCalendar resolves the company timezone once up front.
func NewCalendar(cfg domain.CalendarConfig) (*Calendar, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Calendar{cfg: cfg, loc: loc}, nil
}

// Location returns the company's resolved timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayKey maps an instant to the business day it belongs to. Two instants
// within the same business day yield an identical key regardless of the
// caller's timezone.
func (c *Calendar) DayKey(at time.Time) domain.DayKey {
	return domain.NewDayKey(at.In(c.loc).Add(-c.cfg.DayStart()))
}

// Today returns the canonical current business day for the company.
func (c *Calendar) Today(now time.Time) domain.DayKey {
	return c.DayKey(now)
}

// Tomorrow returns the business day after Today.
func (c *Calendar) Tomorrow(now time.Time) domain.DayKey {
	return c.Today(now).AddDays(1)
}

// CombineDayTime places the time-of-day of anchor (in company-local terms)
// onto the given business day, yielding the effective instant an occurrence
// on that day starts.
func (c *Calendar) CombineDayTime(date domain.DayKey, anchor time.Time) time.Time {
	local := anchor.In(c.loc)
	day := date.Time(c.loc)
	return time.Date(day.Year(), day.Month(), day.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, c.loc)
}
