// Package engine provides the day-based career loop: a calendar that fires
// daily and weekly callbacks, and the Career state machine that turns
// activities into growth, condition, and hierarchy changes.
package engine

import (
	"log/slog"
	"time"
)

// DaysPerWeek is the passive-growth cadence.
const DaysPerWeek = 7

// Calendar advances one day per activity. It never runs on its own: each
// call to Advance is one user action.
type Calendar struct {
	Start time.Time // Date of day 0
	Day   int       // Days elapsed, monotonic

	// Callbacks for each layer, populated during setup.
	OnDay  func(day int) // Every day
	OnWeek func(day int) // Every DaysPerWeek days
}

// NewCalendar creates a calendar starting at start, truncated to midnight UTC.
func NewCalendar(start time.Time) *Calendar {
	y, m, d := start.UTC().Date()
	return &Calendar{Start: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Advance moves the calendar forward one day and fires callbacks.
func (c *Calendar) Advance() {
	c.Day++
	slog.Debug("day advanced", "day", c.Day, "date", c.DateString())

	if c.OnDay != nil {
		c.OnDay(c.Day)
	}
	if c.Day%DaysPerWeek == 0 && c.OnWeek != nil {
		c.OnWeek(c.Day)
	}
}

// Date returns the current in-game date.
func (c *Calendar) Date() time.Time {
	return c.Start.AddDate(0, 0, c.Day)
}

// DateString formats the current date for display.
func (c *Calendar) DateString() string {
	return FormatDate(c.Date())
}

// Week returns the 1-based week number of the current day.
func (c *Calendar) Week() int {
	return c.Day/DaysPerWeek + 1
}

// FormatDate renders a date as "2026-04-01 (Wed)".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 (Mon)")
}
