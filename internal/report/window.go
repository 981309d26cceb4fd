// Package report aggregates historical records into per-user usage
// summaries for a selected time window, with no side effects.
package report

import (
	"fmt"
	"time"
)

// Window is a caller-selected retroactive time range used to filter
// historical records before aggregation.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

// ParseWindow converts a string to a Window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return w, nil
	}
	return "", fmt.Errorf("unknown report window %q", s)
}

// Start returns the inclusive lower bound of the window evaluated at now,
// in now's location. The week starts on the most recent Sunday (today, if
// now is a Sunday). All-time has no lower bound and starts at epoch zero.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case WindowWeek:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return midnight.AddDate(0, 0, -int(now.Weekday()))
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case WindowYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.UnixMilli(0)
	}
}
