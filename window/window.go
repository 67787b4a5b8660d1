// Package window provides the daily monitoring window for the pre-cool
// controller. A provider emits one Update per controller-day: once at startup
// for the day already in progress, and then again at each daily reset anchor.
package window

import "time"

// Update announces the monitoring window for one controller-day. A zero
// OpensAt/ClosesAt pair means there is no window on that day (e.g. the fixed
// provider is configured for weekdays only).
type Update struct {
	Time     time.Time // when the update was produced
	OpensAt  time.Time
	ClosesAt time.Time
}

// HasWindow returns true if the update carries a usable monitoring window.
func (u *Update) HasWindow() bool {
	return !u.OpensAt.IsZero() && u.ClosesAt.After(u.OpensAt)
}
