package timeutils

import (
	"fmt"
	"time"
)

// Days is a string representation of the different sets of days on which a
// period can apply.
type Days string

const (
	WeekendDays Days = "weekends"
	WeekdayDays Days = "weekdays"
	AllDays     Days = "all"
)

// Validate checks that the day specification is one of the known values.
func (d Days) Validate() error {
	switch d {
	case WeekendDays, WeekdayDays, AllDays:
		return nil
	}
	return fmt.Errorf("unknown day specification: '%s'", d)
}

// Contains returns true if the given t falls on one of the days.
func (d Days) Contains(t time.Time) bool {
	switch d {
	case AllDays:
		return true
	case WeekdayDays:
		return IsWeekday(t)
	case WeekendDays:
		return !IsWeekday(t)
	}
	return false
}

// IsWeekday returns true if t falls on a weekday (Monday to Friday).
func IsWeekday(t time.Time) bool {
	day := t.Weekday()
	return day != time.Saturday && day != time.Sunday
}

// DayedPeriod gives a period of clock time on particular days, e.g. "4pm to
// 6pm on weekdays".
type DayedPeriod struct {
	ClockTimePeriod
	Days Days `json:"days"`
}

// Validate checks that both the day specification and the clock time period
// are well formed.
func (d *DayedPeriod) Validate() error {
	if err := d.Days.Validate(); err != nil {
		return err
	}
	return d.ClockTimePeriod.Validate()
}

// AbsolutePeriod returns the equivalent `Period` instance for the given
// `DayedPeriod`, using `t` as the reference time that must be within the
// period. If `t` is on the wrong day or at the wrong time of day then ok is
// returned as false.
func (d *DayedPeriod) AbsolutePeriod(t time.Time) (Period, bool) {
	if !d.Days.Contains(t.In(d.Start.Location)) {
		return Period{}, false
	}
	return d.ClockTimePeriod.AbsolutePeriod(t)
}

// Contains returns true if the given t is contained in the DayedPeriod.
func (d *DayedPeriod) Contains(t time.Time) bool {
	_, contains := d.AbsolutePeriod(t)
	return contains
}
