package timeutils

import (
	"errors"
	"time"
)

// ClockTimePeriod represents a period of time that is defined by local clock
// time, without any date information, e.g. "4pm to 6pm".
type ClockTimePeriod struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Validate checks that the period is well formed. Periods that cross midnight
// are not supported.
func (p *ClockTimePeriod) Validate() error {
	if p.Start.Location == nil || p.End.Location == nil {
		return errors.New("clock time period must have a location")
	}
	if p.Start.Location.String() != p.End.Location.String() {
		return errors.New("clock time period must start and end in the same timezone")
	}
	if p.End.SecondsIntoDay() <= p.Start.SecondsIntoDay() {
		return errors.New("clock time period must end after it starts")
	}
	return nil
}

// OnDay returns the absolute `Period` that this clock time period covers on
// the day containing `t` (interpreted in the period's own timezone, which
// matters near midnight when `t` carries a different offset).
func (p *ClockTimePeriod) OnDay(t time.Time) Period {
	t = t.In(p.Start.Location)
	year, month, day := t.Date()
	return Period{
		Start: p.Start.OnDate(year, month, day),
		End:   p.End.OnDate(year, month, day),
	}
}

// AbsolutePeriod returns the equivalent `Period` instance for the given
// `ClockTimePeriod`, using `t` as the reference time that must be within the
// period. If `t` is outside of the period then ok is returned as false.
//
// The period start is inclusive and the end is exclusive. For example,
// calling on a ClockTimePeriod of "4pm to 6pm" with a reference `t` of
// "2024/06/19 16:53:00" yields "2024/06/19 16:00:00 to 2024/06/19 18:00:00",
// whilst a reference of "2024/06/19 10:00:00" yields ok=false.
func (p *ClockTimePeriod) AbsolutePeriod(t time.Time) (Period, bool) {
	period := p.OnDay(t)
	if !period.Contains(t) {
		return Period{}, false
	}
	return period, true
}

// Contains returns true if the given t is contained in the ClockTimePeriod.
func (p *ClockTimePeriod) Contains(t time.Time) bool {
	_, contains := p.AbsolutePeriod(t)
	return contains
}
