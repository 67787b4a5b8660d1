package timeutils

import "time"

// Period represents an absolute period between two instants in time,
// e.g. "2024/06/19 16:00:00 to 2024/06/19 18:00:00".
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within the period. The start is inclusive and
// the end is exclusive.
func (p *Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Duration returns the length of the period.
func (p *Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}
