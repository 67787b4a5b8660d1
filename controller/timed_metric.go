package controller

import "time"

// timedMetric is a float64 value that has an associated time at which it was
// last updated.
type timedMetric struct {
	value     float64
	updatedAt time.Time
}

// setAt updates the value and the time of the metric.
func (m *timedMetric) setAt(value float64, at time.Time) {
	m.value = value
	m.updatedAt = at
}

// isOlderThan returns true if the metric's value is older than the given age
// relative to `now`, or if it has never been set.
func (m *timedMetric) isOlderThan(age time.Duration, now time.Time) bool {
	if m.updatedAt.IsZero() {
		return true
	}
	return now.Sub(m.updatedAt) > age
}
