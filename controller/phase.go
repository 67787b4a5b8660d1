package controller

import "time"

// phase indicates where the controller is in its daily lifecycle.
type phase int64

const (
	phaseIdle       phase = iota // phaseIdle indicates the monitoring window has not opened yet (or the day was abandoned after an override)
	phaseMonitoring              // phaseMonitoring indicates the window is open and readings are being evaluated
	phaseSettled                 // phaseSettled indicates the window has closed and any pending restore has been resolved
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseMonitoring:
		return "monitoring"
	case phaseSettled:
		return "settled"
	}
	return "unknown"
}

// dayState holds all of the mutable controller state for one monitoring day.
// A fresh value is installed at every daily reset - nothing carries over
// between days except the configuration.
type dayState struct {
	phase      phase
	overridden bool // set when a manual setpoint change has been detected, suspending control for the rest of the day

	lowered          bool    // true iff the controller believes the setpoint is currently offset
	baselineSetpoint float64 // the setpoint captured immediately before the most recent lowering, snapped to the unit granularity
	baselineValid    bool
	appliedSetpoint  float64 // the exact value last written to the thermostat

	windowOpenAt  time.Time
	windowCloseAt time.Time
	windowValid   bool

	lastActionAt time.Time // instant of the last accepted lower/restore, zero initially
	retryAt      time.Time // instant at which a dwell-deferred action will be retried, zero when none is pending
}
