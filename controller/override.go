package controller

import (
	"log/slog"

	"github.com/cepro/precooler/telemetry"
)

// handleThermostatEvent processes a pushed thermostat state report. A
// setpoint value the controller did not write itself means a person is
// adjusting the thermostat, and the controller backs off for the rest of the
// day. Anything else (our own writes echoed back, mode changes, repeated
// reports) triggers a normal re-evaluation.
func (c *Controller) handleThermostatEvent(event telemetry.ThermostatReading) {
	value := snapSetpoint(event.CoolSetpoint, c.config.Unit)

	changed := c.lastSeenSetpointValid && value != c.lastSeenSetpoint
	c.lastSeenSetpoint = value
	c.lastSeenSetpointValid = true

	if changed && !c.isOwnWrite(value) {
		c.haltForOverride(value)
		return
	}

	c.dispatch(event.Time)
}

// isOwnWrite returns true if the given (snapped) setpoint value is
// attributable to the controller's own last write: either the lowered value
// while we are lowered, or the baseline we restored to. Both sides of the
// comparison have been through the same snapping, so equality is exact.
func (c *Controller) isOwnWrite(value float64) bool {
	s := &c.state
	if s.lowered && value == s.appliedSetpoint {
		return true
	}
	if !s.lowered && s.baselineValid && value == s.baselineSetpoint {
		return true
	}
	return false
}

// haltForOverride suspends control until the next daily reset: the phase
// drops back to idle, all pending timers are cancelled, and no further
// automatic action will be taken regardless of subsequent readings. This
// fires even mid-debounce-wait. The last user-set value is authoritative for
// the rest of the day, so the lowered/baseline bookkeeping is deliberately
// left untouched - the window close-out sees the mismatch and does not
// clobber the user's value either.
func (c *Controller) haltForOverride(value float64) {
	s := &c.state
	slog.Warn("Manual setpoint change detected, suspending control until the next day",
		"value", value, "phase", s.phase)
	s.phase = phaseIdle
	s.overridden = true
	c.stopRetryTimer()
}
