package controller

import (
	"log/slog"
	"time"

	"github.com/cepro/precooler/telemetry"
)

// evaluate runs one decision step at instant t: classify the latest power
// observation against the thresholds, then apply the resulting action if the
// short-cycle guard allows it.
func (c *Controller) evaluate(t time.Time) {
	s := &c.state

	if c.sitePower.isOlderThan(c.config.MaxReadingAge, t) {
		slog.Warn("Site meter reading missing or stale, skipping evaluation",
			"updated_at", c.sitePower.updatedAt)
		return
	}

	secondaryLoad := 0.0
	if c.config.HasSecondaryMeter && !c.loadPower.isOlderThan(c.config.MaxReadingAge, t) {
		secondaryLoad = c.loadPower.value
	}

	mode, err := c.config.Thermostat.Mode()
	if err != nil {
		slog.Warn("Failed to read thermostat mode, skipping evaluation", "error", err)
		return
	}

	effective := effectivePower(c.sitePower.value, secondaryLoad, c.config.InvertMeterSign)
	act := decideAction(effective, mode, s.lowered, c.config)

	slog.Debug("Evaluated power observation",
		"effective_power", effective,
		"mode", mode,
		"lowered", s.lowered,
		"action", act,
	)

	if act == actionNone {
		// any previously deferred action is no longer wanted
		c.stopRetryTimer()
		return
	}

	// Short-cycle guard: enforce the minimum dwell between consecutive
	// actions. A denied action is retried by a one-shot wakeup as soon as the
	// dwell expires, rather than waiting for the next poll tick.
	if !s.lastActionAt.IsZero() {
		elapsed := t.Sub(s.lastActionAt)
		if elapsed < c.config.MinimumDwell {
			remaining := ceilToSecond(c.config.MinimumDwell - elapsed)
			c.scheduleRetry(t.Add(remaining), remaining)
			slog.Info("Action deferred by short-cycle protection",
				"action", act, "retry_at", s.retryAt)
			return
		}
	}

	switch act {
	case actionLower:
		c.lower(t, effective)
	case actionRestore:
		c.restore(t, effective)
	}
}

// lower captures the current setpoint as the baseline and writes the offset
// setpoint to the thermostat. Nothing is mutated unless the write succeeds.
func (c *Controller) lower(t time.Time, effective float64) {
	s := &c.state

	baseline, err := c.config.Thermostat.CoolSetpoint()
	if err != nil {
		slog.Warn("Failed to read cool setpoint, skipping evaluation", "error", err)
		return
	}
	baseline = snapSetpoint(baseline, c.config.Unit)
	target := snapSetpoint(baseline-c.config.SetpointDelta, c.config.Unit)

	if err := c.config.Thermostat.SetCoolSetpoint(target); err != nil {
		slog.Error("Failed to lower cool setpoint", "error", err, "target", target)
		return
	}

	s.lowered = true
	s.baselineSetpoint = baseline
	s.baselineValid = true
	s.appliedSetpoint = target
	s.lastActionAt = t
	c.stopRetryTimer()
	c.recordAction(t, telemetry.ActionLower, baseline, target)
	slog.Info("Lowered cool setpoint",
		"from", baseline, "to", target, "effective_power", effective)
}

// restore writes the baseline setpoint back to the thermostat. The baseline
// stays valid afterwards so the thermostat's echo of the write is not
// mistaken for a manual change.
func (c *Controller) restore(t time.Time, effective float64) {
	s := &c.state

	if err := c.config.Thermostat.SetCoolSetpoint(s.baselineSetpoint); err != nil {
		slog.Error("Failed to restore cool setpoint", "error", err, "target", s.baselineSetpoint)
		return
	}

	from := s.appliedSetpoint
	s.lowered = false
	s.appliedSetpoint = s.baselineSetpoint
	s.lastActionAt = t
	c.stopRetryTimer()
	c.recordAction(t, telemetry.ActionRestore, from, s.baselineSetpoint)
	slog.Info("Restored cool setpoint",
		"to", s.baselineSetpoint, "effective_power", effective)
}

// settle closes out the monitoring day once the window-close instant is
// reached. If the setpoint is still lowered and nobody has touched it, it is
// restored regardless of dwell; if the live value differs from what the
// controller wrote, an override already happened and the user's value is
// left alone.
func (c *Controller) settle(t time.Time) {
	s := &c.state
	s.phase = phaseSettled
	c.stopRetryTimer()
	slog.Info("Monitoring window closed", "lowered", s.lowered)

	if !s.lowered {
		return
	}

	live, err := c.config.Thermostat.CoolSetpoint()
	if err != nil {
		slog.Error("Failed to read cool setpoint at window close", "error", err)
		return
	}
	if snapSetpoint(live, c.config.Unit) != s.appliedSetpoint {
		slog.Warn("Setpoint was changed by hand during the window, leaving it alone",
			"live", live, "applied", s.appliedSetpoint)
		return
	}

	if err := c.config.Thermostat.SetCoolSetpoint(s.baselineSetpoint); err != nil {
		slog.Error("Failed to restore cool setpoint at window close", "error", err)
		return
	}
	from := s.appliedSetpoint
	s.lowered = false
	s.appliedSetpoint = s.baselineSetpoint
	s.lastActionAt = t
	c.recordAction(t, telemetry.ActionRestore, from, s.baselineSetpoint)
	slog.Info("Restored cool setpoint at window close", "to", s.baselineSetpoint)
}

// ceilToSecond rounds a duration up to a whole second.
func ceilToSecond(d time.Duration) time.Duration {
	if remainder := d % time.Second; remainder != 0 {
		d += time.Second - remainder
	}
	return d
}
