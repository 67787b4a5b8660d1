package controller

import (
	"github.com/cepro/precooler/telemetry"
)

// action is the outcome of one decision step.
type action int64

const (
	actionNone action = iota
	actionLower
	actionRestore
)

func (a action) String() string {
	switch a {
	case actionLower:
		return "lower"
	case actionRestore:
		return "restore"
	}
	return "none"
}

// effectivePower returns the sign-corrected, load-adjusted export power in
// watts. Raw meters at some sites report export as negative, which `invert`
// corrects for. The secondary consumer's own load is added back so the value
// estimates "export if that consumer were off" - otherwise the act of cooling
// would eat the surplus that justified it.
func effectivePower(rawPower, secondaryLoad float64, invert bool) float64 {
	if invert {
		rawPower = -rawPower
	}
	return rawPower + secondaryLoad
}

// modeApplicable returns true if the controller is allowed to act in the
// given thermostat mode. Cool is always applicable, auto only when explicitly
// enabled, anything else never.
func modeApplicable(mode telemetry.ThermostatMode, applyInAuto bool) bool {
	switch mode {
	case telemetry.ThermostatModeCool:
		return true
	case telemetry.ThermostatModeAuto:
		return applyInAuto
	}
	return false
}

// decideAction maps one power observation onto a setpoint action given the
// current controller state. The high and low thresholds differ by at least
// the configured margin, so an oscillating reading between them cannot flip
// the decision on every evaluation - this hysteresis is the first line of
// anti-chatter defence, independent of the short-cycle guard.
func decideAction(effective float64, mode telemetry.ThermostatMode, lowered bool, config Config) action {
	highWatts := config.ThresholdHighKw * 1000
	lowWatts := config.ThresholdLowKw * 1000

	switch {
	case !lowered && effective > highWatts && modeApplicable(mode, config.ApplyInAuto):
		return actionLower
	case lowered && effective < lowWatts:
		return actionRestore
	}
	return actionNone
}
