package controller

import (
	"fmt"
	"math"
)

// TemperatureUnit enumerates the temperature units a thermostat can operate
// in. The unit determines the granularity that setpoints are snapped to.
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "celsius"
	UnitFahrenheit TemperatureUnit = "fahrenheit"
)

// Validate checks that the unit is one of the known values.
func (u TemperatureUnit) Validate() error {
	switch u {
	case UnitCelsius, UnitFahrenheit:
		return nil
	}
	return fmt.Errorf("unknown temperature unit: '%s'", u)
}

// Granularity returns the setpoint step size that thermostats accept in this
// unit: half degrees for celsius, whole degrees for fahrenheit.
func (u TemperatureUnit) Granularity() float64 {
	if u == UnitFahrenheit {
		return 1.0
	}
	return 0.5
}

// snapSetpoint rounds a setpoint to the nearest step the thermostat accepts.
// Every value the controller writes or compares goes through this, so that
// its own writes can later be matched by equality without floating point
// drift.
func snapSetpoint(value float64, unit TemperatureUnit) float64 {
	granularity := unit.Granularity()
	return math.Round(value/granularity) * granularity
}
