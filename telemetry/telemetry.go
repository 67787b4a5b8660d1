package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// ReadingMeta holds the fields common to every reading taken from a device.
type ReadingMeta struct {
	ID       uuid.UUID
	DeviceID uuid.UUID
	Time     time.Time
}

// MeterReading holds data pulled from a power meter. Power values are in
// watts, positive meaning import from the grid. Some meter installations
// report the opposite sign convention - the controller corrects for that via
// configuration rather than here.
type MeterReading struct {
	ReadingMeta
	Frequency        float64
	PowerTotalActive float64
	PowerPhAActive   float64
	PowerPhBActive   float64
	PowerPhCActive   float64
}

// ThermostatMode enumerates the operating modes of the controlled thermostat.
type ThermostatMode string

const (
	ThermostatModeCool ThermostatMode = "cool"
	ThermostatModeAuto ThermostatMode = "auto"
	ThermostatModeHeat ThermostatMode = "heat"
	ThermostatModeOff  ThermostatMode = "off"
)

// ThermostatReading holds the state reported by the thermostat. Setpoints are
// in the thermostat's native temperature unit.
type ThermostatReading struct {
	ReadingMeta
	Mode         ThermostatMode
	CoolSetpoint float64
}

// ActionKind enumerates the setpoint actions the controller can take.
type ActionKind string

const (
	ActionLower   ActionKind = "lower"
	ActionRestore ActionKind = "restore"
)

// SetpointAction records one accepted controller action against the
// thermostat, for the audit trail in the data platform.
type SetpointAction struct {
	ID           uuid.UUID
	Time         time.Time
	ControllerID uuid.UUID
	Kind         ActionKind
	FromSetpoint float64
	ToSetpoint   float64
}
