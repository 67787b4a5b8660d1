package repository

import "github.com/cepro/precooler/telemetry"

// StoredMeterReading represents a meter reading that is persisted to the
// SQLite database, and includes a count of upload attempts.
type StoredMeterReading struct {
	telemetry.MeterReading `gorm:"embedded"`
	UploadAttemptCount     uint
}

// StoredThermostatReading represents a thermostat state report that is
// persisted to the SQLite database, and includes a count of upload attempts.
type StoredThermostatReading struct {
	telemetry.ThermostatReading `gorm:"embedded"`
	UploadAttemptCount          uint
}

// StoredSetpointAction represents a controller action that is persisted to
// the SQLite database, and includes a count of upload attempts.
type StoredSetpointAction struct {
	telemetry.SetpointAction `gorm:"embedded"`
	UploadAttemptCount       uint
}

func newStoredMeterReading(reading telemetry.MeterReading) StoredMeterReading {
	return StoredMeterReading{MeterReading: reading}
}

func newStoredThermostatReading(reading telemetry.ThermostatReading) StoredThermostatReading {
	return StoredThermostatReading{ThermostatReading: reading}
}

func newStoredSetpointAction(action telemetry.SetpointAction) StoredSetpointAction {
	return StoredSetpointAction{SetpointAction: action}
}
