package thermostat

import (
	"sync"
	"time"

	"github.com/cepro/precooler/telemetry"
	"github.com/google/uuid"
)

// Mock looks like a Client but holds its state in memory, for running the
// controller without a broker. Writes to the setpoint are reflected straight
// back as events, the way a real thermostat echoes its state topic.
type Mock struct {
	Events chan telemetry.ThermostatReading

	id uuid.UUID

	mu       sync.Mutex
	mode     telemetry.ThermostatMode
	setpoint float64
}

func NewMock(id uuid.UUID, mode telemetry.ThermostatMode, setpoint float64) *Mock {
	return &Mock{
		Events:   make(chan telemetry.ThermostatReading, 4),
		id:       id,
		mode:     mode,
		setpoint: setpoint,
	}
}

func (m *Mock) Mode() (telemetry.ThermostatMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, nil
}

func (m *Mock) CoolSetpoint() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setpoint, nil
}

func (m *Mock) SetCoolSetpoint(value float64) error {
	m.mu.Lock()
	m.setpoint = value
	reading := m.readingLocked()
	m.mu.Unlock()

	m.emit(reading)
	return nil
}

// SetByHand simulates a person adjusting the thermostat directly.
func (m *Mock) SetByHand(value float64) {
	m.mu.Lock()
	m.setpoint = value
	reading := m.readingLocked()
	m.mu.Unlock()

	m.emit(reading)
}

// SetMode simulates the thermostat being switched to a different mode.
func (m *Mock) SetMode(mode telemetry.ThermostatMode) {
	m.mu.Lock()
	m.mode = mode
	reading := m.readingLocked()
	m.mu.Unlock()

	m.emit(reading)
}

func (m *Mock) readingLocked() telemetry.ThermostatReading {
	return telemetry.ThermostatReading{
		ReadingMeta: telemetry.ReadingMeta{
			ID:       uuid.New(),
			DeviceID: m.id,
			Time:     time.Now(),
		},
		Mode:         m.mode,
		CoolSetpoint: m.setpoint,
	}
}

func (m *Mock) emit(reading telemetry.ThermostatReading) {
	select {
	case m.Events <- reading:
	default:
	}
}
