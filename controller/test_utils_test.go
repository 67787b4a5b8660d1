package controller

import (
	"sync"
	"time"

	"github.com/cepro/precooler/telemetry"
	"github.com/cepro/precooler/window"
)

// This file contains utilities to help with testing.

// mockThermostat is an in-memory Thermostat that records every write.
type mockThermostat struct {
	mu       sync.Mutex
	mode     telemetry.ThermostatMode
	setpoint float64

	modeErr  error
	readErr  error
	writeErr error

	writes  []float64
	writeCh chan float64 // optional, receives every accepted write
}

func newMockThermostat(mode telemetry.ThermostatMode, setpoint float64) *mockThermostat {
	return &mockThermostat{mode: mode, setpoint: setpoint}
}

func (m *mockThermostat) Mode() (telemetry.ThermostatMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modeErr != nil {
		return "", m.modeErr
	}
	return m.mode, nil
}

func (m *mockThermostat) CoolSetpoint() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.setpoint, nil
}

func (m *mockThermostat) SetCoolSetpoint(value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.setpoint = value
	m.writes = append(m.writes, value)
	if m.writeCh != nil {
		m.writeCh <- value
	}
	return nil
}

func (m *mockThermostat) setMode(mode telemetry.ThermostatMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// setByHand simulates a person adjusting the setpoint at the thermostat
// itself, without going through SetCoolSetpoint's write records.
func (m *mockThermostat) setByHand(value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setpoint = value
}

func (m *mockThermostat) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// baseTestConfig returns a controller configuration shared by most tests.
func baseTestConfig(thermostat Thermostat) Config {
	return Config{
		ThresholdHighKw:   3.5,
		ThresholdLowKw:    0.1,
		SetpointDelta:     2,
		Unit:              UnitCelsius,
		HasSecondaryMeter: true,
		PollInterval:      30 * time.Second,
		MinimumDwell:      0,
		MaxReadingAge:     time.Minute,
		Thermostat:        thermostat,
	}
}

// mustParseTime returns the time.Time associated with the given string or
// panics.
func mustParseTime(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		panic(err)
	}
	return t
}

// windowUpdateAround returns a window update whose window is already open at
// t and stays open for an hour.
func windowUpdateAround(t time.Time) window.Update {
	return window.Update{Time: t, OpensAt: t.Add(-time.Minute), ClosesAt: t.Add(time.Hour)}
}

// The synchronous test helpers below drive the controller's serialized entry
// points directly, without the Run goroutine, so scenarios play out in fully
// deterministic simulated time.

func (c *Controller) feedWindow(t, opensAt, closesAt time.Time) {
	c.handleWindowUpdate(window.Update{Time: t, OpensAt: opensAt, ClosesAt: closesAt})
}

func (c *Controller) feedSitePower(t time.Time, watts float64) {
	c.sitePower.setAt(watts, t)
	c.dispatch(t)
}

func (c *Controller) feedLoadPower(t time.Time, watts float64) {
	c.loadPower.setAt(watts, t)
	c.dispatch(t)
}

func (c *Controller) feedSetpointEvent(t time.Time, value float64) {
	c.handleThermostatEvent(telemetry.ThermostatReading{
		ReadingMeta:  telemetry.ReadingMeta{Time: t},
		Mode:         telemetry.ThermostatModeCool,
		CoolSetpoint: value,
	})
}
