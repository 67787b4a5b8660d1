package controller

import (
	"context"
	"testing"
	"time"

	"github.com/cepro/precooler/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForWrite blocks until the mock thermostat accepts a write, or fails
// the test after a timeout.
func waitForWrite(t *testing.T, writes <-chan float64, timeout time.Duration) float64 {
	t.Helper()
	select {
	case value := <-writes:
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for a setpoint write", timeout)
		return 0
	}
}

// TestRunLoop exercises the full Run goroutine with real channels and real
// timers: readings flow in, a lower happens, a dwell-deferred restore is
// retried by the wakeup timer rather than a poll tick.
func TestRunLoop(t *testing.T) {
	writes := make(chan float64, 4)
	thermostat := newMockThermostat(telemetry.ThermostatModeCool, 25)
	thermostat.writeCh = writes

	actions := make(chan telemetry.SetpointAction, 4)
	config := baseTestConfig(thermostat)
	config.ControllerID = uuid.New()
	config.MinimumDwell = 300 * time.Millisecond
	config.Actions = actions
	ctrl, err := New(config)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := make(chan time.Time)
	go ctrl.Run(ctx, ticks)

	now := time.Now()
	ctrl.WindowUpdates <- windowUpdateAround(now)

	// Surplus appears: the setpoint is lowered.
	ctrl.SiteMeterReadings <- telemetry.MeterReading{
		ReadingMeta:      telemetry.ReadingMeta{ID: uuid.New(), Time: time.Now()},
		PowerTotalActive: 4000,
	}
	assert.Equal(t, 23.0, waitForWrite(t, writes, time.Second))

	action := <-actions
	assert.Equal(t, telemetry.ActionLower, action.Kind)
	assert.Equal(t, 25.0, action.FromSetpoint)
	assert.Equal(t, 23.0, action.ToSetpoint)

	// Surplus disappears inside the dwell: the restore is deferred, then
	// executed by the wakeup timer without any further input.
	ctrl.SiteMeterReadings <- telemetry.MeterReading{
		ReadingMeta:      telemetry.ReadingMeta{ID: uuid.New(), Time: time.Now()},
		PowerTotalActive: 50,
	}
	assert.Equal(t, 25.0, waitForWrite(t, writes, 3*time.Second))

	action = <-actions
	assert.Equal(t, telemetry.ActionRestore, action.Kind)
}

// TestRunLoopPollTick checks that the periodic tick drives evaluations of
// standing conditions, not just pushed readings.
func TestRunLoopPollTick(t *testing.T) {
	writes := make(chan float64, 4)
	thermostat := newMockThermostat(telemetry.ThermostatModeOff, 25)
	thermostat.writeCh = writes

	ctrl, err := New(baseTestConfig(thermostat))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := make(chan time.Time)
	go ctrl.Run(ctx, ticks)

	ctrl.WindowUpdates <- windowUpdateAround(time.Now())

	// Surplus with the thermostat off: no action.
	ctrl.SiteMeterReadings <- telemetry.MeterReading{
		ReadingMeta:      telemetry.ReadingMeta{ID: uuid.New(), Time: time.Now()},
		PowerTotalActive: 4000,
	}

	// The thermostat is switched to cool out-of-band (no pushed event): the
	// next poll tick picks up the standing surplus.
	thermostat.setMode(telemetry.ThermostatModeCool)
	ticks <- time.Now()
	assert.Equal(t, 23.0, waitForWrite(t, writes, time.Second))
}
