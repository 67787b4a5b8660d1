package thermostat

import (
	"testing"

	"github.com/cepro/precooler/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, ok := parseMode("cool")
	assert.True(t, ok)
	assert.Equal(t, telemetry.ThermostatModeCool, mode)

	mode, ok = parseMode("auto")
	assert.True(t, ok)
	assert.Equal(t, telemetry.ThermostatModeAuto, mode)

	_, ok = parseMode("defrost")
	assert.False(t, ok)

	_, ok = parseMode("")
	assert.False(t, ok)
}

func TestMockEchoesWrites(t *testing.T) {
	mock := NewMock(uuid.New(), telemetry.ThermostatModeCool, 25)

	require.NoError(t, mock.SetCoolSetpoint(23))

	event := <-mock.Events
	assert.Equal(t, 23.0, event.CoolSetpoint)
	assert.Equal(t, telemetry.ThermostatModeCool, event.Mode)

	setpoint, err := mock.CoolSetpoint()
	require.NoError(t, err)
	assert.Equal(t, 23.0, setpoint)
}

func TestMockManualChange(t *testing.T) {
	mock := NewMock(uuid.New(), telemetry.ThermostatModeCool, 25)

	mock.SetByHand(21)
	event := <-mock.Events
	assert.Equal(t, 21.0, event.CoolSetpoint)

	mock.SetMode(telemetry.ThermostatModeOff)
	event = <-mock.Events
	assert.Equal(t, telemetry.ThermostatModeOff, event.Mode)
}
