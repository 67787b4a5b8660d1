package controller

import (
	"testing"

	"github.com/cepro/precooler/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePower(t *testing.T) {
	assert.Equal(t, 800.0, effectivePower(800, 0, false))
	assert.Equal(t, 800.0, effectivePower(-800, 0, true))
	assert.Equal(t, 3300.0, effectivePower(800, 2500, false))
	assert.Equal(t, 3300.0, effectivePower(-800, 2500, true))
	assert.Equal(t, -1200.0, effectivePower(1200, 0, true))
}

func TestDecideAction(t *testing.T) {
	config := Config{
		ThresholdHighKw: 3.5,
		ThresholdLowKw:  0.1,
	}

	tests := []struct {
		name      string
		effective float64
		mode      telemetry.ThermostatMode
		lowered   bool
		expected  action
	}{
		{"below high, not lowered", 3300, telemetry.ThermostatModeCool, false, actionNone},
		{"above high, cool mode", 3700, telemetry.ThermostatModeCool, false, actionLower},
		{"exactly at high is not a crossing", 3500, telemetry.ThermostatModeCool, false, actionNone},
		{"above high but already lowered", 3700, telemetry.ThermostatModeCool, true, actionNone},
		{"above high, heat mode", 3700, telemetry.ThermostatModeHeat, false, actionNone},
		{"above high, off mode", 3700, telemetry.ThermostatModeOff, false, actionNone},
		{"above high, auto mode not enabled", 3700, telemetry.ThermostatModeAuto, false, actionNone},
		{"inside hysteresis band while lowered", 2550, telemetry.ThermostatModeCool, true, actionNone},
		{"below low while lowered", 50, telemetry.ThermostatModeCool, true, actionRestore},
		{"exactly at low is not a crossing", 100, telemetry.ThermostatModeCool, true, actionNone},
		{"below low but not lowered", 50, telemetry.ThermostatModeCool, false, actionNone},
		{"restore applies regardless of mode", 50, telemetry.ThermostatModeOff, true, actionRestore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideAction(tt.effective, tt.mode, tt.lowered, config)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("auto mode applicable when enabled", func(t *testing.T) {
		autoConfig := config
		autoConfig.ApplyInAuto = true
		assert.Equal(t, actionLower, decideAction(3700, telemetry.ThermostatModeAuto, false, autoConfig))
	})
}

func TestSnapSetpoint(t *testing.T) {
	assert.Equal(t, 23.5, snapSetpoint(23.5, UnitCelsius))
	assert.Equal(t, 23.5, snapSetpoint(23.3, UnitCelsius))
	assert.Equal(t, 23.0, snapSetpoint(23.2, UnitCelsius))
	assert.Equal(t, 24.0, snapSetpoint(23.8, UnitCelsius))
	assert.Equal(t, 74.0, snapSetpoint(74.2, UnitFahrenheit))
	assert.Equal(t, 75.0, snapSetpoint(74.5, UnitFahrenheit))
	assert.Equal(t, 73.0, snapSetpoint(73.4, UnitFahrenheit))
}

func TestConfigValidate(t *testing.T) {
	thermostat := newMockThermostat(telemetry.ThermostatModeCool, 25)

	valid := baseTestConfig(thermostat)
	assert.NoError(t, valid.Validate())

	t.Run("threshold margin violated", func(t *testing.T) {
		config := baseTestConfig(thermostat)
		config.ThresholdHighKw = 0.4
		config.ThresholdLowKw = 0.1
		err := config.Validate()
		assert.ErrorIs(t, err, ErrThresholdMargin)

		_, err = New(config)
		assert.ErrorIs(t, err, ErrThresholdMargin)
	})

	t.Run("margin is exactly satisfied", func(t *testing.T) {
		config := baseTestConfig(thermostat)
		config.ThresholdHighKw = 0.6
		config.ThresholdLowKw = 0.1
		assert.NoError(t, config.Validate())
	})

	t.Run("missing thermostat", func(t *testing.T) {
		config := baseTestConfig(nil)
		assert.Error(t, config.Validate())
	})

	t.Run("non-positive delta", func(t *testing.T) {
		config := baseTestConfig(thermostat)
		config.SetpointDelta = 0
		assert.Error(t, config.Validate())
	})

	t.Run("unknown unit", func(t *testing.T) {
		config := baseTestConfig(thermostat)
		config.Unit = "kelvin"
		assert.Error(t, config.Validate())
	})

	t.Run("non-positive poll interval", func(t *testing.T) {
		config := baseTestConfig(thermostat)
		config.PollInterval = 0
		assert.Error(t, config.Validate())
	})
}
