package dataplatform

import (
	"time"

	"github.com/cepro/precooler/repository"
	"github.com/google/uuid"
)

// supabaseMeterReading holds the json encoding schema for a meter reading in supabase.
type supabaseMeterReading struct {
	ID               uuid.UUID `json:"id"`
	Time             time.Time `json:"time"`
	MeterID          uuid.UUID `json:"meter_id"`
	Frequency        float64   `json:"frequency"`
	PowerTotalActive float64   `json:"power_total_active"`
	PowerPhAActive   float64   `json:"power_ph_a_active"`
	PowerPhBActive   float64   `json:"power_ph_b_active"`
	PowerPhCActive   float64   `json:"power_ph_c_active"`
}

// supabaseThermostatReading holds the json encoding schema for a thermostat state report in supabase.
type supabaseThermostatReading struct {
	ID           uuid.UUID `json:"id"`
	Time         time.Time `json:"time"`
	ThermostatID uuid.UUID `json:"thermostat_id"`
	Mode         string    `json:"mode"`
	CoolSetpoint float64   `json:"cool_setpoint"`
}

// supabaseSetpointAction holds the json encoding schema for a controller action in supabase.
type supabaseSetpointAction struct {
	ID           uuid.UUID `json:"id"`
	Time         time.Time `json:"time"`
	ControllerID uuid.UUID `json:"controller_id"`
	Kind         string    `json:"kind"`
	FromSetpoint float64   `json:"from_setpoint"`
	ToSetpoint   float64   `json:"to_setpoint"`
}

func convertMeterReadings(readings []repository.StoredMeterReading) []supabaseMeterReading {
	var supabaseReadings []supabaseMeterReading
	for _, reading := range readings {
		supabaseReadings = append(supabaseReadings, supabaseMeterReading{
			ID:               reading.ID,
			Time:             reading.Time,
			MeterID:          reading.DeviceID,
			Frequency:        reading.Frequency,
			PowerTotalActive: reading.PowerTotalActive,
			PowerPhAActive:   reading.PowerPhAActive,
			PowerPhBActive:   reading.PowerPhBActive,
			PowerPhCActive:   reading.PowerPhCActive,
		})
	}
	return supabaseReadings
}

func convertThermostatReadings(readings []repository.StoredThermostatReading) []supabaseThermostatReading {
	var supabaseReadings []supabaseThermostatReading
	for _, reading := range readings {
		supabaseReadings = append(supabaseReadings, supabaseThermostatReading{
			ID:           reading.ID,
			Time:         reading.Time,
			ThermostatID: reading.DeviceID,
			Mode:         string(reading.Mode),
			CoolSetpoint: reading.CoolSetpoint,
		})
	}
	return supabaseReadings
}

func convertSetpointActions(actions []repository.StoredSetpointAction) []supabaseSetpointAction {
	var supabaseActions []supabaseSetpointAction
	for _, action := range actions {
		supabaseActions = append(supabaseActions, supabaseSetpointAction{
			ID:           action.SetpointAction.ID,
			Time:         action.SetpointAction.Time,
			ControllerID: action.ControllerID,
			Kind:         string(action.Kind),
			FromSetpoint: action.FromSetpoint,
			ToSetpoint:   action.ToSetpoint,
		})
	}
	return supabaseActions
}

// convertForSupabase converts a slice of stored records into the appropriate
// supabase row type and names the destination table.
func convertForSupabase(records interface{}) (interface{}, string) {
	switch typed := records.(type) {
	case []repository.StoredMeterReading:
		return convertMeterReadings(typed), "meter_readings"
	case []repository.StoredThermostatReading:
		return convertThermostatReadings(typed), "thermostat_readings"
	case []repository.StoredSetpointAction:
		return convertSetpointActions(typed), "setpoint_actions"
	}
	return nil, ""
}
