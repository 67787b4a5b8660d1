package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cepro/precooler/thermostat"
	timeutils "github.com/cepro/precooler/time_utils"
	"github.com/google/uuid"
)

type DeviceConfig struct {
	Host             string    `json:"host"`
	ID               uuid.UUID `json:"id"`
	PollIntervalSecs int       `json:"pollIntervalSecs"`
}

type MetersConfig struct {
	Acuvim2  map[string]Acuvim2MeterConfig `json:"acuvim2"`
	Emulated map[string]Acuvim2MeterConfig `json:"emulated"`
	Mock     map[string]MockMeterConfig    `json:"mock"`
}

type Acuvim2MeterConfig struct {
	DeviceConfig
	Pt1 float64 `json:"pt1"`
	Pt2 float64 `json:"pt2"`
	Ct1 float64 `json:"ct1"`
	Ct2 float64 `json:"ct2"`
}

type MockMeterConfig struct {
	DeviceConfig
	PowerWatts float64 `json:"powerWatts"`
}

type MQTTThermostatConfig struct {
	ID           uuid.UUID         `json:"id"`
	BrokerURL    string            `json:"brokerUrl"`
	ClientID     string            `json:"clientId"`
	Topics       thermostat.Topics `json:"topics"`
	StaleAgeSecs int               `json:"staleAgeSecs"`
}

type MockThermostatConfig struct {
	ID           uuid.UUID `json:"id"`
	Mode         string    `json:"mode"`
	CoolSetpoint float64   `json:"coolSetpoint"`
}

type ThermostatConfig struct {
	MQTT *MQTTThermostatConfig `json:"mqtt"`
	Mock *MockThermostatConfig `json:"mock"`
}

type SolarWindowConfig struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	LeadMins  int     `json:"leadMins"`
}

type FixedWindowConfig struct {
	Period  timeutils.DayedPeriod `json:"period"`
	ResetAt timeutils.ClockTime   `json:"resetAt"`
}

type WindowConfig struct {
	Timezone string             `json:"timezone"`
	Solar    *SolarWindowConfig `json:"solar"`
	Fixed    *FixedWindowConfig `json:"fixed"`
}

type SupabaseConfig struct {
	Url string `json:"url"`
	// key is specified via env var
	Schema string `json:"schema"`
}

type DataPlatformConfig struct {
	UploadIntervalSecs int            `json:"uploadIntervalSecs"`
	BufferFilename     string         `json:"bufferFilename"`
	Supabase           SupabaseConfig `json:"supabase"`
}

type ControllerConfig struct {
	ID                uuid.UUID `json:"id"`
	SiteMeterID       uuid.UUID `json:"siteMeter"`
	LoadMeterID       uuid.UUID `json:"loadMeter"` // optional secondary-load meter
	ThresholdHighKw   float64   `json:"thresholdHighKw"`
	ThresholdLowKw    float64   `json:"thresholdLowKw"`
	SetpointDelta     float64   `json:"setpointDelta"`
	Unit              string    `json:"unit"`
	ApplyInAuto       bool      `json:"applyInAuto"`
	InvertMeterSign   bool      `json:"invertMeterSign"`
	PollIntervalSecs  int       `json:"pollIntervalSecs"`
	MinimumDwellSecs  int       `json:"minimumDwellSecs"`
	MaxReadingAgeSecs int       `json:"maxReadingAgeSecs"`
}

type Config struct {
	Meters       MetersConfig       `json:"meters"`
	Thermostat   ThermostatConfig   `json:"thermostat"`
	Window       WindowConfig       `json:"window"`
	DataPlatform DataPlatformConfig `json:"dataPlatform"`
	Controller   ControllerConfig   `json:"controller"`
}

func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}
