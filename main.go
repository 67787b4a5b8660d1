package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cepro/precooler/acuvim2"
	"github.com/cepro/precooler/config"
	"github.com/cepro/precooler/controller"
	dataplatform "github.com/cepro/precooler/data_platform"
	"github.com/cepro/precooler/supabase"
	"github.com/cepro/precooler/telemetry"
	"github.com/cepro/precooler/thermostat"
	"github.com/cepro/precooler/window"
	"github.com/google/uuid"
)

func main() {

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	slog.Info("Starting pre-cool controller...")

	configPath := "config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Read(configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		return
	}

	location, err := time.LoadLocation(cfg.Window.Timezone)
	if err != nil {
		slog.Error("Failed to load time location", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	supaClient := supabase.New(
		cfg.DataPlatform.Supabase.Url,
		os.Getenv("SUPABASE_ANON_KEY"),
		os.Getenv("SUPABASE_USER_KEY"),
		cfg.DataPlatform.Supabase.Schema,
	)
	dataPlatform, err := dataplatform.New(
		supaClient,
		cfg.DataPlatform.BufferFilename,
		time.Duration(cfg.DataPlatform.UploadIntervalSecs)*time.Second,
	)
	if err != nil {
		slog.Error("Failed to create data platform", "error", err)
		return
	}
	go dataPlatform.Run(ctx)

	thermo, thermostatEvents, err := newThermostat(cfg.Thermostat)
	if err != nil {
		slog.Error("Failed to create thermostat", "error", err)
		return
	}

	ctrl, err := controller.New(controller.Config{
		ControllerID:      cfg.Controller.ID,
		ThresholdHighKw:   cfg.Controller.ThresholdHighKw,
		ThresholdLowKw:    cfg.Controller.ThresholdLowKw,
		SetpointDelta:     cfg.Controller.SetpointDelta,
		Unit:              controller.TemperatureUnit(cfg.Controller.Unit),
		ApplyInAuto:       cfg.Controller.ApplyInAuto,
		InvertMeterSign:   cfg.Controller.InvertMeterSign,
		HasSecondaryMeter: cfg.Controller.LoadMeterID != uuid.Nil,
		PollInterval:      time.Duration(cfg.Controller.PollIntervalSecs) * time.Second,
		MinimumDwell:      time.Duration(cfg.Controller.MinimumDwellSecs) * time.Second,
		MaxReadingAge:     time.Duration(cfg.Controller.MaxReadingAgeSecs) * time.Second,
		Thermostat:        thermo,
		Actions:           dataPlatform.SetpointActions,
	})
	if err != nil {
		slog.Error("Failed to create controller", "error", err)
		return
	}

	pollTicker := time.NewTicker(time.Duration(cfg.Controller.PollIntervalSecs) * time.Second)
	go ctrl.Run(ctx, pollTicker.C)

	windowUpdates, err := runWindowProvider(ctx, cfg.Window, location)
	if err != nil {
		slog.Error("Failed to create window provider", "error", err)
		return
	}

	meterChans, err := runMeters(ctx, cfg.Meters)
	if err != nil {
		slog.Error("Failed to create meters", "error", err)
		return
	}

	// the meter readings, thermostat events and window updates are fanned out
	// to the controller and the data platform
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-thermostatEvents:
				dataPlatform.ThermostatReadings <- event
				ctrl.ThermostatEvents <- event
			case update := <-windowUpdates:
				ctrl.WindowUpdates <- update
			}
		}
	}()
	for _, telemetryChan := range meterChans {
		telemetryChan := telemetryChan
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case reading := <-telemetryChan:
					dataPlatform.MeterReadings <- reading
					switch reading.DeviceID {
					case cfg.Controller.SiteMeterID:
						ctrl.SiteMeterReadings <- reading
					case cfg.Controller.LoadMeterID:
						ctrl.LoadMeterReadings <- reading
					}
				}
			}
		}()
	}

	// wait for a ctrl-c interrupt before exiting
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	<-signalChan

	// cancel any open go-routines and give them up to 100ms to gracefully shutdown
	cancel()
	time.Sleep(time.Millisecond * 100)

	slog.Info("Exiting")
	os.Exit(0)
}

// newThermostat creates either the MQTT-connected thermostat or the mock,
// depending on which is configured.
func newThermostat(cfg config.ThermostatConfig) (controller.Thermostat, chan telemetry.ThermostatReading, error) {
	if cfg.MQTT != nil {
		client, err := thermostat.New(
			cfg.MQTT.ID,
			cfg.MQTT.BrokerURL,
			cfg.MQTT.ClientID,
			cfg.MQTT.Topics,
			time.Duration(cfg.MQTT.StaleAgeSecs)*time.Second,
		)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Events, nil
	}
	if cfg.Mock == nil {
		return nil, nil, errors.New("no thermostat configured")
	}
	mock := thermostat.NewMock(cfg.Mock.ID, telemetry.ThermostatMode(cfg.Mock.Mode), cfg.Mock.CoolSetpoint)
	return mock, mock.Events, nil
}

// runWindowProvider starts either the solar-anchored or the fixed-schedule
// window provider, depending on which is configured.
func runWindowProvider(ctx context.Context, cfg config.WindowConfig, location *time.Location) (chan window.Update, error) {
	if cfg.Solar != nil {
		provider := window.NewSolarProvider(
			cfg.Solar.Latitude,
			cfg.Solar.Longitude,
			time.Duration(cfg.Solar.LeadMins)*time.Minute,
			location,
		)
		go provider.Run(ctx)
		return provider.Updates, nil
	}

	if cfg.Fixed == nil {
		return nil, errors.New("no window provider configured")
	}
	period := cfg.Fixed.Period
	period.Start.Location = location
	period.End.Location = location
	resetAt := cfg.Fixed.ResetAt
	resetAt.Location = location
	if err := period.Validate(); err != nil {
		return nil, err
	}
	provider := window.NewFixedProvider(period, resetAt)
	go provider.Run(ctx)
	return provider.Updates, nil
}

// runMeters starts all of the configured meters and returns their telemetry
// channels. Emulated meters get a local modbus server stood up next to the
// polling client, so the full register path is exercised without hardware.
func runMeters(ctx context.Context, cfg config.MetersConfig) ([]chan telemetry.MeterReading, error) {
	var chans []chan telemetry.MeterReading

	for name, meterCfg := range cfg.Acuvim2 {
		meter, err := acuvim2.New(meterCfg.ID, meterCfg.Host, meterCfg.Pt1, meterCfg.Pt2, meterCfg.Ct1, meterCfg.Ct2)
		if err != nil {
			return nil, err
		}
		slog.Info("Created acuvim2 meter", "name", name, "host", meterCfg.Host)
		go meter.Run(ctx, time.Duration(meterCfg.PollIntervalSecs)*time.Second)
		chans = append(chans, meter.Telemetry)
	}

	for name, meterCfg := range cfg.Emulated {
		_, err := acuvim2.NewEmulated(meterCfg.Host, 0)
		if err != nil {
			return nil, err
		}
		meter, err := acuvim2.New(meterCfg.ID, meterCfg.Host, meterCfg.Pt1, meterCfg.Pt2, meterCfg.Ct1, meterCfg.Ct2)
		if err != nil {
			return nil, err
		}
		slog.Info("Created emulated acuvim2 meter", "name", name, "listen", meterCfg.Host)
		go meter.Run(ctx, time.Duration(meterCfg.PollIntervalSecs)*time.Second)
		chans = append(chans, meter.Telemetry)
	}

	for name, meterCfg := range cfg.Mock {
		meter := acuvim2.NewMock(meterCfg.ID, meterCfg.PowerWatts)
		slog.Info("Created mock meter", "name", name)
		go meter.Run(ctx, time.Duration(meterCfg.PollIntervalSecs)*time.Second)
		chans = append(chans, meter.Telemetry)
	}

	return chans, nil
}
