package dataplatform

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/cepro/precooler/repository"
	"github.com/cepro/precooler/supabase"
	"github.com/cepro/precooler/telemetry"
)

// uploadChunkLimit defines how many data points we can upload in one supabase HTTP request
const uploadChunkLimit = 100

// DataPlatform handles the streaming of telemetry to Supabase.
// Put new meter readings, thermostat readings and setpoint actions onto the appropriate channels, they will be
// buffered on disk in a SQLite database before being uploaded to Supabase.
type DataPlatform struct {
	MeterReadings      chan telemetry.MeterReading
	ThermostatReadings chan telemetry.ThermostatReading
	SetpointActions    chan telemetry.SetpointAction

	repository     *repository.Repository
	supaClient     *supabase.Client
	uploadInterval time.Duration
}

func New(supaClient *supabase.Client, bufferRepositoryFilename string, uploadInterval time.Duration) (*DataPlatform, error) {

	repository, err := repository.New(bufferRepositoryFilename)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}

	return &DataPlatform{
		MeterReadings:      make(chan telemetry.MeterReading, 25), // a small buffer to allow SQLite to catch up in case the disk is slow
		ThermostatReadings: make(chan telemetry.ThermostatReading, 25),
		SetpointActions:    make(chan telemetry.SetpointAction, 25),
		repository:         repository,
		supaClient:         supaClient,
		uploadInterval:     uploadInterval,
	}, nil
}

// Run loops forever persisting incoming telemetry and periodically uploading it.
func (d *DataPlatform) Run(ctx context.Context) {

	uploadTicker := time.NewTicker(d.uploadInterval)
	defer uploadTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case reading := <-d.MeterReadings:
			err := d.repository.AddMeterReading(reading)
			if err != nil {
				slog.Error("failed to persist meter reading", "error", err)
			}
			slog.Debug("Stored meter reading")

		case reading := <-d.ThermostatReadings:
			err := d.repository.AddThermostatReading(reading)
			if err != nil {
				slog.Error("failed to persist thermostat reading", "error", err)
			}
			slog.Debug("Stored thermostat reading")

		case action := <-d.SetpointActions:
			err := d.repository.AddSetpointAction(action)
			if err != nil {
				slog.Error("failed to persist setpoint action", "error", err)
			}
			slog.Debug("Stored setpoint action")

		case <-uploadTicker.C:
			d.attemptUpload()
		}
	}
}

// attemptUpload attempts to upload the telemetry from the repository into Supabase.
// Fresh records that have never failed an upload are attempted first, then older records are retried.
func (d *DataPlatform) attemptUpload() {
	for _, fresh := range []bool{true, false} {
		d.uploadRecords(func() (interface{}, error) {
			return d.repository.GetMeterReadings(uploadChunkLimit, fresh)
		})
		d.uploadRecords(func() (interface{}, error) {
			return d.repository.GetThermostatReadings(uploadChunkLimit, fresh)
		})
		d.uploadRecords(func() (interface{}, error) {
			return d.repository.GetSetpointActions(uploadChunkLimit, fresh)
		})
	}
}

func (d *DataPlatform) uploadRecords(get func() (interface{}, error)) {
	records, err := get()
	if err != nil {
		slog.Error("failed to query buffered telemetry", "error", err)
		return
	}
	if reflect.ValueOf(records).Len() == 0 {
		return
	}
	err = d.handleRecords(records)
	if err != nil {
		slog.Error("failed to upload buffered telemetry", "error", err)
	}
}

// handleRecords attempts to upload the given records. If successful, it deletes the records from the database, if
// unsuccessful, it increments the 'upload attempt count' column and leaves the records in the database for another time.
func (d *DataPlatform) handleRecords(records interface{}) error {

	convertedRecords, tableName := convertForSupabase(records)

	uploadErr := d.supaClient.Insert(tableName, convertedRecords)
	if uploadErr != nil {
		uploadErr := fmt.Errorf("upload failed: %w", uploadErr)
		errInc := d.repository.IncrementUploadAttemptCount(records)
		if errInc != nil {
			return fmt.Errorf("%w: increment upload attempt count: %w", uploadErr, errInc)
		}
		return uploadErr
	}

	deleteErr := d.repository.DeleteReadings(records)
	if deleteErr != nil {
		return fmt.Errorf("delete records (%+v): %w", records, deleteErr)
	}

	slog.Info("Uploaded telemetry", "db_table", tableName, "db_records", reflect.ValueOf(records).Len())

	return nil
}
