package repository

import (
	"fmt"

	"github.com/cepro/precooler/telemetry"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Repository stores telemetry to the local file system (sqlite) before it is uploaded to Supabase.
type Repository struct {
	db *gorm.DB
}

func New(path string) (*Repository, error) {

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	err = db.AutoMigrate(&StoredMeterReading{}, &StoredThermostatReading{}, &StoredSetpointAction{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

func (r *Repository) AddMeterReading(reading telemetry.MeterReading) error {
	result := r.db.Create(newStoredMeterReading(reading))
	return result.Error
}

func (r *Repository) AddThermostatReading(reading telemetry.ThermostatReading) error {
	result := r.db.Create(newStoredThermostatReading(reading))
	return result.Error
}

func (r *Repository) AddSetpointAction(action telemetry.SetpointAction) error {
	result := r.db.Create(newStoredSetpointAction(action))
	return result.Error
}

func (r *Repository) DeleteReadings(readings interface{}) error {
	result := r.db.Delete(&readings)
	return result.Error
}

func (r *Repository) GetMeterReadings(limit int, fresh bool) ([]StoredMeterReading, error) {
	var readings []StoredMeterReading

	result := retrievalQuery(r.db, limit, fresh).Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (r *Repository) GetThermostatReadings(limit int, fresh bool) ([]StoredThermostatReading, error) {
	var readings []StoredThermostatReading

	result := retrievalQuery(r.db, limit, fresh).Find(&readings)
	if result.Error != nil {
		return nil, result.Error
	}
	return readings, nil
}

func (r *Repository) GetSetpointActions(limit int, fresh bool) ([]StoredSetpointAction, error) {
	var actions []StoredSetpointAction

	result := retrievalQuery(r.db, limit, fresh).Find(&actions)
	if result.Error != nil {
		return nil, result.Error
	}
	return actions, nil
}

func (r *Repository) IncrementUploadAttemptCount(readings interface{}) error {
	result := r.db.Model(readings).UpdateColumn("upload_attempt_count", gorm.Expr("upload_attempt_count + ?", 1))
	return result.Error
}

// retrievalQuery orders records so that fresh data is uploaded before older failed records are retried.
func retrievalQuery(db *gorm.DB, limit int, fresh bool) *gorm.DB {
	query := db.Limit(limit).Order("upload_attempt_count asc, time desc")
	if fresh {
		query = query.Where("upload_attempt_count = ?", 0)
	} else {
		query = query.Where("upload_attempt_count > ?", 0)
		// TODO: do we want to give up after a certain amount of attempts?
	}
	return query
}
