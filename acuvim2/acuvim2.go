// Package acuvim2 handles Modbus communications with the three phase
// Acuvim II power meters used at the site boundary and (optionally) on the
// secondary consumer's circuit.
package acuvim2

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cepro/precooler/modbusaccess"
	"github.com/cepro/precooler/telemetry"
	"github.com/google/uuid"
	"github.com/grid-x/modbus"
	"github.com/mitchellh/mapstructure"
)

// Meter polls an Acuvim II over Modbus TCP. Readings are taken every poll
// period and sent onto the `Telemetry` channel; transient poll failures are
// logged and retried at the next period.
type Meter struct {
	Telemetry chan telemetry.MeterReading

	id     uuid.UUID
	host   string
	pt1    float64 // installed potential transformer 1 rating
	pt2    float64 // installed potential transformer 2 rating
	ct1    float64 // installed current transformer 1 rating
	ct2    float64 // installed current transformer 2 rating
	client modbus.Client
	logger *slog.Logger
}

func New(id uuid.UUID, host string, pt1, pt2, ct1, ct2 float64) (*Meter, error) {
	handler := modbus.NewTCPClientHandler(host)
	handler.Timeout = 10 * time.Second
	handler.SlaveID = 0x01

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to meter %s: %w", host, err)
	}

	return &Meter{
		Telemetry: make(chan telemetry.MeterReading),
		id:        id,
		host:      host,
		pt1:       pt1,
		pt2:       pt2,
		ct1:       ct1,
		ct2:       ct2,
		client:    modbus.NewClient(handler),
		logger:    slog.Default().With("meter_id", id, "host", host),
	}, nil
}

// Run loops forever polling telemetry from the meter every `period`. Exits
// when the context is cancelled.
func (m *Meter) Run(ctx context.Context, period time.Duration) error {
	readingTicker := time.NewTicker(period)
	defer readingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-readingTicker.C:
			metrics, err := modbusaccess.PollBlocks(m.client, m, blocks)
			if err != nil {
				m.logger.Error("Failed to poll meter", "error", err)
				continue // try again next period
			}

			reading, err := m.metricsToReading(metrics, t)
			if err != nil {
				m.logger.Error("Failed to convert metrics", "error", err)
				continue
			}

			select {
			case m.Telemetry <- reading:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// metricsToReading converts the given map of polled metrics into a concrete
// `telemetry.MeterReading` instance.
func (m *Meter) metricsToReading(metrics map[string]interface{}, t time.Time) (telemetry.MeterReading, error) {
	reading := telemetry.MeterReading{
		ReadingMeta: telemetry.ReadingMeta{
			ID:       uuid.New(),
			DeviceID: m.id,
			Time:     t,
		},
	}

	err := mapstructure.Decode(metrics, &reading)
	if err != nil {
		return telemetry.MeterReading{}, fmt.Errorf("decode metric map: %w", err)
	}

	return reading, nil
}
