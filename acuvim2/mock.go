package acuvim2

import (
	"context"
	"sync"
	"time"

	"github.com/cepro/precooler/telemetry"
	"github.com/google/uuid"
)

// Mock looks like a Meter but produces configurable fake data, for running
// the controller without hardware and for tests.
type Mock struct {
	Telemetry chan telemetry.MeterReading

	id uuid.UUID

	mu    sync.Mutex
	power float64
}

func NewMock(id uuid.UUID, power float64) *Mock {
	return &Mock{
		Telemetry: make(chan telemetry.MeterReading),
		id:        id,
		power:     power,
	}
}

// SetPower changes the total active power the mock reports.
func (m *Mock) SetPower(watts float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.power = watts
}

// Run loops forever emitting a reading every `period`. Exits when the
// context is cancelled.
func (m *Mock) Run(ctx context.Context, period time.Duration) error {
	readingTicker := time.NewTicker(period)
	defer readingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-readingTicker.C:
			m.mu.Lock()
			power := m.power
			m.mu.Unlock()

			reading := telemetry.MeterReading{
				ReadingMeta: telemetry.ReadingMeta{
					ID:       uuid.New(),
					DeviceID: m.id,
					Time:     t,
				},
				Frequency:        50.0,
				PowerTotalActive: power,
				PowerPhAActive:   power / 3,
				PowerPhBActive:   power / 3,
				PowerPhCActive:   power / 3,
			}

			select {
			case m.Telemetry <- reading:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
