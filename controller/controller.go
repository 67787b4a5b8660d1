package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cepro/precooler/telemetry"
	"github.com/cepro/precooler/window"
	"github.com/google/uuid"
)

// ThresholdMarginKw is the minimum separation between the high and low power
// thresholds, in kilowatts. Configurations that violate it are rejected
// before activation, because with the thresholds too close together the
// hysteresis band cannot do its anti-chatter job.
const ThresholdMarginKw = 0.5

// ErrThresholdMargin is returned by Config.Validate when the high and low
// thresholds are closer together than ThresholdMarginKw.
var ErrThresholdMargin = errors.New("power thresholds too close together")

// Thermostat is the controlled device. Reads and writes are external calls
// with unspecified latency, and any of them can fail transiently - the
// controller treats a failure as a no-op for that evaluation.
type Thermostat interface {
	Mode() (telemetry.ThermostatMode, error)
	CoolSetpoint() (float64, error)
	SetCoolSetpoint(value float64) error
}

// Config holds the controller configuration. It is immutable for the
// lifetime of the controller.
type Config struct {
	ControllerID uuid.UUID

	ThresholdHighKw float64 // export power above which the setpoint is lowered, kW
	ThresholdLowKw  float64 // export power below which the setpoint is restored, kW
	SetpointDelta   float64 // how far below the baseline to move the cool setpoint, in thermostat units
	Unit            TemperatureUnit
	ApplyInAuto     bool // also act when the thermostat is in auto mode, not just cool
	InvertMeterSign bool // set when the site meter reports export as negative

	HasSecondaryMeter bool // a secondary-load meter is fitted, its reading is added back into the effective power

	PollInterval  time.Duration // cadence of periodic evaluations while monitoring
	MinimumDwell  time.Duration // minimum time between consecutive setpoint actions (short-cycle protection)
	MaxReadingAge time.Duration // meter readings older than this are not acted upon

	Thermostat Thermostat

	// Actions receives a record of every accepted setpoint action. Optional;
	// sends never block the control loop.
	Actions chan<- telemetry.SetpointAction
}

// Validate checks the configuration before activation.
func (c Config) Validate() error {
	if c.Thermostat == nil {
		return errors.New("thermostat is required")
	}
	if c.ThresholdHighKw-c.ThresholdLowKw < ThresholdMarginKw {
		return fmt.Errorf("%w: high %.2fkW, low %.2fkW, margin %.2fkW required",
			ErrThresholdMargin, c.ThresholdHighKw, c.ThresholdLowKw, ThresholdMarginKw)
	}
	if c.SetpointDelta <= 0 {
		return fmt.Errorf("setpoint delta must be positive, got %.2f", c.SetpointDelta)
	}
	if err := c.Unit.Validate(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.MinimumDwell < 0 {
		return fmt.Errorf("minimum dwell must not be negative, got %v", c.MinimumDwell)
	}
	if c.MaxReadingAge <= 0 {
		return fmt.Errorf("max reading age must be positive, got %v", c.MaxReadingAge)
	}
	return nil
}

// Controller opportunistically shifts cooling load into the daily window of
// surplus solar generation. It watches the site export power and, during the
// monitoring window, lowers the thermostat's cool setpoint while the export
// stays above the high threshold, restoring it once the surplus disappears or
// the window closes. A manual change to the setpoint suspends control until
// the next day.
//
// Put new meter readings, thermostat events and window updates onto the
// appropriate channels. All state is owned by the single Run goroutine, so
// evaluations, deferred retries and override detection never interleave.
type Controller struct {
	SiteMeterReadings chan telemetry.MeterReading
	LoadMeterReadings chan telemetry.MeterReading
	ThermostatEvents  chan telemetry.ThermostatReading
	WindowUpdates     chan window.Update

	config Config

	state     dayState
	sitePower timedMetric
	loadPower timedMetric

	// lastSeenSetpoint tracks the last setpoint observed from the thermostat
	// (snapped), so that repeated state reports are not mistaken for changes.
	lastSeenSetpoint      float64
	lastSeenSetpointValid bool

	wake       chan time.Time // delivers deferred-retry wakeups into the Run loop
	retryTimer *time.Timer
	now        func() time.Time
}

// New creates a Controller with the given config, or fails if the config is
// invalid.
func New(config Config) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate controller config: %w", err)
	}
	return &Controller{
		SiteMeterReadings: make(chan telemetry.MeterReading),
		LoadMeterReadings: make(chan telemetry.MeterReading),
		ThermostatEvents:  make(chan telemetry.ThermostatReading),
		WindowUpdates:     make(chan window.Update, 1),
		config:            config,
		wake:              make(chan time.Time, 1),
		now:               time.Now,
	}, nil
}

// Run loops until the context is cancelled, evaluating the decision logic on
// every tick, reading, thermostat event and deferred-retry wakeup. The tick
// channel is supplied by the caller (a time.Ticker at the configured poll
// interval in production), which also makes simulated-time testing possible.
func (c *Controller) Run(ctx context.Context, ticks <-chan time.Time) {
	defer c.stopRetryTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticks:
			c.dispatch(t)
		case t := <-c.wake:
			c.dispatch(t)
		case reading := <-c.SiteMeterReadings:
			c.sitePower.setAt(reading.PowerTotalActive, reading.Time)
			c.dispatch(reading.Time)
		case reading := <-c.LoadMeterReadings:
			c.loadPower.setAt(reading.PowerTotalActive, reading.Time)
			c.dispatch(reading.Time)
		case event := <-c.ThermostatEvents:
			c.handleThermostatEvent(event)
		case update := <-c.WindowUpdates:
			c.handleWindowUpdate(update)
		}
	}
}

// handleWindowUpdate installs a fresh day of controller state. This is the
// daily reset: everything except configuration is discarded, including any
// override suspension from the previous day.
func (c *Controller) handleWindowUpdate(update window.Update) {
	c.stopRetryTimer()
	c.state = dayState{
		phase:         phaseIdle,
		windowOpenAt:  update.OpensAt,
		windowCloseAt: update.ClosesAt,
		windowValid:   update.HasWindow(),
	}

	if !c.state.windowValid {
		slog.Info("No monitoring window today")
		return
	}
	slog.Info("New monitoring day",
		"window_opens", update.OpensAt, "window_closes", update.ClosesAt)

	// A late activation (window already open) must start monitoring
	// immediately rather than never.
	c.dispatch(update.Time)
}

// dispatch drives the daily phase transitions for the instant t, and runs an
// evaluation when the window is open. All entry points funnel through here.
func (c *Controller) dispatch(t time.Time) {
	s := &c.state
	if !s.windowValid || s.overridden {
		return
	}

	if s.phase == phaseIdle && !t.Before(s.windowOpenAt) && t.Before(s.windowCloseAt) {
		s.phase = phaseMonitoring
		slog.Info("Monitoring window open", "closes_at", s.windowCloseAt)
	}

	if s.phase == phaseMonitoring {
		if !t.Before(s.windowCloseAt) {
			c.settle(t)
			return
		}
		c.evaluate(t)
	}
}

// scheduleRetry arms the single deferred-retry timer to wake the Run loop at
// the given instant. Any previously scheduled retry is replaced.
func (c *Controller) scheduleRetry(at time.Time, delay time.Duration) {
	c.stopRetryTimer()
	c.state.retryAt = at
	c.retryTimer = time.AfterFunc(delay, func() {
		select {
		case c.wake <- c.now():
		default:
		}
	})
}

// stopRetryTimer cancels any pending deferred retry. Called whenever the
// phase leaves monitoring, so an abandoned day has no outstanding timers.
func (c *Controller) stopRetryTimer() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.state.retryAt = time.Time{}
}

// recordAction publishes an audit record for an accepted setpoint action
// without ever blocking the control loop.
func (c *Controller) recordAction(t time.Time, kind telemetry.ActionKind, from, to float64) {
	if c.config.Actions == nil {
		return
	}
	action := telemetry.SetpointAction{
		ID:           uuid.New(),
		Time:         t,
		ControllerID: c.config.ControllerID,
		Kind:         kind,
		FromSetpoint: from,
		ToSetpoint:   to,
	}
	select {
	case c.config.Actions <- action:
	default:
		slog.Warn("Dropped setpoint action record, channel full", "kind", kind)
	}
}
