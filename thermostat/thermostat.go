// Package thermostat talks to the controlled thermostat over MQTT. The
// thermostat publishes its operating mode and cool setpoint on retained state
// topics, and accepts setpoint writes on a command topic.
package thermostat

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cepro/precooler/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// ErrStateUnknown is returned when no state report has been received (yet)
// for the requested value, or the last report is too old to trust.
var ErrStateUnknown = errors.New("thermostat state unknown")

// Topics names the MQTT topics the thermostat communicates on.
type Topics struct {
	ModeState       string `json:"modeState"`
	SetpointState   string `json:"setpointState"`
	SetpointCommand string `json:"setpointCommand"`
}

// Client is an MQTT-connected thermostat. Every received state change is
// published as a ThermostatReading on the `Events` channel, and the latest
// known state is served to the controller's synchronous reads.
type Client struct {
	Events chan telemetry.ThermostatReading

	id       uuid.UUID
	topics   Topics
	staleAge time.Duration
	client   mqtt.Client
	logger   *slog.Logger

	mu         sync.Mutex
	mode       telemetry.ThermostatMode
	modeAt     time.Time
	setpoint   float64
	setpointAt time.Time
}

func New(id uuid.UUID, brokerURL, clientID string, topics Topics, staleAge time.Duration) (*Client, error) {
	c := &Client{
		Events:   make(chan telemetry.ThermostatReading, 4),
		id:       id,
		topics:   topics,
		staleAge: staleAge,
		logger:   slog.Default().With("thermostat_id", id, "broker", brokerURL),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.onConnect)
	c.client = mqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to broker %s: timed out", brokerURL)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", brokerURL, token.Error())
	}

	return c, nil
}

// onConnect (re)subscribes to the state topics. Subscriptions do not survive
// a reconnect unless the broker holds a persistent session, so they are made
// here rather than once at startup.
func (c *Client) onConnect(client mqtt.Client) {
	c.logger.Info("Connected to MQTT broker")

	if token := client.Subscribe(c.topics.ModeState, 1, c.onModeMessage); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to mode state", "error", token.Error())
	}
	if token := client.Subscribe(c.topics.SetpointState, 1, c.onSetpointMessage); token.Wait() && token.Error() != nil {
		c.logger.Error("Failed to subscribe to setpoint state", "error", token.Error())
	}
}

func (c *Client) onModeMessage(client mqtt.Client, message mqtt.Message) {
	mode, ok := parseMode(string(message.Payload()))
	if !ok {
		c.logger.Warn("Ignoring unknown thermostat mode", "payload", string(message.Payload()))
		return
	}

	c.mu.Lock()
	c.mode = mode
	c.modeAt = time.Now()
	reading := c.readingLocked()
	c.mu.Unlock()

	c.emit(reading)
}

func (c *Client) onSetpointMessage(client mqtt.Client, message mqtt.Message) {
	value, err := strconv.ParseFloat(string(message.Payload()), 64)
	if err != nil {
		c.logger.Warn("Ignoring unparsable setpoint", "payload", string(message.Payload()))
		return
	}

	c.mu.Lock()
	c.setpoint = value
	c.setpointAt = time.Now()
	reading := c.readingLocked()
	c.mu.Unlock()

	c.emit(reading)
}

// readingLocked assembles a reading from the current state. Callers hold the
// mutex.
func (c *Client) readingLocked() telemetry.ThermostatReading {
	return telemetry.ThermostatReading{
		ReadingMeta: telemetry.ReadingMeta{
			ID:       uuid.New(),
			DeviceID: c.id,
			Time:     time.Now(),
		},
		Mode:         c.mode,
		CoolSetpoint: c.setpoint,
	}
}

// emit delivers an event without ever blocking the MQTT message pump.
func (c *Client) emit(reading telemetry.ThermostatReading) {
	select {
	case c.Events <- reading:
	default:
		c.logger.Warn("Dropped thermostat event, channel full")
	}
}

// Mode returns the last reported operating mode.
func (c *Client) Mode() (telemetry.ThermostatMode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modeAt.IsZero() || time.Since(c.modeAt) > c.staleAge {
		return "", fmt.Errorf("%w: mode last reported at %v", ErrStateUnknown, c.modeAt)
	}
	return c.mode, nil
}

// CoolSetpoint returns the last reported cool setpoint.
func (c *Client) CoolSetpoint() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setpointAt.IsZero() || time.Since(c.setpointAt) > c.staleAge {
		return 0, fmt.Errorf("%w: setpoint last reported at %v", ErrStateUnknown, c.setpointAt)
	}
	return c.setpoint, nil
}

// SetCoolSetpoint publishes a setpoint write to the command topic.
func (c *Client) SetCoolSetpoint(value float64) error {
	payload := strconv.FormatFloat(value, 'f', -1, 64)
	token := c.client.Publish(c.topics.SetpointCommand, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish setpoint: timed out")
	}
	if token.Error() != nil {
		return fmt.Errorf("publish setpoint: %w", token.Error())
	}
	return nil
}

// parseMode maps a state payload onto the closed mode enumeration.
func parseMode(payload string) (telemetry.ThermostatMode, bool) {
	switch telemetry.ThermostatMode(payload) {
	case telemetry.ThermostatModeCool:
		return telemetry.ThermostatModeCool, true
	case telemetry.ThermostatModeAuto:
		return telemetry.ThermostatModeAuto, true
	case telemetry.ThermostatModeHeat:
		return telemetry.ThermostatModeHeat, true
	case telemetry.ThermostatModeOff:
		return telemetry.ThermostatModeOff, true
	}
	return "", false
}
