package acuvim2

import (
	"fmt"
	"math"
	"sync"

	"github.com/simonvetter/modbus"
)

// Emulated is a Modbus TCP server that impersonates an Acuvim II meter, so
// the full polling path can run against it without hardware. The reported
// power can be changed at runtime.
type Emulated struct {
	server *modbus.ModbusServer

	mu        sync.Mutex
	frequency float64
	power     float64 // total active power in watts, before transformer descaling
}

func NewEmulated(listenAddr string, power float64) (*Emulated, error) {
	emulated := &Emulated{
		frequency: 50.0,
		power:     power,
	}

	server, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        fmt.Sprintf("tcp://%s", listenAddr),
		MaxClients: 5,
	}, emulated)
	if err != nil {
		return nil, fmt.Errorf("create emulated meter server: %w", err)
	}
	emulated.server = server

	err = server.Start()
	if err != nil {
		return nil, fmt.Errorf("start emulated meter server: %w", err)
	}

	return emulated, nil
}

// SetPower changes the total active power the emulated meter reports.
func (e *Emulated) SetPower(watts float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.power = watts
}

// Stop shuts the server down.
func (e *Emulated) Stop() error {
	return e.server.Stop()
}

// registerValues renders the emulated measurements into the power block's
// register layout.
func (e *Emulated) registerValues() map[uint16]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return map[uint16]float64{
		12288: e.frequency,
		12316: e.power / 3,
		12318: e.power / 3,
		12320: e.power / 3,
		12322: e.power,
	}
}

// HandleHoldingRegisters serves reads of the power block. All the served
// registers are 32 bit floats spanning two modbus registers each.
func (e *Emulated) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	if req.IsWrite {
		return nil, modbus.ErrIllegalFunction
	}

	values := e.registerValues()

	res := make([]uint16, req.Quantity)
	for i := range res {
		addr := req.Addr + uint16(i)

		// locate the float that starts at this address or the one before it
		if value, ok := values[addr]; ok {
			res[i] = uint16(math.Float32bits(float32(value)) >> 16)
		} else if value, ok := values[addr-1]; ok {
			res[i] = uint16(math.Float32bits(float32(value)) & 0xffff)
		}
	}

	return res, nil
}

func (e *Emulated) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

func (e *Emulated) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

func (e *Emulated) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	return nil, modbus.ErrIllegalFunction
}
