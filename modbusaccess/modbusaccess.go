// Package modbusaccess maps named metrics onto the modbus register layout of
// a device, so device packages can poll whole register blocks and pick out
// the values they care about.
package modbusaccess

import (
	"encoding/binary"
	"math"
)

// Type represents the different types of data that can be queried over modbus.
type Type struct {
	name          string                   // the name of the data type
	dataLength    uint16                   // the number of underlying bytes to represent the data type
	fromBytesFunc func([]byte) interface{} // function to convert the bytes to the concrete data type
}

// FloatType represents the 32 bit float data type on Modbus.
var FloatType = Type{
	name:       "float",
	dataLength: 4,
	fromBytesFunc: func(bytes []byte) interface{} {
		valUint32 := binary.BigEndian.Uint32(bytes)
		valFloat32 := math.Float32frombits(valUint32)
		return float64(valFloat32)
	},
}

// Uint16Type represents the 16 bit unsigned integer data type on Modbus.
var Uint16Type = Type{
	name:       "uint16",
	dataLength: 2,
	fromBytesFunc: func(bytes []byte) interface{} {
		return binary.BigEndian.Uint16(bytes)
	},
}

// Scaler can be any object used to help scale modbus values. Trivial scaling
// (e.g. 'divide by 1000') doesn't need it, but scaling by device state (e.g.
// 'the configured current transformer ratios') does.
type Scaler interface{}

// valueScalingFunc is a prototype for a function that scales a modbus value.
type valueScalingFunc func(Scaler, interface{}) interface{}

// Register holds a value on the modbus slave at the given address.
type Register struct {
	StartAddr   uint16
	DataType    Type
	ScalingFunc valueScalingFunc // scales the received value to its 'true' value (transmitting scaled values is common in Modbus)
}

// RegisterBlock represents a contiguous block of modbus registers that are
// read in one chunk.
type RegisterBlock struct {
	Name         string              // name of the block used for context/logging
	StartAddr    uint16              // the first register address of the block
	NumRegisters uint16              // the number of registers in this block (each register is two bytes)
	Registers    map[string]Register // details of all the registers of interest in this block, keyed by unique name
}
