package acuvim2

import "github.com/cepro/precooler/modbusaccess"

// The Acuvim II transmits measurements scaled by the installed potential and
// current transformer ratios, so power values are scaled back up by
// (pt1/pt2)*(ct1/ct2) on receipt.

var blocks = []modbusaccess.RegisterBlock{
	{
		Name:         "Power",
		StartAddr:    12288,
		NumRegisters: 36,
		Registers: map[string]modbusaccess.Register{
			"Frequency": {
				StartAddr:   12288,
				DataType:    modbusaccess.FloatType,
				ScalingFunc: nil,
			},
			"PowerPhAActive": {
				StartAddr:   12316,
				DataType:    modbusaccess.FloatType,
				ScalingFunc: scalePower,
			},
			"PowerPhBActive": {
				StartAddr:   12318,
				DataType:    modbusaccess.FloatType,
				ScalingFunc: scalePower,
			},
			"PowerPhCActive": {
				StartAddr:   12320,
				DataType:    modbusaccess.FloatType,
				ScalingFunc: scalePower,
			},
			"PowerTotalActive": {
				StartAddr:   12322,
				DataType:    modbusaccess.FloatType,
				ScalingFunc: scalePower,
			},
		},
	},
}

// scalePower scales a raw power value by the meter's transformer ratios.
func scalePower(scaler modbusaccess.Scaler, val interface{}) interface{} {
	meter := scaler.(*Meter)
	return val.(float64) * (meter.pt1 / meter.pt2) * (meter.ct1 / meter.ct2)
}
