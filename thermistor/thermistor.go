// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermistor converts raw ADC counts from an NTC thermistor
// voltage divider into calibrated temperatures.
//
// The thermistor sits on the low side of a divider with a fixed
// series resistor, so the count maps to a resistance, and the
// resistance maps to an absolute temperature through the
// Steinhart-Hart equation
//
//	1/T = A + B*ln(R) + C*ln(R)^3
//
// with per-part calibration coefficients.
package thermistor

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// Opts holds the divider configuration and calibration coefficients.
type Opts struct {
	// SeriesResistor is the fixed divider resistor.
	SeriesResistor physic.ElectricResistance
	// ADCMax is the full-scale ADC count. 1023 for the 10-bit
	// converter in the reference build.
	ADCMax int
	// A, B, C are the Steinhart-Hart coefficients.
	A, B, C float64
}

// DefaultOpts holds the configuration for the reference build: a
// 10kΩ series resistor, a 10-bit ADC and the textbook coefficients
// for a 10kΩ NTC bead.
var DefaultOpts = Opts{
	SeriesResistor: 10 * physic.KiloOhm,
	ADCMax:         1023,
	A:              1.009249522e-03,
	B:              2.378405444e-04,
	C:              2.019202697e-07,
}

// Reading is the conversion result for one raw count. Temperature is
// the canonical value; Fahrenheit is derived for display only.
type Reading struct {
	Raw         int
	Resistance  physic.ElectricResistance
	Temperature physic.Temperature
}

// Fahrenheit returns the display value of the reading.
func (r Reading) Fahrenheit() float64 {
	return r.Temperature.Celsius()*9/5 + 32
}

func (r Reading) String() string {
	return fmt.Sprintf("%s (%s, raw %d)", r.Temperature, r.Resistance, r.Raw)
}

// Converter converts raw counts. It is stateless and safe for
// concurrent use.
type Converter struct {
	opts Opts
}

// New returns a Converter. The Opts can be nil, in which case
// DefaultOpts is used.
func New(opts *Opts) (*Converter, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.SeriesResistor <= 0 {
		return nil, fmt.Errorf("thermistor: invalid series resistor %s", opts.SeriesResistor)
	}
	if opts.ADCMax <= 1 {
		return nil, fmt.Errorf("thermistor: invalid full-scale count %d", opts.ADCMax)
	}
	return &Converter{opts: *opts}, nil
}

// Convert maps one raw ADC count to a Reading.
//
// Counts pinned to either rail fail with *RangeError instead of
// dividing by zero or taking ln(0): a zero count means the divider
// sees infinite resistance (sensor disconnected), a full-scale count
// means zero resistance (short circuit). Callers surface these as an
// unreadable-sensor condition; they are not programming errors.
func (c *Converter) Convert(raw int) (Reading, error) {
	if raw <= 0 {
		return Reading{}, &RangeError{Raw: raw, Rail: RailOpen}
	}
	if raw >= c.opts.ADCMax {
		return Reading{}, &RangeError{Raw: raw, Rail: RailShort}
	}
	series := float64(c.opts.SeriesResistor) / float64(physic.Ohm)
	ohms := series * (float64(c.opts.ADCMax)/float64(raw) - 1)
	lnR := math.Log(ohms)
	kelvin := 1 / (c.opts.A + c.opts.B*lnR + c.opts.C*lnR*lnR*lnR)
	return Reading{
		Raw:         raw,
		Resistance:  physic.ElectricResistance(ohms * float64(physic.Ohm)),
		Temperature: physic.Temperature(kelvin * float64(physic.Kelvin)),
	}, nil
}
