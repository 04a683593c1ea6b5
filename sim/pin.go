// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// Pin is an analog.PinADC whose readings come from a sample function.
// The function runs once per Read, so a Pin can replay a recording,
// follow a waveform or return a constant.
type Pin struct {
	// N is the pin name.
	N string
	// Max is the full-scale raw count (1023 for the reference 10-bit
	// converter).
	Max int32
	// Ref is the voltage at full scale.
	Ref physic.ElectricPotential
	// Sample returns the next raw count.
	Sample func() int32

	mu sync.Mutex
}

// Const returns a function usable as Pin.Sample yielding a fixed
// count.
func Const(raw int32) func() int32 {
	return func() int32 { return raw }
}

// Sequence returns a Pin.Sample function replaying raw counts in
// order, sticking on the last one.
func Sequence(raws ...int32) func() int32 {
	i := 0
	return func() int32 {
		if i >= len(raws) {
			return raws[len(raws)-1]
		}
		r := raws[i]
		i++
		return r
	}
}

func (p *Pin) String() string {
	return fmt.Sprintf("sim.Pin(%s)", p.N)
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.N
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return -1
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "ADC"
}

// Read implements analog.PinADC.
func (p *Pin) Read() (analog.Sample, error) {
	if p.Sample == nil {
		return analog.Sample{}, fmt.Errorf("sim: pin %s has no sample source", p.N)
	}
	p.mu.Lock()
	raw := p.Sample()
	p.mu.Unlock()
	s := analog.Sample{Raw: raw}
	if p.Max > 0 && p.Ref > 0 {
		s.V = physic.ElectricPotential(int64(p.Ref) * int64(raw) / int64(p.Max))
	}
	return s, nil
}

// Range implements analog.PinADC.
func (p *Pin) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{}, analog.Sample{Raw: p.Max, V: p.Ref}
}

// Halt implements conn.Resource.
func (p *Pin) Halt() error {
	return nil
}

var _ analog.PinADC = &Pin{}
