// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package buzzer drives a piezo buzzer from a PWM-capable GPIO pin.
package buzzer

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Tone is the pitch of an alert.
type Tone physic.Frequency

// The device's two alert tones.
const (
	// ToneRangeAlert sounds for an out-of-range or unreadable sensor.
	ToneRangeAlert Tone = Tone(1 * physic.KiloHertz)
	// ToneLowBattery sounds for a low supply voltage.
	ToneLowBattery Tone = Tone(440 * physic.Hertz)
)

// DefaultHold is the reference alert duration.
const DefaultHold = 500 * time.Millisecond

// Dev is a buzzer on a single gpio.PinOut.
type Dev struct {
	mu  sync.Mutex
	pin gpio.PinOut
}

// New returns a buzzer driving the given pin.
func New(pin gpio.PinOut) (*Dev, error) {
	if pin == nil {
		return nil, fmt.Errorf("buzzer: pin is required")
	}
	d := &Dev{pin: pin}
	return d, pin.Out(gpio.Low)
}

func (d *Dev) String() string {
	return fmt.Sprintf("buzzer{%s}", d.pin)
}

// Beep sounds the tone at half duty for the hold duration, then
// silences the pin. The hold is a deliberate blocking busy-wait:
// there is no cancellation path, matching the device's alert
// contract.
func (d *Dev) Beep(tone Tone, hold time.Duration) error {
	if tone <= 0 {
		return fmt.Errorf("buzzer: invalid tone %s", physic.Frequency(tone))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.pin.PWM(gpio.DutyHalf, physic.Frequency(tone)); err != nil {
		return err
	}
	time.Sleep(hold)
	return d.pin.Out(gpio.Low)
}

// Halt silences the buzzer. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pin.Out(gpio.Low)
}

var _ conn.Resource = &Dev{}
