// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package buzzer

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

type pinOp struct {
	pwm  bool
	lvl  gpio.Level
	freq physic.Frequency
	duty gpio.Duty
}

// recordPin records Out and PWM calls in order.
type recordPin struct {
	ops []pinOp
}

func (p *recordPin) String() string   { return "record" }
func (p *recordPin) Halt() error      { return nil }
func (p *recordPin) Name() string     { return "record" }
func (p *recordPin) Number() int      { return 0 }
func (p *recordPin) Function() string { return "Out" }
func (p *recordPin) Out(l gpio.Level) error {
	p.ops = append(p.ops, pinOp{lvl: l})
	return nil
}
func (p *recordPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	p.ops = append(p.ops, pinOp{pwm: true, freq: f, duty: duty})
	return nil
}

var _ gpio.PinOut = &recordPin{}

func TestBeep(t *testing.T) {
	pin := &recordPin{}
	d, err := New(pin)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if err := d.Beep(ToneRangeAlert, 20*time.Millisecond); err != nil {
		t.Fatalf("Beep() = %v", err)
	}
	if held := time.Since(start); held < 20*time.Millisecond {
		t.Errorf("Beep returned after %s, expected a blocking hold", held)
	}
	// New silences the pin, then Beep runs PWM followed by silence.
	if len(pin.ops) != 3 {
		t.Fatalf("pin ops = %+v", pin.ops)
	}
	if pin.ops[0].pwm || pin.ops[0].lvl != gpio.Low {
		t.Errorf("op 0 = %+v, expected initial silence", pin.ops[0])
	}
	if !pin.ops[1].pwm || pin.ops[1].freq != physic.Frequency(ToneRangeAlert) || pin.ops[1].duty != gpio.DutyHalf {
		t.Errorf("op 1 = %+v, expected half-duty PWM at the alert tone", pin.ops[1])
	}
	if pin.ops[2].pwm || pin.ops[2].lvl != gpio.Low {
		t.Errorf("op 2 = %+v, expected silence after the hold", pin.ops[2])
	}
}

func TestBeepInvalidTone(t *testing.T) {
	d, err := New(&recordPin{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Beep(0, time.Millisecond); err == nil {
		t.Error("Beep(0) expected an error")
	}
}

func TestHalt(t *testing.T) {
	pin := &recordPin{}
	d, err := New(pin)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if last := pin.ops[len(pin.ops)-1]; last.pwm || last.lvl != gpio.Low {
		t.Errorf("last op = %+v", last)
	}
}

func TestNewNilPin(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected an error")
	}
}
