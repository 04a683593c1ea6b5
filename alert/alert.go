// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package alert classifies converted readings against the device's
// fixed thresholds.
//
// The policy is stateless: every evaluation cycle is decided from the
// current temperature and supply voltage alone, with no debouncing or
// hysteresis, so a persistent condition re-fires its alert on every
// cycle.
package alert

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Class is the outcome of a temperature check.
type Class int

const (
	// Normal is a temperature within the working range.
	Normal Class = iota
	// BelowRange is a reading far below anything the probe can sit
	// in; it indicates a disconnected sensor.
	BelowRange
	// AboveRange indicates a shorted sensor.
	AboveRange
)

func (c Class) String() string {
	switch c {
	case Normal:
		return "normal"
	case BelowRange:
		return "below range (sensor disconnected)"
	case AboveRange:
		return "above range (sensor short)"
	default:
		return fmt.Sprint(int(c))
	}
}

// Opts holds the alert thresholds.
type Opts struct {
	// TempLow and TempHigh bound the plausible working range. The
	// bounds themselves are in range: only strictly colder or hotter
	// readings alert.
	TempLow  physic.Temperature
	TempHigh physic.Temperature
	// MinVoltage is the supply level at or below which the
	// low-battery alert fires.
	MinVoltage physic.ElectricPotential
}

// DefaultOpts holds the reference thresholds: ±40°C and 7.5V.
var DefaultOpts = Opts{
	TempLow:    physic.ZeroCelsius - 40*physic.Kelvin,
	TempHigh:   physic.ZeroCelsius + 40*physic.Kelvin,
	MinVoltage: 7500 * physic.MilliVolt,
}

// Policy evaluates readings. It is stateless and safe for concurrent
// use.
type Policy struct {
	opts Opts
}

// New returns a Policy. The Opts can be nil, in which case
// DefaultOpts is used.
func New(opts *Opts) (*Policy, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.TempLow >= opts.TempHigh {
		return nil, fmt.Errorf("alert: temperature range %s..%s is empty", opts.TempLow, opts.TempHigh)
	}
	return &Policy{opts: *opts}, nil
}

// Classify places a temperature relative to the working range. The
// comparison is strict on both sides: a reading exactly on a bound is
// Normal.
func (p *Policy) Classify(t physic.Temperature) Class {
	if t < p.opts.TempLow {
		return BelowRange
	}
	if t > p.opts.TempHigh {
		return AboveRange
	}
	return Normal
}

// LowVoltage reports whether the supply voltage requires the
// low-battery alert. The threshold itself triggers.
func (p *Policy) LowVoltage(v physic.ElectricPotential) bool {
	return v <= p.opts.MinVoltage
}
