// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sim provides simulated peripherals for developing and
// testing the monitor on a machine without the real hardware: a
// physic.SenseEnv producing a breath-modulated ambient temperature
// and an analog.PinADC backed by a sample function.
package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// EnvOpts configures the simulated ambient sensor.
type EnvOpts struct {
	// Base is the resting temperature.
	Base physic.Temperature
	// Swing is the peak-to-peak amplitude of the breath oscillation.
	Swing physic.Temperature
	// Period is the length of one simulated respiration cycle.
	Period time.Duration
	// Humidity is reported verbatim on every reading.
	Humidity physic.RelativeHumidity
	// FailEvery makes every n-th read fail with *ReadError to
	// exercise the transient-failure path. Zero disables failures.
	FailEvery int
}

// DefaultEnvOpts is a gentle oscillation around room temperature.
var DefaultEnvOpts = EnvOpts{
	Base:     physic.ZeroCelsius + 22*physic.Kelvin,
	Swing:    2 * physic.Kelvin,
	Period:   5 * time.Second,
	Humidity: 40 * physic.PercentRH,
}

// Env is a simulated ambient sensor. It implements physic.SenseEnv.
type Env struct {
	opts  EnvOpts
	start time.Time

	mu    sync.Mutex
	reads int
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewEnv returns a simulated sensor. The Opts can be nil, in which
// case DefaultEnvOpts is used.
func NewEnv(opts *EnvOpts) (*Env, error) {
	if opts == nil {
		opts = &DefaultEnvOpts
	}
	if opts.Period <= 0 {
		return nil, fmt.Errorf("sim: invalid breath period %s", opts.Period)
	}
	return &Env{opts: *opts, start: time.Now()}, nil
}

func (e *Env) String() string {
	return "sim.Env"
}

// Sense implements physic.SenseEnv. The temperature traces a sine
// over the configured period, which the trend detector sees as a
// clean rise/fall oscillation.
func (e *Env) Sense(env *physic.Env) error {
	e.mu.Lock()
	e.reads++
	fail := e.opts.FailEvery > 0 && e.reads%e.opts.FailEvery == 0
	e.mu.Unlock()
	if fail {
		return &ReadError{}
	}
	phase := 2 * math.Pi * float64(time.Since(e.start)%e.opts.Period) / float64(e.opts.Period)
	offset := math.Sin(phase) * float64(e.opts.Swing) / 2
	env.Temperature = e.opts.Base + physic.Temperature(offset)
	env.Humidity = e.opts.Humidity
	return nil
}

// SenseContinuous implements physic.SenseEnv.
func (e *Env) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return nil, fmt.Errorf("sim: SenseContinuous already running")
	}
	e.stop = make(chan struct{})
	sensing := make(chan physic.Env)
	e.wg.Add(1)
	go func(stop chan struct{}) {
		defer e.wg.Done()
		defer close(sensing)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				var env physic.Env
				if err := e.Sense(&env); err != nil {
					continue
				}
				// The send aborts on stop so Halt never waits on a
				// reader that went away.
				select {
				case sensing <- env:
				case <-stop:
					return
				}
			}
		}
	}(e.stop)
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (e *Env) Precision(env *physic.Env) {
	env.Temperature = physic.MilliKelvin
	env.Humidity = physic.MilliRH
}

// Halt stops a SenseContinuous goroutine. Implements conn.Resource.
func (e *Env) Halt() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop == nil {
		return nil
	}
	close(e.stop)
	e.wg.Wait()
	e.stop = nil
	return nil
}

var _ physic.SenseEnv = &Env{}
