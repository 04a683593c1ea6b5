// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor drives the device's sampling loop.
//
// One tick runs every sample period: the ambient sensor is read and
// the reading appended to the sample window. Each time the window
// completes, and only then, the analysis pipeline runs in a fixed
// order: the window is drained to a block average, the breath
// detector observes the average, the thermistor channel is converted,
// the alert policy evaluates temperature and supply voltage, and the
// display, buzzer and structured log each receive their per-window
// output.
//
// Everything runs on the Run goroutine; there is no concurrent access
// to the pipeline state.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"

	"github.com/pumabryant/Sensors-EOH/alert"
	"github.com/pumabryant/Sensors-EOH/breath"
	"github.com/pumabryant/Sensors-EOH/buzzer"
	"github.com/pumabryant/Sensors-EOH/statusscreen"
	"github.com/pumabryant/Sensors-EOH/thermistor"
	"github.com/pumabryant/Sensors-EOH/window"
)

// Opts holds the loop configuration. All values are fixed at startup;
// there is no runtime reconfiguration.
type Opts struct {
	// SamplePeriod is the pacing of ambient samples.
	SamplePeriod time.Duration
	// WindowSize is the number of samples averaged per block.
	WindowSize int
	// Thermistor configures the converter. Nil selects
	// thermistor.DefaultOpts.
	Thermistor *thermistor.Opts
	// Alert configures the thresholds. Nil selects
	// alert.DefaultOpts.
	Alert *alert.Opts
	// ADCRef is the full-scale voltage of the analog channels, used
	// when a pin does not report volts itself.
	ADCRef physic.ElectricPotential
	// SupplyDivider un-scales the supply voltage divider: the battery
	// voltage is the measured pin voltage times this factor.
	SupplyDivider float64
	// AlertHold is how long each alert tone sounds. The hold blocks
	// the loop; that is the device's alert contract.
	AlertHold time.Duration
}

// DefaultOpts matches the reference build.
var DefaultOpts = Opts{
	SamplePeriod:  500 * time.Millisecond,
	WindowSize:    window.DefaultCapacity,
	ADCRef:        5 * physic.Volt,
	SupplyDivider: 3,
	AlertHold:     buzzer.DefaultHold,
}

// Peripherals collects the hardware-facing collaborators. Ambient,
// Thermistor, Supply, Screen and Buzzer are required; AirQuality is
// optional and only feeds the log record.
type Peripherals struct {
	Ambient    physic.SenseEnv
	Thermistor analog.PinADC
	Supply     analog.PinADC
	AirQuality analog.PinADC
	Screen     *statusscreen.Screen
	Buzzer     *buzzer.Dev
}

// Dev is the monitor.
type Dev struct {
	opts   Opts
	p      Peripherals
	log    *zap.Logger
	conv   *thermistor.Converter
	policy *alert.Policy
	det    *breath.Detector
	win    *window.Buffer

	// Pipeline state, touched only from the Run goroutine.
	state    breath.State
	humidity physic.RelativeHumidity

	mu   sync.Mutex
	stop chan struct{}
}

// New validates the configuration and returns a monitor. All
// configuration errors are fatal here, at startup; the loop itself
// never re-validates.
func New(opts *Opts, p Peripherals, log *zap.Logger) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.SamplePeriod <= 0 {
		return nil, fmt.Errorf("monitor: invalid sample period %s", opts.SamplePeriod)
	}
	if p.Ambient == nil || p.Thermistor == nil || p.Supply == nil || p.Screen == nil || p.Buzzer == nil {
		return nil, fmt.Errorf("monitor: ambient, thermistor, supply, screen and buzzer are required")
	}
	if opts.SupplyDivider <= 0 {
		return nil, fmt.Errorf("monitor: invalid supply divider %g", opts.SupplyDivider)
	}
	if log == nil {
		log = zap.NewNop()
	}
	win, err := window.New(opts.WindowSize)
	if err != nil {
		return nil, err
	}
	det, err := breath.New(&breath.Opts{
		Interval: time.Duration(opts.WindowSize) * opts.SamplePeriod,
	})
	if err != nil {
		return nil, err
	}
	conv, err := thermistor.New(opts.Thermistor)
	if err != nil {
		return nil, err
	}
	policy, err := alert.New(opts.Alert)
	if err != nil {
		return nil, err
	}
	return &Dev{
		opts:   *opts,
		p:      p,
		log:    log,
		conv:   conv,
		policy: policy,
		det:    det,
		win:    win,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("monitor{%s x %d}", d.opts.SamplePeriod, d.opts.WindowSize)
}

// Run executes the sampling loop on the calling goroutine until Halt
// is called or a peripheral fails hard.
func (d *Dev) Run() error {
	d.mu.Lock()
	if d.stop != nil {
		d.mu.Unlock()
		return fmt.Errorf("monitor: already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.stop = nil
		d.mu.Unlock()
	}()

	t := time.NewTicker(d.opts.SamplePeriod)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return nil
		case <-t.C:
			if err := d.tick(); err != nil {
				d.log.Error("sampling loop stopped", zap.Error(err))
				return err
			}
		}
	}
}

// Halt stops a running loop. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	return nil
}

// tick records one ambient sample; on the window's completion it runs
// the analysis pipeline.
//
// A failed ambient read is the transient-failure path: the sample is
// skipped with a log line and the window keeps its fill level. Window
// misuse, by contrast, can only be a bug in this loop and aborts it.
func (d *Dev) tick() error {
	var env physic.Env
	if err := d.p.Ambient.Sense(&env); err != nil {
		d.log.Warn("ambient read failed, skipping sample", zap.Error(err))
		return nil
	}
	d.humidity = env.Humidity
	if err := d.win.Append(fahrenheit(env.Temperature)); err != nil {
		return err
	}
	if !d.win.Full() {
		return nil
	}
	return d.completeWindow()
}

// completeWindow drains the full window and runs the per-window
// pipeline in its fixed order.
func (d *Dev) completeWindow() error {
	average, err := d.win.DrainAndAverage()
	if err != nil {
		return err
	}

	var breathEvent bool
	d.state, breathEvent = d.det.Observe(d.state, average)
	if breathEvent {
		d.log.Info("breath detected",
			zap.Uint("breaths", d.state.Breaths),
			zap.Uint("sign_changes", d.state.SignChanges))
	}

	therm, thermOK, err := d.readThermistor()
	if err != nil {
		return err
	}

	supply, err := d.readSupply()
	if err != nil {
		return err
	}
	lowBattery := d.policy.LowVoltage(supply)
	if lowBattery {
		d.log.Warn("supply voltage low", zap.String("supply", supply.String()))
		if err := d.p.Screen.Error(statusscreen.LowBattery); err != nil {
			return err
		}
		if err := d.p.Buzzer.Beep(buzzer.ToneLowBattery, d.opts.AlertHold); err != nil {
			return err
		}
	}

	if thermOK && !lowBattery {
		if err := d.p.Screen.Readings(average, therm.Fahrenheit(), d.state.Breaths); err != nil {
			return err
		}
	}

	fields := []zap.Field{
		zap.Float64("humidity_pct", float64(d.humidity)/float64(physic.PercentRH)),
		zap.Float64("temperature_f", average),
		zap.Uint("breaths", d.state.Breaths),
		zap.Uint("sign_changes", d.state.SignChanges),
		zap.String("supply", supply.String()),
	}
	if thermOK {
		fields = append(fields, zap.Float64("thermistor_f", therm.Fahrenheit()))
	}
	if pct, ok := d.readAirQuality(); ok {
		fields = append(fields, zap.Float64("air_quality_pct", pct))
	}
	d.log.Info("window complete", fields...)
	return nil
}

// readThermistor converts the thermistor channel and applies the
// temperature alert policy. Rail-pinned counts surface as alerts, not
// failures; only sink errors propagate.
func (d *Dev) readThermistor() (thermistor.Reading, bool, error) {
	sample, err := d.p.Thermistor.Read()
	if err != nil {
		d.log.Warn("thermistor read failed", zap.Error(err))
		if err := d.p.Screen.Error(statusscreen.Unreadable); err != nil {
			return thermistor.Reading{}, false, err
		}
		return thermistor.Reading{}, false, d.p.Buzzer.Beep(buzzer.ToneRangeAlert, d.opts.AlertHold)
	}
	reading, err := d.conv.Convert(int(sample.Raw))
	if err != nil {
		// The divider is pinned to a rail; report which failure mode
		// that corresponds to and alert.
		template := statusscreen.Unreadable
		if re, ok := err.(*thermistor.RangeError); ok {
			if re.Rail == thermistor.RailOpen {
				template = statusscreen.Disconnected
			} else {
				template = statusscreen.ShortCircuit
			}
		}
		d.log.Warn("thermistor unreadable", zap.Error(err))
		if err := d.p.Screen.Error(template); err != nil {
			return thermistor.Reading{}, false, err
		}
		return thermistor.Reading{}, false, d.p.Buzzer.Beep(buzzer.ToneRangeAlert, d.opts.AlertHold)
	}

	switch d.policy.Classify(reading.Temperature) {
	case alert.BelowRange:
		d.log.Warn("temperature below range", zap.String("temperature", reading.Temperature.String()))
		if err := d.p.Screen.Error(statusscreen.Disconnected); err != nil {
			return reading, false, err
		}
		return reading, false, d.p.Buzzer.Beep(buzzer.ToneRangeAlert, d.opts.AlertHold)
	case alert.AboveRange:
		d.log.Warn("temperature above range", zap.String("temperature", reading.Temperature.String()))
		if err := d.p.Screen.Error(statusscreen.ShortCircuit); err != nil {
			return reading, false, err
		}
		return reading, false, d.p.Buzzer.Beep(buzzer.ToneRangeAlert, d.opts.AlertHold)
	}
	return reading, true, nil
}

// readSupply returns the battery voltage behind the divider.
func (d *Dev) readSupply() (physic.ElectricPotential, error) {
	sample, err := d.p.Supply.Read()
	if err != nil {
		return 0, fmt.Errorf("monitor: supply read failed: %w", err)
	}
	v := sample.V
	if v == 0 {
		_, max := d.p.Supply.Range()
		if max.Raw > 0 {
			v = physic.ElectricPotential(int64(d.opts.ADCRef) * int64(sample.Raw) / int64(max.Raw))
		}
	}
	return physic.ElectricPotential(float64(v) * d.opts.SupplyDivider), nil
}

// readAirQuality returns the gas channel as a percentage of full
// scale. The channel is optional and purely informational.
func (d *Dev) readAirQuality() (float64, bool) {
	if d.p.AirQuality == nil {
		return 0, false
	}
	sample, err := d.p.AirQuality.Read()
	if err != nil {
		d.log.Warn("air quality read failed", zap.Error(err))
		return 0, false
	}
	_, max := d.p.AirQuality.Range()
	if max.Raw <= 0 {
		return 0, false
	}
	return 100 * float64(sample.Raw) / float64(max.Raw), true
}

func fahrenheit(t physic.Temperature) float64 {
	return t.Celsius()*9/5 + 32
}
