// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/pumabryant/Sensors-EOH/alert"
	"github.com/pumabryant/Sensors-EOH/buzzer"
	"github.com/pumabryant/Sensors-EOH/sim"
	"github.com/pumabryant/Sensors-EOH/statusscreen"
	"github.com/pumabryant/Sensors-EOH/videotext"
)

// scriptEnv replays a fixed list of temperatures, failing the reads
// whose index is listed in fail.
type scriptEnv struct {
	temps []physic.Temperature
	fail  map[int]bool
	i     int
}

func (s *scriptEnv) String() string { return "scriptEnv" }
func (s *scriptEnv) Halt() error    { return nil }

func (s *scriptEnv) Sense(env *physic.Env) error {
	i := s.i
	s.i++
	if s.fail[i] {
		return errors.New("transient sensor glitch")
	}
	env.Temperature = s.temps[i%len(s.temps)]
	env.Humidity = 40 * physic.PercentRH
	return nil
}

func (s *scriptEnv) SenseContinuous(time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("not implemented")
}

func (s *scriptEnv) Precision(env *physic.Env) {
	env.Temperature = physic.MilliKelvin
}

// beepPin records the PWM frequencies the buzzer requested.
type beepPin struct {
	mu    sync.Mutex
	freqs []physic.Frequency
}

func (b *beepPin) String() string         { return "beepPin" }
func (b *beepPin) Name() string           { return "beepPin" }
func (b *beepPin) Number() int            { return -1 }
func (b *beepPin) Function() string       { return "PWM" }
func (b *beepPin) Halt() error            { return nil }
func (b *beepPin) Out(l gpio.Level) error { return nil }

func (b *beepPin) PWM(d gpio.Duty, f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.freqs = append(b.freqs, f)
	return nil
}

func (b *beepPin) recorded() []physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]physic.Frequency(nil), b.freqs...)
}

type rig struct {
	dev    *Dev
	panel  *videotext.Panel
	pin    *beepPin
	logs   *observer.ObservedLogs
	supply *sim.Pin
	therm  *sim.Pin
}

// newRig wires a monitor around simulated peripherals: a healthy
// thermistor at midscale and a full battery unless the test overrides
// them.
func newRig(t *testing.T, opts *Opts, ambient physic.SenseEnv) *rig {
	t.Helper()
	panel, err := videotext.New(nil)
	require.NoError(t, err)
	screen, err := statusscreen.New(panel)
	require.NoError(t, err)
	pin := &beepPin{}
	bz, err := buzzer.New(pin)
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)

	r := &rig{
		panel:  panel,
		pin:    pin,
		logs:   logs,
		therm:  &sim.Pin{N: "therm", Max: 1023, Sample: sim.Const(512)},
		supply: &sim.Pin{N: "supply", Max: 1023, Ref: 5 * physic.Volt, Sample: sim.Const(1023)},
	}
	r.dev, err = New(opts, Peripherals{
		Ambient:    ambient,
		Thermistor: r.therm,
		Supply:     r.supply,
		Screen:     screen,
		Buzzer:     bz,
	}, zap.New(core))
	require.NoError(t, err)
	return r
}

func testOpts(windowSize int) *Opts {
	return &Opts{
		SamplePeriod:  time.Millisecond,
		WindowSize:    windowSize,
		ADCRef:        5 * physic.Volt,
		SupplyDivider: 3,
	}
}

func constEnv(t physic.Temperature) *scriptEnv {
	return &scriptEnv{temps: []physic.Temperature{t}}
}

func TestNewValidation(t *testing.T) {
	_, err := New(&Opts{}, Peripherals{}, nil)
	assert.Error(t, err, "zero sample period")

	_, err = New(testOpts(4), Peripherals{}, nil)
	assert.Error(t, err, "missing peripherals")

	opts := testOpts(4)
	opts.SupplyDivider = 0
	r := newRigPeripherals(t)
	_, err = New(opts, r, nil)
	assert.Error(t, err, "zero supply divider")
}

func newRigPeripherals(t *testing.T) Peripherals {
	t.Helper()
	panel, err := videotext.New(nil)
	require.NoError(t, err)
	screen, err := statusscreen.New(panel)
	require.NoError(t, err)
	bz, err := buzzer.New(&beepPin{})
	require.NoError(t, err)
	return Peripherals{
		Ambient:    constEnv(physic.ZeroCelsius),
		Thermistor: &sim.Pin{N: "therm", Max: 1023, Sample: sim.Const(512)},
		Supply:     &sim.Pin{N: "supply", Max: 1023, Ref: 5 * physic.Volt, Sample: sim.Const(1023)},
		Screen:     screen,
		Buzzer:     bz,
	}
}

func TestReadingsScreenAfterWindow(t *testing.T) {
	// 22C ambient is 71.6F; a midscale thermistor count is 24.73C,
	// which is 76.5F.
	r := newRig(t, testOpts(4), constEnv(physic.ZeroCelsius+22*physic.Kelvin))
	for i := 0; i < 3; i++ {
		require.NoError(t, r.dev.tick())
		assert.Empty(t, r.panel.Text()[0], "screen must not update mid-window")
	}
	require.NoError(t, r.dev.tick())

	text := r.panel.Text()
	assert.Equal(t, "A 71.6F T 76.5F", text[0])
	assert.Equal(t, "BREATHS 0", text[1])
	assert.Empty(t, r.pin.recorded(), "no alert expected")

	entries := r.logs.FilterMessage("window complete").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.InDelta(t, 71.6, fields["temperature_f"], 0.001)
	assert.InDelta(t, 76.5167, fields["thermistor_f"], 0.01)
	assert.InDelta(t, 40.0, fields["humidity_pct"], 0.001)
}

func TestTransientAmbientFailureSkipsSample(t *testing.T) {
	env := constEnv(physic.ZeroCelsius + 22*physic.Kelvin)
	env.fail = map[int]bool{1: true}
	r := newRig(t, testOpts(2), env)

	require.NoError(t, r.dev.tick())
	require.NoError(t, r.dev.tick()) // failed read, window stays at one sample
	assert.Empty(t, r.panel.Text()[0])
	require.NoError(t, r.dev.tick())

	assert.Equal(t, "BREATHS 0", r.panel.Text()[1], "window should complete on the third tick")
	assert.Len(t, r.logs.FilterMessage("ambient read failed, skipping sample").All(), 1)
}

func TestThermistorRailAlerts(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  int32
		want [2]string
	}{
		{"open", 0, [2]string{"SENSOR ERROR", "DISCONNECTED"}},
		{"short", 1023, [2]string{"SENSOR ERROR", "SHORT CIRCUIT"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, testOpts(1), constEnv(physic.ZeroCelsius+22*physic.Kelvin))
			r.therm.Sample = sim.Const(tc.raw)
			require.NoError(t, r.dev.tick())

			text := r.panel.Text()
			assert.Equal(t, tc.want[0], text[0])
			assert.Equal(t, tc.want[1], text[1])
			freqs := r.pin.recorded()
			require.Len(t, freqs, 1)
			assert.Equal(t, physic.Frequency(buzzer.ToneRangeAlert), freqs[0])
		})
	}
}

func TestTemperatureRangeAlerts(t *testing.T) {
	// A midscale count reads 24.73C. Narrowed thresholds push that
	// reading out of range on either side.
	for _, tc := range []struct {
		name string
		alt  alert.Opts
		want [2]string
	}{
		{
			name: "below",
			alt:  alert.Opts{TempLow: physic.ZeroCelsius + 30*physic.Kelvin, TempHigh: physic.ZeroCelsius + 50*physic.Kelvin, MinVoltage: alert.DefaultOpts.MinVoltage},
			want: [2]string{"SENSOR ERROR", "DISCONNECTED"},
		},
		{
			name: "above",
			alt:  alert.Opts{TempLow: physic.ZeroCelsius, TempHigh: physic.ZeroCelsius + 10*physic.Kelvin, MinVoltage: alert.DefaultOpts.MinVoltage},
			want: [2]string{"SENSOR ERROR", "SHORT CIRCUIT"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOpts(1)
			opts.Alert = &tc.alt
			r := newRig(t, opts, constEnv(physic.ZeroCelsius+22*physic.Kelvin))
			require.NoError(t, r.dev.tick())

			text := r.panel.Text()
			assert.Equal(t, tc.want[0], text[0])
			assert.Equal(t, tc.want[1], text[1])
			freqs := r.pin.recorded()
			require.Len(t, freqs, 1)
			assert.Equal(t, physic.Frequency(buzzer.ToneRangeAlert), freqs[0])
		})
	}
}

func TestLowBatteryAlert(t *testing.T) {
	r := newRig(t, testOpts(1), constEnv(physic.ZeroCelsius+22*physic.Kelvin))
	// 307 counts of a 5V scale is 1.5V at the pin, 4.5V behind the
	// divider, well under the 7.5V threshold.
	r.supply.Sample = sim.Const(307)
	require.NoError(t, r.dev.tick())

	text := r.panel.Text()
	assert.Equal(t, "LOW BATTERY", text[0])
	assert.Equal(t, "REPLACE PACK", text[1])
	freqs := r.pin.recorded()
	require.Len(t, freqs, 1)
	assert.Equal(t, physic.Frequency(buzzer.ToneLowBattery), freqs[0])
}

func TestSupplyScalingWithoutPinVolts(t *testing.T) {
	r := newRig(t, testOpts(1), constEnv(physic.ZeroCelsius))
	// A pin that only reports raw counts falls back to ADCRef scaling.
	r.supply.Ref = 0
	r.supply.Sample = sim.Const(512)
	v, err := r.dev.readSupply()
	require.NoError(t, err)
	assert.InDelta(t, 7.507, float64(v)/float64(physic.Volt), 0.001)
}

func TestAirQualityInLogRecord(t *testing.T) {
	r := newRig(t, testOpts(1), constEnv(physic.ZeroCelsius+22*physic.Kelvin))
	r.dev.p.AirQuality = &sim.Pin{N: "gas", Max: 1023, Sample: sim.Const(512)}
	require.NoError(t, r.dev.tick())

	entries := r.logs.FilterMessage("window complete").All()
	require.Len(t, entries, 1)
	assert.InDelta(t, 50.05, entries[0].ContextMap()["air_quality_pct"], 0.01)
}

func TestRunHalt(t *testing.T) {
	env, err := sim.NewEnv(nil)
	require.NoError(t, err)
	r := newRig(t, testOpts(4), env)

	done := make(chan error, 1)
	go func() { done <- r.dev.Run() }()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, r.dev.Halt())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Halt")
	}
	assert.NoError(t, r.dev.Halt(), "halting twice is fine")
	assert.NotEmpty(t, r.logs.FilterMessage("window complete").All())
}
