// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package breath detects breath-like oscillations in a temperature
// trend.
//
// The detector consumes one block average per completed sample window
// and differentiates the sequence. Every time the derivative changes
// sign a counter advances; a full respiration cycle (warming rise,
// plateau, cooling fall) shows up as three recorded sign changes, so
// a breath is declared whenever the counter reaches a fresh multiple
// of SignChangesPerBreath.
package breath

import (
	"time"
)

// SignChangesPerBreath is the calibration constant mapping recorded
// derivative sign changes to one detected respiration cycle.
const SignChangesPerBreath = 3

// Opts holds the configuration options for the detector.
type Opts struct {
	// Interval is the fixed wall time between two successive block
	// averages. It is the window capacity times the sampling period.
	Interval time.Duration
}

// DefaultOpts matches the reference build: a 256-sample window filled
// at 500ms per sample.
var DefaultOpts = Opts{
	Interval: 128 * time.Second,
}

// State carries the detector's memory between observations. It is a
// value: Observe returns the successor state and never mutates its
// input, so the caller owns the only copy.
//
// The zero State is the startup state.
type State struct {
	// SignChanges counts recorded derivative sign changes. It never
	// decreases.
	SignChanges uint
	// Breaths counts detected respiration cycles.
	Breaths uint

	prevAverage    float64
	prevDerivative float64
	baselined      bool
	lastMark       uint
}

// Detector turns a sequence of block averages into breath events.
type Detector struct {
	seconds float64
}

// New returns a Detector. The Opts can be nil, in which case
// DefaultOpts is used. A zero or negative interval fails with
// *ConfigError; the interval is a compile-time constant in a real
// build, so this only ever fires at startup.
func New(opts *Opts) (*Detector, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Interval <= 0 {
		return nil, &ConfigError{Interval: opts.Interval}
	}
	return &Detector{seconds: opts.Interval.Seconds()}, nil
}

// sign implements the tie-break convention used throughout: zero is
// positive. A flat plateau therefore continues the previous rising
// sign instead of recording a change.
func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// Observe feeds one block average to the detector and returns the
// successor state, plus whether this observation completed a breath.
//
// The first observation only records a baseline; no derivative is
// computable yet. Afterwards the derivative of the averages is taken
// and its sign compared against the sign at the last recorded change.
// prevDerivative is deliberately left untouched on equal signs so that
// it always holds the derivative at the last recorded sign change,
// not the latest slope.
func (d *Detector) Observe(s State, average float64) (State, bool) {
	if !s.baselined {
		s.prevAverage = average
		s.baselined = true
		return s, false
	}
	derivative := (average - s.prevAverage) / d.seconds
	if sign(derivative) != sign(s.prevDerivative) {
		s.SignChanges++
		s.prevDerivative = derivative
	}
	s.prevAverage = average
	return d.checkBreath(s)
}

// checkBreath declares a breath when the sign-change counter sits on
// a multiple of SignChangesPerBreath it has not been credited for.
func (d *Detector) checkBreath(s State) (State, bool) {
	if s.SignChanges == 0 || s.SignChanges%SignChangesPerBreath != 0 || s.SignChanges == s.lastMark {
		return s, false
	}
	s.lastMark = s.SignChanges
	s.Breaths++
	return s, true
}
