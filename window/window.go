// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package window collects raw sensor samples into a fixed-capacity
// block and yields the block average once the block is complete.
//
// A Buffer is not a ring: once it reaches capacity it must be drained
// before any further Append. Partial windows are never readable from
// outside; the only outputs are the full-window average and the
// current fill level.
package window

import "fmt"

// DefaultCapacity is the reference window size: at the 500ms sampling
// period a window covers a little over two minutes of readings.
const DefaultCapacity = 256

// Buffer is a fixed-capacity sample window.
//
// The zero value is not usable, call New.
type Buffer struct {
	samples []float64
	size    int
}

// New returns an empty Buffer holding up to capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window: invalid capacity %d", capacity)
	}
	return &Buffer{samples: make([]float64, capacity)}, nil
}

// Append records one sample. It fails with *FullError when the window
// is already complete; the caller must drain first.
func (b *Buffer) Append(sample float64) error {
	if b.size == len(b.samples) {
		return &FullError{Capacity: len(b.samples)}
	}
	b.samples[b.size] = sample
	b.size++
	return nil
}

// DrainAndAverage returns the arithmetic mean of the completed window
// and resets the window to empty. It fails with *ShortWindowError if
// the window is not yet complete.
func (b *Buffer) DrainAndAverage() (float64, error) {
	if b.size != len(b.samples) {
		return 0, &ShortWindowError{Have: b.size, Want: len(b.samples)}
	}
	var sum float64
	for _, s := range b.samples {
		sum += s
	}
	b.size = 0
	return sum / float64(len(b.samples)), nil
}

// Len returns the number of samples currently recorded.
func (b *Buffer) Len() int {
	return b.size
}

// Cap returns the window capacity.
func (b *Buffer) Cap() int {
	return len(b.samples)
}

// Full reports whether the window is complete and ready to drain.
func (b *Buffer) Full() bool {
	return b.size == len(b.samples)
}
