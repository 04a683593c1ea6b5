// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermistor

import "fmt"

// Rail identifies which end of the ADC range a rejected count hit.
type Rail int

const (
	// RailOpen is a count of zero: no current through the divider,
	// the sensor is disconnected.
	RailOpen Rail = iota
	// RailShort is a full-scale count: the divider is shorted.
	RailShort
)

func (r Rail) String() string {
	switch r {
	case RailOpen:
		return "open circuit"
	case RailShort:
		return "short circuit"
	default:
		return fmt.Sprint(int(r))
	}
}

// RangeError is returned by Convert for a count pinned to either ADC
// rail, where the resistance formula is undefined.
type RangeError struct {
	Raw  int
	Rail Rail
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("thermistor: raw count %d out of range (%s)", e.Raw, e.Rail)
}
