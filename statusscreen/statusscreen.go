// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package statusscreen formats the monitor's two-line status and
// error payloads onto any display.TextDisplay, such as a 16x2
// character LCD.
package statusscreen

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// Template names a canned two-line error message.
type Template int

const (
	// Disconnected is shown for a below-range (open circuit) probe.
	Disconnected Template = iota
	// ShortCircuit is shown for an above-range (shorted) probe.
	ShortCircuit
	// Unreadable is shown when the thermistor channel is pinned to an
	// ADC rail and no temperature can be derived.
	Unreadable
	// LowBattery is shown when the supply voltage drops to the
	// alert threshold.
	LowBattery
)

var templates = map[Template][2]string{
	Disconnected: {"SENSOR ERROR", "DISCONNECTED"},
	ShortCircuit: {"SENSOR ERROR", "SHORT CIRCUIT"},
	Unreadable:   {"SENSOR ERROR", "UNREADABLE"},
	LowBattery:   {"LOW BATTERY", "REPLACE PACK"},
}

// Screen formats payloads for one TextDisplay.
type Screen struct {
	disp display.TextDisplay
}

// New returns a Screen writing to disp.
func New(disp display.TextDisplay) (*Screen, error) {
	if disp == nil {
		return nil, fmt.Errorf("statusscreen: display is required")
	}
	return &Screen{disp: disp}, nil
}

func (s *Screen) String() string {
	return fmt.Sprintf("statusscreen{%s}", s.disp)
}

// Show clears the display and writes up to two lines, each clipped to
// the display width.
func (s *Screen) Show(line1, line2 string) error {
	if err := s.disp.Clear(); err != nil {
		return err
	}
	if err := s.writeLine(s.disp.MinRow(), line1); err != nil {
		return err
	}
	return s.writeLine(s.disp.MinRow()+1, line2)
}

// Error shows a named error template.
func (s *Screen) Error(t Template) error {
	lines, ok := templates[t]
	if !ok {
		return fmt.Errorf("statusscreen: unknown template %d", t)
	}
	return s.Show(lines[0], lines[1])
}

// Readings shows the normal-cycle screen: ambient and thermistor
// temperatures on the first line, breath count on the second.
func (s *Screen) Readings(ambientF, thermF float64, breaths uint) error {
	line1 := fmt.Sprintf("A%5.1fF T%5.1fF", ambientF, thermF)
	line2 := fmt.Sprintf("BREATHS %d", breaths)
	return s.Show(line1, line2)
}

func (s *Screen) writeLine(row int, text string) error {
	if text == "" {
		return nil
	}
	if max := s.disp.Cols(); len(text) > max {
		text = text[:max]
	}
	if err := s.disp.MoveTo(row, s.disp.MinCol()); err != nil {
		return err
	}
	_, err := s.disp.WriteString(text)
	return err
}
