// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termscreen implements a character-panel display.TextDisplay
// that outputs to a terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your 16x2 LCD to come by mail: the
// monitor drives it exactly like the real panel.
package termscreen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// Rows and Cols give the emulated panel size. Defaults to 2x16.
	Rows, Cols int
	// Writer receives the ANSI output. Defaults to a colorable
	// stdout.
	Writer io.Writer
	// Palette maps the backlight color to the terminal. Defaults to
	// ansi256.Default.
	Palette *ansi256.Palette
}

// DefaultOpts is the reference 16x2 panel on stdout.
var DefaultOpts = Opts{
	Rows: 2,
	Cols: 16,
}

var (
	backlightOn  = color.NRGBA{0x30, 0xc0, 0x30, 0xff}
	backlightOff = color.NRGBA{0x30, 0x30, 0x30, 0xff}
)

// Dev is a terminal LCD emulator.
type Dev struct {
	w       io.Writer
	rows    int
	cols    int
	palette ansi256.Palette

	grid      [][]byte
	row, col  int
	on        bool
	backlight bool
	painted   bool
	buf       bytes.Buffer
}

// New returns a Dev that displays at the console. The Opts can be
// nil, in which case DefaultOpts is used.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	rows, cols := opts.Rows, opts.Cols
	if rows == 0 {
		rows = DefaultOpts.Rows
	}
	if cols == 0 {
		cols = DefaultOpts.Cols
	}
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("termscreen: invalid size %dx%d", rows, cols)
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:         w,
		rows:      rows,
		cols:      cols,
		palette:   *p,
		grid:      make([][]byte, rows),
		on:        true,
		backlight: true,
	}
	for i := range d.grid {
		d.grid[i] = blankLine(cols)
	}
	d.row, d.col = d.MinRow(), d.MinCol()
	return d, nil
}

func blankLine(cols int) []byte {
	return []byte(strings.Repeat(" ", cols))
}

func (d *Dev) String() string {
	return fmt.Sprintf("termscreen{%dx%d}", d.rows, d.cols)
}

// Halt clears the terminal line state so the shell prompt is not
// corrupted. Implements conn.Resource.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// AutoScroll is not supported. Returns display.ErrNotImplemented.
func (d *Dev) AutoScroll(enabled bool) error {
	return display.ErrNotImplemented
}

// Clear blanks the panel and moves the cursor home.
func (d *Dev) Clear() error {
	for i := range d.grid {
		d.grid[i] = blankLine(d.cols)
	}
	d.row, d.col = d.MinRow(), d.MinCol()
	return d.refresh()
}

// Cols returns the number of columns the panel supports.
func (d *Dev) Cols() int {
	return d.cols
}

// Cursor modes are invisible on a terminal redraw; accepted and
// ignored.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	return nil
}

// Display turns the panel contents on or off; the frame stays
// visible, like an LCD with the segments blanked.
func (d *Dev) Display(on bool) error {
	d.on = on
	return d.refresh()
}

// Home moves the cursor to (MinRow, MinCol).
func (d *Dev) Home() error {
	return d.MoveTo(d.MinRow(), d.MinCol())
}

// MinCol returns the min column position.
func (d *Dev) MinCol() int {
	return 1
}

// MinRow returns the min row position.
func (d *Dev) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		if d.col < d.cols {
			d.col++
		}
	case display.Backward:
		if d.col > d.MinCol() {
			d.col--
		}
	default:
		return fmt.Errorf("termscreen: %w", display.ErrNotImplemented)
	}
	return nil
}

// MoveTo moves the cursor to an arbitrary 1-based position.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("termscreen: MoveTo(%d,%d) out of range", row, col)
	}
	d.row, d.col = row, col
	return nil
}

// Rows returns the number of rows the panel supports.
func (d *Dev) Rows() int {
	return d.rows
}

// Write writes bytes at the cursor, clipping at the end of the line.
func (d *Dev) Write(p []byte) (int, error) {
	for _, b := range p {
		if d.col <= d.cols {
			d.grid[d.row-1][d.col-1] = b
			d.col++
		}
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString writes a string at the cursor.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Backlight switches the emulated backlight margin between the lit
// and dark colors. Implements display.DisplayBacklight.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.backlight = intensity > 0
	return d.refresh()
}

// refresh repaints the whole panel in place. This code is designed to
// minimize the amount of memory allocated per call.
func (d *Dev) refresh() error {
	d.buf.Reset()
	if d.painted {
		fmt.Fprintf(&d.buf, "\033[%dA", d.rows)
	}
	d.painted = true
	bl := backlightOff
	if d.backlight {
		bl = backlightOn
	}
	for i := 0; i < d.rows; i++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		_, _ = d.buf.WriteString(d.palette.Block(bl))
		_, _ = d.buf.WriteString("\033[0m ")
		if d.on {
			_, _ = d.buf.Write(d.grid[i])
		} else {
			_, _ = d.buf.Write(blankLine(d.cols))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.TextDisplay = &Dev{}
var _ fmt.Stringer = &Dev{}
