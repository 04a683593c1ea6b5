// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package videotext provides a character-panel display implementing
// an HTTP request handler. Client requests get an initial snapshot of
// the rendered panel and are updated further on every change.
//
// The primary use case is developing the monitor's display output on
// a host machine without the LCD. Devices with network connectivity
// can also use it to publish a copy of their local panel via a web
// interface.
//
// The protocol used is "MJPEG" (multipart/x-mixed-replace) as used by
// IP cameras; since the frames are computer-drawn text, PNG is the
// default image format and JPEG can be selected via Options.Format or
// the "format" URL parameter.
package videotext

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
)

// Options for a videotext panel.
type Options struct {
	// Rows and Cols give the emulated panel size. Defaults to 2x16.
	Rows, Cols int
	// FontSize is the glyph size in points. Defaults to 18.
	FontSize float64
	// Format specifies the image format to send to clients by
	// default.
	Format ImageFormat
}

// Panel is an in-memory character display rendered to images on
// demand.
//
// Implements display.TextDisplay and http.Handler.
type Panel struct {
	rows, cols    int
	defaultFormat ImageFormat
	face          font.Face
	cellW, cellH  int

	mu       sync.Mutex
	grid     [][]rune
	row, col int
	on       bool
	clients  map[*client]struct{}
	snapshot map[ImageFormat][]byte
}

var _ display.TextDisplay = (*Panel)(nil)
var _ http.Handler = (*Panel)(nil)

// New creates a new videotext panel.
func New(opts *Options) (*Panel, error) {
	if opts == nil {
		opts = &Options{}
	}
	rows, cols := opts.Rows, opts.Cols
	if rows == 0 {
		rows = 2
	}
	if cols == 0 {
		cols = 16
	}
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("videotext: invalid size %dx%d", rows, cols)
	}
	size := opts.FontSize
	if size == 0 {
		size = 18
	}
	if size < 4 {
		return nil, fmt.Errorf("videotext: invalid font size %g", size)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("videotext: parsing builtin font: %w", err)
	}
	p := &Panel{
		rows:          rows,
		cols:          cols,
		defaultFormat: opts.Format,
		face:          truetype.NewFace(f, &truetype.Options{Size: size}),
		// A fixed cell pitch keeps the panel geometry stable even
		// though the face is proportional.
		cellW:    int(size*0.62) + 1,
		cellH:    int(size*1.5) + 1,
		grid:     make([][]rune, rows),
		on:       true,
		clients:  map[*client]struct{}{},
		snapshot: map[ImageFormat][]byte{},
	}
	for i := range p.grid {
		p.grid[i] = blankRow(cols)
	}
	p.row, p.col = p.MinRow(), p.MinCol()
	return p, nil
}

func blankRow(cols int) []rune {
	return []rune(strings.Repeat(" ", cols))
}

// String returns the name of the device.
func (p *Panel) String() string {
	return fmt.Sprintf("videotext{%dx%d}", p.rows, p.cols)
}

// Halt implements conn.Resource and terminates all running client
// requests asynchronously.
func (p *Panel) Halt() error {
	p.mu.Lock()
	p.terminateClientsLocked()
	p.mu.Unlock()
	return nil
}

// AutoScroll is not supported. Returns display.ErrNotImplemented.
func (p *Panel) AutoScroll(enabled bool) error {
	return display.ErrNotImplemented
}

// Clear blanks the panel and moves the cursor home.
func (p *Panel) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.grid {
		p.grid[i] = blankRow(p.cols)
	}
	p.row, p.col = p.MinRow(), p.MinCol()
	p.changedLocked()
	return nil
}

// Cols returns the number of columns the panel supports.
func (p *Panel) Cols() int {
	return p.cols
}

// Cursor modes are not rendered; accepted and ignored.
func (p *Panel) Cursor(modes ...display.CursorMode) error {
	return nil
}

// Display turns the panel contents on or off.
func (p *Panel) Display(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.on = on
	p.changedLocked()
	return nil
}

// Home moves the cursor to (MinRow, MinCol).
func (p *Panel) Home() error {
	return p.MoveTo(p.MinRow(), p.MinCol())
}

// MinCol returns the min column position.
func (p *Panel) MinCol() int {
	return 1
}

// MinRow returns the min row position.
func (p *Panel) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (p *Panel) Move(dir display.CursorDirection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch dir {
	case display.Forward:
		if p.col < p.cols {
			p.col++
		}
	case display.Backward:
		if p.col > p.MinCol() {
			p.col--
		}
	default:
		return fmt.Errorf("videotext: %w", display.ErrNotImplemented)
	}
	return nil
}

// MoveTo moves the cursor to an arbitrary 1-based position.
func (p *Panel) MoveTo(row, col int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < p.MinRow() || row > p.rows || col < p.MinCol() || col > p.cols {
		return fmt.Errorf("videotext: MoveTo(%d,%d) out of range", row, col)
	}
	p.row, p.col = row, col
	return nil
}

// Rows returns the number of rows the panel supports.
func (p *Panel) Rows() int {
	return p.rows
}

// Write writes bytes at the cursor, clipping at the end of the line.
func (p *Panel) Write(b []byte) (int, error) {
	return p.WriteString(string(b))
}

// WriteString writes a string at the cursor.
func (p *Panel) WriteString(text string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range text {
		if p.col <= p.cols {
			p.grid[p.row-1][p.col-1] = r
			p.col++
		}
	}
	p.changedLocked()
	return len(text), nil
}

// Text returns the current panel contents, one string per row, with
// trailing blanks trimmed.
func (p *Panel) Text() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, p.rows)
	for i, row := range p.grid {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

// changedLocked drops cached snapshots and pokes the streaming
// clients.
func (p *Panel) changedLocked() {
	for f := range p.snapshot {
		delete(p.snapshot, f)
	}
	for c := range p.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (p *Panel) terminateClientsLocked() {
	for c := range p.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}
