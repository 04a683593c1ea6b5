// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package videotext

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
)

// renderLocked draws the panel into a fresh image: a dark LCD-style
// background with one glyph per fixed-pitch cell.
func (p *Panel) renderLocked() *gg.Context {
	margin := p.cellW
	dc := gg.NewContext(2*margin+p.cellW*p.cols, 2*margin+p.cellH*p.rows)
	dc.SetRGB(0.04, 0.12, 0.04)
	dc.Clear()
	if !p.on {
		return dc
	}
	dc.SetFontFace(p.face)
	dc.SetRGB(0.55, 0.95, 0.55)
	for r, row := range p.grid {
		for c, ch := range row {
			if ch == ' ' {
				continue
			}
			x := float64(margin + c*p.cellW + p.cellW/2)
			y := float64(margin + r*p.cellH + p.cellH/2)
			dc.DrawStringAnchored(string(ch), x, y, 0.5, 0.5)
		}
	}
	return dc
}

// encodeLocked renders and encodes the panel in the given format.
func (p *Panel) encodeLocked(format ImageFormat) ([]byte, error) {
	img := p.renderLocked().Image()
	var buf bytes.Buffer
	switch format {
	case PNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case JPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("videotext: unhandled image format %s", format)
	}
	return buf.Bytes(), nil
}

// grabSnapshot returns the encoded panel, reusing the cached frame
// when nothing changed since the last request.
func (p *Panel) grabSnapshot(format ImageFormat) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	encoded, ok := p.snapshot[format]
	if !ok {
		var err error
		encoded, err = p.encodeLocked(format)
		if err != nil {
			return nil, err
		}
		p.snapshot[format] = encoded
	}
	return encoded, nil
}
