// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Cell geometry in dots: 5x8 glyph plus one dot of spacing, and a two dot
// border around the panel.
const (
	cellW  = 6
	cellH  = 9
	border = 2
)

// SnapshotOpts controls Snapshot rendering.
type SnapshotOpts struct {
	// Scale is the number of pixels per dot.
	Scale int
	// Background is the lit backlight, Foreground the dark dots.
	Background color.Color
	Foreground color.Color
}

// DefaultSnapshotOpts looks like a yellow-green STN panel.
var DefaultSnapshotOpts = SnapshotOpts{
	Scale:      4,
	Background: color.NRGBA{R: 0x9c, G: 0xc4, B: 0x2a, A: 0xff},
	Foreground: color.NRGBA{R: 0x1e, G: 0x2a, B: 0x10, A: 0xff},
}

var (
	fontOnce sync.Once
	romFont  *truetype.Font
	fontErr  error
)

func parseFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		romFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return romFont, fontErr
}

// Snapshot renders a rows by cols panel. Custom characters (codes 0-15)
// are drawn dot by dot from CGRAM; other codes are drawn with a TrueType
// face. The cursor is drawn when enabled, a blinking block as solid. opts
// may be nil.
func (c *Controller) Snapshot(rows, cols int, opts *SnapshotOpts) (image.Image, error) {
	if opts == nil {
		o := DefaultSnapshotOpts
		opts = &o
	}
	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}
	f, err := parseFont()
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{Size: float64(8 * scale), Hinting: font.HintingFull})
	defer face.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	dc := gg.NewContext((cols*cellW+2*border)*scale, (rows*cellH+2*border)*scale)
	dc.SetColor(opts.Background)
	dc.Clear()
	if !c.on {
		return dc.Image(), nil
	}
	s := float64(scale)
	dc.SetColor(opts.Foreground)
	dc.SetFontFace(face)
	for row := 0; row < rows; row++ {
		for col, code := range c.line(row, cols) {
			x := float64(border+col*cellW) * s
			y := float64(border+row*cellH) * s
			switch {
			case code < 0x10:
				g := c.cgram[int(code&7)*8:]
				for dy := 0; dy < 8; dy++ {
					for dx := 0; dx < 5; dx++ {
						if g[dy]&(0x10>>dx) != 0 {
							dc.DrawRectangle(x+float64(dx)*s, y+float64(dy)*s, s, s)
						}
					}
				}
				dc.Fill()
			case code != ' ':
				dc.DrawStringAnchored(romString(code), x+2.5*s, y+4*s, 0.5, 0.5)
			}
		}
	}
	if row, col, ok := c.cursorCell(rows, cols); ok && (c.cursor || c.blink) {
		x := float64(border+col*cellW) * s
		y := float64(border+row*cellH) * s
		if c.blink {
			dc.DrawRectangle(x, y, 5*s, 8*s)
		} else {
			dc.DrawRectangle(x, y+7*s, 5*s, s)
		}
		dc.Fill()
	}
	return dc.Image(), nil
}

// romString maps a character code of the A00 ROM to something printable.
// The Japanese half of the ROM is shown as a middle dot.
func romString(code byte) string {
	switch {
	case code == 0x5c:
		return "¥"
	case code == 0x7e:
		return "→"
	case code == 0x7f:
		return "←"
	case code == 0xdf:
		return "°"
	case code >= 0x20 && code < 0x80:
		return string(rune(code))
	default:
		return "·"
	}
}
