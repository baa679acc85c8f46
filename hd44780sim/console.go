// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// ConsoleOpts represents the options available for Console.
type ConsoleOpts struct {
	// X and Y are the size in terminal cells.
	X, Y    int
	Palette *ansi256.Palette
	// W receives the output. It defaults to stdout.
	W io.Writer

	_ struct{}
}

// Console is a display.Drawer that prints each pixel as a colored block
// using ANSI codes. Every refresh redraws the whole frame in place.
type Console struct {
	w       io.Writer
	x, y    int
	palette ansi256.Palette

	pixels []color.NRGBA
	drawn  bool
	buf    bytes.Buffer
}

// NewConsole returns a Console of opts.X by opts.Y cells.
func NewConsole(opts *ConsoleOpts) *Console {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Console{
		w:       w,
		x:       opts.X,
		y:       opts.Y,
		palette: *p,
		pixels:  make([]color.NRGBA, opts.X*opts.Y),
	}
}

// Show renders a rows by cols panel of the controller at one terminal cell
// per dot and draws it on con.
func (c *Controller) Show(con *Console, rows, cols int) error {
	img, err := c.Snapshot(rows, cols, &SnapshotOpts{
		Scale:      1,
		Background: DefaultSnapshotOpts.Background,
		Foreground: DefaultSnapshotOpts.Foreground,
	})
	if err != nil {
		return err
	}
	return con.Draw(con.Bounds(), img, image.Point{})
}

// ConsoleSize returns the console size Show needs for a rows by cols panel.
func ConsoleSize(rows, cols int) (x, y int) {
	return cols*cellW + 2*border, rows*cellH + 2*border
}

func (d *Console) String() string {
	return fmt.Sprintf("Console{%d, %d}", d.x, d.y)
}

// Halt implements conn.Resource.
//
// It resets the colors so the terminal is not corrupted.
func (d *Console) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Console) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Console) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.x, Y: d.y}}
}

// Draw implements display.Drawer.
func (d *Console) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	if dY := r.Dy(); dY < srcR.Dy() {
		srcR.Max.Y = srcR.Min.Y + dY
	}
	delta := r.Min.Sub(srcR.Min)
	for sY := srcR.Min.Y; sY < srcR.Max.Y; sY++ {
		for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
			c := color.NRGBAModel.Convert(src.At(sX, sY)).(color.NRGBA)
			c.A = 255
			d.pixels[(sY+delta.Y)*d.x+sX+delta.X] = c
		}
	}
	return d.refresh()
}

func (d *Console) refresh() error {
	d.buf.Reset()
	if d.drawn && d.y > 1 {
		// Back to the first line of the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.y-1)
	}
	for y := 0; y < d.y; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for _, c := range d.pixels[y*d.x : (y+1)*d.x] {
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m ")
		if y != d.y-1 {
			_ = d.buf.WriteByte('\n')
		}
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Console{}
var _ fmt.Stringer = &Console{}
