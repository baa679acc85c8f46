// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// AutoScroll shifts the whole display on each write instead of moving the
// cursor.
func (dev *Dev) AutoScroll(enabled bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	c := cmdEntryMode | entryIncrement
	if enabled {
		c |= entryShift
	}
	return wrap(dev.command(c))
}

// Clear blanks the display and moves the cursor home.
func (dev *Dev) Clear() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.slowCommand(cmdClear))
}

// Cols returns the number of columns the display supports.
func (dev *Dev) Cols() int {
	return dev.opts.Cols
}

// Cursor sets the cursor mode. Modes combine, so
// Cursor(display.CursorUnderline, display.CursorBlink) shows both.
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			dev.cursor = false
			dev.blink = false
		case display.CursorUnderline:
			dev.cursor = true
		case display.CursorBlock, display.CursorBlink:
			dev.blink = true
		default:
			return fmt.Errorf("%s: unexpected cursor mode %d", packageName, mode)
		}
	}
	return wrap(dev.command(dev.displayControl()))
}

// Display turns the display on or off. The contents are kept.
func (dev *Dev) Display(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.on = on
	return wrap(dev.command(dev.displayControl()))
}

// Home moves the cursor to the first position and undoes display shifts.
func (dev *Dev) Home() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.slowCommand(cmdHome))
}

// MinCol returns the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// MinRow returns the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// Move the cursor one position. Up and Down keep the column and do
// nothing on the first or last row.
func (dev *Dev) Move(dir display.CursorDirection) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	switch dir {
	case display.Backward:
		return wrap(dev.command(cmdShift))
	case display.Forward:
		return wrap(dev.command(cmdShift | shiftRight))
	case display.Up, display.Down:
		row, col, err := dev.getPosition()
		if err != nil {
			return wrap(err)
		}
		if dir == display.Up {
			row--
		} else {
			row++
		}
		return wrap(dev.setPosition(row, col))
	default:
		return fmt.Errorf("%s: unexpected cursor direction %d", packageName, dir)
	}
}

// MoveTo moves the cursor to row, col. Both are one based. Unlike
// SetPosition an out of range position is an error.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.opts.Rows || col < dev.MinCol() || col > dev.opts.Cols {
		return fmt.Errorf("%s: MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.setPosition(row-1, col-1))
}

// Rows returns the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.opts.Rows
}

// Write writes p as character codes at the cursor. Control characters are
// not interpreted; use WriteLine for that.
func (dev *Dev) Write(p []byte) (n int, err error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, c := range p {
		if err = dev.writeData(c); err != nil {
			return n, wrap(err)
		}
		n++
	}
	return n, nil
}

// WriteString writes text at the cursor.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Backlight sets the backlight through Opts.Backlight.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	if dev.opts.Backlight == nil {
		return ErrNotImplemented
	}
	return wrap(dev.opts.Backlight.Backlight(intensity))
}

// RGBBacklight sets the backlight color when Opts.Backlight also implements
// display.DisplayRGBBacklight. A monochrome backlight is lit if any of the
// components is.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	switch bl := dev.opts.Backlight.(type) {
	case display.DisplayRGBBacklight:
		return wrap(bl.RGBBacklight(red, green, blue))
	case nil:
		return ErrNotImplemented
	default:
		return wrap(bl.Backlight(max(red, green, blue)))
	}
}

// Halt clears the display, turns the backlight off, and turns the display
// off.
func (dev *Dev) Halt() error {
	_ = dev.Clear()
	_ = dev.Backlight(0)
	return dev.Display(false)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s::%s - Rows: %d, Cols: %d", packageName, dev.t, dev.opts.Rows, dev.opts.Cols)
}
