// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

// State is a copy of the controller's registers.
type State struct {
	// Address is the address counter; CGRAM is set when it points into
	// CGRAM.
	Address byte
	CGRAM   bool
	// EightBit, TwoLine and Font5x10 are the function set flags.
	EightBit bool
	TwoLine  bool
	Font5x10 bool
	// Increment and AutoShift are the entry mode flags.
	Increment bool
	AutoShift bool
	// On, Cursor and Blink are the display control flags.
	On     bool
	Cursor bool
	Blink  bool
	// Shift is the number of positions the display was shifted left.
	Shift int
}

// State returns the current register values.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Address:   c.ac,
		CGRAM:     c.cg,
		EightBit:  c.eightBit,
		TwoLine:   c.twoLine,
		Font5x10:  c.font5x10,
		Increment: c.increment,
		AutoShift: c.autoShift,
		On:        c.on,
		Cursor:    c.cursor,
		Blink:     c.blink,
		Shift:     c.shift,
	}
}

// Inits returns how many times the transport was initialized.
func (c *Controller) Inits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inits
}

// DDRAM returns a copy of the display memory. In two line mode the first
// line is at 0-39 and the second at 40-79.
func (c *Controller) DDRAM() [ddramSize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ddram
}

// Glyph returns the 8 rows of the custom character in slot, or zeros if
// slot isn't 0-7.
func (c *Controller) Glyph(slot int) [8]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var g [8]byte
	if slot >= 0 && slot < 8 {
		copy(g[:], c.cgram[slot*8:])
	}
	return g
}

// Lines returns what a panel of rows by cols shows, including the display
// shift. Rows are mapped with the same DDRAM layout the driver uses:
// 0x00, 0x40, 0x14, 0x54. The display on/off state is ignored.
func (c *Controller) Lines(rows, cols int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, rows)
	for row := range out {
		out[row] = string(c.line(row, cols))
	}
	return out
}

// line returns the character codes visible on row.
func (c *Controller) line(row, cols int) []byte {
	b := make([]byte, cols)
	for col := range b {
		b[col] = c.ddram[c.visible(row, col)]
	}
	return b
}

// visible returns the DDRAM index shown at row, col.
func (c *Controller) visible(row, col int) int {
	base := rowBase(row)
	if !c.twoLine {
		return (base + col + c.shift) % ddramSize
	}
	bank := 0
	if base >= secondBank {
		bank, base = bankLen, base-secondBank
	}
	return bank + (base+col+c.shift)%bankLen
}

// cursorCell returns the row and column AC is shown at, or false if it
// isn't visible on a rows by cols panel.
func (c *Controller) cursorCell(rows, cols int) (int, int, bool) {
	if c.cg {
		return 0, 0, false
	}
	idx := c.index(c.ac)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if c.visible(row, col) == idx {
				return row, col, true
			}
		}
	}
	return 0, 0, false
}

func rowBase(row int) int {
	if row%2 == 0 {
		return row * 10
	}
	return 54 + row*10
}
