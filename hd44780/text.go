// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"bytes"
	"fmt"
)

// ScrollDirection is the direction text moves in Scroll.
type ScrollDirection int

const (
	// ScrollUp moves every row up by one and blanks the last row.
	ScrollUp ScrollDirection = iota
	// ScrollDown moves every row down by one and blanks the first row.
	ScrollDown
)

// SetPosition moves the address counter to row, col. Both are zero based.
// A position outside the display is ignored.
func (dev *Dev) SetPosition(row, col int) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.setPosition(row, col))
}

func (dev *Dev) setPosition(row, col int) error {
	if row < 0 || col < 0 || row >= dev.opts.Rows || col >= dev.opts.Cols {
		return nil
	}
	return dev.command(cmdSetDDRAMAddr | (rowBase(row) + byte(col)))
}

// GetPosition returns the zero based row and column of the address
// counter.
func (dev *Dev) GetPosition() (row, col int, err error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	row, col, err = dev.getPosition()
	return row, col, wrap(err)
}

func (dev *Dev) getPosition() (int, int, error) {
	ac, err := dev.address()
	if err != nil {
		return 0, 0, err
	}
	row := int(ac) / lineStride
	col := int(ac) % lineStride
	if dev.opts.Rows > 2 {
		// Rows 2 and 3 continue rows 0 and 1 at column 20.
		if col >= segmentCols {
			row += 2
		}
		col %= segmentCols
	}
	return row, col, nil
}

// WriteLine writes s starting at column 0 of row. A '\n' moves to the
// start of the next row, wrapping to the first row after the last one; a
// '\r' returns to the start of the current row. Nothing is written if row
// is outside the display.
func (dev *Dev) WriteLine(s string, row int) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if row < 0 || row >= dev.opts.Rows {
		return nil
	}
	if err := dev.setPosition(row, 0); err != nil {
		return wrap(err)
	}
	for i := 0; i < len(s); i++ {
		var err error
		switch s[i] {
		case '\n':
			row = (row + 1) % dev.opts.Rows
			err = dev.setPosition(row, 0)
		case '\r':
			err = dev.setPosition(row, 0)
		default:
			err = dev.writeData(s[i])
		}
		if err != nil {
			return wrap(err)
		}
	}
	return nil
}

// ClearLine fills row with spaces.
func (dev *Dev) ClearLine(row int) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.clearRow(row))
}

func (dev *Dev) clearRow(row int) error {
	if row < 0 || row >= dev.opts.Rows {
		return nil
	}
	return dev.writeRow(row, bytes.Repeat([]byte{' '}, dev.opts.Cols))
}

// writeRow writes b verbatim from column 0 of row.
func (dev *Dev) writeRow(row int, b []byte) error {
	if err := dev.setPosition(row, 0); err != nil {
		return err
	}
	for _, c := range b {
		if err := dev.writeData(c); err != nil {
			return err
		}
	}
	return nil
}

// ReadLine returns the characters of row. It returns an empty string if
// row is outside the display.
func (dev *Dev) ReadLine(row int) (string, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.r == nil {
		return "", ErrReadNotSupported
	}
	if row < 0 || row >= dev.opts.Rows {
		return "", nil
	}
	b, err := dev.readRow(row)
	return string(b), wrap(err)
}

func (dev *Dev) readRow(row int) ([]byte, error) {
	if err := dev.setPosition(row, 0); err != nil {
		return nil, err
	}
	b := make([]byte, dev.opts.Cols)
	for i := range b {
		c, err := dev.readData()
		if err != nil {
			return nil, err
		}
		b[i] = c
	}
	return b, nil
}

// Scroll moves the text by one row. The controller can only shift
// horizontally, so each row is read back and rewritten. The address
// counter is restored afterwards.
func (dev *Dev) Scroll(dir ScrollDirection) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.r == nil {
		return ErrReadNotSupported
	}
	ac, err := dev.address()
	if err != nil {
		return wrap(err)
	}
	// Copy in the direction of the shift so no source row is overwritten
	// before it has been read.
	switch dir {
	case ScrollUp:
		for row := 1; row < dev.opts.Rows; row++ {
			if err = dev.copyRow(row, row-1); err != nil {
				return wrap(err)
			}
		}
		err = dev.clearRow(dev.opts.Rows - 1)
	case ScrollDown:
		for row := dev.opts.Rows - 2; row >= 0; row-- {
			if err = dev.copyRow(row, row+1); err != nil {
				return wrap(err)
			}
		}
		err = dev.clearRow(0)
	default:
		return fmt.Errorf("%s: invalid scroll direction %d", packageName, dir)
	}
	if err != nil {
		return wrap(err)
	}
	return wrap(dev.command(cmdSetDDRAMAddr | ac))
}

func (dev *Dev) copyRow(from, to int) error {
	b, err := dev.readRow(from)
	if err != nil {
		return err
	}
	return dev.writeRow(to, b)
}

// LoadCustomChar stores an 8 row pattern in CGRAM slot 0-7. Character
// codes 0-7 (and their aliases 8-15) then display it. Only the low 5 bits
// of each row are used. The address counter is restored afterwards. A slot
// outside 0-7 is ignored.
func (dev *Dev) LoadCustomChar(slot int, pattern [8]byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if slot < 0 || slot >= glyphSlots {
		return nil
	}
	ac, err := dev.address()
	if err != nil {
		return wrap(err)
	}
	if err := dev.command(cmdSetCGRAMAddr | byte(slot*glyphRows)); err != nil {
		return wrap(err)
	}
	for _, row := range pattern {
		if err := dev.writeData(row); err != nil {
			return wrap(err)
		}
	}
	return wrap(dev.command(cmdSetDDRAMAddr | ac))
}
