// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// shadowAC follows the controller's address counter from the instructions
// and data sent to it. Write-only transports can't read the counter back,
// so the driver answers position queries from this copy instead.
type shadowAC struct {
	addr      byte
	cgram     bool
	twoLine   bool
	decrement bool
}

// instruction updates the counter for an instruction written to the
// controller.
func (s *shadowAC) instruction(c byte) {
	switch {
	case c&cmdSetDDRAMAddr != 0:
		s.addr = c & addressMask
		s.cgram = false
	case c&cmdSetCGRAMAddr != 0:
		s.addr = c & 0x3f
		s.cgram = true
	case c&cmdFunctionSet != 0:
		s.twoLine = c&fnTwoLines != 0
	case c&cmdShift != 0:
		if c&shiftDisplay == 0 {
			s.step(c&shiftRight != 0)
		}
	case c&cmdDisplayControl != 0:
	case c&cmdEntryMode != 0:
		s.decrement = c&entryIncrement == 0
	case c&cmdHome != 0:
		s.addr = 0
		s.cgram = false
	case c == cmdClear:
		s.addr = 0
		s.cgram = false
		s.decrement = false
	}
}

// data advances the counter after a data read or write.
func (s *shadowAC) data() {
	s.step(!s.decrement)
}

func (s *shadowAC) step(forward bool) {
	switch {
	case s.cgram:
		if forward {
			s.addr = (s.addr + 1) & 0x3f
		} else {
			s.addr = (s.addr - 1) & 0x3f
		}
	case s.twoLine:
		// Two banks of 40: 0x00-0x27 and 0x40-0x67.
		switch {
		case forward && s.addr == 0x27:
			s.addr = 0x40
		case forward && s.addr >= 0x67:
			s.addr = 0x00
		case !forward && s.addr == 0x40:
			s.addr = 0x27
		case !forward && s.addr == 0x00:
			s.addr = 0x67
		case forward:
			s.addr++
		default:
			s.addr--
		}
	default:
		if forward {
			s.addr = (s.addr + 1) % 80
		} else if s.addr == 0 {
			s.addr = 79
		} else {
			s.addr--
		}
	}
}
