// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "time"

// Instruction set. Each instruction is identified by its highest set bit;
// the lower bits are flags specific to that instruction.
const (
	cmdClear          byte = 0x01
	cmdHome           byte = 0x02
	cmdEntryMode      byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdShift          byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Entry mode flags.
const (
	entryIncrement byte = 0x02
	entryShift     byte = 0x01
)

// Display control flags.
const (
	displayOn     byte = 0x04
	displayCursor byte = 0x02
	displayBlink  byte = 0x01
)

// Cursor/display shift flags.
const (
	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04
)

// Function set flags.
const (
	fnDataLength8 byte = 0x10
	fnTwoLines    byte = 0x08
	fnFont5x10    byte = 0x04
)

const (
	busyFlag    byte = 0x80
	addressMask byte = 0x7f

	// Each bank of the DDRAM is 64 addresses wide in two line mode.
	lineStride = 64
	// Width of one DDRAM segment on the common 4 line layout.
	segmentCols = 20

	glyphSlots = 8
	glyphRows  = 8
)

// Datasheet timings used when the busy flag is not polled.
const (
	delayPowerOn     = 10 * time.Millisecond
	delayInstruction = 40 * time.Microsecond
	delayInitClear   = 1700 * time.Microsecond
	delayClear       = 1660 * time.Microsecond
)

// rowBase returns the DDRAM address of the first column of row. Even rows
// start at row*10, odd rows in the second bank at 54+row*10, which gives
// 0x00, 0x40, 0x14, 0x54 for a four line display.
func rowBase(row int) byte {
	if row%2 == 0 {
		return byte(row * 10)
	}
	return byte(54 + row*10)
}
