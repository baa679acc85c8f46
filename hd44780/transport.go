// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// Register is the state of the RS line for a transfer.
type Register bool

const (
	// InstructionRegister addresses instructions on write and the busy
	// flag/address counter on read.
	InstructionRegister Register = false
	// DataRegister addresses DDRAM or CGRAM.
	DataRegister Register = true
)

func (r Register) String() string {
	if r == DataRegister {
		return "data"
	}
	return "instruction"
}

// DataWidth is the number of data lines between the host and the
// controller.
type DataWidth int

const (
	Width4Bit DataWidth = 4
	Width8Bit DataWidth = 8
)

// Transport moves single bytes to the controller. It knows nothing about
// the instruction set.
//
// Implementations that can also read from the controller implement Reader.
// A transport without Reader is write-only: the driver then refuses busy
// flag polling and every operation that reads display memory.
type Transport interface {
	fmt.Stringer
	// Init puts the port in its idle state.
	Init() error
	// Send transfers one byte. In 4 bit mode this is two bus cycles, high
	// nibble first.
	Send(value byte, reg Register) error
	// SendInit transfers a single bus cycle carrying the high nibble of
	// value as an 8 bit instruction. It is used while the controller is
	// being switched to 4 bit mode. 8 bit transports send the whole byte.
	SendInit(value byte) error
	// DataWidth returns the interface width the transport is wired for.
	DataWidth() DataWidth
}

// Reader is implemented by transports that can read from the controller.
type Reader interface {
	// Receive reads one byte. With InstructionRegister the value is the
	// busy flag in bit 7 and the address counter in bits 0-6.
	Receive(reg Register) (byte, error)
}
