// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"github.com/GermanBionicSystems/charlcd/mcp23xxx"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Port A bits 6 and 7 of the MCP23S17 carry E and RS; port B carries D0-D7.
const (
	mcpEnablePin = 6
	mcpRSPin     = 7

	mcpEnable gpio.GPIOValue = 1 << 0 // offsets in the control group
	mcpRS     gpio.GPIOValue = 1 << 1
)

// MCP23S17Transport drives an 8 bit display through an MCP23S17 SPI
// expander. RW is not wired, so the transport is write-only.
type MCP23S17Transport struct {
	dev  *mcp23xxx.Dev
	ctrl gpio.Group
	data gpio.Group
}

// NewMCP23S17 returns a transport for the expander on c. The expander's
// hardware address is 0.
func NewMCP23S17(c spi.Conn) (*MCP23S17Transport, error) {
	dev, err := mcp23xxx.NewSPI(c, mcp23xxx.MCP23S17, 0)
	if err != nil {
		return nil, err
	}
	ctrl, err := dev.Group(0, []int{mcpEnablePin, mcpRSPin})
	if err != nil {
		return nil, err
	}
	data, err := dev.Group(1, []int{0, 1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		return nil, err
	}
	return &MCP23S17Transport{dev: dev, ctrl: ctrl, data: data}, nil
}

// NewMCP23S17Backpack returns a display wired to an MCP23S17 on c. opts may
// be nil. BusyPolling is not available on this wiring.
func NewMCP23S17Backpack(c spi.Conn, opts *Opts) (*Dev, error) {
	t, err := NewMCP23S17(c)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// Init makes both ports outputs and drives them low.
func (t *MCP23S17Transport) Init() error {
	if err := t.ctrl.Out(0, 0); err != nil {
		return err
	}
	return t.data.Out(0, 0)
}

// Send implements Transport. Port writes that wouldn't change the latch are
// skipped by the expander driver.
func (t *MCP23S17Transport) Send(value byte, reg Register) error {
	var flags gpio.GPIOValue
	if reg == DataRegister {
		flags = mcpRS
	}
	if err := t.ctrl.Out(flags, 0); err != nil {
		return err
	}
	if err := t.data.Out(gpio.GPIOValue(value), 0); err != nil {
		return err
	}
	if err := t.ctrl.Out(flags|mcpEnable, 0); err != nil {
		return err
	}
	return t.ctrl.Out(flags, 0)
}

// SendInit implements Transport.
func (t *MCP23S17Transport) SendInit(value byte) error {
	return t.Send(value, InstructionRegister)
}

// DataWidth implements Transport.
func (t *MCP23S17Transport) DataWidth() DataWidth {
	return Width8Bit
}

func (t *MCP23S17Transport) String() string {
	return fmt.Sprintf("mcp23s17(%s)", t.dev)
}

var _ Transport = &MCP23S17Transport{}
