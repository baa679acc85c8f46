// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

const (
	// aipRS is the RS bit of the control byte. Co (0x80) stays clear as
	// each transaction carries a single byte.
	aipRS byte = 0x40

	// AIP31068Address is the fixed address of the AiP31068 and ST7032
	// controllers.
	AIP31068Address uint16 = 0x3e
)

// AIP31068Transport drives an AiP31068 (or ST7032) controller. These chips
// embed the HD44780 instruction set behind a native I²C interface, so every
// byte is one transaction prefixed by a control byte selecting RS.
//
// The chip answers reads with the status byte, but the busy flag is
// unreliable until some time after power on and data reads are not part of
// the I²C protocol. The transport is write-only and the display is paced with
// fixed delays.
type AIP31068Transport struct {
	d *i2c.Dev
}

// NewAIP31068 returns a transport for the controller at address on bus.
func NewAIP31068(bus i2c.Bus, address uint16) *AIP31068Transport {
	return &AIP31068Transport{d: &i2c.Dev{Bus: bus, Addr: address}}
}

// Init implements Transport. The controller has no idle state to set up.
func (t *AIP31068Transport) Init() error {
	return nil
}

// Send implements Transport.
func (t *AIP31068Transport) Send(value byte, reg Register) error {
	var ctrl byte
	if reg == DataRegister {
		ctrl = aipRS
	}
	return t.d.Tx([]byte{ctrl, value}, nil)
}

// SendInit implements Transport.
func (t *AIP31068Transport) SendInit(value byte) error {
	return t.Send(value, InstructionRegister)
}

// DataWidth implements Transport.
func (t *AIP31068Transport) DataWidth() DataWidth {
	return Width8Bit
}

func (t *AIP31068Transport) String() string {
	return fmt.Sprintf("AIP31068{%s}", t.d)
}

var _ Transport = &AIP31068Transport{}
