// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"encoding/binary"
	"errors"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/mmr"
)

// RegisterMap is the register window of a parallel master port (PMP)
// peripheral. mmr.Dev8 implements it.
type RegisterMap interface {
	ReadUint8(reg uint8) (uint8, error)
	WriteUint8(reg uint8, v uint8) error
}

// PMP register offsets within the window.
const (
	PMPConH  uint8 = 0x00
	PMPConL  uint8 = 0x01
	PMPModeH uint8 = 0x02
	PMPModeL uint8 = 0x03
	PMPAddrL uint8 = 0x04
	PMPEnH   uint8 = 0x05
	PMPEnL   uint8 = 0x06
	PMPDataL uint8 = 0x07
)

const (
	pmpEnable   uint8 = 0x80 // PMCONH.PMPEN
	pmpBusy     uint8 = 0x80 // PMMODEH.BUSY
	pmpMaxStall       = 10 * time.Millisecond
)

// ErrBusTimeout is returned when the parallel port stays busy.
var ErrBusTimeout = errors.New("hd44780: parallel port busy timeout")

// PMPTransport drives the display through a parallel master port. The
// peripheral generates the E and RW strobes itself; RS is PMA0. The
// display is always used in 8 bit mode.
type PMPTransport struct {
	regs RegisterMap
}

// NewPMP returns a transport using the PMP registers in regs.
func NewPMP(regs RegisterMap) *PMPTransport {
	return &PMPTransport{regs: regs}
}

// NewPMPConn returns a transport for a PMP whose registers are reached
// through c, one byte wide, register address first.
func NewPMPConn(c conn.Conn) *PMPTransport {
	return NewPMP(&mmr.Dev8{Conn: c, Order: binary.LittleEndian})
}

// Init configures the port for an HD44780: master mode 2 (separate read
// and write strobes with E on PMRD/PMWR polarity), 8 bit, PMA0 enabled as
// the address line, and then turns the peripheral on.
func (t *PMPTransport) Init() error {
	config := []struct{ reg, v uint8 }{
		{PMPConH, 0x23},
		{PMPConL, 0x03},
		{PMPModeH, 0x03},
		{PMPModeL, 0x08},
		{PMPEnH, 0x00},
		{PMPEnL, 0x01},
		{PMPConH, 0x23 | pmpEnable},
	}
	for _, c := range config {
		if err := t.regs.WriteUint8(c.reg, c.v); err != nil {
			return err
		}
	}
	return nil
}

// Send implements Transport.
func (t *PMPTransport) Send(value byte, reg Register) error {
	if err := t.selectRegister(reg); err != nil {
		return err
	}
	return t.regs.WriteUint8(PMPDataL, value)
}

// SendInit implements Transport.
func (t *PMPTransport) SendInit(value byte) error {
	return t.Send(value, InstructionRegister)
}

// Receive implements Reader. A read of the data register returns the value
// latched by the previous read cycle and starts a new one, so the first
// value is stale and discarded.
func (t *PMPTransport) Receive(reg Register) (byte, error) {
	if err := t.selectRegister(reg); err != nil {
		return 0, err
	}
	if _, err := t.regs.ReadUint8(PMPDataL); err != nil {
		return 0, err
	}
	if err := t.waitIdle(); err != nil {
		return 0, err
	}
	return t.regs.ReadUint8(PMPDataL)
}

// DataWidth implements Transport.
func (t *PMPTransport) DataWidth() DataWidth {
	return Width8Bit
}

func (t *PMPTransport) String() string {
	return "pmp"
}

func (t *PMPTransport) selectRegister(reg Register) error {
	var a uint8
	if reg == DataRegister {
		a = 1
	}
	if err := t.regs.WriteUint8(PMPAddrL, a); err != nil {
		return err
	}
	return t.waitIdle()
}

func (t *PMPTransport) waitIdle() error {
	deadline := time.Now().Add(pmpMaxStall)
	for {
		mode, err := t.regs.ReadUint8(PMPModeH)
		if err != nil {
			return err
		}
		if mode&pmpBusy == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrBusTimeout
		}
	}
}

var _ Transport = &PMPTransport{}
var _ Reader = &PMPTransport{}
