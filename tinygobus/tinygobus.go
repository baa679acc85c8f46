// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinygobus exposes TinyGo buses through the periph interfaces.
//
// TinyGo's machine.I2C and machine.SPI implement tinygo.org/x/drivers.I2C
// and drivers.SPI. Wrapping them here lets the drivers in this module run
// unchanged on a microcontroller:
//
//	machine.I2C0.Configure(machine.I2CConfig{Frequency: 100_000})
//	lcd, err := hd44780.NewPCF857xBackpack(tinygobus.NewI2C(machine.I2C0, "I2C0"), 0x27, 2, 16)
//
// SPI chip select is a pin driven by the bridge, so packets latch and frame
// as they do on Linux:
//
//	machine.SPI0.Configure(machine.SPIConfig{Frequency: 1_000_000})
//	cs := machine.GP17
//	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
//	lcd, err := hd44780.NewAdafruitSPIBackpack(tinygobus.NewSPI(machine.SPI0, cs, "SPI0"), 2, 16)
//
// Bus speed and SPI mode are set when configuring the machine peripheral.
package tinygobus

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// ErrConfigure is returned for settings that belong to the machine
// peripheral's Configure call.
var ErrConfigure = errors.New("tinygobus: set with the peripheral's Configure()")

// I2C is an i2c.Bus backed by a drivers.I2C.
type I2C struct {
	mu   sync.Mutex
	bus  drivers.I2C
	name string
}

// NewI2C wraps bus. name is returned by String.
func NewI2C(bus drivers.I2C, name string) *I2C {
	return &I2C{bus: bus, name: name}
}

func (b *I2C) String() string {
	return b.name
}

// Tx implements i2c.Bus.
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.bus.Tx(addr, w, r); err != nil {
		return fmt.Errorf("tinygobus: %s: %w", b.name, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus. It always fails.
func (b *I2C) SetSpeed(f physic.Frequency) error {
	return ErrConfigure
}

// CSPin is an active low chip select line. machine.Pin implements it.
type CSPin interface {
	Set(high bool)
}

// SPI is a full duplex spi.Port and spi.Conn backed by a drivers.SPI.
//
// drivers.SPI never touches chip select, so the bridge drives cs around
// every transfer.
type SPI struct {
	mu   sync.Mutex
	bus  drivers.SPI
	cs   CSPin
	name string
}

// NewSPI wraps bus with cs as its chip select, deasserting it. name is
// returned by String.
//
// cs may be nil when the peripheral drives chip select in hardware; packet
// boundaries are then lost, which the 74HC595 and MCP23S17 transports
// can't work with.
func NewSPI(bus drivers.SPI, cs CSPin, name string) *SPI {
	if cs != nil {
		cs.Set(true)
	}
	return &SPI{bus: bus, cs: cs, name: name}
}

func (s *SPI) String() string {
	return s.name
}

// Connect implements spi.Port. Only 8 bit words are supported. f and mode
// are not checked: the peripheral's Configure call decides them.
func (s *SPI) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("tinygobus: %d bits per word is not supported", bits)
	}
	return s, nil
}

// Tx implements conn.Conn. w and r must be the same length unless one of
// them is nil.
func (s *SPI) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chipSelect(true)
	defer s.chipSelect(false)
	return s.tx(w, r)
}

// Duplex implements conn.Conn.
func (s *SPI) Duplex() conn.Duplex {
	return conn.Full
}

// TxPackets implements spi.Conn. Each packet is one Tx on the bus. Chip
// select is released after every packet unless its KeepCS is set, and
// always after the last one.
func (s *SPI) TxPackets(p []spi.Packet) error {
	for i := range p {
		if p[i].BitsPerWord != 0 && p[i].BitsPerWord != 8 {
			return fmt.Errorf("tinygobus: packet %d: %d bits per word is not supported", i, p[i].BitsPerWord)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.chipSelect(false)
	selected := false
	for i := range p {
		if !selected {
			s.chipSelect(true)
			selected = true
		}
		if err := s.tx(p[i].W, p[i].R); err != nil {
			return err
		}
		if !p[i].KeepCS && i != len(p)-1 {
			s.chipSelect(false)
			selected = false
		}
	}
	return nil
}

func (s *SPI) chipSelect(on bool) {
	if s.cs != nil {
		s.cs.Set(!on)
	}
}

func (s *SPI) tx(w, r []byte) error {
	if w != nil && r != nil && len(w) != len(r) {
		return fmt.Errorf("tinygobus: %s: w and r must be the same length, got %d and %d", s.name, len(w), len(r))
	}
	if err := s.bus.Tx(w, r); err != nil {
		return fmt.Errorf("tinygobus: %s: %w", s.name, err)
	}
	return nil
}

var _ i2c.Bus = &I2C{}
var _ spi.Port = &SPI{}
var _ spi.Conn = &SPI{}
