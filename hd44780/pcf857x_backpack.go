// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/charlcd/pcf857x"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// PCF8574 port bits as wired on the common LCD1602/LCD2004 backpacks. D4-D7
// are on the upper nibble.
const (
	pcfRS        gpio.GPIOValue = 0x01
	pcfRW        gpio.GPIOValue = 0x02
	pcfEnable    gpio.GPIOValue = 0x04
	pcfBacklight gpio.GPIOValue = 0x08
	pcfData      gpio.GPIOValue = 0xf0
)

// PCF8574Transport drives a 4 bit display through a PCF8574 backpack. Every
// transfer is a single I²C transaction carrying all the E strobes.
//
// It implements Reader and display.DisplayBacklight.
type PCF8574Transport struct {
	dev *pcf857x.Dev

	mu sync.Mutex
	bl gpio.GPIOValue
}

// NewPCF8574 returns a transport for the backpack at address on bus. The
// backlight starts on.
func NewPCF8574(bus i2c.Bus, address uint16) (*PCF8574Transport, error) {
	dev, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	return &PCF8574Transport{dev: dev, bl: pcfBacklight}, nil
}

// NewPCF857xBackpack returns a display configured to use the pcf8574 i2c
// backpacks.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// To use this, get an I2C bus, and call this function with the bus, i2c
// address, number of rows, and columns. The backlight is controlled through
// the backpack.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Dev, error) {
	t, err := NewPCF8574(bus, address)
	if err != nil {
		return nil, err
	}
	opts := DefaultOpts
	opts.Rows, opts.Cols = rows, cols
	opts.Backlight = t
	return New(t, &opts)
}

// Init drives everything low except the backlight.
func (t *PCF8574Transport) Init() error {
	return t.dev.Stream(t.backlight())
}

// Send implements Transport.
func (t *PCF8574Transport) Send(value byte, reg Register) error {
	f := t.flags(reg)
	hi := gpio.GPIOValue(value) & pcfData
	lo := gpio.GPIOValue(value<<4) & pcfData
	return t.dev.Stream(hi|pcfEnable|f, hi|f, lo|pcfEnable|f, lo|f, t.backlight())
}

// SendInit implements Transport.
func (t *PCF8574Transport) SendInit(value byte) error {
	f := t.flags(InstructionRegister)
	hi := gpio.GPIOValue(value) & pcfData
	return t.dev.Stream(hi|pcfEnable|f, hi|f)
}

// Receive implements Reader. The byte is read as two nibbles, high first.
func (t *PCF8574Transport) Receive(reg Register) (byte, error) {
	hi, err := t.readNibble(reg)
	if err != nil {
		return 0, err
	}
	lo, err := t.readNibble(reg)
	if err != nil {
		return 0, err
	}
	return hi | lo>>4, nil
}

// readNibble releases D4-D7, raises RW and E, samples the upper nibble and
// drops E again.
func (t *PCF8574Transport) readNibble(reg Register) (byte, error) {
	f := pcfData | pcfRW | t.flags(reg)
	if err := t.dev.Stream(f, f|pcfEnable); err != nil {
		return 0, err
	}
	v, err := t.dev.Read(pcfData)
	if err != nil {
		return 0, err
	}
	return byte(v), t.dev.Stream(f)
}

// DataWidth implements Transport.
func (t *PCF8574Transport) DataWidth() DataWidth {
	return Width4Bit
}

// Backlight implements display.DisplayBacklight. Any non-zero intensity
// turns the backlight on.
func (t *PCF8574Transport) Backlight(intensity display.Intensity) error {
	t.mu.Lock()
	t.bl = 0
	if intensity > 0 {
		t.bl = pcfBacklight
	}
	t.mu.Unlock()
	return t.dev.Stream(t.backlight())
}

func (t *PCF8574Transport) String() string {
	return fmt.Sprintf("pcf8574(%s)", t.dev)
}

func (t *PCF8574Transport) backlight() gpio.GPIOValue {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bl
}

func (t *PCF8574Transport) flags(reg Register) gpio.GPIOValue {
	f := t.backlight()
	if reg == DataRegister {
		f |= pcfRS
	}
	return f
}

var _ Transport = &PCF8574Transport{}
var _ Reader = &PCF8574Transport{}
var _ display.DisplayBacklight = &PCF8574Transport{}
