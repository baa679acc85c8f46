// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"github.com/GermanBionicSystems/charlcd/mcp23xxx"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// Expander pin numbers of the display lines on the Adafruit backpack. The
// MCP23008 (I²C side) and the 74HC595 (SPI side) share the numbering, but
// the 74HC595 has D4-D7 reversed.
const (
	d4           = 3
	d5           = 4
	d6           = 5
	d7           = 6
	rsPin        = 1
	enablePin    = 2
	backlightPin = 7
)

// NewAdafruitI2CBackpack returns a display configured to use the Adafruit
// I2C/SPI LCD Backpack.
//
// # Product Information
//
// https://www.adafruit.com/product/292
//
// The I2C side of this backpack uses an MCP23008 I/O expander. To use this,
// get an I2C bus, and call this function with the bus, i2c address, number of
// rows, and columns.
func NewAdafruitI2CBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Dev, error) {
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23008, address)
	if err != nil {
		return nil, err
	}
	gr, err := mcp.Group(0, []int{d4, d5, d6, d7, rsPin, enablePin, backlightPin})
	if err != nil {
		return nil, err
	}
	out, err := outputs(gr, 4, 5, 6)
	if err != nil {
		return nil, err
	}
	return NewHD44780(gr, out[0], out[1], NewBacklight(out[2]), rows, cols)
}

// outputs returns the pins of gr at offsets as outputs.
func outputs(gr gpio.Group, offsets ...int) ([]gpio.PinOut, error) {
	out := make([]gpio.PinOut, len(offsets))
	for i, o := range offsets {
		p, ok := gr.ByOffset(o).(gpio.PinOut)
		if !ok {
			return nil, fmt.Errorf("%s: pin %d of %s is not an output", packageName, o, gr)
		}
		out[i] = p
	}
	return out, nil
}

// NewAdafruitSPIBackpack returns a display configured to use the SPI side of
// the Adafruit I2C/SPI backpack. The SPI side uses a 74HC595 serial to
// parallel shift register, see HC595Transport.
func NewAdafruitSPIBackpack(conn spi.Conn, rows, cols int) (*Dev, error) {
	t, err := NewHC595(conn)
	if err != nil {
		return nil, err
	}
	opts := DefaultOpts
	opts.Rows, opts.Cols = rows, cols
	opts.Backlight = t
	return New(t, &opts)
}
