// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// 74HC595 outputs as wired on the SPI side of the Adafruit backpack. The
// data lines run D7 on QD up to D4 on QG.
const (
	hc595RS        gpio.GPIOValue = 1 << rsPin
	hc595Enable    gpio.GPIOValue = 1 << enablePin
	hc595Backlight gpio.GPIOValue = 1 << backlightPin
)

// HC595Transport drives a 4 bit display through a 74HC595 shift register.
// A whole transfer, E strobes included, is one call on the SPI port.
//
// It is write-only and implements display.DisplayBacklight.
type HC595Transport struct {
	dev *nxp74hc595.Dev

	mu sync.Mutex
	bl gpio.GPIOValue
}

// NewHC595 returns a transport for the shift register on conn. The
// backlight starts on.
func NewHC595(conn spi.Conn) (*HC595Transport, error) {
	dev, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, err
	}
	return &HC595Transport{dev: dev, bl: hc595Backlight}, nil
}

// Init drives everything low except the backlight.
func (t *HC595Transport) Init() error {
	return t.dev.Stream(t.backlight())
}

// Send implements Transport.
func (t *HC595Transport) Send(value byte, reg Register) error {
	f := t.backlight()
	if reg == DataRegister {
		f |= hc595RS
	}
	hi := hc595Nibble(value>>4) | f
	lo := hc595Nibble(value) | f
	return t.dev.Stream(hi|hc595Enable, hi, lo|hc595Enable, lo)
}

// SendInit implements Transport.
func (t *HC595Transport) SendInit(value byte) error {
	hi := hc595Nibble(value>>4) | t.backlight()
	return t.dev.Stream(hi|hc595Enable, hi)
}

// DataWidth implements Transport.
func (t *HC595Transport) DataWidth() DataWidth {
	return Width4Bit
}

// Backlight implements display.DisplayBacklight. Any non-zero intensity
// turns it on.
func (t *HC595Transport) Backlight(intensity display.Intensity) error {
	t.mu.Lock()
	if intensity > 0 {
		t.bl = hc595Backlight
	} else {
		t.bl = 0
	}
	bl := t.bl
	t.mu.Unlock()
	return t.dev.Out(bl, hc595Backlight)
}

func (t *HC595Transport) String() string {
	return fmt.Sprintf("HC595{%s}", t.dev)
}

func (t *HC595Transport) backlight() gpio.GPIOValue {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bl
}

// hc595Nibble places the low nibble of v on the data outputs.
func hc595Nibble(v byte) gpio.GPIOValue {
	var out gpio.GPIOValue
	for i, q := range [4]int{d7, d6, d5, d4} {
		if v&(1<<i) != 0 {
			out |= 1 << q
		}
	}
	return out
}

var _ Transport = &HC595Transport{}
var _ display.DisplayBacklight = &HC595Transport{}
