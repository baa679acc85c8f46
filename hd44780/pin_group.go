// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// PinGroup is a gpio.Group made of discrete pins. Bit i of a value maps to
// the pin at offset i.
//
// Each pin keeps its own direction, so unlike a gpioioctl.LineSet the data
// lines can be switched to inputs for reads. Use it with NewGPIO when RW is
// wired.
type PinGroup struct {
	pins []gpio.PinIO
}

// NewPinGroup returns a group of pins, the first one at offset 0.
func NewPinGroup(pins ...gpio.PinIO) *PinGroup {
	return &PinGroup{pins: pins}
}

// Pins implements gpio.Group.
func (g *PinGroup) Pins() []pin.Pin {
	out := make([]pin.Pin, len(g.pins))
	for i, p := range g.pins {
		out[i] = p
	}
	return out
}

// ByOffset implements gpio.Group.
func (g *PinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

// ByName implements gpio.Group.
func (g *PinGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber implements gpio.Group.
func (g *PinGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Out sets the pins selected by mask, all of them when mask is 0.
func (g *PinGroup) Out(value, mask gpio.GPIOValue) error {
	mask = g.all(mask)
	for i, p := range g.pins {
		bit := gpio.GPIOValue(1) << i
		if mask&bit == 0 {
			continue
		}
		if err := p.Out(value&bit != 0); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the levels of the pins selected by mask, all of them when
// mask is 0.
func (g *PinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	mask = g.all(mask)
	var v gpio.GPIOValue
	for i, p := range g.pins {
		bit := gpio.GPIOValue(1) << i
		if mask&bit != 0 && p.Read() {
			v |= bit
		}
	}
	return v, nil
}

// WaitForEdge is not supported.
func (g *PinGroup) WaitForEdge(time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt halts every pin and returns the first error.
func (g *PinGroup) Halt() error {
	var first error
	for _, p := range g.pins {
		if err := p.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (g *PinGroup) String() string {
	names := make([]string, len(g.pins))
	for i, p := range g.pins {
		names[i] = p.Name()
	}
	return "PinGroup[" + strings.Join(names, " ") + "]"
}

func (g *PinGroup) all(mask gpio.GPIOValue) gpio.GPIOValue {
	if mask == 0 {
		return gpio.GPIOValue(1)<<len(g.pins) - 1
	}
	return mask
}

var _ gpio.Group = &PinGroup{}
