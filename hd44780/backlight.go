// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOBacklight switches a monochrome backlight with a single pin. Any
// non-zero intensity turns it on.
type GPIOBacklight struct {
	pin gpio.PinOut
	// ActiveLow is set when the backlight transistor lights on a low level.
	ActiveLow bool
}

// NewBacklight returns a backlight controlled by pin, lit on a high level.
func NewBacklight(pin gpio.PinOut) *GPIOBacklight {
	return &GPIOBacklight{pin: pin}
}

// Backlight implements display.DisplayBacklight.
func (bl *GPIOBacklight) Backlight(intensity display.Intensity) error {
	on := intensity > 0
	return bl.pin.Out(gpio.Level(on != bl.ActiveLow))
}

var _ display.DisplayBacklight = &GPIOBacklight{}
