// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/charlcd/pca9633"
	"periph.io/x/conn/v3/i2c"
)

// Waveshare1602RGBAddress is the PCA9633 backlight controller address on the
// Waveshare LCD1602 RGB module.
const Waveshare1602RGBAddress uint16 = 0x60

// NewWaveshare1602RGB returns a display configured for the Waveshare LCD1602
// RGB module (SKU 19537).
//
// # Product Information
//
// https://www.waveshare.com/wiki/LCD1602_RGB_Module
//
// The module has an AiP31068 controller and a PCA9633 driving the RGB
// backlight, both on bus. Use RGBBacklight on the returned display to set
// the color.
func NewWaveshare1602RGB(bus i2c.Bus, rows, cols int) (*Dev, error) {
	// The LEDs are wired blue, green, red from output 0.
	bl, err := pca9633.New(bus, Waveshare1602RGBAddress, &pca9633.Opts{RGB: [3]int{2, 1, 0}})
	if err != nil {
		return nil, err
	}
	opts := DefaultOpts
	opts.Rows, opts.Cols = rows, cols
	opts.Backlight = bl
	return New(NewAIP31068(bus, AIP31068Address), &opts)
}
