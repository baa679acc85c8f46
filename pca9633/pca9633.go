// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pca9633 drives the PCA9633 four channel LED PWM controller as the
// backlight of a character display.
//
// Three channels carry the red, green and blue legs of the backlight. The
// fourth is free and can be set with Out.
//
// # Datasheet
//
// https://www.nxp.com/docs/en/data-sheet/PCA9633.pdf
package pca9633

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

const (
	regMode1  uint8 = 0x00
	regMode2  uint8 = 0x01
	regPWM0   uint8 = 0x02
	regGrpPWM uint8 = 0x06
	regGrpFrq uint8 = 0x07
	regLEDOut uint8 = 0x08

	// MODE1: register auto-increment and all-call on, oscillator running.
	mode1Default uint8 = 0x81
	// MODE2: outputs change on STOP, high impedance when disabled.
	mode2Default uint8 = 0x05
	mode2Totem   uint8 = 0x08
	mode2Invert  uint8 = 0x10
	mode2Blink   uint8 = 0x20

	// Channels is the number of LED outputs.
	Channels = 4
)

// Output states in LEDOUT, two bits per channel.
const (
	ledOff   uint8 = 0
	ledOn    uint8 = 1
	ledPWM   uint8 = 2
	ledGroup uint8 = 3
)

// Opts describes how the backlight is wired to the controller.
type Opts struct {
	// TotemPole selects push-pull outputs. The default is open drain,
	// sinking current from LEDs tied to the supply.
	TotemPole bool
	// Invert flips the output polarity, for LEDs driven through an
	// inverting transistor.
	Invert bool
	// RGB holds the output driving the red, green and blue legs.
	RGB [3]int
}

// DefaultOpts is an open drain backlight with red, green and blue on
// outputs 0, 1 and 2.
var DefaultOpts = Opts{RGB: [3]int{0, 1, 2}}

// Dev is a PCA9633 driving an RGB backlight.
//
// It implements display.DisplayBacklight and display.DisplayRGBBacklight.
type Dev struct {
	r    mmr.Dev8
	opts Opts

	mu     sync.Mutex
	mode2  uint8
	ledout uint8
}

// New initializes the controller at address on bus with every output off.
func New(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	used := 0
	for _, ch := range opts.RGB {
		if ch < 0 || ch >= Channels || used&(1<<ch) != 0 {
			return nil, fmt.Errorf("pca9633: invalid output %d", ch)
		}
		used |= 1 << ch
	}
	dev := &Dev{
		r:     mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: address}, Order: binary.LittleEndian},
		opts:  *opts,
		mode2: mode2Default,
	}
	if opts.TotemPole {
		dev.mode2 |= mode2Totem
	}
	if opts.Invert {
		dev.mode2 |= mode2Invert
	}
	if err := dev.r.WriteUint8(regMode1, mode1Default); err != nil {
		return nil, wrap(err)
	}
	if err := dev.r.WriteUint8(regMode2, dev.mode2); err != nil {
		return nil, wrap(err)
	}
	return dev, wrap(dev.r.WriteUint8(regLEDOut, ledOff))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("pca9633: %w", err)
}

// Out sets the intensity of outputs 0 up to len(values)-1. Zero turns an
// output off and 255 or more turns it fully on. Values in between are
// pulse width modulated.
func (dev *Dev) Out(values ...display.Intensity) error {
	if len(values) > Channels {
		return fmt.Errorf("pca9633: %d values for %d outputs", len(values), Channels)
	}
	outputs := make([]int, len(values))
	for i := range outputs {
		outputs[i] = i
	}
	return dev.set(outputs, values)
}

// RGBBacklight implements display.DisplayRGBBacklight. The spare output is
// left alone.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	return dev.set(dev.opts.RGB[:], []display.Intensity{red, green, blue})
}

// Backlight implements display.DisplayBacklight with white light.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.RGBBacklight(intensity, intensity, intensity)
}

// Blink makes every lit output blink with period, lit for duty/256 of it.
// The period ranges from 1/24s to 256/24s. A zero period stops blinking.
// Outputs keep their mode until their intensity is set again.
func (dev *Dev) Blink(period time.Duration, duty display.Intensity) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	mode2 := dev.mode2 &^ mode2Blink
	if period > 0 {
		steps := min(max(period*24/time.Second, 1), 256)
		if err := dev.r.WriteUint8(regGrpFrq, uint8(steps-1)); err != nil {
			return wrap(err)
		}
		if err := dev.r.WriteUint8(regGrpPWM, uint8(min(max(duty, 0), 0xff))); err != nil {
			return wrap(err)
		}
		mode2 |= mode2Blink
	}
	if mode2 == dev.mode2 {
		return nil
	}
	if err := dev.r.WriteUint8(regMode2, mode2); err != nil {
		return wrap(err)
	}
	dev.mode2 = mode2
	return nil
}

// Halt turns every output off.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.setLEDOut(ledOff)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("PCA9633{%s}", dev.r.Conn)
}

func (dev *Dev) set(outputs []int, values []display.Intensity) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	blink := dev.mode2&mode2Blink != 0
	ledout := dev.ledout
	for i, ch := range outputs {
		v := values[i]
		state := ledOff
		switch {
		case v <= 0:
		case v >= 0xff && !blink:
			state = ledOn
		default:
			if err := dev.r.WriteUint8(regPWM0+uint8(ch), uint8(min(v, 0xff))); err != nil {
				return wrap(err)
			}
			state = ledPWM
			if blink {
				state = ledGroup
			}
		}
		ledout = ledout&^(3<<(2*ch)) | state<<(2*ch)
	}
	return dev.setLEDOut(ledout)
}

func (dev *Dev) setLEDOut(v uint8) error {
	if v == dev.ledout {
		return nil
	}
	if err := dev.r.WriteUint8(regLEDOut, v); err != nil {
		return wrap(err)
	}
	dev.ledout = v
	return nil
}

var _ display.DisplayBacklight = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
