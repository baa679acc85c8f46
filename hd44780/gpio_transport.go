// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// Minimum enable pulse width is 450ns; round up to what time.Sleep can do.
const enablePulse = time.Microsecond

// GPIOTransport bit-bangs the controller bus. The data lines are a
// gpio.Group and RS, RW and E are discrete pins.
type GPIOTransport struct {
	data  gpio.Group
	rs    gpio.PinOut
	rw    gpio.PinOut
	e     gpio.PinOut
	width DataWidth
	mask  gpio.GPIOValue
}

// gpioReadTransport is returned when RW is wired.
type gpioReadTransport struct {
	*GPIOTransport
}

// NewGPIO returns a transport that drives the display bus directly.
//
// The first pins of data must be connected to the data lines: D0-D7 for 8
// bit mode, or D4-D7 for 4 bit mode. A group of 8 or more pins selects 8
// bit mode, 4 to 7 pins select 4 bit mode; extra pins in the group are left
// alone.
//
// rw may be nil when the RW line is tied to ground. Otherwise the returned
// transport also implements Reader, and the group must support Read().
// Before each read the data pins that implement gpio.PinIn are switched to
// inputs, and afterwards the group's Out must drive them again, as mcp23xxx
// groups do. A gpioioctl.LineSet can't change direction, so pass a PinGroup
// instead, or leave RW tied low.
func NewGPIO(data gpio.Group, rs, rw, e gpio.PinOut) (Transport, error) {
	t := &GPIOTransport{data: data, rs: rs, rw: rw, e: e}
	switch n := len(data.Pins()); {
	case n >= 8:
		t.width = Width8Bit
		t.mask = 0xff
	case n >= 4:
		t.width = Width4Bit
		t.mask = 0x0f
	default:
		return nil, fmt.Errorf("%s: need at least 4 data pins, got %d", packageName, n)
	}
	if rw != nil {
		return &gpioReadTransport{t}, nil
	}
	return t, nil
}

// NewHD44780 returns a write-only display driven directly through GPIO pins,
// with bl as the optional backlight.
//
// dataPinGroup holds D4-D7 (4 bit) or D0-D7 (8 bit). RW must be tied low.
func NewHD44780(dataPinGroup gpio.Group, rsPin, enablePin gpio.PinOut, bl display.DisplayBacklight, rows, cols int) (*Dev, error) {
	t, err := NewGPIO(dataPinGroup, rsPin, nil, enablePin)
	if err != nil {
		return nil, err
	}
	opts := DefaultOpts
	opts.Rows, opts.Cols = rows, cols
	opts.Backlight = bl
	return New(t, &opts)
}

// Init drives RS, RW, E and the data lines low.
func (t *GPIOTransport) Init() error {
	if err := t.e.Out(gpio.Low); err != nil {
		return err
	}
	if err := t.rs.Out(gpio.Low); err != nil {
		return err
	}
	if err := t.setRW(gpio.Low); err != nil {
		return err
	}
	return t.data.Out(0, t.mask)
}

// Send implements Transport.
func (t *GPIOTransport) Send(value byte, reg Register) error {
	if err := t.rs.Out(gpio.Level(reg)); err != nil {
		return err
	}
	if err := t.setRW(gpio.Low); err != nil {
		return err
	}
	if t.width == Width8Bit {
		return t.strobe(value)
	}
	if err := t.strobe(value >> 4); err != nil {
		return err
	}
	return t.strobe(value & 0x0f)
}

// SendInit implements Transport.
func (t *GPIOTransport) SendInit(value byte) error {
	if err := t.rs.Out(gpio.Low); err != nil {
		return err
	}
	if err := t.setRW(gpio.Low); err != nil {
		return err
	}
	if t.width == Width8Bit {
		return t.strobe(value)
	}
	return t.strobe(value >> 4)
}

// DataWidth implements Transport.
func (t *GPIOTransport) DataWidth() DataWidth {
	return t.width
}

func (t *GPIOTransport) String() string {
	return fmt.Sprintf("gpio%d(%s)", t.width, t.data)
}

// strobe puts v on the data lines and latches it with a pulse on E.
func (t *GPIOTransport) strobe(v byte) error {
	if err := t.data.Out(gpio.GPIOValue(v), t.mask); err != nil {
		return err
	}
	if err := t.e.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(enablePulse)
	return t.e.Out(gpio.Low)
}

func (t *GPIOTransport) setRW(l gpio.Level) error {
	if t.rw == nil {
		return nil
	}
	return t.rw.Out(l)
}

// Receive implements Reader. Whatever happens, RW is lowered and the data
// lines are driven again before it returns.
func (t *gpioReadTransport) Receive(reg Register) (b byte, err error) {
	defer func() {
		if errR := t.restore(); err == nil {
			err = errR
		}
	}()
	if err = t.release(); err != nil {
		return 0, err
	}
	if err = t.rs.Out(gpio.Level(reg)); err != nil {
		return 0, err
	}
	if err = t.rw.Out(gpio.High); err != nil {
		return 0, err
	}
	if b, err = t.sample(); err != nil {
		return 0, err
	}
	if t.width == Width4Bit {
		var lo byte
		if lo, err = t.sample(); err != nil {
			return 0, err
		}
		b = b<<4 | lo
	}
	return b, nil
}

// release stops driving the data lines so the controller can.
func (t *gpioReadTransport) release() error {
	for i, p := range t.data.Pins()[:t.width] {
		in, ok := p.(gpio.PinIn)
		if !ok {
			continue
		}
		if err := in.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return fmt.Errorf("%s: can't release data line %d: %w", packageName, i, err)
		}
	}
	return nil
}

// restore lowers RW and drives the data lines low.
func (t *gpioReadTransport) restore() error {
	if err := t.rw.Out(gpio.Low); err != nil {
		return err
	}
	return t.data.Out(0, t.mask)
}

// sample raises E, reads the data lines and lowers E again.
func (t *gpioReadTransport) sample() (byte, error) {
	if err := t.e.Out(gpio.High); err != nil {
		return 0, err
	}
	time.Sleep(enablePulse)
	v, err := t.data.Read(t.mask)
	if errE := t.e.Out(gpio.Low); err == nil {
		err = errE
	}
	return byte(v & t.mask), err
}

var _ Transport = &GPIOTransport{}
var _ Reader = &gpioReadTransport{}
