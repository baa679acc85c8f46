// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls character LCDs built around the Hitachi HD44780
// controller and its clones.
//
// The driver is split in two layers. Dev implements the instruction set:
// pacing, positioning, line operations, custom glyphs and scrolling. A
// Transport moves single bytes to the controller. This package provides
// transports for direct GPIO (4 or 8 bit), a parallel master port register
// window, an MCP23S17 SPI expander and a PCF8574 I²C backpack.
//
// Some transports can't read from the controller. On those the busy flag
// can't be polled and display memory can't be read back; see Reader.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const packageName = "hd44780"

var (
	// ErrNotImplemented is returned for features the display can't provide.
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrReadNotSupported is returned when an operation needs to read from
	// the controller and the transport is write-only.
	ErrReadNotSupported = errors.New("hd44780: transport can't read from the controller")
	// ErrBusyTimeout is returned when the busy flag stays set longer than
	// Opts.BusyTimeout.
	ErrBusyTimeout = errors.New("hd44780: timeout waiting for busy flag")
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Dev is an HD44780 display attached through a Transport.
//
// Implements display.TextDisplay and display.DisplayBacklight. Rows and
// columns are zero based in the Dev specific methods (SetPosition,
// WriteLine...) and one based in the display.TextDisplay ones (MoveTo).
type Dev struct {
	mu    sync.Mutex
	t     Transport
	r     Reader
	opts  Opts
	width DataWidth
	sleep func(time.Duration)

	ac     shadowAC
	on     bool
	cursor bool
	blink  bool
}

// New initializes the display attached to t and returns it ready for use.
//
// opts may be nil, in which case DefaultOpts is used.
func New(t Transport, opts *Opts) (*Dev, error) {
	dev, err := newDev(t, opts, time.Sleep)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func newDev(t Transport, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	dev := &Dev{t: t, opts: *opts, width: t.DataWidth(), sleep: sleep}
	if r, ok := t.(Reader); ok {
		dev.r = r
	}
	if dev.opts.BusyPolling && dev.r == nil {
		return nil, fmt.Errorf("%w: busy polling needs a readable transport", ErrReadNotSupported)
	}
	if dev.width != Width4Bit && dev.width != Width8Bit {
		return nil, fmt.Errorf("%s: unsupported data width %d", packageName, dev.width)
	}
	if err := dev.init(); err != nil {
		return nil, wrap(err)
	}
	return dev, nil
}

// init runs the power on sequence. The busy flag can't be trusted yet, so
// every step waits the datasheet delay.
func (dev *Dev) init() error {
	if err := dev.t.Init(); err != nil {
		return err
	}
	dev.sleep(delayPowerOn)
	fn := dev.functionSet()
	if dev.width == Width4Bit {
		// The controller is still in 8 bit mode: two 8 bit function sets,
		// then the switch to 4 bit, each on a single bus cycle.
		for _, c := range []byte{fn | fnDataLength8, fn | fnDataLength8, fn} {
			if err := dev.t.SendInit(c); err != nil {
				return err
			}
			dev.ac.instruction(c)
			dev.sleep(delayInstruction)
		}
	}
	steps := []struct {
		cmd   byte
		delay time.Duration
	}{
		{fn, delayInstruction},
		{cmdDisplayControl | displayOn, delayInstruction},
		{cmdClear, delayInitClear},
		{cmdEntryMode | entryIncrement, delayInstruction},
	}
	for _, step := range steps {
		if err := dev.t.Send(step.cmd, InstructionRegister); err != nil {
			return err
		}
		dev.ac.instruction(step.cmd)
		dev.sleep(step.delay)
	}
	dev.on = true
	if dev.opts.Backlight != nil {
		return dev.opts.Backlight.Backlight(0xff)
	}
	return nil
}

func (dev *Dev) functionSet() byte {
	fn := cmdFunctionSet
	if dev.width == Width8Bit {
		fn |= fnDataLength8
	}
	if dev.opts.Rows > 1 {
		fn |= fnTwoLines
	} else if dev.opts.Font5x10 {
		fn |= fnFont5x10
	}
	return fn
}

// Command sends an instruction to the controller.
func (dev *Dev) Command(code byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.command(code))
}

// WriteByte writes c at the address counter. Implements io.ByteWriter.
func (dev *Dev) WriteByte(c byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.writeData(c))
}

// ReadByte reads the character at the address counter. Implements
// io.ByteReader.
func (dev *Dev) ReadByte() (byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	c, err := dev.readData()
	return c, wrap(err)
}

// Busy reports whether the controller is still executing the previous
// instruction.
func (dev *Dev) Busy() (bool, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.r == nil {
		return false, ErrReadNotSupported
	}
	b, err := dev.busy()
	return b, wrap(err)
}

// Address returns the address counter. Write-only transports report the
// value tracked by the driver.
func (dev *Dev) Address() (byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	ac, err := dev.address()
	return ac, wrap(err)
}

// SetDisplay turns the display, the underline cursor and the blinking
// block on or off.
func (dev *Dev) SetDisplay(on, cursor, blink bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.on, dev.cursor, dev.blink = on, cursor, blink
	return wrap(dev.command(dev.displayControl()))
}

func (dev *Dev) displayControl() byte {
	c := cmdDisplayControl
	if dev.on {
		c |= displayOn
	}
	if dev.cursor {
		c |= displayCursor
	}
	if dev.blink {
		c |= displayBlink
	}
	return c
}

func (dev *Dev) busy() (bool, error) {
	b, err := dev.r.Receive(InstructionRegister)
	return b&busyFlag != 0, err
}

// wait blocks until the controller is ready for the next transfer. Without
// polling the delay is paid after each transfer instead.
func (dev *Dev) wait() error {
	if !dev.opts.BusyPolling {
		return nil
	}
	var deadline time.Time
	if dev.opts.BusyTimeout > 0 {
		deadline = time.Now().Add(dev.opts.BusyTimeout)
	}
	for {
		busy, err := dev.busy()
		if err != nil || !busy {
			return err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return ErrBusyTimeout
		}
	}
}

func (dev *Dev) settle(d time.Duration) {
	if !dev.opts.BusyPolling {
		dev.sleep(d)
	}
}

func (dev *Dev) command(c byte) error {
	if err := dev.wait(); err != nil {
		return err
	}
	if err := dev.t.Send(c, InstructionRegister); err != nil {
		return err
	}
	dev.ac.instruction(c)
	dev.settle(delayInstruction)
	return nil
}

// slowCommand is for clear and home, which take 1.52ms.
func (dev *Dev) slowCommand(c byte) error {
	if err := dev.command(c); err != nil {
		return err
	}
	dev.settle(delayClear)
	return nil
}

func (dev *Dev) writeData(c byte) error {
	if err := dev.wait(); err != nil {
		return err
	}
	if err := dev.t.Send(c, DataRegister); err != nil {
		return err
	}
	dev.ac.data()
	dev.settle(delayInstruction)
	return nil
}

func (dev *Dev) readData() (byte, error) {
	if dev.r == nil {
		return 0, ErrReadNotSupported
	}
	if err := dev.wait(); err != nil {
		return 0, err
	}
	c, err := dev.r.Receive(DataRegister)
	if err != nil {
		return 0, err
	}
	dev.ac.data()
	dev.settle(delayInstruction)
	return c, nil
}

func (dev *Dev) address() (byte, error) {
	if dev.r == nil {
		return dev.ac.addr, nil
	}
	if err := dev.wait(); err != nil {
		return 0, err
	}
	b, err := dev.r.Receive(InstructionRegister)
	if err != nil {
		return 0, err
	}
	dev.settle(delayInstruction)
	return b & addressMask, nil
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
