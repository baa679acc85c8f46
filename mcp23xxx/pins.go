// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// port is one 8 bit port of the chip with its register set.
type port struct {
	dev  *Dev
	name string

	iodir registerCache // direction, 1 is input
	gppu  registerCache // pull up
	gpio  registerCache // pin levels
	olat  registerCache // output latch
	intf  registerCache // interrupt flags
}

func newPort(dev *Dev, ra registerAccess, name string, iodirReg, gppuReg, gpioReg, olatReg uint8) *port {
	// INTF is two registers below GPIO, or four with the interleaved A/B
	// layout of the 16 bit chips.
	intfReg := gpioReg - 2
	if gpioReg > GPIO8 {
		intfReg = gpioReg - 4
	}
	return &port{
		dev:   dev,
		name:  name,
		iodir: newRegister(ra, iodirReg),
		gppu:  newRegister(ra, gppuReg),
		gpio:  newRegister(ra, gpioReg),
		olat:  newRegister(ra, olatReg),
		intf:  newRegister(ra, intfReg),
	}
}

func (p *port) pins() []gpio.PinIO {
	result := make([]gpio.PinIO, 8)
	for i := range result {
		result[i] = &portpin{port: p, pinbit: uint8(i)}
	}
	return result
}

// Tx takes bytes to either read or write. Only half duplex is supported so it
// is an error to pass 2 buffers at once. Written bytes go to the output
// latch, read bytes come from the pins.
func (p *port) Tx(w, r []byte) error {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	switch {
	case len(w) > 0 && len(r) > 0:
		return errors.New("mcp23xxx: only conn.Half duplex is supported")
	case len(w) > 0:
		for _, b := range w {
			if err := p.olat.writeValue(b, false); err != nil {
				return err
			}
		}
	case len(r) > 0:
		for i := range r {
			v, err := p.gpio.readValue(false)
			if err != nil {
				return err
			}
			r[i] = v
		}
	}
	return nil
}

// Duplex returns that this is a half duplex connection.
func (p *port) Duplex() conn.Duplex {
	return conn.Half
}

// String provides the name of this connection.
func (p *port) String() string {
	return p.name
}

type portpin struct {
	port   *port
	pinbit uint8
}

func (p *portpin) String() string {
	return p.Name()
}

func (p *portpin) Halt() error {
	// To halt all drive, set to high-impedance input
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *portpin) Name() string {
	return p.port.name + "_" + strconv.Itoa(int(p.pinbit))
}

func (p *portpin) Number() int {
	return int(p.pinbit)
}

func (p *portpin) Function() string {
	return string(p.Func())
}

func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	switch pull {
	case gpio.PullDown:
		return errors.New("mcp23xxx: PullDown is not supported")
	case gpio.PullUp:
		if err := p.port.gppu.getAndSetBit(p.pinbit, true, true); err != nil {
			return err
		}
	case gpio.Float:
		if err := p.port.gppu.getAndSetBit(p.pinbit, false, true); err != nil {
			return err
		}
	}
	// Interrupts are signaled on the INT pin, see Dev.SetEdgePin.
	if edge != gpio.NoEdge {
		return errors.New("mcp23xxx: per pin edge detection not supported")
	}
	return p.port.iodir.getAndSetBit(p.pinbit, true, true)
}

func (p *portpin) Read() gpio.Level {
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	v, _ := p.port.gpio.getBit(p.pinbit, false)
	return gpio.Level(v)
}

func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *portpin) Pull() gpio.Pull {
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	v, err := p.port.gppu.getBit(p.pinbit, true)
	if err != nil {
		return gpio.PullNoChange
	}
	if v {
		return gpio.PullUp
	}
	return gpio.Float
}

func (p *portpin) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (p *portpin) Out(l gpio.Level) error {
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	if err := p.port.iodir.getAndSetBit(p.pinbit, false, true); err != nil {
		return err
	}
	return p.port.olat.getAndSetBit(p.pinbit, bool(l), true)
}

func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("mcp23xxx: PWM is not supported")
}

func (p *portpin) Func() pin.Func {
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	v, _ := p.port.iodir.getBit(p.pinbit, true)
	if v {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *portpin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *portpin) SetFunc(f pin.Func) error {
	var v bool
	switch f {
	case gpio.IN:
		v = true
	case gpio.OUT:
		v = false
	default:
		return fmt.Errorf("mcp23xxx: function not supported: %s", f)
	}
	p.port.dev.mu.Lock()
	defer p.port.dev.mu.Unlock()
	return p.port.iodir.getAndSetBit(p.pinbit, v, true)
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ gpio.PinIO = &portpin{}
var _ pin.PinFunc = &portpin{}
var _ conn.Conn = &port{}
