// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// pcfPin is one quasi-bidirectional line. It is an input whenever its
// latch is high.
type pcfPin struct {
	dev    *Dev
	number int
	name   string
}

func (p *pcfPin) String() string { return p.name }
func (p *pcfPin) Name() string   { return p.name }
func (p *pcfPin) Number() int    { return p.number }
func (p *pcfPin) Halt() error    { return nil }

// Function reports In while the latch is high.
func (p *pcfPin) Function() string {
	if p.dev.Latch()&p.bit() == 0 {
		return "Out"
	}
	return "In"
}

// In releases the line. The only pull available is the weak pull up of a
// high latch, and edges can't be detected per pin.
func (p *pcfPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if pull == gpio.PullDown || edge != gpio.NoEdge {
		return ErrNotImplemented
	}
	return p.dev.write(p.bit(), p.bit())
}

// Read returns Low if the bus transfer fails.
func (p *pcfPin) Read() gpio.Level {
	v, err := p.dev.Read(p.bit())
	return err == nil && v != 0
}

// WaitForEdge always returns false, see Group.WaitForEdge.
func (p *pcfPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *pcfPin) Pull() gpio.Pull        { return gpio.PullUp }
func (p *pcfPin) DefaultPull() gpio.Pull { return gpio.PullUp }

func (p *pcfPin) Out(l gpio.Level) error {
	var v gpio.GPIOValue
	if l {
		v = p.bit()
	}
	return p.dev.write(v, p.bit())
}

func (p *pcfPin) PWM(gpio.Duty, physic.Frequency) error {
	return ErrNotImplemented
}

func (p *pcfPin) bit() gpio.GPIOValue {
	return gpio.GPIOValue(1) << p.number
}

var _ gpio.PinIO = &pcfPin{}
