// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780sim is a software model of an HD44780 controller.
//
// Controller implements hd44780.Transport and hd44780.Reader, so a
// hd44780.Dev can run against it without hardware. The visible panel can be
// inspected with Lines, rendered to an image with Snapshot or printed to a
// terminal with Console.
package hd44780sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/sirupsen/logrus"
)

const (
	ddramSize  = 80
	cgramSize  = 64
	bankLen    = 40
	secondBank = 0x40
)

// Opts holds the simulator configuration.
type Opts struct {
	// Width is the number of data lines wired to the model.
	Width hd44780.DataWidth
	// BusyReads is the number of status reads that return the busy flag
	// after each instruction or data transfer.
	BusyReads int
	// Logger traces each executed instruction at debug level. It may be
	// nil.
	Logger logrus.FieldLogger
}

// DefaultOpts is an 8 bit bus that is never busy.
var DefaultOpts = Opts{
	Width: hd44780.Width8Bit,
}

// Controller models the controller's memories and registers.
//
// It starts in the power on state: 8 bit interface, one line, display off
// and DDRAM filled with spaces.
type Controller struct {
	mu   sync.Mutex
	opts Opts
	log  logrus.FieldLogger

	ddram [ddramSize]byte
	cgram [cgramSize]byte
	ac    byte
	cg    bool // AC points into CGRAM

	eightBit  bool
	twoLine   bool
	font5x10  bool
	increment bool
	autoShift bool
	on        bool
	cursor    bool
	blink     bool
	shift     int

	nibble  byte
	pending bool // first half of a 4 bit transfer was received
	busy    int
	inits   int
}

// New returns a controller in the power on state. opts may be nil.
func New(opts *Opts) (*Controller, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.Width != hd44780.Width4Bit && opts.Width != hd44780.Width8Bit {
		return nil, fmt.Errorf("hd44780sim: unsupported data width %d", opts.Width)
	}
	if opts.BusyReads < 0 {
		return nil, fmt.Errorf("hd44780sim: negative busy read count %d", opts.BusyReads)
	}
	c := &Controller{opts: *opts, log: opts.Logger}
	if c.log == nil {
		l := logrus.New()
		l.Out = io.Discard
		c.log = l
	}
	c.Reset()
	return c, nil
}

// Reset returns the controller to the power on state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	c.cgram = [cgramSize]byte{}
	c.ac, c.cg = 0, false
	c.eightBit, c.twoLine, c.font5x10 = true, false, false
	c.increment, c.autoShift = true, false
	c.on, c.cursor, c.blink = false, false, false
	c.shift = 0
	c.pending, c.busy = false, 0
}

func (c *Controller) String() string {
	return fmt.Sprintf("hd44780sim%d", c.opts.Width)
}

// Init implements hd44780.Transport. The port is idle, so only a pending
// half transfer is dropped.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.inits++
	return nil
}

// Send implements hd44780.Transport.
func (c *Controller) Send(value byte, reg hd44780.Register) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Width == hd44780.Width8Bit {
		c.cycle(value, reg)
		return nil
	}
	// Two cycles on D4-D7. D0-D3 read as low while the controller is still
	// in 8 bit mode.
	c.nibbleCycle(value&0xf0, reg)
	c.nibbleCycle(value<<4, reg)
	return nil
}

// SendInit implements hd44780.Transport.
func (c *Controller) SendInit(value byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Width == hd44780.Width8Bit {
		c.cycle(value, hd44780.InstructionRegister)
		return nil
	}
	c.nibbleCycle(value&0xf0, hd44780.InstructionRegister)
	return nil
}

// DataWidth implements hd44780.Transport.
func (c *Controller) DataWidth() hd44780.DataWidth {
	return c.opts.Width
}

// Receive implements hd44780.Reader.
func (c *Controller) Receive(reg hd44780.Register) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reg == hd44780.InstructionRegister {
		v := c.ac
		if c.busy > 0 {
			c.busy--
			v |= 0x80
		}
		return v, nil
	}
	var v byte
	if c.cg {
		v = c.cgram[c.ac]
	} else {
		v = c.ddram[c.index(c.ac)]
	}
	c.step(c.increment)
	c.busy = c.opts.BusyReads
	return v, nil
}

// nibbleCycle is one E strobe on a 4 bit bus; v carries the lines in its
// upper nibble.
func (c *Controller) nibbleCycle(v byte, reg hd44780.Register) {
	if c.eightBit {
		c.cycle(v, reg)
		return
	}
	if !c.pending {
		c.nibble = v & 0xf0
		c.pending = true
		return
	}
	c.pending = false
	c.cycle(c.nibble|v>>4, reg)
}

// cycle executes one complete byte.
func (c *Controller) cycle(v byte, reg hd44780.Register) {
	c.busy = c.opts.BusyReads
	if reg == hd44780.DataRegister {
		c.write(v)
		return
	}
	c.execute(v)
}

func (c *Controller) write(v byte) {
	c.log.WithFields(logrus.Fields{"ac": c.ac, "cgram": c.cg, "value": v}).Debug("write data")
	if c.cg {
		c.cgram[c.ac] = v
		c.step(c.increment)
		return
	}
	c.ddram[c.index(c.ac)] = v
	c.step(c.increment)
	if c.autoShift {
		c.shiftDisplay(!c.increment)
	}
}

func (c *Controller) execute(v byte) {
	switch {
	case v&0x80 != 0:
		c.ac, c.cg = v&0x7f, false
		c.trace("set ddram address", v)
	case v&0x40 != 0:
		c.ac, c.cg = v&0x3f, true
		c.trace("set cgram address", v)
	case v&0x20 != 0:
		c.eightBit = v&0x10 != 0
		c.twoLine = v&0x08 != 0
		c.font5x10 = v&0x04 != 0
		c.pending = false
		c.trace("function set", v)
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			c.shiftDisplay(right)
		} else {
			c.step(right)
		}
		c.trace("shift", v)
	case v&0x08 != 0:
		c.on = v&0x04 != 0
		c.cursor = v&0x02 != 0
		c.blink = v&0x01 != 0
		c.trace("display control", v)
	case v&0x04 != 0:
		c.increment = v&0x02 != 0
		c.autoShift = v&0x01 != 0
		c.trace("entry mode", v)
	case v&0x02 != 0:
		c.ac, c.cg, c.shift = 0, false, 0
		c.trace("return home", v)
	case v == 0x01:
		for i := range c.ddram {
			c.ddram[i] = ' '
		}
		c.ac, c.cg, c.shift = 0, false, 0
		c.increment = true
		c.trace("clear display", v)
	default:
		c.trace("nop", v)
	}
}

func (c *Controller) trace(op string, v byte) {
	c.log.WithFields(logrus.Fields{"op": op, "code": fmt.Sprintf("%#02x", v), "ac": c.ac}).Debug("instruction")
}

// index maps a DDRAM address to the backing array. In two line mode the
// banks are 0x00-0x27 and 0x40-0x67.
func (c *Controller) index(addr byte) int {
	if !c.twoLine {
		return int(addr) % ddramSize
	}
	if addr >= secondBank {
		return bankLen + int(addr-secondBank)%bankLen
	}
	return int(addr) % bankLen
}

// step moves AC by one the way the controller wraps it.
func (c *Controller) step(forward bool) {
	switch {
	case c.cg:
		if forward {
			c.ac = (c.ac + 1) & 0x3f
		} else {
			c.ac = (c.ac - 1) & 0x3f
		}
	case c.twoLine:
		switch {
		case forward && c.ac == 0x27:
			c.ac = secondBank
		case forward && c.ac >= 0x67:
			c.ac = 0
		case !forward && c.ac == secondBank:
			c.ac = 0x27
		case !forward && c.ac == 0:
			c.ac = 0x67
		case forward:
			c.ac++
		default:
			c.ac--
		}
	default:
		if forward {
			c.ac = (c.ac + 1) % ddramSize
		} else if c.ac == 0 {
			c.ac = ddramSize - 1
		} else {
			c.ac--
		}
	}
}

// shiftDisplay moves the visible window. Shifting the text right means the
// window moves left.
func (c *Controller) shiftDisplay(right bool) {
	n := c.lineLen()
	if right {
		c.shift = (c.shift + n - 1) % n
	} else {
		c.shift = (c.shift + 1) % n
	}
}

func (c *Controller) lineLen() int {
	if c.twoLine {
		return bankLen
	}
	return ddramSize
}
