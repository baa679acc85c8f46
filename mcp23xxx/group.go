// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// pinGroup is a set of pins of one port. Bit n of a group value is the pin
// at offset n.
type pinGroup struct {
	dev         *Dev
	port        *port
	pins        []*portpin
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group that is made up of the specified pins of one
// port.
func (dev *Dev) Group(port int, pins []int) (gpio.Group, error) {
	if port < 0 || port >= len(dev.ports) {
		return nil, fmt.Errorf("mcp23xxx: invalid port %d", port)
	}
	grouppins := make([]*portpin, len(pins))
	for ix, number := range pins {
		if number < 0 || number >= len(dev.Pins[port]) {
			return nil, fmt.Errorf("mcp23xxx: invalid pin %d", number)
		}
		pp, ok := dev.Pins[port][number].(*portpin)
		if !ok {
			return nil, fmt.Errorf("mcp23xxx: pin %d is not a device pin", number)
		}
		grouppins[ix] = pp
	}
	defMask := gpio.GPIOValue((1 << len(pins)) - 1)
	return &pinGroup{dev: dev, port: dev.ports[port], pins: grouppins, defaultMask: defMask}, nil
}

// Pins implements gpio.Group.
func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for ix, p := range pg.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset implements gpio.Group.
func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(pg.pins) {
		return nil
	}
	return pg.pins[offset]
}

// ByName implements gpio.Group.
func (pg *pinGroup) ByName(name string) pin.Pin {
	if ix := slices.IndexFunc(pg.pins, func(p *portpin) bool { return p.Name() == name }); ix >= 0 {
		return pg.pins[ix]
	}
	return nil
}

// ByNumber implements gpio.Group. number is the bit within the port.
func (pg *pinGroup) ByNumber(number int) pin.Pin {
	if ix := slices.IndexFunc(pg.pins, func(p *portpin) bool { return p.Number() == number }); ix >= 0 {
		return pg.pins[ix]
	}
	return nil
}

// portMask converts a group relative mask to the port bits.
func (pg *pinGroup) portMask(mask gpio.GPIOValue) uint8 {
	m := uint8(0)
	for bit, p := range pg.pins {
		if mask&(1<<bit) != 0 {
			m |= 1 << p.pinbit
		}
	}
	return m
}

// Out writes value to the specified pins of the device/port. If mask is 0,
// the default mask of all pins in the group is used. Pins not yet configured
// as output are switched first.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = pg.defaultMask
	} else {
		mask &= pg.defaultMask
	}
	wrMask := pg.portMask(mask)
	wr := pg.portMask(value & mask)

	pg.dev.mu.Lock()
	defer pg.dev.mu.Unlock()
	// Verify pins are set for output
	dir, err := pg.port.iodir.readValue(true)
	if err != nil {
		return err
	}
	if dir&wrMask != 0 {
		if err = pg.port.iodir.writeValue(dir&^wrMask, false); err != nil {
			return err
		}
	}
	current, err := pg.port.olat.readValue(true)
	if err != nil {
		return err
	}
	return pg.port.olat.writeValue(current&^wrMask|wr, true)
}

// Read reads from the device and port and returns the state of the GPIO
// pins in the group. If a pin specified by mask is not configured for
// input, it is transparently re-configured.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (result gpio.GPIOValue, err error) {
	if mask == 0 {
		mask = pg.defaultMask
	} else {
		mask &= pg.defaultMask
	}
	rmask := pg.portMask(mask)

	pg.dev.mu.Lock()
	defer pg.dev.mu.Unlock()
	dir, err := pg.port.iodir.readValue(true)
	if err != nil {
		return 0, err
	}
	if dir&rmask != rmask {
		if err = pg.port.iodir.writeValue(dir|rmask, false); err != nil {
			return 0, err
		}
	}
	v, err := pg.port.gpio.readValue(false)
	if err != nil {
		return 0, err
	}
	for ix, p := range pg.pins {
		if mask&(1<<ix) != 0 && v&(1<<p.pinbit) != 0 {
			result |= 1 << ix
		}
	}
	return result, nil
}

// WaitForEdge waits for the host pin set with Dev.SetEdgePin, which must be
// wired to INT and detect falling edges, then returns the offset of the
// pin flagged in INTF. The chip only reports a change, so the edge is
// always gpio.NoEdge. Pins must already be inputs with GPINTEN and INTCON
// set. A flagged pin outside the group is returned as its port bit along
// with ErrPinNotInGroup.
func (pg *pinGroup) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	pg.dev.mu.Lock()
	edgePin := pg.dev.edgePin
	pg.dev.mu.Unlock()
	if edgePin == nil {
		return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
	}
	if !edgePin.WaitForEdge(timeout) {
		return -1, gpio.NoEdge, nil
	}
	pg.dev.mu.Lock()
	defer pg.dev.mu.Unlock()
	flags, err := pg.port.intf.readValue(false)
	if err != nil {
		return -1, gpio.NoEdge, err
	}
	// Reading GPIO clears the interrupt.
	if _, err = pg.port.gpio.readValue(false); err != nil {
		return -1, gpio.NoEdge, err
	}
	for bit := range 8 {
		if flags&(1<<bit) == 0 {
			continue
		}
		for ix, p := range pg.pins {
			if int(p.pinbit) == bit {
				return ix, gpio.NoEdge, nil
			}
		}
		return bit, gpio.NoEdge, ErrPinNotInGroup
	}
	return -1, gpio.NoEdge, nil
}

// Halt interrupts a pending WaitForEdge() call if one is in process.
func (pg *pinGroup) Halt() error {
	pg.dev.mu.Lock()
	edgePin := pg.dev.edgePin
	pg.dev.mu.Unlock()
	if edgePin != nil {
		return edgePin.Halt()
	}
	return nil
}

func (pg *pinGroup) String() string {
	nums := make([]string, len(pg.pins))
	for ix, p := range pg.pins {
		nums[ix] = strconv.Itoa(p.Number())
	}
	return fmt.Sprintf("%s - [ %s ]", pg.port, strings.Join(nums, " "))
}

var _ gpio.Group = &pinGroup{}
