// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides a driver for the TI/NXP PCF857X I2C I/O Expander.
// These devices provide 8 pins (PCF8574) or 16 pins (PCF8575) of
// "quasi-bidirectional" input/output. This device is commonly used in LCD
// backpacks, particularly those sold as LCD2004, LCD1602.
//
// The PCF8575 is a 16-pin device that is functionally identical to the
// PCF8574. When communicating with the PCF8575 reads and writes are 2 bytes
// wide, while they're one byte wide with the PCF8574.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I2C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// The chip has no registers. A write sets the output latch of every pin, a
// read returns the level of every pin. A pin reads as its input level only
// while its latch is high, since a low latch turns on the open drain to
// ground. Read() raises the latch of the pins it reads when needed.
//
// Edge detection on a specific pin is not possible. The interrupt pin
// signals a change on any of the GPIO lines.
//
// Stream() sends several port values in a single bus transaction. Bit-banged
// protocols on top of the expander, like the HD44780 bus, use it to clock a
// whole byte in one I²C write.
package pcf857x

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/pin"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	DefaultAddress uint16 = 0x20
)

var (
	ErrNotImplemented = errors.New("pcf857x: not implemented")
)

// Dev is representation of a PCF857x device.
type Dev struct {
	// The pins exposed by the device. For PCF8574, this will be 8 pins, and
	// 16 pins for the PCF8575
	Pins     []gpio.PinIO
	mask     gpio.GPIOValue
	width    int
	chipType Variant

	mu sync.Mutex
	d  *i2c.Dev
	// value is the output latch. It is only changed by writes.
	value  gpio.GPIOValue
	groups []*Group
}

// Group is a set of pins of one device driven together. Bit n of a group
// value is the pin at offset n.
type Group struct {
	dev  *Dev
	pins []*pcfPin
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
//
// The output latch of the chip powers up high, so all pins start as inputs.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip}
	switch chip {
	case PCF8574:
		dev.width = 8
	case PCF8575:
		dev.width = 16
	default:
		return nil, fmt.Errorf("pcf857x: unsupported variant %q", chip)
	}
	dev.mask = gpio.GPIOValue((1 << dev.width) - 1)
	dev.value = dev.mask
	dev.Pins = make([]gpio.PinIO, dev.width)
	sDev := dev.String()
	for ix := range dev.width {
		name := fmt.Sprintf("%s_GPIO%d", sDev, ix)
		dev.Pins[ix] = &pcfPin{dev: dev, number: ix, name: name}
		_ = gpioreg.Register(dev.Pins[ix])
	}
	return dev, nil
}

// Group returns a GPIO Group comprised of the specified pin numbers. A
// gpio.Group allows you to perform writes to multiple pins in one operation.
func (dev *Dev) Group(pinNumbers ...int) (*Group, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	gr := &Group{dev: dev, pins: make([]*pcfPin, len(pinNumbers))}
	for ix, n := range pinNumbers {
		if n < 0 || n >= len(dev.Pins) {
			return nil, fmt.Errorf("pcf857x: invalid pin number %d", n)
		}
		gr.pins[ix] = dev.Pins[n].(*pcfPin)
	}
	dev.groups = append(dev.groups, gr)
	return gr, nil
}

// Out sets the output latch of the pins in mask to value.
func (dev *Dev) Out(value, mask gpio.GPIOValue) error {
	return dev.write(value, mask)
}

// Stream writes each of values to the port, in order, in a single I²C
// transaction. Every value is a complete port value; the last one is kept
// as the output latch.
func (dev *Dev) Stream(values ...gpio.GPIOValue) error {
	if len(values) == 0 {
		return nil
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	n := dev.byteCount()
	w := make([]byte, 0, n*len(values))
	for _, v := range values {
		w = dev.appendValue(w, v&dev.mask)
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = values[len(values)-1] & dev.mask
	return nil
}

// Read returns the level of the pins in mask. Pins in mask whose latch is
// low are first released high; other pins keep their latch.
func (dev *Dev) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	if err := dev.write(mask, mask); err != nil {
		return 0, err
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	r := make([]byte, dev.byteCount())
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	result := gpio.GPIOValue(r[0])
	if len(r) > 1 {
		result |= gpio.GPIOValue(r[1]) << 8
	}
	return result & mask, nil
}

// Latch returns the last value written to the port.
func (dev *Dev) Latch() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Halt shuts down the device, and frees any pin groups.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, gr := range dev.groups {
		_ = gr.Halt()
	}
	dev.groups = nil
	for _, p := range dev.Pins {
		_ = gpioreg.Unregister(p.Name())
	}
	dev.Pins = make([]gpio.PinIO, 0)
	return nil
}

// write performs the low-level write to the device. If the resulting value of
// the device is unchanged, the write is skipped.
func (dev *Dev) write(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	wrValue := dev.value & (dev.mask ^ mask)
	wrValue |= value & mask
	if dev.value == wrValue {
		return nil
	}
	if err := dev.d.Tx(dev.appendValue(nil, wrValue), nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = wrValue
	return nil
}

func (dev *Dev) byteCount() int {
	return dev.width / 8
}

func (dev *Dev) appendValue(w []byte, v gpio.GPIOValue) []byte {
	for ix := range dev.byteCount() {
		w = append(w, byte(v>>(ix*8)))
	}
	return w
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}

// Pins implements gpio.Group.
func (gr *Group) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(gr.pins))
	for ix, p := range gr.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset implements gpio.Group.
func (gr *Group) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(gr.pins) {
		return nil
	}
	return gr.pins[offset]
}

// ByName implements gpio.Group.
func (gr *Group) ByName(name string) pin.Pin {
	return gr.find(func(p *pcfPin) bool { return p.name == name })
}

// ByNumber implements gpio.Group. number is the pin number on the device.
func (gr *Group) ByNumber(number int) pin.Pin {
	return gr.find(func(p *pcfPin) bool { return p.number == number })
}

// Out sets the pins in mask to value. A zero mask means every pin.
func (gr *Group) Out(value, mask gpio.GPIOValue) error {
	mask = gr.all(mask)
	return gr.dev.write(gr.spread(value&mask), gr.spread(mask))
}

// Read returns the level of the pins in mask. A zero mask means every pin.
func (gr *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	mask = gr.all(mask)
	v, err := gr.dev.Read(gr.spread(mask))
	if err != nil {
		return 0, err
	}
	return gr.gather(v) & mask, nil
}

// WaitForEdge is not supported. The INT line of the chip fires for any pin,
// so wait on the host pin it is wired to instead.
func (gr *Group) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	return 0, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt releases the pins. The group can't be used afterward.
func (gr *Group) Halt() error {
	gr.pins = nil
	return nil
}

func (gr *Group) String() string {
	var b strings.Builder
	b.WriteString(gr.dev.String())
	b.WriteString("[ ")
	for _, p := range gr.pins {
		fmt.Fprintf(&b, "%d ", p.number)
	}
	b.WriteString("]")
	return b.String()
}

func (gr *Group) find(match func(*pcfPin) bool) pin.Pin {
	for _, p := range gr.pins {
		if match(p) {
			return p
		}
	}
	return nil
}

func (gr *Group) all(mask gpio.GPIOValue) gpio.GPIOValue {
	if mask == 0 {
		return gpio.GPIOValue(1)<<len(gr.pins) - 1
	}
	return mask
}

// spread moves group bits to their device positions.
func (gr *Group) spread(v gpio.GPIOValue) gpio.GPIOValue {
	var out gpio.GPIOValue
	for ix, p := range gr.pins {
		if v&(1<<ix) != 0 {
			out |= p.bit()
		}
	}
	return out
}

// gather is the inverse of spread.
func (gr *Group) gather(v gpio.GPIOValue) gpio.GPIOValue {
	var out gpio.GPIOValue
	for ix, p := range gr.pins {
		if v&p.bit() != 0 {
			out |= 1 << ix
		}
	}
	return out
}

var _ gpio.Group = &Group{}
