// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// Variant is the type denoting a specific variant of the family.
type Variant string

const (
	MCP23008 Variant = "MCP23008" // 8 bit I²C extender.
	MCP23S08 Variant = "MCP23S08" // 8 bit SPI extender.
	MCP23017 Variant = "MCP23017" // 16 bit I²C extender.
	MCP23S17 Variant = "MCP23S17" // 16 bit SPI extender.
)

type variant struct {
	spi   bool
	ports int
}

var variants = map[Variant]variant{
	MCP23008: {spi: false, ports: 1},
	MCP23S08: {spi: true, ports: 1},
	MCP23017: {spi: false, ports: 2},
	MCP23S17: {spi: true, ports: 2},
}

// Register addresses. The 16 bit variants are used with IOCON.BANK=0, the
// power on default, where the A and B registers of each pair are adjacent.
const (
	IODIR8 uint8 = 0x00
	GPPU8  uint8 = 0x06
	GPIO8  uint8 = 0x09
	OLAT8  uint8 = 0x0a

	IODIRA uint8 = 0x00
	IODIRB uint8 = 0x01
	GPPUA  uint8 = 0x0c
	GPPUB  uint8 = 0x0d
	GPIOA  uint8 = 0x12
	GPIOB  uint8 = 0x13
	OLATA  uint8 = 0x14
	OLATB  uint8 = 0x15
)

// ErrPinNotInGroup is returned when an edge is reported on a pin that is not
// part of the group.
var ErrPinNotInGroup = errors.New("mcp23xxx: pin not in group")

// Dev is an MCP23xxx GPIO extender. Pins are available per pin as gpio.PinIO
// and per port as conn.Conn.
type Dev struct {
	Pins  [][]gpio.PinIO // Pins is a double array structured as: [port][pin].
	Conns []conn.Conn    // Conns uses the same [port] array structure.

	mu      sync.Mutex
	name    string
	variant Variant
	ports   []*port
	edgePin gpio.PinIn
}

// NewI2C returns a device that communicates over I²C. addr is usually in
// the range 0x20 to 0x27.
func NewI2C(bus i2c.Bus, variant Variant, addr uint16) (*Dev, error) {
	v, ok := variants[variant]
	if !ok || v.spi {
		return nil, fmt.Errorf("mcp23xxx: %s is not an I²C variant", variant)
	}
	ra := &i2cRegisterAccess{Dev: &i2c.Dev{Bus: bus, Addr: addr}}
	return newDev(ra, variant, v, string(variant)+"_"+strconv.FormatInt(int64(addr), 16))
}

// NewSPI returns a device that communicates over SPI. hwAddr is the value of
// the A2..A0 address pins; it is only honored by the chip when IOCON.HAEN is
// set, and is otherwise 0.
func NewSPI(c spi.Conn, variant Variant, hwAddr uint8) (*Dev, error) {
	v, ok := variants[variant]
	if !ok || !v.spi {
		return nil, fmt.Errorf("mcp23xxx: %s is not an SPI variant", variant)
	}
	if hwAddr > 7 {
		return nil, fmt.Errorf("mcp23xxx: hardware address %d out of range", hwAddr)
	}
	ra := &spiRegisterAccess{Conn: c, opcode: 0x40 | hwAddr<<1}
	return newDev(ra, variant, v, string(variant)+"_"+strconv.Itoa(int(hwAddr)))
}

func newDev(ra registerAccess, variant Variant, v variant, name string) (*Dev, error) {
	dev := &Dev{name: name, variant: variant}
	if v.ports == 1 {
		dev.ports = []*port{newPort(dev, ra, name+"_P0", IODIR8, GPPU8, GPIO8, OLAT8)}
	} else {
		dev.ports = []*port{
			newPort(dev, ra, name+"_PA", IODIRA, GPPUA, GPIOA, OLATA),
			newPort(dev, ra, name+"_PB", IODIRB, GPPUB, GPIOB, OLATB),
		}
	}
	dev.Pins = make([][]gpio.PinIO, len(dev.ports))
	for i, p := range dev.ports {
		// pre-cache iodir
		if _, err := p.iodir.readValue(false); err != nil {
			return nil, fmt.Errorf("mcp23xxx: %w", err)
		}
		dev.Pins[i] = p.pins()
		for _, pin := range dev.Pins[i] {
			// Ignore registration failure.
			_ = gpioreg.Register(pin)
		}
		dev.Conns = append(dev.Conns, p)
	}
	return dev, nil
}

// SetEdgePin sets the host pin connected to the INT output of the chip. It
// must be configured for falling edge detection. Group.WaitForEdge uses it.
func (dev *Dev) SetEdgePin(p gpio.PinIn) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.edgePin = p
}

// Close removes any registration to the device.
func (dev *Dev) Close() error {
	for _, port := range dev.Pins {
		for _, pin := range port {
			if err := gpioreg.Unregister(pin.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Halt implements conn.Resource. It sets every pin to input.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, p := range dev.ports {
		if err := p.iodir.writeValue(0xff, true); err != nil {
			return err
		}
	}
	return nil
}

func (dev *Dev) String() string {
	return dev.name
}

var _ conn.Resource = &Dev{}
