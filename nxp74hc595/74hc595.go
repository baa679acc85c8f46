// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package nxp74hc595 drives a 74HC595 serial to parallel shift register on
// an SPI port, as found on the SPI side of the Adafruit LCD backpack.
//
// The storage register is clocked by CS, so every SPI transfer latches the
// last byte shifted in. The outputs can't be read back.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
package nxp74hc595

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

const (
	devName = "74HC595"
	numPins = 8
	allPins = gpio.GPIOValue(1<<numPins - 1)
)

var (
	ErrNotImplemented = errors.New("nxp74hc595: not implemented")
	errHalted         = errors.New("nxp74hc595: device halted")
)

// Dev is a 74HC595 shift register.
type Dev struct {
	// Pins are the eight outputs, QA first.
	Pins []gpio.PinOut

	mu    sync.Mutex
	conn  spi.Conn
	value gpio.GPIOValue
	// latched is false until the first transfer, since the power on state
	// of the register is unknown.
	latched bool
}

// New returns a device shifting out on conn.
func New(conn spi.Conn) (*Dev, error) {
	dev := &Dev{conn: conn, Pins: make([]gpio.PinOut, numPins)}
	for ix := range numPins {
		dev.Pins[ix] = &Pin{dev: dev, number: ix}
	}
	return dev, nil
}

// Out sets the outputs in mask to value. Writes that don't change the
// outputs are skipped.
func (dev *Dev) Out(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	v := dev.value&^mask | value&mask
	if dev.latched && v == dev.value {
		return nil
	}
	return dev.stream(v)
}

// Stream latches each value on all eight outputs in turn. It is used to
// clock a strobe line along with data without a round trip per edge. Each
// value is its own packet so CS rises between them.
func (dev *Dev) Stream(values ...gpio.GPIOValue) error {
	if len(values) == 0 {
		return nil
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.stream(values...)
}

func (dev *Dev) stream(values ...gpio.GPIOValue) error {
	if dev.conn == nil {
		return errHalted
	}
	var err error
	if len(values) == 1 {
		err = dev.conn.Tx([]byte{byte(values[0] & allPins)}, nil)
	} else {
		pkts := make([]spi.Packet, len(values))
		for i, v := range values {
			pkts[i].W = []byte{byte(v & allPins)}
		}
		err = dev.conn.TxPackets(pkts)
	}
	if err != nil {
		return fmt.Errorf("nxp74hc595: %w", err)
	}
	dev.value = values[len(values)-1] & allPins
	dev.latched = true
	return nil
}

// Value returns the outputs as last latched.
func (dev *Dev) Value() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Halt releases the port. The outputs keep their state.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.conn = nil
	return nil
}

func (dev *Dev) String() string {
	return devName
}
