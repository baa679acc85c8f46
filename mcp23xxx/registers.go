// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// registerAccess reads and writes single registers of the chip.
type registerAccess interface {
	readRegister(address uint8) (uint8, error)
	writeRegister(address uint8, value uint8) error
}

type i2cRegisterAccess struct {
	*i2c.Dev
}

func (ra *i2cRegisterAccess) readRegister(address uint8) (uint8, error) {
	rx := make([]byte, 1)
	err := ra.Tx([]byte{address}, rx)
	return rx[0], err
}

func (ra *i2cRegisterAccess) writeRegister(address uint8, value uint8) error {
	return ra.Tx([]byte{address, value}, nil)
}

// spiRegisterAccess frames each access as opcode, register, data. The
// opcode is 0100 A2 A1 A0 R/W.
type spiRegisterAccess struct {
	spi.Conn
	opcode uint8
}

const spiRead uint8 = 0x01

func (ra *spiRegisterAccess) readRegister(address uint8) (uint8, error) {
	rx := make([]byte, 3)
	err := ra.Tx([]byte{ra.opcode | spiRead, address, 0x00}, rx)
	return rx[2], err
}

func (ra *spiRegisterAccess) writeRegister(address uint8, value uint8) error {
	return ra.Tx([]byte{ra.opcode, address, value}, nil)
}

// registerCache holds the last value read from or written to one register.
type registerCache struct {
	ra      registerAccess
	address uint8
	got     bool
	cache   uint8
}

func newRegister(ra registerAccess, address uint8) registerCache {
	return registerCache{ra: ra, address: address}
}

func (r *registerCache) readValue(cached bool) (uint8, error) {
	if cached && r.got {
		return r.cache, nil
	}
	v, err := r.ra.readRegister(r.address)
	if err == nil {
		r.got = true
		r.cache = v
	}
	return v, err
}

// writeValue stores value. With cached set the write is skipped when the
// register is known to hold value already.
func (r *registerCache) writeValue(value uint8, cached bool) error {
	if cached && r.got && value == r.cache {
		return nil
	}
	if err := r.ra.writeRegister(r.address, value); err != nil {
		return err
	}
	r.got = true
	r.cache = value
	return nil
}

func (r *registerCache) getAndSetBit(bit uint8, value bool, cached bool) error {
	v, err := r.readValue(cached)
	if err != nil {
		return err
	}
	if value {
		v |= 1 << bit
	} else {
		v &= ^(1 << bit)
	}
	return r.writeValue(v, cached)
}

func (r *registerCache) getBit(bit uint8, cached bool) (bool, error) {
	v, err := r.readValue(cached)
	return (v & (1 << bit)) != 0, err
}
