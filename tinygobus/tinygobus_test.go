// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinygobus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

type i2cOp struct {
	Addr uint16
	W    []byte
	R    int
}

// fakeI2C records transactions and fills reads with fill.
type fakeI2C struct {
	ops  []i2cOp
	fill byte
	err  error
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.ops = append(f.ops, i2cOp{Addr: addr, W: append([]byte(nil), w...), R: len(r)})
	for i := range r {
		r[i] = f.fill
	}
	return f.err
}

// busLog is the sequence of chip select edges and transfers.
type busLog []string

// fakeSPI echoes each written byte plus one.
type fakeSPI struct {
	log *busLog
	err error
}

func (f *fakeSPI) Tx(w, r []byte) error {
	*f.log = append(*f.log, fmt.Sprintf("% x", w))
	for i := range r {
		if i < len(w) {
			r[i] = w[i] + 1
		}
	}
	return f.err
}

func (f *fakeSPI) Transfer(b byte) (byte, error) {
	return b + 1, f.err
}

type fakeCS struct {
	log *busLog
}

func (p *fakeCS) Set(high bool) {
	v := 0
	if high {
		v = 1
	}
	*p.log = append(*p.log, fmt.Sprintf("CS=%d", v))
}

var _ drivers.I2C = &fakeI2C{}
var _ drivers.SPI = &fakeSPI{}

func TestI2C(t *testing.T) {
	f := &fakeI2C{fill: 0xa5}
	bus := NewI2C(f, "I2C0")
	r := make([]byte, 2)
	if err := bus.Tx(0x20, []byte{0x01}, r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xa5, 0xa5}, r); diff != "" {
		t.Errorf("read (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]i2cOp{{Addr: 0x20, W: []byte{0x01}, R: 2}}, f.ops); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	if err := bus.SetSpeed(400 * physic.KiloHertz); !errors.Is(err, ErrConfigure) {
		t.Errorf("SetSpeed() returned %v", err)
	}
	if bus.String() != "I2C0" {
		t.Errorf("String()=%q", bus.String())
	}

	f.err = errors.New("nack")
	if err := bus.Tx(0x20, []byte{0}, nil); !errors.Is(err, f.err) {
		t.Errorf("Tx() returned %v", err)
	}
}

func TestSPI(t *testing.T) {
	var log busLog
	f := &fakeSPI{log: &log}
	port := NewSPI(f, &fakeCS{log: &log}, "SPI0")
	if diff := cmp.Diff(busLog{"CS=1"}, log); diff != "" {
		t.Errorf("NewSPI (-want +got):\n%s", diff)
	}
	if _, err := port.Connect(physic.MegaHertz, spi.Mode0, 9); err == nil {
		t.Error("expected error for 9 bit words")
	}
	c, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	if c.Duplex() != conn.Full {
		t.Errorf("Duplex()=%s", c.Duplex())
	}

	log = nil
	r := make([]byte, 2)
	if err = c.Tx([]byte{1, 2}, r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{2, 3}, r); diff != "" {
		t.Errorf("read (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(busLog{"CS=0", "01 02", "CS=1"}, log); diff != "" {
		t.Errorf("Tx (-want +got):\n%s", diff)
	}

	log = nil
	if err = c.Tx([]byte{1, 2}, make([]byte, 1)); err == nil {
		t.Error("expected error for mismatched buffers")
	}
	if diff := cmp.Diff(busLog{"CS=0", "CS=1"}, log); diff != "" {
		t.Errorf("failed Tx (-want +got):\n%s", diff)
	}

	// KeepCS joins a packet to the next one; CS is released at the end.
	log = nil
	pkts := []spi.Packet{
		{W: []byte{0x40, 0x12}, KeepCS: true},
		{W: []byte{0xff}},
		{W: []byte{0x01}, KeepCS: true},
	}
	if err = c.TxPackets(pkts); err != nil {
		t.Fatal(err)
	}
	want := busLog{"CS=0", "40 12", "ff", "CS=1", "CS=0", "01", "CS=1"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("TxPackets (-want +got):\n%s", diff)
	}

	log = nil
	if err = c.TxPackets([]spi.Packet{{W: []byte{0}, BitsPerWord: 16}}); err == nil {
		t.Error("expected error for 16 bit packet")
	}
	if len(log) != 0 {
		t.Errorf("rejected packets touched the bus: %v", log)
	}

	f.err = errors.New("bus error")
	log = nil
	if err = c.TxPackets(pkts); !errors.Is(err, f.err) {
		t.Errorf("TxPackets() returned %v", err)
	}
	if diff := cmp.Diff(busLog{"CS=0", "40 12", "CS=1"}, log); diff != "" {
		t.Errorf("failed TxPackets (-want +got):\n%s", diff)
	}

	// Without a CS pin only the data moves.
	log = nil
	f.err = nil
	if err = NewSPI(f, nil, "SPI1").Tx([]byte{7}, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(busLog{"07"}, log); diff != "" {
		t.Errorf("Tx without CS (-want +got):\n%s", diff)
	}
}

// Every byte sent to the 74HC595 is latched by its own CS edge.
func TestAdafruitSPIBackpack(t *testing.T) {
	var log busLog
	port := NewSPI(&fakeSPI{log: &log}, &fakeCS{log: &log}, "SPI0")
	c, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	dev, err := hd44780.NewAdafruitSPIBackpack(c, 2, 16)
	if err != nil {
		t.Fatal(err)
	}
	log = nil
	if _, err = dev.WriteString("A"); err != nil {
		t.Fatal(err)
	}
	var want busLog
	for _, b := range []string{"96", "92", "c6", "c2"} {
		want = append(want, "CS=0", b, "CS=1")
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("bus (-want +got):\n%s", diff)
	}
}

// The backpack driver runs over the bridge unchanged.
func TestPCF857xBackpack(t *testing.T) {
	f := &fakeI2C{}
	dev, err := hd44780.NewPCF857xBackpack(NewI2C(f, "I2C0"), 0x27, 2, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.ops) == 0 {
		t.Fatal("no transactions")
	}
	for _, op := range f.ops {
		if op.Addr != 0x27 {
			t.Fatalf("transaction to %#x", op.Addr)
		}
	}
	f.ops = nil
	if _, err = dev.WriteString("A"); err != nil {
		t.Fatal(err)
	}
	// 'A' is 0x41 with RS and the backlight set: two nibbles, each strobed.
	want := []i2cOp{{Addr: 0x27, W: []byte{0x4d, 0x49, 0x1d, 0x19, 0x08}}}
	if diff := cmp.Diff(want, f.ops, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
}
