// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type regOp struct {
	Reg   uint8
	Value uint8
	Read  bool
}

// fakeChip models the register file of an MCP23xxx. Reads of GPIO return
// inputs for that register; everything else reads back what was written.
type fakeChip struct {
	regs   [0x16]uint8
	inputs map[uint8]uint8
	ops    []regOp
	frames [][]byte
}

func newFakeChip() *fakeChip {
	f := &fakeChip{inputs: map[uint8]uint8{}}
	// IODIR powers up as all inputs.
	f.regs[IODIRA] = 0xff
	f.regs[IODIRB] = 0xff
	return f
}

func (f *fakeChip) read(reg uint8) uint8 {
	f.ops = append(f.ops, regOp{Reg: reg, Read: true})
	if v, ok := f.inputs[reg]; ok {
		return v
	}
	return f.regs[reg]
}

func (f *fakeChip) write(reg, v uint8) {
	f.ops = append(f.ops, regOp{Reg: reg, Value: v})
	f.regs[reg] = v
}

// writes returns the register writes, in order.
func (f *fakeChip) writes() []regOp {
	var w []regOp
	for _, op := range f.ops {
		if !op.Read {
			w = append(w, op)
		}
	}
	return w
}

// fakeI2C is an i2c.Bus in front of a fakeChip.
type fakeI2C struct {
	*fakeChip
}

func (f *fakeI2C) String() string                  { return "fakeI2C" }
func (f *fakeI2C) SetSpeed(physic.Frequency) error { return nil }

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	switch {
	case len(w) == 1 && len(r) == 1:
		r[0] = f.read(w[0])
	case len(w) == 2 && len(r) == 0:
		f.write(w[0], w[1])
	default:
		return errors.New("fakeI2C: unexpected transaction")
	}
	return nil
}

// fakeSPI is an spi.Conn in front of a fakeChip.
type fakeSPI struct {
	*fakeChip
}

func (f *fakeSPI) String() string      { return "fakeSPI" }
func (f *fakeSPI) Duplex() conn.Duplex { return conn.Full }
func (f *fakeSPI) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := f.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSPI) Tx(w, r []byte) error {
	if len(w) != 3 {
		return errors.New("fakeSPI: frames are 3 bytes")
	}
	f.frames = append(f.frames, append([]byte(nil), w...))
	if w[0]&spiRead != 0 {
		if len(r) != 3 {
			return errors.New("fakeSPI: read needs a 3 byte buffer")
		}
		r[2] = f.read(w[1])
		return nil
	}
	f.write(w[1], w[2])
	return nil
}

func newI2CDev(t *testing.T, variant Variant) (*Dev, *fakeChip) {
	chip := newFakeChip()
	dev, err := NewI2C(&fakeI2C{chip}, variant, 0x20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	chip.ops = nil
	return dev, chip
}

func TestNewErrors(t *testing.T) {
	chip := newFakeChip()
	if _, err := NewI2C(&fakeI2C{chip}, MCP23S17, 0x20); err == nil {
		t.Error("NewI2C accepted an SPI variant")
	}
	if _, err := NewSPI(&fakeSPI{chip}, MCP23017, 0); err == nil {
		t.Error("NewSPI accepted an I²C variant")
	}
	if _, err := NewSPI(&fakeSPI{chip}, MCP23S17, 8); err == nil {
		t.Error("NewSPI accepted hardware address 8")
	}
	if _, err := NewI2C(&fakeI2C{chip}, Variant("MCP23018"), 0x20); err == nil {
		t.Error("NewI2C accepted an unknown variant")
	}
}

func TestNewCachesDirection(t *testing.T) {
	chip := newFakeChip()
	dev, err := NewI2C(&fakeI2C{chip}, MCP23017, 0x21)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	want := []regOp{{Reg: IODIRA, Read: true}, {Reg: IODIRB, Read: true}}
	if diff := cmp.Diff(want, chip.ops); diff != "" {
		t.Errorf("unexpected register access (-want +got):\n%s", diff)
	}
	if len(dev.Pins) != 2 || len(dev.Pins[1]) != 8 || len(dev.Conns) != 2 {
		t.Fatalf("unexpected pin layout %d ports", len(dev.Pins))
	}
	if !strings.HasPrefix(dev.Pins[1][3].Name(), "MCP23017_21_PB") {
		t.Errorf("unexpected pin name %s", dev.Pins[1][3].Name())
	}
}

func TestPinOut(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	p := dev.Pins[0][3]
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	want := []regOp{{Reg: IODIR8, Value: 0xf7}, {Reg: OLAT8, Value: 0x08}, {Reg: OLAT8, Value: 0x00}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
	if p.Function() != string(gpio.OUT) {
		t.Errorf("Function()=%s", p.Function())
	}
}

func TestPinIn(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	chip.inputs[GPIO8] = 0x20
	p := dev.Pins[0][5]
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if p.Pull() != gpio.PullUp {
		t.Errorf("Pull()=%s", p.Pull())
	}
	if p.Read() != gpio.High {
		t.Error("expected pin 5 high")
	}
	if dev.Pins[0][4].Read() != gpio.Low {
		t.Error("expected pin 4 low")
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err == nil {
		t.Error("expected PullDown error")
	}
	if err := p.In(gpio.Float, gpio.RisingEdge); err == nil {
		t.Error("expected edge error")
	}
	if err := p.PWM(gpio.DutyHalf, physic.KiloHertz); err == nil {
		t.Error("expected PWM error")
	}
	want := []regOp{{Reg: GPPU8, Value: 0x20}, {Reg: GPPU8, Value: 0x00}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestSetFunc(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	p := dev.Pins[0][0].(*portpin)
	if err := p.SetFunc(gpio.OUT); err != nil {
		t.Fatal(err)
	}
	if p.Func() != gpio.OUT {
		t.Errorf("Func()=%s", p.Func())
	}
	if err := p.SetFunc(gpio.IN); err != nil {
		t.Fatal(err)
	}
	if err := p.SetFunc("I2C_SDA"); err == nil {
		t.Error("expected error for unsupported function")
	}
	want := []regOp{{Reg: IODIR8, Value: 0xfe}, {Reg: IODIR8, Value: 0xff}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestPortConn(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23017)
	chip.inputs[GPIOB] = 0x5a
	if err := dev.Conns[0].Tx([]byte{0x01, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 1)
	if err := dev.Conns[1].Tx(nil, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0x5a {
		t.Errorf("read %#x", r[0])
	}
	if err := dev.Conns[0].Tx([]byte{1}, r); err == nil {
		t.Error("expected full duplex error")
	}
	if dev.Conns[0].Duplex() != conn.Half {
		t.Error("expected half duplex")
	}
	// Uncached: both bytes go out.
	want := []regOp{{Reg: OLATA, Value: 1}, {Reg: OLATA, Value: 1}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestSPIFraming(t *testing.T) {
	chip := newFakeChip()
	dev, err := NewSPI(&fakeSPI{chip}, MCP23S17, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	if err = dev.Pins[1][7].Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x43, IODIRA, 0},
		{0x43, IODIRB, 0},
		{0x42, IODIRB, 0x7f},
		{0x43, OLATB, 0},
		{0x42, OLATB, 0x80},
	}
	if diff := cmp.Diff(want, chip.frames); diff != "" {
		t.Errorf("unexpected SPI frames (-want +got):\n%s", diff)
	}
}

func TestHalt(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23017)
	if err := dev.Pins[0][0].Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	chip.ops = nil
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	want := []regOp{{Reg: IODIRA, Value: 0xff}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}
