// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"strings"
	"testing"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	inst = hd44780.InstructionRegister
	data = hd44780.DataRegister
)

func newController(t *testing.T, opts *Opts) *Controller {
	c, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func send(t *testing.T, c *Controller, reg hd44780.Register, values ...byte) {
	for _, v := range values {
		if err := c.Send(v, reg); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New(&Opts{Width: 5}); err == nil {
		t.Error("expected error for width 5")
	}
	if _, err := New(&Opts{Width: hd44780.Width8Bit, BusyReads: -1}); err == nil {
		t.Error("expected error for negative busy reads")
	}
	c := newController(t, nil)
	want := State{EightBit: true, Increment: true}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("power on state (-want +got):\n%s", diff)
	}
	for _, l := range c.Lines(2, 16) {
		if l != strings.Repeat(" ", 16) {
			t.Errorf("power on line %q", l)
		}
	}
	if c.String() != "hd44780sim8" {
		t.Errorf("String()=%q", c.String())
	}
}

func TestTwoLineWrap(t *testing.T) {
	c := newController(t, nil)
	send(t, c, inst, 0x38, 0x80|0x27)
	send(t, c, data, 'A', 'B')
	if ac := c.State().Address; ac != 0x41 {
		t.Errorf("AC=%#x, want 0x41", ac)
	}
	send(t, c, inst, 0x80|0x67)
	send(t, c, data, 'C')
	if ac := c.State().Address; ac != 0 {
		t.Errorf("AC=%#x, want 0", ac)
	}
	ram := c.DDRAM()
	if ram[39] != 'A' || ram[40] != 'B' || ram[79] != 'C' {
		t.Errorf("DDRAM=%q", ram[:])
	}
	// Decrement wraps backwards over the same gap.
	send(t, c, inst, 0x04, 0x80|0x40)
	send(t, c, data, 'x', 'y')
	if ac := c.State().Address; ac != 0x26 {
		t.Errorf("AC=%#x, want 0x26", ac)
	}
}

func TestOneLineWrap(t *testing.T) {
	c := newController(t, nil)
	send(t, c, inst, 0x80|79)
	send(t, c, data, 'z')
	if ac := c.State().Address; ac != 0 {
		t.Errorf("AC=%#x, want 0", ac)
	}
	if ram := c.DDRAM(); ram[79] != 'z' {
		t.Errorf("DDRAM[79]=%q", ram[79])
	}
}

func TestLines(t *testing.T) {
	c := newController(t, nil)
	send(t, c, inst, 0x38)
	for row, base := range []byte{0x00, 0x40, 0x14, 0x54} {
		send(t, c, inst, 0x80|base)
		send(t, c, data, '0'+byte(row))
	}
	want := []string{"0   ", "1   ", "2   ", "3   "}
	if diff := cmp.Diff(want, c.Lines(4, 4)); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	// Shift the display left twice, then right once.
	send(t, c, inst, 0x18, 0x18, 0x1c)
	want = []string{"   ", "   ", "   ", "   "}
	if diff := cmp.Diff(want, c.Lines(4, 3)); diff != "" {
		t.Errorf("shifted Lines (-want +got):\n%s", diff)
	}
	if s := c.State().Shift; s != 1 {
		t.Errorf("Shift=%d", s)
	}
	// Home undoes the shift.
	send(t, c, inst, 0x02)
	if got := c.Lines(1, 1); got[0] != "0" {
		t.Errorf("Lines after home=%q", got)
	}
}

func TestAutoShift(t *testing.T) {
	c := newController(t, nil)
	send(t, c, inst, 0x38, 0x07)
	send(t, c, data, 'a', 'b')
	if got := c.Lines(1, 2)[0]; got != "  " {
		t.Errorf("line=%q", got)
	}
	if s := c.State().Shift; s != 2 {
		t.Errorf("Shift=%d", s)
	}
}

func TestClear(t *testing.T) {
	c := newController(t, nil)
	send(t, c, inst, 0x38, 0x04, 0x85)
	send(t, c, data, 'q')
	send(t, c, inst, 0x01)
	st := c.State()
	if st.Address != 0 || !st.Increment {
		t.Errorf("state after clear %+v", st)
	}
	if c.DDRAM()[5] != ' ' {
		t.Error("clear didn't blank DDRAM")
	}
}

func TestCGRAM(t *testing.T) {
	c := newController(t, nil)
	glyph := [8]byte{0x1f, 0x11, 0x11, 0x11, 0x11, 0x11, 0x1f, 0}
	send(t, c, inst, 0x40|8)
	send(t, c, data, glyph[:]...)
	if got := c.Glyph(1); got != glyph {
		t.Errorf("Glyph(1)=%v", got)
	}
	if got := c.Glyph(9); got != ([8]byte{}) {
		t.Errorf("Glyph(9)=%v", got)
	}
	st := c.State()
	if !st.CGRAM || st.Address != 16 {
		t.Errorf("state %+v", st)
	}
	send(t, c, inst, 0x40|8)
	for i := range glyph {
		v, err := c.Receive(data)
		if err != nil || v != glyph[i] {
			t.Fatalf("Receive()=%#x, %v; want %#x", v, err, glyph[i])
		}
	}
}

func TestBusy(t *testing.T) {
	c := newController(t, &Opts{Width: hd44780.Width8Bit, BusyReads: 2})
	send(t, c, inst, 0x80|0x05)
	var got []byte
	for i := 0; i < 3; i++ {
		v, err := c.Receive(inst)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]byte{0x85, 0x85, 0x05}, got); diff != "" {
		t.Errorf("status reads (-want +got):\n%s", diff)
	}
}

func TestFourBit(t *testing.T) {
	c := newController(t, &Opts{Width: hd44780.Width4Bit})
	// Still in 8 bit mode: each Send is two complete instructions.
	if err := c.SendInit(0x20); err != nil {
		t.Fatal(err)
	}
	if c.State().EightBit {
		t.Fatal("expected 4 bit mode")
	}
	send(t, c, inst, 0x28)
	send(t, c, data, 'H')
	if st := c.State(); !st.TwoLine || st.Address != 1 {
		t.Errorf("state %+v", st)
	}
	if c.DDRAM()[0] != 'H' {
		t.Errorf("DDRAM[0]=%q", c.DDRAM()[0])
	}
	// Half a transfer is dropped by Init.
	if err := c.SendInit(0x80); err != nil {
		t.Fatal(err)
	}
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	send(t, c, inst, 0x80)
	if st := c.State(); st.Address != 0 {
		t.Errorf("AC=%#x", st.Address)
	}
	if c.Inits() != 1 {
		t.Errorf("Inits()=%d", c.Inits())
	}
}

func TestTrace(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := newController(t, &Opts{Width: hd44780.Width8Bit, Logger: logger})
	send(t, c, inst, 0x01, 0x0c)
	send(t, c, data, 'A')
	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	var ops []interface{}
	for _, e := range entries[:2] {
		ops = append(ops, e.Data["op"])
	}
	if diff := cmp.Diff([]interface{}{"clear display", "display control"}, ops); diff != "" {
		t.Errorf("traced ops (-want +got):\n%s", diff)
	}
	if entries[2].Message != "write data" {
		t.Errorf("last entry %q", entries[2].Message)
	}
}
