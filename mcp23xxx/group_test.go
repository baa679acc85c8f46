// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestGroupLookup(t *testing.T) {
	dev, _ := newI2CDev(t, MCP23008)
	gr, err := dev.Group(0, []int{4, 5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	for offset, pin := range gr.Pins() {
		if x := gr.ByOffset(offset); x == nil || x.Number() != pin.Number() {
			t.Errorf("ByOffset(%d) didn't return pin %d", offset, pin.Number())
		}
		if x := gr.ByNumber(pin.Number()); x == nil {
			t.Errorf("ByNumber(%d) returned nil", pin.Number())
		}
		if x := gr.ByName(pin.Name()); x == nil || x.Name() != pin.Name() {
			t.Errorf("ByName(%s) failed", pin.Name())
		}
	}
	if gr.ByOffset(4) != nil || gr.ByNumber(0) != nil || gr.ByName("nope") != nil {
		t.Error("lookup of a pin outside the group should return nil")
	}
	if s := gr.String(); s != "MCP23008_20_P0 - [ 4 5 6 7 ]" {
		t.Errorf("String()=%q", s)
	}
	if _, err = dev.Group(1, []int{0}); err == nil {
		t.Error("expected error for port 1 of an MCP23008")
	}
	if _, err = dev.Group(0, []int{8}); err == nil {
		t.Error("expected error for pin 8")
	}
}

func TestGroupOut(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23017)
	gr, err := dev.Group(1, []int{0, 1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []gpio.GPIOValue{0xa5, 0xa5, 0x3c} {
		if err = gr.Out(v, 0); err != nil {
			t.Fatal(err)
		}
	}
	// Only the masked pins change.
	if err = gr.Out(0x00, 0x0f); err != nil {
		t.Fatal(err)
	}
	want := []regOp{
		{Reg: IODIRB, Value: 0x00},
		{Reg: OLATB, Value: 0xa5},
		{Reg: OLATB, Value: 0x3c},
		{Reg: OLATB, Value: 0x30},
	}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

// Group offsets map to arbitrary, unordered port bits.
func TestGroupOutScattered(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	gr, err := dev.Group(0, []int{3, 4, 5, 6, 1, 2, 7})
	if err != nil {
		t.Fatal(err)
	}
	// D7 (offset 3) and backlight (offset 6).
	if err = gr.Out(0x48, 0x48); err != nil {
		t.Fatal(err)
	}
	want := []regOp{{Reg: IODIR8, Value: 0x3f}, {Reg: OLAT8, Value: 0xc0}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestGroupRead(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	gr, err := dev.Group(0, []int{4, 5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	out, err := dev.Group(0, []int{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if err = out.Out(0, 0); err != nil {
		t.Fatal(err)
	}
	chip.inputs[GPIO8] = 0x50
	v, err := gr.Read(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x5 {
		t.Errorf("Read()=%#x, want 0x5", v)
	}
	if v, err = gr.Read(0x4); err != nil || v != 0x4 {
		t.Errorf("Read(0x4)=%#x, %v", v, err)
	}
	// Reading the output pins turns them back to inputs.
	if _, err = out.Read(0x1); err != nil {
		t.Fatal(err)
	}
	want := []regOp{{Reg: IODIR8, Value: 0xf0}, {Reg: IODIR8, Value: 0xf1}}
	if diff := cmp.Diff(want, chip.writes()); diff != "" {
		t.Errorf("unexpected writes (-want +got):\n%s", diff)
	}
}

func TestGroupWaitForEdge(t *testing.T) {
	dev, chip := newI2CDev(t, MCP23008)
	gr, err := dev.Group(0, []int{4, 5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err = gr.WaitForEdge(0); !errors.Is(err, gpio.ErrGroupFeatureNotImplemented) {
		t.Errorf("expected ErrGroupFeatureNotImplemented, got %v", err)
	}

	intr := &gpiotest.Pin{N: "INT", EdgesChan: make(chan gpio.Level, 2)}
	dev.SetEdgePin(intr)
	chip.inputs[GPIO8-2] = 0x20
	intr.EdgesChan <- gpio.Low
	n, edge, err := gr.WaitForEdge(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || edge != gpio.NoEdge {
		t.Errorf("WaitForEdge()=%d, %s; want 1, NoEdge", n, edge)
	}

	chip.inputs[GPIO8-2] = 0x01
	intr.EdgesChan <- gpio.Low
	if n, _, err = gr.WaitForEdge(time.Second); !errors.Is(err, ErrPinNotInGroup) || n != 0 {
		t.Errorf("WaitForEdge()=%d, %v; want 0, ErrPinNotInGroup", n, err)
	}

	if n, _, err = gr.WaitForEdge(time.Millisecond); err != nil || n != -1 {
		t.Errorf("timeout: WaitForEdge()=%d, %v", n, err)
	}
	if err = gr.Halt(); err != nil {
		t.Error(err)
	}
}
