// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x_test

import (
	"fmt"
	"log"

	"github.com/GermanBionicSystems/charlcd/pcf857x"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	dev, err := pcf857x.New(bus, 0x27, pcf857x.PCF8574)
	if err != nil {
		log.Fatal(err)
	}
	// On an LCD backpack P3 is the backlight, P2 the E line and P4-P7 the
	// data lines. Pulse E with 0x3 on the data lines, all in one write.
	if err = dev.Stream(0x3c, 0x38); err != nil {
		log.Fatal(err)
	}
	// The upper nibble reads as inputs once released.
	v, err := dev.Read(0xf0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("data lines: %#x\n", v>>4)

	gr, err := dev.Group(4, 5, 6, 7)
	if err != nil {
		log.Fatal(err)
	}
	if err = gr.Out(0, 0); err != nil {
		log.Fatal(err)
	}
	fmt.Println(gr, dev.Pins[3].Read() == gpio.High)
}
