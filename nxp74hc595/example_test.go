// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595_test

import (
	"log"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	pc, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer pc.Close()
	c, err := pc.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		log.Fatal(err)
	}
	dev, err := nxp74hc595.New(c)
	if err != nil {
		log.Fatal(err)
	}
	// Put 0x5 on QA-QD and pulse QH, latching three times in one call.
	if err = dev.Stream(0x05, 0x85, 0x05); err != nil {
		log.Fatal(err)
	}
	if err = dev.Pins[7].Out(gpio.High); err != nil {
		log.Fatal(err)
	}
}
