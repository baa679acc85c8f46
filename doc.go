// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for HD44780 character display drivers.
//
// The driver itself is in hd44780, with a transport per way of wiring the
// controller: GPIO pins, a parallel master port, an MCP23S17, a PCF8574,
// MCP23008 or 74HC595 backpack, or an AiP31068. hd44780sim is a software controller
// for tests and for running without hardware.
//
// The expander and backlight chips used by the backpacks are in mcp23xxx,
// pcf857x, nxp74hc595 and pca9633. tinygobus adapts TinyGo buses so the
// same drivers run on microcontrollers.
package charlcd
