// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23xxx drives the MCP23XXX family of GPIO expanders over I²C
// (MCP23008, MCP23017) or SPI (MCP23S08, MCP23S17).
//
// Registers are cached, so a write that doesn't change a register is
// skipped. Character display backpacks use a port Group for the data lines
// and single pins for the control lines.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20001952C.pdf
package mcp23xxx
