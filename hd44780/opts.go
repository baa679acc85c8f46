// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
)

// Opts holds the display configuration.
type Opts struct {
	// Rows and Cols are the panel geometry. Up to 4 rows and 80 cells.
	Rows int
	Cols int
	// BusyPolling paces transfers by reading the busy flag instead of
	// waiting the datasheet delays. It requires a transport that implements
	// Reader.
	BusyPolling bool
	// BusyTimeout bounds the busy flag wait. Zero waits forever.
	BusyTimeout time.Duration
	// Font5x10 selects the 5x10 dot font. Only valid on single line
	// displays.
	Font5x10 bool
	// Backlight controls the backlight. It may be nil if the backlight is
	// hard wired.
	Backlight display.DisplayBacklight
}

// DefaultOpts is a 2 line by 16 column display paced with fixed delays.
var DefaultOpts = Opts{
	Rows: 2,
	Cols: 16,
}

func (o *Opts) validate() error {
	if o.Rows < 1 || o.Rows > 4 {
		return fmt.Errorf("%s: invalid row count %d", packageName, o.Rows)
	}
	if o.Cols < 1 || o.Cols > 40 || o.Rows*o.Cols > 80 {
		return fmt.Errorf("%s: invalid column count %d for %d rows", packageName, o.Cols, o.Rows)
	}
	if o.BusyTimeout < 0 {
		return fmt.Errorf("%s: negative busy timeout", packageName)
	}
	return nil
}
