// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import "time"

// Board is the physical interface to one controller.
//
// Transfers are only valid between Acquire and Release. A Board serves a
// single Dev.
type Board interface {
	// Init brings up the board. It is called once per Dev.Init, before the
	// hardware reset.
	Init() error
	// PostInit is called once the register programming completed, with the
	// bus still held.
	PostInit() error

	// Acquire takes exclusive ownership of the bus shared with the
	// controller. It may block until the bus is available and returns an
	// error when the bus can't be obtained.
	Acquire() error
	// Release gives back the bus taken by Acquire.
	Release()

	// WriteIndex sends a command byte.
	WriteIndex(cmd byte) error
	// WriteData sends a parameter or pixel byte.
	WriteData(b byte) error
	// ReadData performs one 16 bits read transfer. It is only valid after
	// SetReadMode.
	ReadData() (uint16, error)
	// SetReadMode switches the transfer direction to read.
	SetReadMode() error
	// SetWriteMode switches the transfer direction back to write.
	SetWriteMode() error

	// SetReset drives the reset line; asserted holds the controller in
	// reset.
	SetReset(asserted bool) error
	// SetBacklight sets the backlight intensity in percent, 0 to 100. The
	// backlight is independent of the bus.
	SetBacklight(percent int) error
	// Sleep blocks for d.
	Sleep(d time.Duration)
}

// BulkWriter is implemented by boards that can send many data bytes in one
// transfer. Dev.Draw uses it when available.
type BulkWriter interface {
	WriteDataBytes(p []byte) error
}
