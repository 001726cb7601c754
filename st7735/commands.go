// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import "time"

// Commands
const (
	softwareReset       byte = 0x01
	sleepIn             byte = 0x10
	sleepOut            byte = 0x11
	normalDisplayOn     byte = 0x13
	inversionOff        byte = 0x20
	displayOn           byte = 0x29
	columnAddressSet    byte = 0x2A
	rowAddressSet       byte = 0x2B
	memoryWrite         byte = 0x2C
	memoryRead          byte = 0x2E
	memoryAccessControl byte = 0x36
	interfacePixelFmt   byte = 0x3A
	frameRateControl1   byte = 0xB1
	frameRateControl2   byte = 0xB2
	frameRateControl3   byte = 0xB3
	inversionControl    byte = 0xB4
	displaySetting      byte = 0xB6
	powerControl1       byte = 0xC0
	powerControl2       byte = 0xC1
	powerControl3       byte = 0xC2
	powerControl4       byte = 0xC3
	powerControl5       byte = 0xC4
	vcomControl1        byte = 0xC5
	gammaPositive       byte = 0xE0
	gammaNegative       byte = 0xE1
	powerControl6       byte = 0xFC
)

// Memory access control (MADCTL) bits.
const (
	madctlMY  byte = 0x80 // Row address order.
	madctlMX  byte = 0x40 // Column address order.
	madctlMV  byte = 0x20 // Row/column exchange.
	madctlRGB byte = 0x00
	madctlBGR byte = 0x08
)

// pixelFormat16 selects 16 bits per pixel (RGB565) in interfacePixelFmt.
const pixelFormat16 byte = 0x05

// command is one register programming step: the command byte, its parameters
// and the settle time required by the controller before the next command.
type command struct {
	cmd   byte
	data  []byte
	delay time.Duration
}
