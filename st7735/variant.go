// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import "time"

// Variant selects the controller sub-family and panel wiring.
//
// Exactly one variant drives a Dev for its whole lifetime. The set of
// variants is closed: only the values declared in this package implement it.
type Variant interface {
	String() string
	// initSequence returns the register programming performed after the
	// hardware reset, while the bus is held.
	initSequence() []command
}

type variant struct {
	name string
	seq  []command
}

func (v *variant) String() string {
	return v.name
}

func (v *variant) initSequence() []command {
	return v.seq
}

// Supported variants.
var (
	// ST7735B is the original ST7735 (B) controller.
	ST7735B Variant = &variant{name: "ST7735B", seq: sequenceB()}
	// RedTab is a ST7735R panel shipped with a red tab; its addressing window
	// starts at the origin of the frame memory.
	RedTab Variant = &variant{name: "ST7735R red tab", seq: sequenceR(
		command{cmd: columnAddressSet, data: []byte{0x00, 0x00, 0x00, 0x7F}},
		command{cmd: rowAddressSet, data: []byte{0x00, 0x00, 0x00, 0x9F}},
	)}
	// GreenTab is a ST7735R panel shipped with a green tab; the glass is
	// offset by 2 columns and 1 row in the frame memory.
	GreenTab Variant = &variant{name: "ST7735R green tab", seq: sequenceR(
		command{cmd: columnAddressSet, data: []byte{0x00, 0x02, 0x00, 0x7F + 0x02}},
		command{cmd: rowAddressSet, data: []byte{0x00, 0x01, 0x00, 0x9F + 0x01}},
	)}
)

func sequenceB() []command {
	return []command{
		{cmd: softwareReset, delay: 50 * time.Millisecond},
		{cmd: sleepOut, delay: 500 * time.Millisecond},
		{cmd: interfacePixelFmt, data: []byte{pixelFormat16}, delay: 10 * time.Millisecond},
		// Fastest refresh, 6 lines front porch, 3 lines back porch.
		{cmd: frameRateControl1, data: []byte{0x00, 0x06, 0x03}, delay: 10 * time.Millisecond},
		// Bottom to top refresh.
		{cmd: memoryAccessControl, data: []byte{madctlBGR}},
		// 1 clk cycle nonoverlap, 2 cycle gate rise, 3 cycle osc equalize. Fix
		// on VTL.
		{cmd: displaySetting, data: []byte{0x15, 0x02}},
		// Line inversion.
		{cmd: inversionControl, data: []byte{0x00}},
		// GVDD = 4.7V, 1µA.
		{cmd: powerControl1, data: []byte{0x02, 0x70}, delay: 10 * time.Millisecond},
		// VGH = 14.7V, VGL = -7.35V.
		{cmd: powerControl2, data: []byte{0x05}},
		// Opamp current small, boost frequency.
		{cmd: powerControl3, data: []byte{0x01, 0x02}},
		// VCOMH = 4V, VCOML = -1.1V.
		{cmd: vcomControl1, data: []byte{0x3C, 0x38}, delay: 10 * time.Millisecond},
		{cmd: powerControl6, data: []byte{0x11, 0x15}},
		{cmd: gammaPositive, data: []byte{
			0x09, 0x16, 0x09, 0x20, 0x21, 0x1B, 0x13, 0x19,
			0x17, 0x15, 0x1E, 0x2B, 0x04, 0x05, 0x02, 0x0E,
		}},
		{cmd: gammaNegative, data: []byte{
			0x0B, 0x14, 0x08, 0x1E, 0x22, 0x1D, 0x18, 0x1E,
			0x1B, 0x1A, 0x24, 0x2B, 0x06, 0x06, 0x02, 0x0F,
		}, delay: 10 * time.Microsecond},
		{cmd: columnAddressSet, data: []byte{0x00, 0x02, 0x00, 0x81}},
		{cmd: rowAddressSet, data: []byte{0x00, 0x02, 0x00, 0x81}},
		{cmd: normalDisplayOn, delay: 10 * time.Millisecond},
		{cmd: displayOn, delay: 500 * time.Millisecond},
		{cmd: memoryAccessControl, data: []byte{madctlMX | madctlMY | madctlRGB}},
	}
}

// sequenceR returns the R-type initialization with the given default
// addressing window.
func sequenceR(window ...command) []command {
	seq := []command{
		{cmd: softwareReset, delay: 150 * time.Millisecond},
		{cmd: sleepOut, delay: 500 * time.Millisecond},
		// Rate = fosc/(1x2+40) * (LINE+2C+2D) in normal, idle and partial modes.
		{cmd: frameRateControl1, data: []byte{0x01, 0x2C, 0x2D}},
		{cmd: frameRateControl2, data: []byte{0x01, 0x2C, 0x2D}},
		{cmd: frameRateControl3, data: []byte{0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D}},
		// No inversion.
		{cmd: inversionControl, data: []byte{0x07}},
		// -4.6V, auto mode.
		{cmd: powerControl1, data: []byte{0xA2, 0x02, 0x84}},
		{cmd: powerControl2, data: []byte{0xC5}},
		{cmd: powerControl3, data: []byte{0x0A, 0x00}},
		{cmd: powerControl4, data: []byte{0x8A, 0x2A}},
		{cmd: powerControl5, data: []byte{0x8A, 0xEE}},
		{cmd: vcomControl1, data: []byte{0x0E}},
		{cmd: inversionOff},
		{cmd: memoryAccessControl, data: []byte{0xC8}},
		{cmd: interfacePixelFmt, data: []byte{pixelFormat16}},
	}
	seq = append(seq, window...)
	return append(seq,
		command{cmd: gammaPositive, data: []byte{
			0x02, 0x01, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
			0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
		}},
		command{cmd: gammaNegative, data: []byte{
			0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
			0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
		}},
		command{cmd: normalDisplayOn, delay: 10 * time.Millisecond},
		command{cmd: displayOn, delay: 100 * time.Millisecond},
		command{cmd: memoryAccessControl, data: []byte{madctlMX | madctlMY | madctlRGB}},
	)
}
