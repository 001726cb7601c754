// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
)

// ControlCode selects the setting changed by Control.
type ControlCode int

// Control codes.
const (
	// ControlPower takes a PowerMode payload.
	ControlPower ControlCode = iota
	// ControlOrientation takes an Orientation payload.
	ControlOrientation
	// ControlBacklight takes an int payload, in percent.
	ControlBacklight
	// ControlContrast is accepted but has no effect.
	ControlContrast
)

// PowerMode is the power state of the controller.
type PowerMode uint8

// Power modes.
const (
	PowerOff PowerMode = iota
	PowerDeepSleep
	PowerSleep
	PowerOn
)

func (p PowerMode) String() string {
	switch p {
	case PowerOff:
		return "Off"
	case PowerDeepSleep:
		return "DeepSleep"
	case PowerSleep:
		return "Sleep"
	case PowerOn:
		return "On"
	default:
		return fmt.Sprintf("PowerMode(%d)", uint8(p))
	}
}

// Orientation is the clockwise rotation of the panel, in degrees.
type Orientation uint16

// Orientations.
const (
	Rotate0   Orientation = 0
	Rotate90  Orientation = 90
	Rotate180 Orientation = 180
	Rotate270 Orientation = 270
)

// madctl returns the memory access control value for o and whether the logical
// width and height are exchanged.
func (o Orientation) madctl() (v byte, swap, ok bool) {
	switch o {
	case Rotate0:
		return madctlMX | madctlBGR, false, true
	case Rotate90:
		return madctlMY | madctlMX | madctlMV | madctlBGR, true, true
	case Rotate180:
		return madctlMY | madctlBGR, false, true
	case Rotate270:
		return madctlMV | madctlBGR, true, true
	default:
		return 0, false, false
	}
}

// Sleep out requires 120ms before the next command, sleep in 5ms.
const (
	sleepOutSettle = 120 * time.Millisecond
	sleepInSettle  = 5 * time.Millisecond
)

// Control applies a setting change.
//
// Unsupported codes or payloads are ignored and leave the state unchanged,
// so callers can probe capabilities. Bus failures are reported by Err.
func (d *Dev) Control(code ControlCode, payload interface{}) {
	var err error
	switch code {
	case ControlPower:
		if m, ok := payload.(PowerMode); ok {
			err = d.SetPower(m)
		}
	case ControlOrientation:
		if o, ok := payload.(Orientation); ok {
			err = d.SetOrientation(o)
		}
	case ControlBacklight:
		if l, ok := payload.(int); ok {
			err = d.SetBacklight(l)
		}
	}
	d.latch(err)
}

// SetPower changes the power mode. Requesting the current mode or an unknown
// mode is a no-op.
func (d *Dev) SetPower(m PowerMode) error {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	s := d.State()
	if !d.isReady() || s.Power == m {
		return nil
	}
	var c command
	switch m {
	case PowerOff, PowerSleep, PowerDeepSleep:
		c = command{cmd: sleepIn, delay: sleepInSettle}
	case PowerOn:
		c = command{cmd: sleepOut, delay: sleepOutSettle}
	default:
		return nil
	}
	if err := d.transact(c); err != nil {
		return err
	}
	d.mu.Lock()
	d.state.Power = m
	d.mu.Unlock()
	return nil
}

// SetOrientation rotates the panel. Width and height are exchanged when
// rotating by 90° or 270°. Requesting the current orientation or an unknown
// orientation is a no-op.
func (d *Dev) SetOrientation(o Orientation) error {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	s := d.State()
	if !d.isReady() || s.Orientation == o {
		return nil
	}
	v, swap, ok := o.madctl()
	if !ok {
		return nil
	}
	if err := d.transact(command{cmd: memoryAccessControl, data: []byte{v}}); err != nil {
		return err
	}
	d.mu.Lock()
	if swap {
		d.state.W, d.state.H = d.opts.H, d.opts.W
	} else {
		d.state.W, d.state.H = d.opts.W, d.opts.H
	}
	d.state.Orientation = o
	d.mu.Unlock()
	return nil
}

// SetBacklight sets the backlight level in percent. The level is clamped to
// [0, 100] and always applied, even if unchanged.
func (d *Dev) SetBacklight(level int) error {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	if !d.isReady() {
		return nil
	}
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	if err := d.b.SetBacklight(level); err != nil {
		return fmt.Errorf("st7735: backlight failed: %w", err)
	}
	d.mu.Lock()
	d.state.Backlight = level
	d.mu.Unlock()
	return nil
}

// Backlight implements display.DisplayBacklight. The intensity 0 to 255 is
// scaled to a percentage.
func (d *Dev) Backlight(intensity display.Intensity) error {
	i := int(intensity)
	if i > 0xFF {
		i = 0xFF
	}
	return d.SetBacklight((i*100 + 0xFF/2) / 0xFF)
}

// transact sends commands as one bus transaction.
func (d *Dev) transact(cmds ...command) error {
	if err := d.b.Acquire(); err != nil {
		return fmt.Errorf("%w: %w", ErrBusUnavailable, err)
	}
	eh := errorHandler{b: d.b}
	for _, c := range cmds {
		eh.send(c)
	}
	d.b.Release()
	if eh.err != nil {
		return fmt.Errorf("st7735: transfer failed: %w", eh.err)
	}
	return nil
}

var _ display.DisplayBacklight = &Dev{}
