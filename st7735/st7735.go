// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/GermanBionicSystems/lcd/rgb565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Frame memory size of the controller.
const (
	MaxWidth  = 132
	MaxHeight = 162
)

// resetSettle is how long the reset line is held in each state.
const resetSettle = 20 * time.Millisecond

var (
	// ErrNoVariant is returned when Opts doesn't select a chip variant.
	ErrNoVariant = errors.New("st7735: no chip variant selected")
	// ErrBusUnavailable is returned when the board can't hand over the bus.
	ErrBusUnavailable = errors.New("st7735: bus unavailable")

	errNotInitialized = errors.New("st7735: device not initialized")
)

// DefaultOpts is a 1.8" 128x160 green tab panel.
var DefaultOpts = Opts{
	W:         128,
	H:         160,
	Variant:   GreenTab,
	Backlight: 100,
	Contrast:  50,
}

// Opts defines the options for the device.
type Opts struct {
	// W and H are the panel size in the default orientation.
	W int
	H int
	// Variant is the controller sub-family. It is required.
	Variant Variant
	// Backlight is the initial backlight level in percent.
	Backlight int
	// Contrast is the initial contrast level. It is recorded but the
	// controller has no contrast register.
	Contrast int
}

// Validate returns an error if the options can't describe a panel.
func (o *Opts) Validate() error {
	if o.Variant == nil {
		return ErrNoVariant
	}
	if o.W <= 0 || o.W > MaxWidth {
		return fmt.Errorf("st7735: width must be between 1 and %d, got %d", MaxWidth, o.W)
	}
	if o.H <= 0 || o.H > MaxHeight {
		return fmt.Errorf("st7735: height must be between 1 and %d, got %d", MaxHeight, o.H)
	}
	if o.Backlight < 0 || o.Backlight > 100 {
		return fmt.Errorf("st7735: backlight must be between 0 and 100, got %d", o.Backlight)
	}
	if o.Contrast < 0 || o.Contrast > 100 {
		return fmt.Errorf("st7735: contrast must be between 0 and 100, got %d", o.Contrast)
	}
	return nil
}

// State is the display state owned by a Dev.
type State struct {
	// W and H are the logical size in the current orientation.
	W, H        int
	Orientation Orientation
	Power       PowerMode
	Backlight   int
	Contrast    int
}

// Dev is an open handle to the display controller.
type Dev struct {
	b    Board
	opts Opts

	// ctl serializes control operations.
	ctl sync.Mutex

	mu    sync.Mutex
	state State
	ready bool
	err   error

	// streamMu is held from BeginWrite or BeginRead to the matching end and
	// guards stream and held.
	streamMu sync.Mutex
	stream   errorHandler
	held     bool
}

// New returns an initialized Dev driving the controller behind b.
//
// On failure, no Dev is returned and the board must be considered in an
// undefined state.
func New(b Board, opts *Opts) (*Dev, error) {
	d, err := newDev(b, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(b Board, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("st7735: board is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Dev{b: b, opts: *opts}, nil
}

// Init drives the controller from power up to a configured, display on
// state.
//
// It brings up the board, pulses the reset line, programs the registers of
// the variant while holding the bus, then turns on the backlight. The state
// is only populated when every step succeeded; there is no retry.
func (d *Dev) Init() error {
	d.mu.Lock()
	d.state = State{}
	d.ready = false
	d.err = nil
	d.mu.Unlock()

	if err := d.b.Init(); err != nil {
		return fmt.Errorf("st7735: board bring-up failed: %w", err)
	}
	if err := d.reset(); err != nil {
		return fmt.Errorf("st7735: reset failed: %w", err)
	}
	if err := d.b.Acquire(); err != nil {
		return fmt.Errorf("%w: %w", ErrBusUnavailable, err)
	}
	eh := errorHandler{b: d.b}
	for _, c := range d.opts.Variant.initSequence() {
		eh.send(c)
	}
	if eh.err == nil {
		eh.err = d.b.PostInit()
	}
	d.b.Release()
	if eh.err != nil {
		return fmt.Errorf("st7735: initialization of %s failed: %w", d.opts.Variant, eh.err)
	}
	if err := d.b.SetBacklight(d.opts.Backlight); err != nil {
		return fmt.Errorf("st7735: backlight failed: %w", err)
	}

	d.mu.Lock()
	d.state = State{
		W:           d.opts.W,
		H:           d.opts.H,
		Orientation: Rotate0,
		Power:       PowerOn,
		Backlight:   d.opts.Backlight,
		Contrast:    d.opts.Contrast,
	}
	d.ready = true
	d.mu.Unlock()
	return nil
}

// reset pulses the reset line. The controller has no ready signal, both
// waits are mandatory.
func (d *Dev) reset() error {
	if err := d.b.SetReset(true); err != nil {
		return err
	}
	d.b.Sleep(resetSettle)
	if err := d.b.SetReset(false); err != nil {
		return err
	}
	d.b.Sleep(resetSettle)
	return nil
}

// State returns a snapshot of the display state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the first bus failure recorded by an operation that has no
// error return, such as Control or a pixel stream, since the last Init.
func (d *Dev) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Dev) latch(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()
}

func (d *Dev) isReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

func (d *Dev) String() string {
	s := d.State()
	return fmt.Sprintf("st7735.Dev{%s, %dx%d}", d.opts.Variant, s.W, s.H)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer. It follows the current orientation.
func (d *Dev) Bounds() image.Rectangle {
	s := d.State()
	return image.Rect(0, 0, s.W, s.H)
}

// Halt implements conn.Resource.
//
// It turns off the backlight and puts the controller to sleep.
func (d *Dev) Halt() error {
	err := d.SetBacklight(0)
	if err2 := d.SetPower(PowerSleep); err == nil {
		err = err2
	}
	return err
}

var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
