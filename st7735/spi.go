// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultSPIOpts is the recommended default options for SPIBoard.
var DefaultSPIOpts = SPIOpts{
	Freq:          15 * physic.MegaHertz,
	BacklightFreq: physic.KiloHertz,
}

// SPIOpts defines the options for a SPIBoard.
type SPIOpts struct {
	// Freq is the SPI clock. The controller write cycle is 66ns minimum.
	Freq physic.Frequency
	// BacklightFreq is the PWM frequency used for intermediate backlight
	// levels.
	BacklightFreq physic.Frequency
}

// SPIBoard is a Board using a 4-wire SPI port: the D/CX pin selects command
// (low) or data (high) transfers.
//
// The bus is guarded by a mutex: Acquire blocks until the current holder
// releases it, and fails once the board is closed.
type SPIBoard struct {
	c   conn.Conn
	dc  gpio.PinOut
	rst gpio.PinOut
	bl  gpio.PinOut

	blFreq    physic.Frequency
	maxTxSize int

	bus    sync.Mutex
	closed atomic.Bool
	read   bool
}

// NewSPIBoard returns a SPIBoard connected to p.
//
// dc is required. rst and bl are optional: pass nil when the reset line is
// tied high or the backlight is always on.
func NewSPIBoard(p spi.Port, dc, rst, bl gpio.PinOut, opts *SPIOpts) (*SPIBoard, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("st7735: dc pin is required")
	}
	if opts == nil {
		opts = &DefaultSPIOpts
	}
	c, err := p.Connect(opts.Freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7735: %w", err)
	}
	// Get the maxTxSize from the conn if it implements the conn.Limits
	// interface, otherwise use 4096 bytes.
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}
	return &SPIBoard{
		c:         c,
		dc:        dc,
		rst:       rst,
		bl:        bl,
		blFreq:    opts.BacklightFreq,
		maxTxSize: maxTxSize,
	}, nil
}

// NewSPI returns an initialized Dev driving a controller wired to a SPI port.
func NewSPI(p spi.Port, dc, rst, bl gpio.PinOut, opts *Opts) (*Dev, error) {
	b, err := NewSPIBoard(p, dc, rst, bl, nil)
	if err != nil {
		return nil, err
	}
	return New(b, opts)
}

func (b *SPIBoard) String() string {
	return fmt.Sprintf("SPIBoard{%s, %s}", b.c, b.dc)
}

// Init implements Board. It leaves the reset line deasserted.
func (b *SPIBoard) Init() error {
	if b.closed.Load() {
		return errors.New("st7735: board closed")
	}
	b.read = false
	if b.rst != nil {
		return b.rst.Out(gpio.High)
	}
	return nil
}

// PostInit implements Board.
func (b *SPIBoard) PostInit() error {
	return nil
}

// Acquire implements Board.
func (b *SPIBoard) Acquire() error {
	b.bus.Lock()
	if b.closed.Load() {
		b.bus.Unlock()
		return errors.New("st7735: board closed")
	}
	return nil
}

// Release implements Board.
func (b *SPIBoard) Release() {
	b.bus.Unlock()
}

// WriteIndex implements Board.
func (b *SPIBoard) WriteIndex(cmd byte) error {
	if err := b.dc.Out(gpio.Low); err != nil {
		return err
	}
	return b.c.Tx([]byte{cmd}, nil)
}

// WriteData implements Board.
func (b *SPIBoard) WriteData(v byte) error {
	if err := b.dc.Out(gpio.High); err != nil {
		return err
	}
	return b.c.Tx([]byte{v}, nil)
}

// WriteDataBytes implements BulkWriter. p is split in chunks the port can
// handle.
func (b *SPIBoard) WriteDataBytes(p []byte) error {
	if err := b.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(p) != 0 {
		var chunk []byte
		if len(p) > b.maxTxSize {
			chunk, p = p[:b.maxTxSize], p[b.maxTxSize:]
		} else {
			chunk, p = p, nil
		}
		if err := b.c.Tx(chunk, nil); err != nil {
			return err
		}
	}
	return nil
}

// ReadData implements Board. The port must be wired for bidirectional data.
func (b *SPIBoard) ReadData() (uint16, error) {
	if !b.read {
		return 0, errors.New("st7735: read while in write mode")
	}
	if err := b.dc.Out(gpio.High); err != nil {
		return 0, err
	}
	var w, r [2]byte
	if err := b.c.Tx(w[:], r[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r[:]), nil
}

// SetReadMode implements Board.
func (b *SPIBoard) SetReadMode() error {
	b.read = true
	return nil
}

// SetWriteMode implements Board.
func (b *SPIBoard) SetWriteMode() error {
	b.read = false
	return nil
}

// SetReset implements Board. The reset line is active low.
func (b *SPIBoard) SetReset(asserted bool) error {
	if b.rst == nil {
		return nil
	}
	return b.rst.Out(gpio.Level(!asserted))
}

// SetBacklight implements Board. Levels between 1 and 99 use PWM.
func (b *SPIBoard) SetBacklight(percent int) error {
	if b.bl == nil {
		return nil
	}
	switch {
	case percent <= 0:
		return b.bl.Out(gpio.Low)
	case percent >= 100:
		return b.bl.Out(gpio.High)
	default:
		return b.bl.PWM(gpio.DutyMax*gpio.Duty(percent)/100, b.blFreq)
	}
}

// Sleep implements Board.
func (b *SPIBoard) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Close makes further Init and Acquire calls fail. A transaction in progress
// completes.
func (b *SPIBoard) Close() error {
	b.closed.Store(true)
	return nil
}

var _ Board = &SPIBoard{}
var _ BulkWriter = &SPIBoard{}
