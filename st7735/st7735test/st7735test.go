// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7735test implements an in-memory ST7735 controller for testing
// and host side development.
//
// Board satisfies st7735.Board. It records every command with its parameters
// and emulates the frame memory: the column and row address windows, memory
// write and memory read, including the dummy read cycle that follows the
// memory read command.
package st7735test

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/lcd/rgb565"
	"github.com/maruel/ansi256"
)

// Frame memory size of the controller.
const (
	MemWidth  = 132
	MemHeight = 162
)

// DummyValue is returned by the read cycle following the memory read command.
const DummyValue = 0xA5A5

// Commands interpreted by the emulator.
const (
	cmdSoftwareReset byte = 0x01
	cmdSleepIn       byte = 0x10
	cmdSleepOut      byte = 0x11
	cmdDisplayOff    byte = 0x28
	cmdDisplayOn     byte = 0x29
	cmdColumnAddr    byte = 0x2A
	cmdRowAddr       byte = 0x2B
	cmdMemoryWrite   byte = 0x2C
	cmdMemoryRead    byte = 0x2E
	cmdMADCTL        byte = 0x36
	cmdPixelFormat   byte = 0x3A
)

const madctlMV byte = 0x20

// Command is a recorded command and the data bytes that followed it.
type Command struct {
	Cmd  byte
	Data []byte
}

// Board emulates a controller wired to a board.
//
// Exported fields may be set before use to inject failures, and read once the
// driver calls returned.
type Board struct {
	// InitErr, AcquireErr, BacklightErr and WriteErr are returned by the
	// corresponding methods when set.
	InitErr      error
	AcquireErr   error
	BacklightErr error
	WriteErr     error

	// Commands is every command sent, in order.
	Commands []Command
	// Transactions counts successful Acquire calls.
	Transactions int
	// Reads counts ReadData calls.
	Reads int
	// Delays is every Sleep call, in order.
	Delays []time.Duration
	// Unguarded counts transfers issued while the bus was not held.
	Unguarded int

	InitCalls      int
	PostInitCalls  int
	ResetAsserted  bool
	ResetPulses    int
	Backlight      int
	BacklightCalls int

	// Controller registers.
	Sleeping    bool
	DisplayOn   bool
	MADCTL      byte
	PixelFormat byte
	ReadMode    bool

	// Mem is the frame memory, row major in panel coordinates.
	Mem [MemWidth * MemHeight]uint16

	mu   sync.Mutex
	bus  sync.Mutex
	held bool

	cur            byte
	params         []byte
	xs, xe, ys, ye int
	x, y           int
	hi             byte
	half           bool
	dummy          bool
}

// NewBoard returns a Board in its power up state.
func NewBoard() *Board {
	b := &Board{}
	b.softwareReset()
	return b
}

func (b *Board) softwareReset() {
	b.Sleeping = true
	b.DisplayOn = false
	b.MADCTL = 0
	b.PixelFormat = 0x06
	b.xs, b.xe = 0, MemWidth-1
	b.ys, b.ye = 0, MemHeight-1
}

// Init implements st7735.Board.
func (b *Board) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.InitCalls++
	return b.InitErr
}

// PostInit implements st7735.Board.
func (b *Board) PostInit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PostInitCalls++
	return nil
}

// Acquire implements st7735.Board. It blocks while another caller holds the
// bus.
func (b *Board) Acquire() error {
	b.mu.Lock()
	err := b.AcquireErr
	b.mu.Unlock()
	if err != nil {
		return err
	}
	b.bus.Lock()
	b.mu.Lock()
	b.held = true
	b.Transactions++
	b.mu.Unlock()
	return nil
}

// Release implements st7735.Board.
func (b *Board) Release() {
	b.mu.Lock()
	b.held = false
	b.mu.Unlock()
	b.bus.Unlock()
}

// WriteIndex implements st7735.Board.
func (b *Board) WriteIndex(cmd byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.guard()
	b.Commands = append(b.Commands, Command{Cmd: cmd})
	b.cur = cmd
	b.params = b.params[:0]
	switch cmd {
	case cmdSoftwareReset:
		b.softwareReset()
	case cmdSleepIn:
		b.Sleeping = true
	case cmdSleepOut:
		b.Sleeping = false
	case cmdDisplayOff:
		b.DisplayOn = false
	case cmdDisplayOn:
		b.DisplayOn = true
	case cmdMemoryWrite:
		b.x, b.y = b.xs, b.ys
		b.half = false
	case cmdMemoryRead:
		b.x, b.y = b.xs, b.ys
		b.dummy = true
	}
	return nil
}

// WriteData implements st7735.Board.
func (b *Board) WriteData(v byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.guard()
	if n := len(b.Commands); n != 0 {
		b.Commands[n-1].Data = append(b.Commands[n-1].Data, v)
	}
	if b.cur == cmdMemoryWrite {
		if !b.half {
			b.hi, b.half = v, true
			return nil
		}
		b.half = false
		b.store(uint16(b.hi)<<8 | uint16(v))
		return nil
	}
	b.params = append(b.params, v)
	switch b.cur {
	case cmdColumnAddr:
		if len(b.params) == 4 {
			b.xs, b.xe = addr(b.params[0:2]), addr(b.params[2:4])
		}
	case cmdRowAddr:
		if len(b.params) == 4 {
			b.ys, b.ye = addr(b.params[0:2]), addr(b.params[2:4])
		}
	case cmdMADCTL:
		b.MADCTL = v
	case cmdPixelFormat:
		b.PixelFormat = v
	}
	return nil
}

// ReadData implements st7735.Board.
func (b *Board) ReadData() (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.guard()
	b.Reads++
	if !b.ReadMode {
		return 0, errors.New("st7735test: read while in write mode")
	}
	if b.cur != cmdMemoryRead {
		return 0, nil
	}
	if b.dummy {
		b.dummy = false
		return DummyValue, nil
	}
	v := b.load()
	return v, nil
}

// SetReadMode implements st7735.Board.
func (b *Board) SetReadMode() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ReadMode = true
	return nil
}

// SetWriteMode implements st7735.Board.
func (b *Board) SetWriteMode() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ReadMode = false
	return nil
}

// SetReset implements st7735.Board. Releasing the reset line after asserting
// it resets the controller registers.
func (b *Board) SetReset(asserted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ResetAsserted && !asserted {
		b.ResetPulses++
		b.softwareReset()
	}
	b.ResetAsserted = asserted
	return nil
}

// SetBacklight implements st7735.Board.
func (b *Board) SetBacklight(percent int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.BacklightCalls++
	if b.BacklightErr != nil {
		return b.BacklightErr
	}
	b.Backlight = percent
	return nil
}

// Sleep implements st7735.Board. It records d and returns immediately.
func (b *Board) Sleep(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Delays = append(b.Delays, d)
}

// Pixel returns the frame memory content at column x, row y.
func (b *Board) Pixel(x, y int) rgb565.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || x >= MemWidth || y < 0 || y >= MemHeight {
		return 0
	}
	return rgb565.Color(b.Mem[y*MemWidth+x])
}

// SetPixel sets the frame memory content at column x, row y.
func (b *Board) SetPixel(x, y int, c rgb565.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || x >= MemWidth || y < 0 || y >= MemHeight {
		return
	}
	b.Mem[y*MemWidth+x] = uint16(c)
}

// Image returns a copy of the frame memory within r.
func (b *Board) Image(r image.Rectangle) *rgb565.Image {
	img := rgb565.NewImage(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGB565(x, y, b.Pixel(x, y))
		}
	}
	return img
}

// Render writes the frame memory within r to w as ANSI 256 color blocks, one
// line per row.
func (b *Board) Render(w io.Writer, r image.Rectangle) error {
	img := b.Image(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if _, err := io.WriteString(w, "\r\033[0m"); err != nil {
			return err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, err := io.WriteString(w, ansi256.Default.Block(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\033[0m\n"); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("st7735test.Board{%d commands}", len(b.Commands))
}

// guard counts a transfer issued outside of Acquire/Release.
func (b *Board) guard() {
	if !b.held {
		b.Unguarded++
	}
}

// offset returns the index in Mem of the write pointer. The row/column
// exchange bit of MADCTL is honored, the mirror bits are not.
func (b *Board) offset() (int, bool) {
	x, y := b.x, b.y
	if b.MADCTL&madctlMV != 0 {
		x, y = y, x
	}
	if x < 0 || x >= MemWidth || y < 0 || y >= MemHeight {
		return 0, false
	}
	return y*MemWidth + x, true
}

// store writes one pixel and advances the write pointer, wrapping inside the
// addressing window.
func (b *Board) store(v uint16) {
	if o, ok := b.offset(); ok {
		b.Mem[o] = v
	}
	b.advance()
}

func (b *Board) load() uint16 {
	var v uint16
	if o, ok := b.offset(); ok {
		v = b.Mem[o]
	}
	b.advance()
	return v
}

func (b *Board) advance() {
	b.x++
	if b.x > b.xe {
		b.x = b.xs
		b.y++
		if b.y > b.ye {
			b.y = b.ys
		}
	}
}

func addr(p []byte) int {
	return int(p[0])<<8 | int(p[1])
}
