// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func cmds(b *st7735test.Board) []byte {
	var out []byte
	for _, c := range b.Commands {
		out = append(out, c.Cmd)
	}
	return out
}

func newTestDev(t *testing.T, opts *Opts) (*Dev, *st7735test.Board) {
	t.Helper()
	b := st7735test.NewBoard()
	d, err := New(b, opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d, b
}

func TestOptsValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		opts    Opts
		wantErr bool
	}{
		{"default", DefaultOpts, false},
		{"no variant", Opts{W: 128, H: 160, Backlight: 100}, true},
		{"max size", Opts{W: MaxWidth, H: MaxHeight, Variant: ST7735B}, false},
		{"width zero", Opts{W: 0, H: 160, Variant: RedTab}, true},
		{"width too large", Opts{W: 133, H: 160, Variant: RedTab}, true},
		{"height too large", Opts{W: 128, H: 163, Variant: RedTab}, true},
		{"backlight negative", Opts{W: 128, H: 160, Variant: RedTab, Backlight: -1}, true},
		{"backlight too large", Opts{W: 128, H: 160, Variant: RedTab, Backlight: 101}, true},
		{"contrast too large", Opts{W: 128, H: 160, Variant: RedTab, Contrast: 101}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}

func TestNewNoVariant(t *testing.T) {
	b := st7735test.NewBoard()
	if _, err := New(b, &Opts{W: 128, H: 160}); !errors.Is(err, ErrNoVariant) {
		t.Fatalf("New() = %v, want %v", err, ErrNoVariant)
	}
	if b.InitCalls != 0 || len(b.Commands) != 0 {
		t.Errorf("board touched: init=%d commands=%d", b.InitCalls, len(b.Commands))
	}
}

func TestInit(t *testing.T) {
	for _, tc := range []struct {
		name      string
		variant   Variant
		wantCmds  []byte
		wantDelay []time.Duration
		window    []st7735test.Command
	}{
		{
			name:    "ST7735B",
			variant: ST7735B,
			wantCmds: []byte{
				softwareReset, sleepOut, interfacePixelFmt, frameRateControl1,
				memoryAccessControl, displaySetting, inversionControl,
				powerControl1, powerControl2, powerControl3, vcomControl1,
				powerControl6, gammaPositive, gammaNegative,
				columnAddressSet, rowAddressSet, normalDisplayOn, displayOn,
				memoryAccessControl,
			},
			wantDelay: []time.Duration{
				resetSettle, resetSettle,
				50 * time.Millisecond, 500 * time.Millisecond,
				10 * time.Millisecond, 10 * time.Millisecond,
				10 * time.Millisecond, 10 * time.Millisecond,
				10 * time.Microsecond,
				10 * time.Millisecond, 500 * time.Millisecond,
			},
			window: []st7735test.Command{
				{Cmd: columnAddressSet, Data: []byte{0x00, 0x02, 0x00, 0x81}},
				{Cmd: rowAddressSet, Data: []byte{0x00, 0x02, 0x00, 0x81}},
			},
		},
		{
			name:    "red tab",
			variant: RedTab,
			wantCmds: []byte{
				softwareReset, sleepOut, frameRateControl1, frameRateControl2,
				frameRateControl3, inversionControl, powerControl1,
				powerControl2, powerControl3, powerControl4, powerControl5,
				vcomControl1, inversionOff, memoryAccessControl,
				interfacePixelFmt, columnAddressSet, rowAddressSet,
				gammaPositive, gammaNegative, normalDisplayOn, displayOn,
				memoryAccessControl,
			},
			wantDelay: []time.Duration{
				resetSettle, resetSettle,
				150 * time.Millisecond, 500 * time.Millisecond,
				10 * time.Millisecond, 100 * time.Millisecond,
			},
			window: []st7735test.Command{
				{Cmd: columnAddressSet, Data: []byte{0x00, 0x00, 0x00, 0x7F}},
				{Cmd: rowAddressSet, Data: []byte{0x00, 0x00, 0x00, 0x9F}},
			},
		},
		{
			name:    "green tab",
			variant: GreenTab,
			wantCmds: []byte{
				softwareReset, sleepOut, frameRateControl1, frameRateControl2,
				frameRateControl3, inversionControl, powerControl1,
				powerControl2, powerControl3, powerControl4, powerControl5,
				vcomControl1, inversionOff, memoryAccessControl,
				interfacePixelFmt, columnAddressSet, rowAddressSet,
				gammaPositive, gammaNegative, normalDisplayOn, displayOn,
				memoryAccessControl,
			},
			wantDelay: []time.Duration{
				resetSettle, resetSettle,
				150 * time.Millisecond, 500 * time.Millisecond,
				10 * time.Millisecond, 100 * time.Millisecond,
			},
			window: []st7735test.Command{
				{Cmd: columnAddressSet, Data: []byte{0x00, 0x02, 0x00, 0x81}},
				{Cmd: rowAddressSet, Data: []byte{0x00, 0x01, 0x00, 0xA0}},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOpts
			opts.Variant = tc.variant
			opts.Backlight = 80
			d, b := newTestDev(t, &opts)

			if diff := cmp.Diff(cmds(b), tc.wantCmds); diff != "" {
				t.Errorf("commands difference (-got +want):\n%s", diff)
			}
			if diff := cmp.Diff(b.Delays, tc.wantDelay); diff != "" {
				t.Errorf("delays difference (-got +want):\n%s", diff)
			}
			var window []st7735test.Command
			for _, c := range b.Commands {
				if c.Cmd == columnAddressSet || c.Cmd == rowAddressSet {
					window = append(window, c)
				}
			}
			if diff := cmp.Diff(window, tc.window); diff != "" {
				t.Errorf("window difference (-got +want):\n%s", diff)
			}
			for _, c := range b.Commands {
				if (c.Cmd == gammaPositive || c.Cmd == gammaNegative) && len(c.Data) != 16 {
					t.Errorf("gamma curve %#x has %d entries, want 16", c.Cmd, len(c.Data))
				}
			}

			if b.InitCalls != 1 || b.PostInitCalls != 1 || b.ResetPulses != 1 {
				t.Errorf("init=%d postInit=%d resets=%d, want 1 each", b.InitCalls, b.PostInitCalls, b.ResetPulses)
			}
			if b.Transactions != 1 || b.Unguarded != 0 {
				t.Errorf("transactions=%d unguarded=%d, want 1 and 0", b.Transactions, b.Unguarded)
			}
			if b.Sleeping || !b.DisplayOn || b.PixelFormat != pixelFormat16 {
				t.Errorf("controller sleeping=%t on=%t format=%#x", b.Sleeping, b.DisplayOn, b.PixelFormat)
			}
			if b.MADCTL != madctlMX|madctlMY {
				t.Errorf("MADCTL = %#x, want %#x", b.MADCTL, madctlMX|madctlMY)
			}
			if b.Backlight != 80 {
				t.Errorf("backlight = %d, want 80", b.Backlight)
			}
			want := State{W: 128, H: 160, Orientation: Rotate0, Power: PowerOn, Backlight: 80, Contrast: 50}
			if diff := cmp.Diff(d.State(), want); diff != "" {
				t.Errorf("State() difference (-got +want):\n%s", diff)
			}
			if diff := cmp.Diff(d.Bounds(), image.Rect(0, 0, 128, 160)); diff != "" {
				t.Errorf("Bounds() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestInitFailure(t *testing.T) {
	errBoard := errors.New("boom")
	for _, tc := range []struct {
		name   string
		setup  func(b *st7735test.Board)
		wantIs error
		// wantCmds is true when the register programming started.
		wantCmds bool
	}{
		{"board bring-up", func(b *st7735test.Board) { b.InitErr = errBoard }, errBoard, false},
		{"bus", func(b *st7735test.Board) { b.AcquireErr = errBoard }, ErrBusUnavailable, false},
		{"transfer", func(b *st7735test.Board) { b.WriteErr = errBoard }, errBoard, false},
		{"backlight", func(b *st7735test.Board) { b.BacklightErr = errBoard }, errBoard, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := st7735test.NewBoard()
			tc.setup(b)
			d, err := newDev(b, &DefaultOpts)
			if err != nil {
				t.Fatal(err)
			}
			if err := d.Init(); !errors.Is(err, tc.wantIs) {
				t.Fatalf("Init() = %v, want %v", err, tc.wantIs)
			}
			if diff := cmp.Diff(d.State(), State{}); diff != "" {
				t.Errorf("State() difference (-got +want):\n%s", diff)
			}
			if (len(b.Commands) != 0) != tc.wantCmds {
				t.Errorf("%d commands sent", len(b.Commands))
			}
			// The bus must not stay held.
			if b.AcquireErr == nil {
				if err := b.Acquire(); err != nil {
					t.Fatal(err)
				}
				b.Release()
			}

			// The device is unusable: controls are ignored.
			before := b.Transactions
			d.Control(ControlOrientation, Rotate90)
			d.Control(ControlBacklight, 10)
			if b.Transactions != before {
				t.Errorf("control issued %d transactions on a failed device", b.Transactions-before)
			}
			if diff := cmp.Diff(d.State(), State{}); diff != "" {
				t.Errorf("State() after control difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestNewFailure(t *testing.T) {
	b := st7735test.NewBoard()
	b.InitErr = errors.New("no bus")
	if d, err := New(b, nil); err == nil || d != nil {
		t.Fatalf("New() = %v, %v, want nil, error", d, err)
	}
}

func TestReinit(t *testing.T) {
	d, b := newTestDev(t, nil)
	d.Control(ControlOrientation, Rotate90)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if got := d.State(); got.Orientation != Rotate0 || got.W != 128 || got.H != 160 {
		t.Errorf("State() = %+v after Init", got)
	}
	if b.InitCalls != 2 {
		t.Errorf("InitCalls = %d, want 2", b.InitCalls)
	}
}

func TestString(t *testing.T) {
	d, _ := newTestDev(t, nil)
	if diff := cmp.Diff(d.String(), "st7735.Dev{ST7735R green tab, 128x160}"); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
}

func TestHalt(t *testing.T) {
	d, b := newTestDev(t, nil)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !b.Sleeping || b.Backlight != 0 {
		t.Errorf("sleeping=%t backlight=%d after Halt", b.Sleeping, b.Backlight)
	}
	want := State{W: 128, H: 160, Power: PowerSleep, Contrast: 50}
	if diff := cmp.Diff(d.State(), want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("State() difference (-got +want):\n%s", diff)
	}
}
