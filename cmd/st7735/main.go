// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// st7735 initializes a ST7735 panel and draws a test card on it.
//
// With -sim, the controller is emulated in memory and the frame memory is
// rendered on the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/GermanBionicSystems/lcd/st7735"
	"github.com/GermanBionicSystems/lcd/st7735/st7735test"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var variants = map[string]st7735.Variant{
	"b":     st7735.ST7735B,
	"red":   st7735.RedTab,
	"green": st7735.GreenTab,
}

func mainImpl() error {
	spiID := flag.String("spi", "", "SPI port to use")
	dcName := flag.String("dc", "GPIO25", "D/CX pin")
	rstName := flag.String("rst", "GPIO24", "reset pin, empty if not wired")
	blName := flag.String("bl", "GPIO18", "backlight pin, empty if not wired")
	variantName := flag.String("variant", "green", "panel variant: b, red or green")
	w := flag.Int("w", st7735.DefaultOpts.W, "panel width")
	h := flag.Int("h", st7735.DefaultOpts.H, "panel height")
	rotate := flag.Int("rotate", 0, "rotation in degrees: 0, 90, 180 or 270")
	backlight := flag.Int("backlight", st7735.DefaultOpts.Backlight, "backlight in percent")
	text := flag.String("text", "periph", "text to draw")
	size := flag.Float64("size", 18, "font size in points")
	sim := flag.Bool("sim", false, "emulate the controller and render on the terminal")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	opts := st7735.DefaultOpts
	opts.W, opts.H, opts.Backlight = *w, *h, *backlight
	v, ok := variants[*variantName]
	if !ok {
		return fmt.Errorf("unknown variant %q", *variantName)
	}
	opts.Variant = v

	var b st7735.Board
	var emu *st7735test.Board
	if *sim {
		emu = st7735test.NewBoard()
		b = emu
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		p, err := spireg.Open(*spiID)
		if err != nil {
			return err
		}
		defer p.Close()
		dc := gpioreg.ByName(*dcName)
		if dc == nil {
			return fmt.Errorf("invalid dc pin %q", *dcName)
		}
		rst, err := optionalPin(*rstName)
		if err != nil {
			return err
		}
		bl, err := optionalPin(*blName)
		if err != nil {
			return err
		}
		sb, err := st7735.NewSPIBoard(p, dc, rst, bl, nil)
		if err != nil {
			return err
		}
		defer sb.Close()
		b = sb
	}

	dev, err := st7735.New(b, &opts)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("initialized %s", dev)
	}
	dev.Control(st7735.ControlOrientation, st7735.Orientation(*rotate))

	img, err := testCard(dev.Bounds(), *text, *size)
	if err != nil {
		return err
	}
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		return err
	}
	if emu != nil {
		return emu.Render(colorable.NewColorableStdout(), image.Rect(0, 0, opts.W, opts.H))
	}
	return dev.Err()
}

// optionalPin returns nil for an empty name.
func optionalPin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("invalid pin %q", name)
	}
	return p, nil
}

// testCard draws color bars with text on top.
func testCard(r image.Rectangle, text string, size float64) (image.Image, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(r.Dx(), r.Dy())
	bars := []string{"#ffffff", "#ffff00", "#00ffff", "#00ff00", "#ff00ff", "#ff0000", "#0000ff"}
	bw := float64(r.Dx()) / float64(len(bars))
	for i, c := range bars {
		dc.SetHexColor(c)
		dc.DrawRectangle(float64(i)*bw, 0, bw+1, float64(r.Dy()))
		dc.Fill()
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(0, float64(r.Dy())/2-size, float64(r.Dx()), 2*size)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, float64(r.Dx())/2, float64(r.Dy())/2, 0.5, 0.35)
	return dc.Image(), nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "st7735: %s.\n", err)
		os.Exit(1)
	}
}
