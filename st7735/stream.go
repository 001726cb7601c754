// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

import (
	"fmt"
	"image"
	"image/color"

	"github.com/GermanBionicSystems/lcd/rgb565"
)

// setViewport scopes the next memory transfer to r.
//
// No clipping is done: a rectangle outside of the frame memory results in an
// undefined addressing on the controller.
func setViewport(eh *errorHandler, r image.Rectangle) {
	x0, y0 := r.Min.X, r.Min.Y
	x1, y1 := x0+r.Dx()-1, y0+r.Dy()-1
	eh.writeIndex(columnAddressSet)
	eh.writeData16(uint16(x0))
	eh.writeData16(uint16(x1))
	eh.writeIndex(rowAddressSet)
	eh.writeData16(uint16(y0))
	eh.writeData16(uint16(y1))
}

// begin opens a stream bracket: the bus is held until end is called. Other
// streams wait for end.
func (d *Dev) begin(r image.Rectangle, cmd byte) {
	d.streamMu.Lock()
	d.stream = errorHandler{b: d.b}
	if !d.isReady() {
		d.stream.err = errNotInitialized
		return
	}
	if err := d.b.Acquire(); err != nil {
		d.stream.err = fmt.Errorf("%w: %w", ErrBusUnavailable, err)
		return
	}
	d.held = true
	setViewport(&d.stream, r)
	d.stream.writeIndex(cmd)
}

func (d *Dev) end() error {
	if d.held {
		d.b.Release()
		d.held = false
	}
	err := d.stream.err
	d.streamMu.Unlock()
	if err != nil {
		d.latch(err)
	}
	return err
}

// BeginWrite holds the bus and addresses r for a pixel write. It must be
// followed by WriteColor calls and EndWrite. Other streams on the Dev block
// until EndWrite.
func (d *Dev) BeginWrite(r image.Rectangle) {
	d.begin(r, memoryWrite)
}

// WriteColor sends one pixel. The controller advances its write pointer
// within the addressing window.
func (d *Dev) WriteColor(c color.Color) {
	d.stream.writeData16(uint16(rgb565.Convert(c)))
}

// EndWrite releases the bus. It returns the first failure of the bracket.
func (d *Dev) EndWrite() error {
	return d.end()
}

// BeginRead holds the bus and addresses r for a pixel read. It must be
// followed by ReadColor calls and EndRead.
//
// The controller returns garbage on the first read after the memory read
// command, BeginRead discards it.
func (d *Dev) BeginRead(r image.Rectangle) {
	d.begin(r, memoryRead)
	d.stream.setReadMode()
	_ = d.stream.readData()
}

// ReadColor reads one pixel. The returned value is a rgb565.Color.
func (d *Dev) ReadColor() color.Color {
	return rgb565.Color(d.stream.readData())
}

// EndRead switches the transfer direction back to write and releases the
// bus. It returns the first failure of the bracket.
func (d *Dev) EndRead() error {
	if d.held {
		if err := d.b.SetWriteMode(); err != nil && d.stream.err == nil {
			d.stream.err = err
		}
	}
	return d.end()
}

// Draw implements display.Drawer.
//
// The intersection of r with the display bounds is streamed in a single
// write bracket. It draws synchronously, once this function returns, the
// display is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(r.Min))

	srcR := image.Rectangle{Min: sp, Max: sp.Add(clipped.Size())}
	pix := make([]byte, 0, 2*clipped.Dx()*clipped.Dy())
	if img, ok := src.(*rgb565.Image); ok && srcR.In(img.Rect) {
		// Native encoding: copy the rows as is.
		for y := 0; y < clipped.Dy(); y++ {
			o := img.PixOffset(sp.X, sp.Y+y)
			pix = append(pix, img.Pix[o:o+2*clipped.Dx()]...)
		}
	} else {
		for y := 0; y < clipped.Dy(); y++ {
			for x := 0; x < clipped.Dx(); x++ {
				hi, lo := rgb565.Convert(src.At(sp.X+x, sp.Y+y)).Bytes()
				pix = append(pix, hi, lo)
			}
		}
	}

	d.BeginWrite(clipped)
	d.stream.writeBulk(pix)
	return d.EndWrite()
}
