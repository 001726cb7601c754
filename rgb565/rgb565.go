// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements the 16 bits per pixel color format stored in the
// frame memory of small TFT controllers.
//
// Red occupies the 5 most significant bits, green the middle 6 bits and blue
// the 5 least significant bits. On the wire a pixel is sent high byte first.
package rgb565

import (
	"image"
	"image/color"
)

// Color is a packed 5-6-5 pixel as stored by the controller.
type Color uint16

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	// Replicate the high bits into the low bits so 0x1F maps to 0xFFFF.
	r = (r5<<3 | r5>>2) * 0x101
	g = (g6<<2 | g6>>4) * 0x101
	b = (b5<<3 | b5>>2) * 0x101
	return r, g, b, 0xFFFF
}

// Bytes returns the big endian wire representation.
func (c Color) Bytes() (hi, lo byte) {
	return byte(c >> 8), byte(c)
}

// New packs 8 bits per channel values.
func New(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// FromBytes unpacks a big endian pixel.
func FromBytes(hi, lo byte) Color {
	return Color(uint16(hi)<<8 | uint16(lo))
}

// Convert returns the native representation of any color.Color. Alpha is
// ignored, the panel has no transparency.
func Convert(c color.Color) Color {
	if n, ok := c.(Color); ok {
		return n
	}
	r, g, b, _ := c.RGBA()
	return Color(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

func convert(c color.Color) color.Color {
	return Convert(c)
}

// Model converts colors to Color.
var Model = color.ModelFunc(convert)

// Image is an in-memory image of Color pixels, packed big endian exactly as
// they are streamed to the controller.
type Image struct {
	// Pix holds 2 bytes per pixel, high byte first.
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	Rect   image.Rectangle
}

// NewImage returns a new Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y) without going through color.Color.
func (i *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0
	}
	o := i.PixOffset(x, y)
	return FromBytes(i.Pix[o], i.Pix[o+1])
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, Convert(c))
}

// SetRGB565 sets the pixel at (x, y).
func (i *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o], i.Pix[o+1] = c.Bytes()
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

var _ color.Color = Color(0)
var _ image.Image = &Image{}
