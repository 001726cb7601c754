// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7735 drives the Sitronix ST7735 family of 262K color TFT LCD
// controllers.
//
// The driver speaks the controller register protocol through a Board, which
// owns the physical transport: command/data transfers, the reset line, the
// backlight and delays. SPIBoard implements Board on top of a periph.io SPI
// port and GPIO pins; st7735test.Board emulates the controller in memory.
//
// Three panel variants are supported. ST7735B uses the original B-type
// initialization. RedTab and GreenTab use the R-type initialization and
// differ in the default addressing window, matching the color of the tab on
// the protective film of the panel.
//
// Pixels are streamed through an addressing window with BeginWrite,
// WriteColor and EndWrite, or read back with BeginRead, ReadColor and
// EndRead. Each bracket holds the bus for its whole duration. Control applies
// power mode, orientation and backlight changes; unsupported requests are
// silently ignored.
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
package st7735
