// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd is a container for small TFT LCD controller drivers.
//
// Each controller lives in its own package. Drivers expose the low level
// register protocol (initialization, addressing window, pixel streaming and
// control) and implement periph.io/x/conn/v3/display interfaces on top of it.
package lcd
