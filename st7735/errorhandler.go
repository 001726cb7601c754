// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7735

// errorHandler is a wrapper for error management. Once a transfer fails, the
// following ones are skipped and err keeps the first failure.
type errorHandler struct {
	b   Board
	err error
}

func (eh *errorHandler) writeIndex(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.WriteIndex(cmd)
}

func (eh *errorHandler) writeData(data ...byte) {
	for _, v := range data {
		if eh.err != nil {
			return
		}
		eh.err = eh.b.WriteData(v)
	}
}

// writeData16 sends v high byte first.
func (eh *errorHandler) writeData16(v uint16) {
	eh.writeData(byte(v>>8), byte(v))
}

func (eh *errorHandler) writeBulk(p []byte) {
	if eh.err != nil {
		return
	}
	if bw, ok := eh.b.(BulkWriter); ok {
		eh.err = bw.WriteDataBytes(p)
		return
	}
	eh.writeData(p...)
}

func (eh *errorHandler) readData() uint16 {
	if eh.err != nil {
		return 0
	}
	v, err := eh.b.ReadData()
	eh.err = err
	return v
}

func (eh *errorHandler) setReadMode() {
	if eh.err != nil {
		return
	}
	eh.err = eh.b.SetReadMode()
}

// send issues one command with its parameters, then waits for the settle
// time of the command.
func (eh *errorHandler) send(c command) {
	eh.writeIndex(c.cmd)
	eh.writeData(c.data...)
	if eh.err == nil && c.delay > 0 {
		eh.b.Sleep(c.delay)
	}
}
