// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management. The first failure sticks
// and turns every following operation into a no-op.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) fail(op string, err error) {
	if err != nil {
		eh.err = &TransportError{Op: op, Err: err}
	}
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.fail("reset", eh.d.rst.Out(l))
}

func (eh *errorHandler) cTx(w []byte, r []byte) {
	if eh.err != nil {
		return
	}
	eh.fail("spi", eh.d.c.Tx(w, r))
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.fail("dc", eh.d.dc.Out(l))
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.fail("cs", eh.d.cs.Out(l))
}

// release deasserts chip select even after a failure and keeps the first
// error.
func (eh *errorHandler) release() {
	if err := eh.d.cs.Out(gpio.High); err != nil && eh.err == nil {
		eh.fail("cs", err)
	}
}

func (eh *errorHandler) reset(pulses int) {
	for i := 0; i < pulses && eh.err == nil; i++ {
		eh.rstOut(gpio.Low)
		eh.d.sleep(resetPulse)
		eh.rstOut(gpio.High)
		eh.d.sleep(resetPulse)
	}
}

func (eh *errorHandler) delay(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.d.sleep(d)
}

func (eh *errorHandler) waitUntilIdle() time.Duration {
	if eh.err != nil {
		return 0
	}
	return eh.d.idle.wait()
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{cmd}, nil)
	eh.release()
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.High)
	eh.csOut(gpio.Low)
	eh.cTx(data, nil)
	eh.release()
}

// sendCommandData keeps chip select asserted across the command and data
// phases. The panel samples dc per byte, so the bytes on the wire are the
// same as sendCommand followed by sendData.
func (eh *errorHandler) sendCommandData(cmd byte, data []byte) {
	if eh.err != nil {
		return
	}

	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{cmd}, nil)
	eh.dcOut(gpio.High)
	eh.cTx(data, nil)
	eh.release()
}
