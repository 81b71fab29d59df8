// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13v4

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	busyPollInterval = 10 * time.Millisecond
	busySettleDelay  = 10 * time.Millisecond
)

// errorHandler is a wrapper for error management. Once an operation failed
// all further operations are skipped and the first error is kept.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) fail(op Op, err error) {
	if err != nil {
		eh.err = &TransportError{Op: op, Err: err}
	}
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.fail(OpLine, eh.d.rst.Out(l))
}

func (eh *errorHandler) reset() {
	eh.rstOut(gpio.High)
	eh.delay(20 * time.Millisecond)
	eh.rstOut(gpio.Low)
	eh.delay(2 * time.Millisecond)
	eh.rstOut(gpio.High)
	eh.delay(20 * time.Millisecond)
}

func (eh *errorHandler) delay(t time.Duration) {
	if eh.err != nil {
		return
	}
	eh.d.sleep(t)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	if err := eh.d.dc.Out(gpio.Low); err != nil {
		eh.fail(OpCommand, err)
		return
	}
	eh.fail(OpCommand, eh.d.c.Tx([]byte{cmd}, nil))
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	if err := eh.d.dc.Out(gpio.High); err != nil {
		eh.fail(OpData, err)
		return
	}
	for len(data) > 0 && eh.err == nil {
		n := len(data)
		if n > eh.d.maxTxSize {
			n = eh.d.maxTxSize
		}
		eh.fail(OpData, eh.d.c.Tx(data[:n], nil))
		data = data[n:]
	}
}

func (eh *errorHandler) sendByte(b byte) {
	eh.sendData([]byte{b})
}

// readBusy polls the busy line until the controller reports idle, then waits
// for it to settle. There is no timeout.
func (eh *errorHandler) readBusy() {
	if eh.err != nil {
		return
	}
	for eh.d.busy.Read() == gpio.High {
		eh.d.sleep(busyPollInterval)
	}
	eh.d.sleep(busySettleDelay)
}
