// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13v4

import "fmt"

// Op names the transport primitive that failed.
type Op string

const (
	// OpCommand is a command byte transfer, including the DC line change.
	OpCommand Op = "command"
	// OpData is a data transfer, including the DC line change.
	OpData Op = "data"
	// OpLine is a standalone GPIO line change, such as the reset pulse.
	OpLine Op = "line"
)

// BufferSizeError is returned when an image does not match the panel
// geometry. No I/O happens when it is returned.
type BufferSizeError struct {
	Expected int
	Actual   int
}

func (e *BufferSizeError) Error() string {
	return fmt.Sprintf("epd2in13v4: buffer length mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// TransportError wraps an SPI or GPIO failure.
type TransportError struct {
	Op  Op
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("epd2in13v4: %s transfer failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
