// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13v4

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	tempSensorRegWrite             byte = 0x1A
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

// defaultMaxTxSize is used when the SPI connection does not report a limit.
const defaultMaxTxSize = 4096

// UpdateMode selects the refresh waveform.
type UpdateMode int

const (
	// Normal is a full refresh with the waveform from OTP.
	Normal UpdateMode = iota
	// Fast refreshes with the waveform already loaded by InitFast.
	Fast
	// Partial only drives pixels that differ from the base frame.
	Partial
)

func (m UpdateMode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Fast:
		return "Fast"
	case Partial:
		return "Partial"
	default:
		return fmt.Sprintf("UpdateMode(%d)", int(m))
	}
}

// control returns the displayUpdateControl2 value that runs the refresh.
func (m UpdateMode) control() byte {
	const run = displayUpdateEnableClock |
		displayUpdateEnableAnalog |
		displayUpdateDisplay |
		displayUpdateDisableAnalog |
		displayUpdateDisableClock

	switch m {
	case Fast:
		return run // 0xC7
	case Partial:
		return run | displayUpdateLoadTemperature | displayUpdateLoadLUTFromOTP | displayUpdateMode2 // 0xFF
	default:
		return run | displayUpdateLoadTemperature | displayUpdateLoadLUTFromOTP // 0xF7
	}
}

// Opts defines the structure of the display configuration.
type Opts struct {
	Width  int
	Height int
}

// EPD2in13v4 contains display configuration for the Waveshare 2in13v4.
var EPD2in13v4 = Opts{
	Width:  122,
	Height: 250,
}

// Dev defines the handler which is used to access the display.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	maxTxSize int
	sleep     func(time.Duration)

	opts *Opts
}

// New creates new handler which is used to access the display.
//
// Chip select is left to the SPI port.
func New(p spi.Port, dc, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("epd2in13v4: invalid size %dx%d", opts.Width, opts.Height)
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("epd2in13v4: connecting to SPI failed: %w", err)
	}

	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("epd2in13v4: configuring busy pin failed: %w", err)
	}

	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize <= 0 {
		maxTxSize = defaultMaxTxSize
	}

	return &Dev{
		c:         c,
		dc:        dc,
		rst:       rst,
		busy:      busy,
		maxTxSize: maxTxSize,
		sleep:     time.Sleep,
		opts:      opts,
	}, nil
}

// NewHat creates new handler which is used to access the display. Default
// Waveshare Hat configuration is used.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, rst, busy, opts)
}

// BytesPerRow returns the number of bytes of one packed image row.
func (d *Dev) BytesPerRow() int {
	return bytesPerRow(d.opts)
}

// ImageSize returns the length of a packed image accepted by the Display
// functions.
func (d *Dev) ImageSize() int {
	return bytesPerRow(d.opts) * d.opts.Height
}

func (d *Dev) checkImage(img []byte) error {
	if want := d.ImageSize(); len(img) != want {
		return &BufferSizeError{Expected: want, Actual: len(img)}
	}
	return nil
}

func (d *Dev) run(f func(ctrl controller)) error {
	eh := errorHandler{d: d}
	f(&eh)
	return eh.err
}

// Reset pulses the hardware reset line.
func (d *Dev) Reset() error {
	return d.run(func(ctrl controller) {
		ctrl.reset()
	})
}

// Init resets the controller and configures it for full refreshes.
func (d *Dev) Init() error {
	return d.run(func(ctrl controller) {
		initDisplay(ctrl, d.opts)
	})
}

// InitFast resets the controller and loads the fast refresh waveform. Use
// DisplayFast afterwards.
func (d *Dev) InitFast() error {
	return d.run(func(ctrl controller) {
		initDisplayFast(ctrl, d.opts)
	})
}

// Clear fills the panel with a single color and does a full refresh.
func (d *Dev) Clear(c image1bit.Bit) error {
	fill := byte(0x00)
	if c {
		fill = 0xFF
	}
	return d.run(func(ctrl controller) {
		clearDisplay(ctrl, fill, d.opts)
	})
}

// Display sends a packed image and does a full refresh.
func (d *Dev) Display(img []byte) error {
	if err := d.checkImage(img); err != nil {
		return err
	}
	return d.run(func(ctrl controller) {
		displayImage(ctrl, img, Normal)
	})
}

// DisplayFast sends a packed image and refreshes with the fast waveform.
func (d *Dev) DisplayFast(img []byte) error {
	if err := d.checkImage(img); err != nil {
		return err
	}
	return d.run(func(ctrl controller) {
		displayImage(ctrl, img, Fast)
	})
}

// DisplayBase sends a packed image to both RAM banks and does a full
// refresh. Partial updates are computed against this frame.
func (d *Dev) DisplayBase(img []byte) error {
	if err := d.checkImage(img); err != nil {
		return err
	}
	return d.run(func(ctrl controller) {
		displayBase(ctrl, img)
	})
}

// DisplayPartial sends a packed image and refreshes only the pixels that
// changed since the base frame.
//
// It is not checked that DisplayBase was called before.
func (d *Dev) DisplayPartial(img []byte) error {
	if err := d.checkImage(img); err != nil {
		return err
	}
	return d.run(func(ctrl controller) {
		displayPartial(ctrl, img, d.opts)
	})
}

// Sleep makes the controller enter deep sleep mode. It can be woken up by
// calling Init or InitFast again.
func (d *Dev) Sleep() error {
	return d.run(func(ctrl controller) {
		deepSleep(ctrl)
	})
}

// ColorModel returns a 1Bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the bounds for the configured display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.opts.Width, d.opts.Height)
}

// Draw draws the given image to the display with a full refresh. Pixels
// outside of dstRect are white.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	img := monoimage.NewHorizontalMSB(d.Bounds())
	draw.Src.Draw(img, dstRect.Intersect(img.Bounds()), src, srcPts)
	return d.Display(img.Bytes())
}

// Halt puts the display into deep sleep.
func (d *Dev) Halt() error {
	return d.Sleep()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.opts.Width, d.opts.Height)
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
