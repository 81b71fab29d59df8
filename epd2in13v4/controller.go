// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13v4

import (
	"bytes"
	"time"
)

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	sendByte(byte)
	readBusy()
	reset()
	delay(time.Duration)
}

// bytesPerRow returns the number of bytes needed for one row of pixels.
func bytesPerRow(opts *Opts) int {
	return (opts.Width + 7) / 8
}

func driverOutput(ctrl controller, opts *Opts) {
	ctrl.sendCommand(driverOutputControl)
	ctrl.sendData([]byte{
		byte((opts.Height - 1) & 0xFF),
		byte((opts.Height - 1) >> 8),
		0x00,
	})
}

func initDisplay(ctrl controller, opts *Opts) {
	ctrl.reset()
	ctrl.readBusy()

	ctrl.sendCommand(swReset)
	ctrl.readBusy()

	driverOutput(ctrl, opts)

	// Y increment, X increment; address counter updated in X direction.
	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendByte(0x03)

	setWindow(ctrl, 0, 0, opts.Width-1, opts.Height-1)
	setCursor(ctrl, 0, 0)

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendByte(0x05)

	ctrl.sendCommand(displayUpdateControl1)
	ctrl.sendData([]byte{0x00, 0x80})

	// Internal temperature sensor.
	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendByte(0x80)
	ctrl.readBusy()
}

func initDisplayFast(ctrl controller, opts *Opts) {
	ctrl.reset()

	ctrl.sendCommand(swReset)
	ctrl.readBusy()

	ctrl.sendCommand(tempSensorSelect)
	ctrl.sendByte(0x80)

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendByte(0x03)

	setWindow(ctrl, 0, 0, opts.Width-1, opts.Height-1)
	setCursor(ctrl, 0, 0)

	// Load temperature value.
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendByte(0xB1)
	ctrl.sendCommand(masterActivation)
	ctrl.readBusy()

	// Write to temperature register, then load the fast waveform for it.
	ctrl.sendCommand(tempSensorRegWrite)
	ctrl.sendData([]byte{0x64, 0x00})

	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendByte(0x91)
	ctrl.sendCommand(masterActivation)
	ctrl.readBusy()
}

// initPartial re-arms the controller for a partial refresh.
func initPartial(ctrl controller, opts *Opts) {
	ctrl.reset()

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendByte(0x80)

	driverOutput(ctrl, opts)

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendByte(0x03)

	setWindow(ctrl, 0, 0, opts.Width-1, opts.Height-1)
	setCursor(ctrl, 0, 0)
}

// turnOnDisplay starts the refresh with the waveform of the given mode and
// waits for it to complete.
func turnOnDisplay(ctrl controller, mode UpdateMode) {
	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendByte(mode.control())
	ctrl.sendCommand(masterActivation)
	ctrl.readBusy()
}

// setWindow sets the RAM area written to. X is given in pixels and sent in
// bytes.
func setWindow(ctrl controller, xStart, yStart, xEnd, yEnd int) {
	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendData([]byte{byte((xStart >> 3) & 0xFF), byte((xEnd >> 3) & 0xFF)})

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendData([]byte{
		byte(yStart & 0xFF), byte((yStart >> 8) & 0xFF),
		byte(yEnd & 0xFF), byte((yEnd >> 8) & 0xFF),
	})
}

// setCursor positions the RAM address counter.
func setCursor(ctrl controller, x, y int) {
	ctrl.sendCommand(setRAMXAddressCounter)
	// x must be a multiple of 8, the low 3 bits are dropped.
	ctrl.sendByte(byte((x >> 3) & 0xFF))

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendData([]byte{byte(y & 0xFF), byte((y >> 8) & 0xFF)})
}

func writeImage(ctrl controller, cmd byte, img []byte) {
	ctrl.sendCommand(cmd)
	ctrl.sendData(img)
}

func clearDisplay(ctrl controller, fill byte, opts *Opts) {
	row := bytes.Repeat([]byte{fill}, bytesPerRow(opts))

	ctrl.sendCommand(writeRAMBW)
	for y := 0; y < opts.Height; y++ {
		ctrl.sendData(row)
	}

	turnOnDisplay(ctrl, Normal)
}

func displayImage(ctrl controller, img []byte, mode UpdateMode) {
	writeImage(ctrl, writeRAMBW, img)
	turnOnDisplay(ctrl, mode)
}

func displayBase(ctrl controller, img []byte) {
	writeImage(ctrl, writeRAMBW, img)
	writeImage(ctrl, writeRAMRed, img)
	turnOnDisplay(ctrl, Normal)
}

func displayPartial(ctrl controller, img []byte, opts *Opts) {
	initPartial(ctrl, opts)
	writeImage(ctrl, writeRAMBW, img)
	turnOnDisplay(ctrl, Partial)
}

func deepSleep(ctrl controller) {
	// Turn off DC/DC converter, clock, output load and MCU. RAM content is
	// retained.
	ctrl.sendCommand(deepSleepMode)
	ctrl.sendByte(0x01)
	ctrl.delay(100 * time.Millisecond)
}
