// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd2in13v4

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type record struct {
	reset bool
	busy  bool
	cmd   byte
	data  []byte
}

type fakeController []record

func (r *fakeController) sendCommand(cmd byte) {
	*r = append(*r, record{
		cmd: cmd,
	})
}

func (r *fakeController) sendData(data []byte) {
	cur := &(*r)[len(*r)-1]
	cur.data = append(cur.data, data...)
}

func (r *fakeController) sendByte(data byte) {
	cur := &(*r)[len(*r)-1]
	cur.data = append(cur.data, data)
}

func (r *fakeController) readBusy() {
	*r = append(*r, record{busy: true})
}

func (r *fakeController) reset() {
	*r = append(*r, record{reset: true})
}

func (*fakeController) delay(time.Duration) {
}

var (
	fullWindow = []record{
		{cmd: 0x44, data: []byte{0x00, 0x0f}},
		{cmd: 0x45, data: []byte{0x00, 0x00, 0xf9, 0x00}},
	}
	originCursor = []record{
		{cmd: 0x4e, data: []byte{0x00}},
		{cmd: 0x4f, data: []byte{0x00, 0x00}},
	}
)

func concat(parts ...[]record) []record {
	var all []record
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

func diffRecords(t *testing.T, name string, got fakeController, want []record) {
	t.Helper()
	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("%s difference (-got +want):\n%s", name, diff)
	}
}

func TestInitDisplay(t *testing.T) {
	var got fakeController

	initDisplay(&got, &EPD2in13v4)

	diffRecords(t, "initDisplay()", got, concat(
		[]record{
			{reset: true},
			{busy: true},
			{cmd: 0x12},
			{busy: true},
			{cmd: 0x01, data: []byte{0xf9, 0x00, 0x00}},
			{cmd: 0x11, data: []byte{0x03}},
		},
		fullWindow,
		originCursor,
		[]record{
			{cmd: 0x3c, data: []byte{0x05}},
			{cmd: 0x21, data: []byte{0x00, 0x80}},
			{cmd: 0x18, data: []byte{0x80}},
			{busy: true},
		},
	))
}

func TestInitDisplayFast(t *testing.T) {
	var got fakeController

	initDisplayFast(&got, &EPD2in13v4)

	diffRecords(t, "initDisplayFast()", got, concat(
		[]record{
			{reset: true},
			{cmd: 0x12},
			{busy: true},
			{cmd: 0x18, data: []byte{0x80}},
			{cmd: 0x11, data: []byte{0x03}},
		},
		fullWindow,
		originCursor,
		[]record{
			{cmd: 0x22, data: []byte{0xb1}},
			{cmd: 0x20},
			{busy: true},
			{cmd: 0x1a, data: []byte{0x64, 0x00}},
			{cmd: 0x22, data: []byte{0x91}},
			{cmd: 0x20},
			{busy: true},
		},
	))
}

func TestTurnOnDisplay(t *testing.T) {
	for _, tc := range []struct {
		mode UpdateMode
		want byte
	}{
		{mode: Normal, want: 0xf7},
		{mode: Fast, want: 0xc7},
		{mode: Partial, want: 0xff},
	} {
		t.Run(tc.mode.String(), func(t *testing.T) {
			var got fakeController

			turnOnDisplay(&got, tc.mode)

			diffRecords(t, "turnOnDisplay()", got, []record{
				{cmd: 0x22, data: []byte{tc.want}},
				{cmd: 0x20},
				{busy: true},
			})
		})
	}
}

func TestUpdateModeString(t *testing.T) {
	for mode, want := range map[UpdateMode]string{
		Normal:         "Normal",
		Fast:           "Fast",
		Partial:        "Partial",
		UpdateMode(42): "UpdateMode(42)",
	} {
		if got := mode.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestSetWindow(t *testing.T) {
	var got fakeController

	setWindow(&got, 16, 260, 95, 511)

	diffRecords(t, "setWindow()", got, []record{
		{cmd: 0x44, data: []byte{2, 11}},
		{cmd: 0x45, data: []byte{0x04, 0x01, 0xff, 0x01}},
	})
}

func TestClear(t *testing.T) {
	for _, tc := range []struct {
		name string
		fill byte
	}{
		{name: "white", fill: 0xff},
		{name: "black", fill: 0x00},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got fakeController

			clearDisplay(&got, tc.fill, &EPD2in13v4)

			diffRecords(t, "clearDisplay()", got, []record{
				{cmd: 0x24, data: bytes.Repeat([]byte{tc.fill}, 16*250)},
				{cmd: 0x22, data: []byte{0xf7}},
				{cmd: 0x20},
				{busy: true},
			})
		})
	}
}

func TestDisplay(t *testing.T) {
	img := bytes.Repeat([]byte{0xa5}, 16*250)

	for _, tc := range []struct {
		mode UpdateMode
		ctl  byte
	}{
		{mode: Normal, ctl: 0xf7},
		{mode: Fast, ctl: 0xc7},
	} {
		t.Run(tc.mode.String(), func(t *testing.T) {
			var got fakeController

			displayImage(&got, img, tc.mode)

			diffRecords(t, "displayImage()", got, []record{
				{cmd: 0x24, data: img},
				{cmd: 0x22, data: []byte{tc.ctl}},
				{cmd: 0x20},
				{busy: true},
			})
		})
	}
}

func TestDisplayBase(t *testing.T) {
	img := bytes.Repeat([]byte{0x3c}, 16*250)
	var got fakeController

	displayBase(&got, img)

	diffRecords(t, "displayBase()", got, []record{
		{cmd: 0x24, data: img},
		{cmd: 0x26, data: img},
		{cmd: 0x22, data: []byte{0xf7}},
		{cmd: 0x20},
		{busy: true},
	})
}

// The partial sequence is the same whether or not a base frame was written.
func TestDisplayPartialWithoutBase(t *testing.T) {
	img := bytes.Repeat([]byte{0x0f}, 16*250)
	var got fakeController

	displayPartial(&got, img, &EPD2in13v4)

	diffRecords(t, "displayPartial()", got, concat(
		[]record{
			{reset: true},
			{cmd: 0x3c, data: []byte{0x80}},
			{cmd: 0x01, data: []byte{0xf9, 0x00, 0x00}},
			{cmd: 0x11, data: []byte{0x03}},
		},
		fullWindow,
		originCursor,
		[]record{
			{cmd: 0x24, data: img},
			{cmd: 0x22, data: []byte{0xff}},
			{cmd: 0x20},
			{busy: true},
		},
	))
}

func TestDeepSleep(t *testing.T) {
	var got fakeController

	deepSleep(&got)

	diffRecords(t, "deepSleep()", got, []record{
		{cmd: 0x10, data: []byte{0x01}},
	})
}
