// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"log/slog"

	"github.com/GermanBionicSystems/einkserver/epd2in13v4"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// nullPanel stands in for the panel when running without hardware. It checks
// image sizes like the real driver and otherwise only logs.
type nullPanel struct {
	log  *slog.Logger
	size int
}

func newNullPanel(opts *epd2in13v4.Opts, log *slog.Logger) *nullPanel {
	return &nullPanel{log: log, size: (opts.Width + 7) / 8 * opts.Height}
}

func (n *nullPanel) Init() error {
	n.log.Debug("init")
	return nil
}

func (n *nullPanel) InitFast() error {
	n.log.Debug("init fast")
	return nil
}

func (n *nullPanel) Clear(c image1bit.Bit) error {
	n.log.Debug("clear", "white", c == image1bit.On)
	return nil
}

func (n *nullPanel) Display(img []byte) error        { return n.show("full", img) }
func (n *nullPanel) DisplayFast(img []byte) error    { return n.show("fast", img) }
func (n *nullPanel) DisplayBase(img []byte) error    { return n.show("base", img) }
func (n *nullPanel) DisplayPartial(img []byte) error { return n.show("partial", img) }

func (n *nullPanel) show(mode string, img []byte) error {
	if len(img) != n.size {
		return &epd2in13v4.BufferSizeError{Expected: n.size, Actual: len(img)}
	}
	n.log.Debug("display", "mode", mode, "bytes", len(img))
	return nil
}

func (n *nullPanel) Sleep() error {
	n.log.Debug("sleep")
	return nil
}
