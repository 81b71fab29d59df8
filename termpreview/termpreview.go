// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termpreview shows e-paper frames on a terminal using ANSI color
// codes.
//
// Useful when the panel is not connected, or to follow what a remote client
// is drawing.
package termpreview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this preview.
type Opts struct {
	Width, Height int
	// Scale is the side in pixels of the square shown by one terminal block.
	// A block is dark when any of its pixels is.
	Scale   int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is an e-paper panel emulator that outputs to the console.
type Dev struct {
	w      io.Writer
	rect   image.Rectangle
	scale  int
	ink    string
	paper  string
	buf    bytes.Buffer
	drawn  int
	canvas *monoimage.HorizontalMSB
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Dev that writes to w.
func NewWriter(w io.Writer, opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	s := opts.Scale
	if s < 1 {
		s = 1
	}
	return &Dev{
		w:      w,
		rect:   image.Rect(0, 0, opts.Width, opts.Height),
		scale:  s,
		ink:    p.Block(color.NRGBA{A: 255}),
		paper:  p.Block(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		canvas: monoimage.New(opts.Width, opts.Height),
	}
}

func (d *Dev) String() string {
	return "TermPreview"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Show writes img to the console, replacing the previous frame.
func (d *Dev) Show(img *monoimage.HorizontalMSB) error {
	// The buffer is reused between frames.
	d.buf.Reset()
	if d.drawn != 0 {
		fmt.Fprintf(&d.buf, "\033[%dA", d.drawn)
	}
	b := img.Bounds()
	rows := 0
	for y := b.Min.Y; y < b.Max.Y; y += d.scale {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := b.Min.X; x < b.Max.X; x += d.scale {
			if d.dark(img, x, y) {
				_, _ = d.buf.WriteString(d.ink)
			} else {
				_, _ = d.buf.WriteString(d.paper)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
		rows++
	}
	d.drawn = rows
	_, err := d.buf.WriteTo(d.w)
	return err
}

func (d *Dev) dark(img *monoimage.HorizontalMSB, x0, y0 int) bool {
	for y := y0; y < y0+d.scale; y++ {
		for x := x0; x < x0+d.scale; x++ {
			if image.Pt(x, y).In(img.Bounds()) && img.BitAt(x, y) == monoimage.Foreground {
				return true
			}
		}
	}
	return false
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return d.canvas.ColorModel()
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.canvas, r.Intersect(d.rect), src, sp)
	return d.Show(d.canvas)
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
