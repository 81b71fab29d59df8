// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"errors"
	"image"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts controls how text frames are drawn.
type Opts struct {
	Face FaceName
	// Size is the point size for scalable faces. FaceBasic ignores it.
	Size float64
	// Margin is the blank space kept around the text, in pixels.
	Margin int
	// Reverse draws white text on black.
	Reverse bool
	// Border draws a one pixel outline around the frame.
	Border bool
	// Cell overrides the character cell used for wrapping and line spacing.
	// With a positive X, characters are placed on a fixed pitch. A zero
	// component keeps the face's own metric.
	Cell image.Point
}

// DefaultOpts is used when New is called with nil options.
var DefaultOpts = Opts{
	Face:   FaceTinyfont,
	Size:   9,
	Margin: 6,
	Border: true,
	Cell:   image.Pt(10, 20),
}

// Renderer turns text into frames of a fixed size.
type Renderer struct {
	width, height int
	opts          Opts
	face          face
}

// New returns a Renderer producing width x height frames.
func New(width, height int, opts *Opts) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("render: frame size must be positive")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Margin < 0 {
		return nil, errors.New("render: margin must not be negative")
	}
	if opts.Cell.X < 0 || opts.Cell.Y < 0 {
		return nil, errors.New("render: cell size must not be negative")
	}
	f, err := newFace(opts.Face, opts.Size)
	if err != nil {
		return nil, err
	}
	return &Renderer{width: width, height: height, opts: *opts, face: f}, nil
}

// Bounds returns the frame rectangle.
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Colors returns the ink and paper colors.
func (r *Renderer) Colors() (fg, bg image1bit.Bit) {
	if r.opts.Reverse {
		return monoimage.Background, monoimage.Foreground
	}
	return monoimage.Foreground, monoimage.Background
}

// Cell returns the character cell in effect: the width used for wrapping and
// the distance between baselines.
func (r *Renderer) Cell() image.Point {
	c := r.opts.Cell
	if c.X == 0 {
		c.X = r.face.advance()
	}
	if c.Y == 0 {
		c.Y = r.face.lineHeight()
	}
	return c
}

// Layout returns the lines Frame would draw for text.
func (r *Renderer) Layout(text string) []string {
	cell := r.Cell()
	inner := r.width - 2*r.opts.Margin
	maxChars := 1
	if cw := cell.X; cw > 0 && inner/cw > 1 {
		maxChars = inner / cw
	}
	lines := Wrap(text, maxChars)

	maxLines := 0
	if lh := cell.Y; lh > 0 {
		maxLines = (r.height - 2*r.opts.Margin) / lh
	}
	if maxLines < 0 {
		maxLines = 0
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// Frame draws text into a new frame.
func (r *Renderer) Frame(text string) *monoimage.HorizontalMSB {
	fg, bg := r.Colors()
	img := monoimage.New(r.width, r.height)
	img.Clear(bg)
	if r.opts.Border {
		img.Rectangle(img.Bounds(), fg)
	}
	m := r.opts.Margin
	cell := r.Cell()
	pitch := image.Pt(r.opts.Cell.X, cell.Y)
	r.face.drawLines(img, r.Layout(text), image.Pt(m, m+cell.Y), pitch, fg)
	return img
}

// Blank returns a frame filled with c.
func (r *Renderer) Blank(c image1bit.Bit) *monoimage.HorizontalMSB {
	img := monoimage.New(r.width, r.height)
	img.Clear(c)
	return img
}
