// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monoimage

import (
	"bytes"
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	// Background is the no-ink (white) color, stored as a set bit.
	Background = image1bit.On
	// Foreground is the ink (black) color, stored as a cleared bit.
	Foreground = image1bit.Off
)

// Pixel is a single colored point handed to DrawBatch.
type Pixel struct {
	Point image.Point
	C     image1bit.Bit
}

// HorizontalMSB is a 1-bit image packed row by row, most significant bit
// first.
type HorizontalMSB struct {
	// Pix holds Stride*Rect.Dy() bytes.
	Pix []byte
	// Stride is the number of bytes per row, ceil(Rect.Dx()/8).
	Stride int
	// Rect is the image bounds.
	Rect image.Rectangle
}

// New returns a white image of the given size. A zero or negative dimension
// results in an empty image without backing store.
func New(width, height int) *HorizontalMSB {
	if width <= 0 || height <= 0 {
		return &HorizontalMSB{}
	}
	return NewHorizontalMSB(image.Rect(0, 0, width, height))
}

// NewHorizontalMSB returns a white image with the given bounds.
func NewHorizontalMSB(r image.Rectangle) *HorizontalMSB {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &HorizontalMSB{Rect: image.Rectangle{Min: r.Min, Max: r.Min}}
	}
	stride := (w + 7) / 8
	return &HorizontalMSB{
		Pix:    bytes.Repeat([]byte{0xFF}, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// Width returns the image width in pixels.
func (i *HorizontalMSB) Width() int {
	return i.Rect.Dx()
}

// Height returns the image height in pixels.
func (i *HorizontalMSB) Height() int {
	return i.Rect.Dy()
}

// ColorModel implements image.Image.
func (i *HorizontalMSB) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements image.Image.
func (i *HorizontalMSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *HorizontalMSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt returns the color at the given position. Positions outside the image
// read as Background.
func (i *HorizontalMSB) BitAt(x, y int) image1bit.Bit {
	offset, mask, ok := i.pixOffset(x, y)
	if !ok {
		return Background
	}
	return image1bit.Bit(i.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
func (i *HorizontalMSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// SetBit sets the color of one pixel. Positions outside the image are ignored.
func (i *HorizontalMSB) SetBit(x, y int, c image1bit.Bit) {
	offset, mask, ok := i.pixOffset(x, y)
	if !ok {
		return
	}
	if c {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// DrawBatch applies SetBit to every pixel in order. Pixels with a negative
// coordinate are skipped.
func (i *HorizontalMSB) DrawBatch(pixels []Pixel) {
	for _, p := range pixels {
		if p.Point.X < 0 || p.Point.Y < 0 {
			continue
		}
		i.SetBit(p.Point.X, p.Point.Y, p.C)
	}
}

// Rectangle draws the 1 pixel wide outline of r.
func (i *HorizontalMSB) Rectangle(r image.Rectangle, c image1bit.Bit) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	pixels := make([]Pixel, 0, 2*(r.Dx()+r.Dy()))
	for x := r.Min.X; x < r.Max.X; x++ {
		pixels = append(pixels,
			Pixel{Point: image.Pt(x, r.Min.Y), C: c},
			Pixel{Point: image.Pt(x, r.Max.Y-1), C: c})
	}
	for y := r.Min.Y + 1; y < r.Max.Y-1; y++ {
		pixels = append(pixels,
			Pixel{Point: image.Pt(r.Min.X, y), C: c},
			Pixel{Point: image.Pt(r.Max.X-1, y), C: c})
	}
	i.DrawBatch(pixels)
}

// Clear fills the whole image, including the padding bits, with c.
func (i *HorizontalMSB) Clear(c image1bit.Bit) {
	fill := byte(0x00)
	if c {
		fill = 0xFF
	}
	for j := range i.Pix {
		i.Pix[j] = fill
	}
}

// Bytes returns the packed image. The slice aliases the image and must not be
// modified by the caller.
func (i *HorizontalMSB) Bytes() []byte {
	return i.Pix
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
func (i *HorizontalMSB) pixOffset(x, y int) (int, byte, bool) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0, 0, false
	}
	x -= i.Rect.Min.X
	y -= i.Rect.Min.Y
	return y*i.Stride + x/8, 0x80 >> uint(x&7), true
}
