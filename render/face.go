// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

// FaceName selects the font used for text.
type FaceName string

const (
	// FaceTinyfont is the FreeMono bitmap font from tinyfont.
	FaceTinyfont FaceName = "tinyfont"
	// FaceGoRegular is the Go Regular TrueType font.
	FaceGoRegular FaceName = "goregular"
	// FaceBasic is the 7x13 fixed font from golang.org/x/image.
	FaceBasic FaceName = "basic"
)

// Faces lists the supported face names.
var Faces = []FaceName{FaceTinyfont, FaceGoRegular, FaceBasic}

type face interface {
	// advance returns the width of one character cell.
	advance() int
	// lineHeight returns the distance between two baselines.
	lineHeight() int
	// drawLines draws the lines with the first baseline at origin, one line
	// every pitch.Y pixels. A positive pitch.X places each character on a
	// fixed grid instead of the face's own advance.
	drawLines(img *monoimage.HorizontalMSB, lines []string, origin, pitch image.Point, c image1bit.Bit)
}

func newFace(name FaceName, size float64) (face, error) {
	switch name {
	case FaceTinyfont, "":
		return &tinyfontFace{font: freemonoForSize(size)}, nil
	case FaceGoRegular:
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("render: parsing Go Regular failed: %w", err)
		}
		return newGGFace(truetype.NewFace(f, &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		})), nil
	case FaceBasic:
		return newGGFace(basicfont.Face7x13), nil
	}
	return nil, fmt.Errorf("render: unknown face %q", name)
}

func freemonoForSize(size float64) *tinyfont.Font {
	switch {
	case size <= 9:
		return &freemono.Regular9pt7b
	case size <= 12:
		return &freemono.Regular12pt7b
	case size <= 18:
		return &freemono.Regular18pt7b
	default:
		return &freemono.Regular24pt7b
	}
}

type tinyfontFace struct {
	font *tinyfont.Font
}

func (f *tinyfontFace) advance() int {
	_, outboxWidth := tinyfont.LineWidth(f.font, "0")
	return int(outboxWidth)
}

func (f *tinyfontFace) lineHeight() int {
	return int(f.font.YAdvance)
}

func (f *tinyfontFace) drawLines(img *monoimage.HorizontalMSB, lines []string, origin, pitch image.Point, c image1bit.Bit) {
	d := &displayer{img: img, c: c}
	// The color is ignored by the displayer.
	ink := color.RGBA{A: 0xff}
	for i, line := range lines {
		y := int16(origin.Y + i*pitch.Y)
		if pitch.X <= 0 {
			tinyfont.WriteLine(d, f.font, int16(origin.X), y, line, ink)
			continue
		}
		for j, r := range []rune(line) {
			tinyfont.DrawChar(d, f.font, int16(origin.X+j*pitch.X), y, r, ink)
		}
	}
}

// displayer lets tinyfont draw into a frame.
type displayer struct {
	img *monoimage.HorizontalMSB
	c   image1bit.Bit
}

func (d *displayer) Size() (x, y int16) {
	return int16(d.img.Width()), int16(d.img.Height())
}

func (d *displayer) SetPixel(x, y int16, _ color.RGBA) {
	d.img.SetBit(int(x), int(y), d.c)
}

func (d *displayer) Display() error {
	return nil
}

var _ drivers.Displayer = (*displayer)(nil)

// ggFace renders anti-aliased text with gg and thresholds the coverage.
type ggFace struct {
	face font.Face
}

func newGGFace(f font.Face) *ggFace {
	return &ggFace{face: f}
}

func (f *ggFace) advance() int {
	return font.MeasureString(f.face, "0").Ceil()
}

func (f *ggFace) lineHeight() int {
	return f.face.Metrics().Height.Ceil()
}

func (f *ggFace) drawLines(img *monoimage.HorizontalMSB, lines []string, origin, pitch image.Point, c image1bit.Bit) {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(f.face)
	dc.SetColor(color.Black)

	for i, line := range lines {
		y := float64(origin.Y + i*pitch.Y)
		if pitch.X <= 0 {
			dc.DrawString(line, float64(origin.X), y)
			continue
		}
		for j, r := range []rune(line) {
			dc.DrawString(string(r), float64(origin.X+j*pitch.X), y)
		}
	}

	// Ink is whatever BitModel turns black.
	canvas := dc.Image()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if image1bit.BitModel.Convert(canvas.At(x, y)) == image1bit.Off {
				img.SetBit(b.Min.X+x, b.Min.Y+y, c)
			}
		}
	}
}
