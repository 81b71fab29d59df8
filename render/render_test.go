// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"image"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func countBits(img *monoimage.HorizontalMSB, r image.Rectangle, c image1bit.Bit) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.BitAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestNewErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		w, h int
		opts *Opts
	}{
		{"zero width", 0, 10, nil},
		{"negative height", 10, -1, nil},
		{"negative margin", 10, 10, &Opts{Face: FaceBasic, Margin: -1}},
		{"unknown face", 10, 10, &Opts{Face: "comic"}},
		{"negative cell", 10, 10, &Opts{Face: FaceBasic, Cell: image.Pt(-1, 0)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if r, err := New(tc.w, tc.h, tc.opts); err == nil {
				t.Fatalf("New() = %v, want error", r)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	for _, name := range Faces {
		t.Run(string(name), func(t *testing.T) {
			r, err := New(122, 250, &Opts{Face: name, Size: 12, Margin: 6, Border: true})
			if err != nil {
				t.Fatal(err)
			}
			img := r.Frame("Hello")
			if got := len(img.Bytes()); got != 4000 {
				t.Fatalf("len(Bytes()) = %d, want 4000", got)
			}

			// Border.
			for x := 0; x < 122; x++ {
				if img.BitAt(x, 0) != monoimage.Foreground || img.BitAt(x, 249) != monoimage.Foreground {
					t.Fatalf("border missing at column %d", x)
				}
			}
			for y := 0; y < 250; y++ {
				if img.BitAt(0, y) != monoimage.Foreground || img.BitAt(121, y) != monoimage.Foreground {
					t.Fatalf("border missing at row %d", y)
				}
			}

			inner := image.Rect(1, 1, 121, 249)
			if n := countBits(img, inner, monoimage.Foreground); n == 0 {
				t.Error("no ink drawn for text")
			}
		})
	}
}

func TestFrameEmpty(t *testing.T) {
	r, err := New(122, 250, &Opts{Face: FaceBasic, Margin: 6, Border: true})
	if err != nil {
		t.Fatal(err)
	}
	img := r.Frame("")
	if n := countBits(img, image.Rect(1, 1, 121, 249), monoimage.Foreground); n != 0 {
		t.Errorf("%d ink pixels inside an empty frame", n)
	}
}

func TestFrameNoBorder(t *testing.T) {
	r, err := New(16, 16, &Opts{Face: FaceBasic})
	if err != nil {
		t.Fatal(err)
	}
	img := r.Frame("")
	if n := countBits(img, img.Bounds(), monoimage.Foreground); n != 0 {
		t.Errorf("%d ink pixels, want 0", n)
	}
}

func TestFrameReverse(t *testing.T) {
	r, err := New(122, 250, &Opts{Face: FaceBasic, Margin: 6, Border: true, Reverse: true})
	if err != nil {
		t.Fatal(err)
	}
	fg, bg := r.Colors()
	if fg != image1bit.On || bg != image1bit.Off {
		t.Fatalf("Colors() = %v, %v; want On, Off", fg, bg)
	}
	img := r.Frame("")
	if got := img.BitAt(0, 0); got != image1bit.On {
		t.Errorf("border = %v, want On", got)
	}
	if got := img.BitAt(60, 120); got != image1bit.Off {
		t.Errorf("paper = %v, want Off", got)
	}
	img = r.Frame("Hi")
	if n := countBits(img, image.Rect(1, 1, 121, 249), image1bit.On); n == 0 {
		t.Error("no white ink drawn")
	}
}

func TestLayout(t *testing.T) {
	// basicfont is 7 pixels wide and 13 pixels high.
	r, err := New(122, 250, &Opts{Face: FaceBasic, Margin: 6})
	if err != nil {
		t.Fatal(err)
	}
	maxChars := (122 - 12) / 7
	maxLines := (250 - 12) / 13

	lines := r.Layout(strings.Repeat("word ", 200))
	if len(lines) != maxLines {
		t.Errorf("len(Layout()) = %d, want %d", len(lines), maxLines)
	}
	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n > maxChars {
			t.Errorf("line %d has %d characters, want at most %d", i, n, maxChars)
		}
	}
}

func TestDefaultLayout(t *testing.T) {
	// A 10x20 cell with a 6 pixel margin gives 11 columns and 11 rows.
	r, err := New(122, 250, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Cell(), image.Pt(10, 20); got != want {
		t.Errorf("Cell() = %v, want %v", got, want)
	}

	lines := r.Layout(strings.Repeat("abcdefghijk ", 20))
	if len(lines) != 11 {
		t.Errorf("len(Layout()) = %d, want 11", len(lines))
	}
	for i, l := range lines {
		if l != "abcdefghijk" {
			t.Errorf("line %d = %q, want %q", i, l, "abcdefghijk")
		}
	}

	// Eleven columns still fit inside the border.
	img := r.Frame(strings.Repeat("W", 11))
	if n := countBits(img, image.Rect(1, 1, 121, 26), monoimage.Foreground); n == 0 {
		t.Error("no ink on the first line")
	}
	if n := countBits(img, image.Rect(1, 27, 121, 249), monoimage.Foreground); n != 0 {
		t.Errorf("%d ink pixels below the first line", n)
	}
}

func TestCellOverride(t *testing.T) {
	r, err := New(122, 250, &Opts{Face: FaceBasic, Margin: 6, Cell: image.Pt(0, 25)})
	if err != nil {
		t.Fatal(err)
	}
	// Width falls back to the 7 pixel basicfont advance.
	if got, want := r.Cell(), image.Pt(7, 25); got != want {
		t.Errorf("Cell() = %v, want %v", got, want)
	}
	if got, want := len(r.Layout(strings.Repeat("word ", 200))), (250-12)/25; got != want {
		t.Errorf("len(Layout()) = %d, want %d", got, want)
	}
}

func TestLayoutTooSmall(t *testing.T) {
	r, err := New(4, 4, &Opts{Face: FaceBasic, Margin: 6})
	if err != nil {
		t.Fatal(err)
	}
	if lines := r.Layout("hello"); len(lines) != 0 {
		t.Errorf("Layout() = %q, want no lines", lines)
	}
	// Still a valid frame.
	if got := len(r.Frame("hello").Bytes()); got != 4 {
		t.Errorf("len(Bytes()) = %d, want 4", got)
	}
}

func TestBlank(t *testing.T) {
	r, err := New(8, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := r.Blank(image1bit.Off)
	for i, b := range img.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}
