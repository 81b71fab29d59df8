// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webpreview serves the frames shown on an e-paper panel over HTTP.
//
// Routes:
//
//	/            a page showing the stream
//	/frame.png   the last frame
//	/stream      every new frame, as a multipart/x-mixed-replace PNG stream
//
// The stream uses the "MJPEG" protocol (https://en.wikipedia.org/wiki/Motion_JPEG)
// known from IP cameras, with PNG parts.
package webpreview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"periph.io/x/conn/v3/display"
)

// Options for webpreview displays.
type Options struct {
	// Width and height of the panel.
	Width, Height int

	// Scale enlarges the served images by an integer factor.
	Scale int

	Logger *slog.Logger
}

// Paper is palette index 0 so a new frame starts blank.
var palette = color.Palette{color.White, color.Black}

const (
	paperIndex = 0
	inkIndex   = 1
)

// Display keeps the last frame and serves it.
type Display struct {
	scale int
	log   *slog.Logger
	mux   *http.ServeMux

	mu       sync.Mutex
	frame    *image.Paletted
	clients  map[*client]struct{}
	snapshot []byte
}

var _ display.Drawer = (*Display)(nil)
var _ http.Handler = (*Display)(nil)

// New creates a new webpreview display.
func New(opt *Options) *Display {
	d := &Display{
		scale:   opt.Scale,
		log:     opt.Logger,
		frame:   image.NewPaletted(image.Rect(0, 0, opt.Width, opt.Height), palette),
		clients: map[*client]struct{}{},
	}
	if d.scale < 1 {
		d.scale = 1
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.mux = http.NewServeMux()
	d.mux.HandleFunc("GET /{$}", d.serveIndex)
	d.mux.HandleFunc("GET /frame.png", d.serveFrame)
	d.mux.HandleFunc("GET /stream", d.serveStream)
	return d
}

// String returns the name of the device.
func (d *Display) String() string {
	return "WebPreview"
}

// Halt implements conn.Resource and terminates all running streams
// asynchronously.
func (d *Display) Halt() error {
	d.mu.Lock()
	d.terminateClientsLocked()
	d.mu.Unlock()
	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return d.frame.ColorModel()
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.frame.Bounds()
}

// Draw implements display.Drawer.
func (d *Display) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	d.mu.Lock()
	draw.Draw(d.frame, dstRect, src, srcPts, draw.Src)
	d.frameChangedLocked()
	d.mu.Unlock()
	return nil
}

// Show replaces the current frame with img.
func (d *Display) Show(img *monoimage.HorizontalMSB) error {
	b := img.Bounds()
	if b.Size() != d.frame.Bounds().Size() {
		return fmt.Errorf("webpreview: frame is %dx%d, want %dx%d",
			b.Dx(), b.Dy(), d.frame.Bounds().Dx(), d.frame.Bounds().Dy())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for y := 0; y < b.Dy(); y++ {
		row := d.frame.Pix[y*d.frame.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if img.BitAt(b.Min.X+x, b.Min.Y+y) == monoimage.Foreground {
				row[x] = inkIndex
			} else {
				row[x] = paperIndex
			}
		}
	}
	d.frameChangedLocked()
	return nil
}

// ServeHTTP implements http.Handler.
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mux.ServeHTTP(w, r)
}
