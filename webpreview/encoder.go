// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webpreview

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	xdraw "golang.org/x/image/draw"
)

type pngEncoderBufferPool sync.Pool

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

// Frames are small and change often.
var pngEncoder = png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       &pngEncoderBufferPool{},
}

// encodeFrameLocked returns the PNG encoding of the frame, scaled up.
func (d *Display) encodeFrameLocked() ([]byte, error) {
	var src image.Image = d.frame
	if d.scale > 1 {
		b := d.frame.Bounds()
		dst := image.NewPaletted(image.Rect(0, 0, b.Dx()*d.scale, b.Dy()*d.scale), palette)
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), d.frame, b, xdraw.Src, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// grabSnapshot returns the encoded frame. The slice must not be modified.
func (d *Display) grabSnapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		enc, err := d.encodeFrameLocked()
		if err != nil {
			return nil, err
		}
		d.snapshot = enc
	}
	return d.snapshot, nil
}
