// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webpreview

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
)

// randomBoundary generates a MIME multipart boundary compatible with RFC 2046
// (section 5.1.1).
func randomBoundary() string {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}

// partWriter writes an endless multipart entity, one complete part at a time.
//
// mime/multipart.Writer only writes the closing boundary of a part when the
// next one starts, so clients would always lag one frame behind.
type partWriter struct {
	w        io.Writer
	boundary string
	started  bool
}

func newPartWriter(w io.Writer) *partWriter {
	return &partWriter{w: w, boundary: randomBoundary()}
}

func (p *partWriter) contentType() string {
	return mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": p.boundary})
}

// writePart writes body followed by the boundary line.
func (p *partWriter) writePart(contentType string, body []byte) error {
	var hdr bytes.Buffer
	if !p.started {
		fmt.Fprintf(&hdr, "--%s\r\n", p.boundary)
		p.started = true
	}
	fmt.Fprintf(&hdr, "Content-Type: %s\r\nContent-Length: %d\r\n\r\n", contentType, len(body))
	if _, err := hdr.WriteTo(p.w); err != nil {
		return err
	}
	if _, err := p.w.Write(body); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\r\n--%s\r\n", p.boundary)
	return err
}
