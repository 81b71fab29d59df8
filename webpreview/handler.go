// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webpreview

import (
	"io"
	"net/http"
	"strconv"
)

const indexPage = `<!DOCTYPE html>
<html><head><title>einkserver</title></head>
<body style="background:#888"><img src="stream" alt="panel"></body></html>
`

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

func (d *Display) frameChangedLocked() {
	d.snapshot = nil
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (d *Display) terminateClientsLocked() {
	for c := range d.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

func (d *Display) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexPage)
}

func (d *Display) serveFrame(w http.ResponseWriter, r *http.Request) {
	payload, err := d.grabSnapshot()
	if err != nil {
		d.log.Error("encoding frame failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(payload)
}

// serveStream sends the current frame and then every new one until the client
// goes away or the display is halted.
func (d *Display) serveStream(w http.ResponseWriter, r *http.Request) {
	pw := newPartWriter(w)
	w.Header().Set("Content-Type", pw.contentType())

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
	}()

	log := d.log.With("remote", r.RemoteAddr)
	log.Debug("stream started")
	defer log.Debug("stream ended")

	for {
		payload, err := d.grabSnapshot()
		if err != nil {
			log.Error("encoding frame failed", "err", err)
			return
		}
		// Errors end the stream silently; there is no way to report them
		// inside an image stream.
		if err := pw.writePart("image/png", payload); err != nil {
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}
