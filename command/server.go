// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
)

// Serve accepts connections on ln and runs one command per line.
//
// Each line is answered with a single line: "ok", "ok <output>" or
// "error: <message>". "quit" closes the connection. Serve returns nil once ctx
// is done, after every connection has been closed.
func (d *Dispatcher) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	d.log.Info("listening", "addr", ln.Addr().String())
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.serveConn(ctx, c)
		}()
	}
}

func (d *Dispatcher) serveConn(ctx context.Context, c net.Conn) {
	defer c.Close()
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	log := d.log.With("remote", c.RemoteAddr().String())
	log.Info("client connected")
	defer log.Info("client disconnected")

	s := bufio.NewScanner(c)
	for s.Scan() {
		line := s.Text()
		if isQuit(line) {
			if _, err := io.WriteString(c, "ok\n"); err != nil {
				log.Warn("write failed", "err", err)
			}
			return
		}
		if _, err := io.WriteString(c, d.reply(line)+"\n"); err != nil {
			log.Warn("write failed", "err", err)
			return
		}
	}
	if err := s.Err(); err != nil && ctx.Err() == nil {
		log.Warn("read failed", "err", err)
	}
}
