// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Prompt is printed before each line read by RunREPL.
const Prompt = "epd> "

// RunREPL reads commands from in and writes results to out.
//
// It returns nil at end of input or on "quit" or "exit", and ctx.Err() when
// ctx is done first.
func (d *Dispatcher) RunREPL(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		s := bufio.NewScanner(in)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- s.Err()
	}()

	for {
		fmt.Fprint(out, Prompt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			fmt.Fprintln(out)
			return err
		case line := <-lines:
			if isQuit(line) {
				return nil
			}
			fmt.Fprintln(out, d.reply(line))
		}
	}
}
