// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"github.com/GermanBionicSystems/einkserver/render"
	"github.com/google/shlex"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrUnknownCommand is returned by Execute for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Panel is the command surface of an e-paper panel.
type Panel interface {
	Init() error
	InitFast() error
	Clear(c image1bit.Bit) error
	Display(img []byte) error
	DisplayFast(img []byte) error
	DisplayBase(img []byte) error
	DisplayPartial(img []byte) error
	Sleep() error
}

// Mirror receives every frame written to the panel.
type Mirror interface {
	Show(img *monoimage.HorizontalMSB) error
}

// Opts is optional.
type Opts struct {
	Logger  *slog.Logger
	Mirrors []Mirror
}

// Dispatcher runs commands against a Panel.
type Dispatcher struct {
	p       Panel
	r       *render.Renderer
	log     *slog.Logger
	mirrors []Mirror

	mu sync.Mutex
}

// New returns a Dispatcher for p drawing text with r.
func New(p Panel, r *render.Renderer, opts *Opts) *Dispatcher {
	d := &Dispatcher{p: p, r: r, log: slog.Default()}
	if opts != nil {
		if opts.Logger != nil {
			d.log = opts.Logger
		}
		d.mirrors = opts.Mirrors
	}
	return d
}

const usage = "commands: init [fast], clear [white|black], text <msg>, fast <msg>, base <msg>, partial <msg>, sleep, help"

// Execute runs one command line and returns its output, if any.
//
// An empty line does nothing.
func (d *Dispatcher) Execute(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return "", nil
	}
	name, args := strings.ToLower(args[0]), args[1:]

	d.mu.Lock()
	defer d.mu.Unlock()

	d.log.Debug("command", "name", name, "args", len(args))
	switch name {
	case "init":
		return "", d.init(args)
	case "clear":
		return "", d.clear(args)
	case "text":
		return "", d.draw("text", d.p.Display, args)
	case "fast":
		return "", d.draw("fast", d.p.DisplayFast, args)
	case "base":
		return "", d.draw("base", d.p.DisplayBase, args)
	case "partial":
		return "", d.draw("partial", d.p.DisplayPartial, args)
	case "sleep":
		if len(args) != 0 {
			return "", fmt.Errorf("sleep: unexpected argument %q", args[0])
		}
		return "", wrap("sleep", d.p.Sleep())
	case "help":
		return usage, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrUnknownCommand)
}

func (d *Dispatcher) init(args []string) error {
	switch {
	case len(args) == 0:
		return wrap("init", d.p.Init())
	case len(args) == 1 && args[0] == "fast":
		return wrap("init fast", d.p.InitFast())
	}
	return fmt.Errorf("init: unexpected argument %q", strings.Join(args, " "))
}

func (d *Dispatcher) clear(args []string) error {
	c := monoimage.Background
	if len(args) > 1 {
		return fmt.Errorf("clear: unexpected argument %q", args[1])
	}
	if len(args) == 1 {
		switch args[0] {
		case "white":
		case "black":
			c = monoimage.Foreground
		default:
			return fmt.Errorf("clear: unknown color %q", args[0])
		}
	}
	if err := d.p.Clear(c); err != nil {
		return wrap("clear", err)
	}
	d.mirror(d.r.Blank(c))
	return nil
}

func (d *Dispatcher) draw(op string, show func([]byte) error, args []string) error {
	img := d.r.Frame(strings.Join(args, " "))
	if err := show(img.Bytes()); err != nil {
		return wrap(op, err)
	}
	d.mirror(img)
	return nil
}

func (d *Dispatcher) mirror(img *monoimage.HorizontalMSB) {
	for _, m := range d.mirrors {
		if err := m.Show(img); err != nil {
			d.log.Warn("mirror failed", "err", err)
		}
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// reply formats the outcome of a command as a single protocol line.
func (d *Dispatcher) reply(line string) string {
	out, err := d.Execute(line)
	switch {
	case err != nil:
		d.log.Warn("command failed", "line", line, "err", err)
		return "error: " + strings.ReplaceAll(err.Error(), "\n", " ")
	case out == "":
		return "ok"
	default:
		return "ok " + out
	}
}

func isQuit(line string) bool {
	switch strings.TrimSpace(line) {
	case "quit", "exit":
		return true
	}
	return false
}
