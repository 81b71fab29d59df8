// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// einkserver draws text on a Waveshare 2.13" V4 e-paper HAT.
//
// Without -serve or -repl it renders -text once, like a demo, and puts the
// panel to sleep. With -serve it accepts line commands over TCP and serves a
// web preview; with -repl it reads the same commands from stdin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/einkserver/command"
	"github.com/GermanBionicSystems/einkserver/config"
	"github.com/GermanBionicSystems/einkserver/epd2in13v4"
	"github.com/GermanBionicSystems/einkserver/monoimage"
	"github.com/GermanBionicSystems/einkserver/render"
	"github.com/GermanBionicSystems/einkserver/termpreview"
	"github.com/GermanBionicSystems/einkserver/webpreview"
	"github.com/dikkadev/prettyslog"
)

const defaultText = "Hello from Go! Pass -text \"your message\" to set custom text."

func mainImpl() error {
	cfgPath := flag.String("config", "", "YAML configuration file")
	text := flag.String("text", defaultText, "text to render, wrapped to fit the display")
	clearPanel := flag.Bool("clear", false, "fill the panel with the background color, then sleep")
	fast := flag.Bool("fast", false, "use the fast initialization and refresh")
	noinit := flag.Bool("noinit", false, "skip panel initialization")
	reverse := flag.Bool("reverse-color", false, "white text on black")
	serve := flag.Bool("serve", false, "run the TCP command server and web preview")
	repl := flag.Bool("repl", false, "read commands from stdin")
	preview := flag.Bool("preview", false, "show every frame on the terminal")
	nohw := flag.Bool("nohw", false, "run without a panel; frames only go to the previews")
	spiPort := flag.String("spi", "", "SPI port, overrides the configuration")
	listen := flag.String("listen", "", "TCP command server address, overrides the configuration")
	httpAddr := flag.String("http", "", "web preview address, overrides the configuration")
	face := flag.String("face", "", "font face: tinyfont, goregular or basic")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "spi":
			cfg.SPI = *spiPort
		case "listen":
			cfg.Listen = *listen
		case "http":
			cfg.HTTP = *httpAddr
		case "face":
			cfg.Render.Face = *face
		case "reverse-color":
			cfg.Render.Reverse = *reverse
		case "v":
			if *verbose {
				cfg.Log.Level = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(prettyslog.NewPrettyslogHandler("einkserver", prettyslog.WithLevel(lvl)))
	slog.SetDefault(logger)

	opts := &epd2in13v4.EPD2in13v4
	r, err := render.New(opts.Width, opts.Height, cfg.Render.Opts())
	if err != nil {
		return err
	}

	var mirrors []command.Mirror
	if *preview {
		mirrors = append(mirrors, termpreview.New(&termpreview.Opts{Width: opts.Width, Height: opts.Height, Scale: 2}))
	}
	var web *webpreview.Display
	if *serve && cfg.HTTP != "" {
		web = webpreview.New(&webpreview.Options{Width: opts.Width, Height: opts.Height, Scale: 2, Logger: logger})
		mirrors = append(mirrors, web)
	}

	var p command.Panel
	if *nohw {
		p = newNullPanel(opts, logger)
	} else {
		dev, closer, err := openPanel(&cfg)
		if err != nil {
			return err
		}
		defer closer()
		logger.Info("panel ready", "dev", dev.String())
		p = dev
	}

	if !*serve && !*repl {
		return oneShot(p, r, mirrors, *text, *clearPanel, *fast, *noinit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	d := command.New(p, r, &command.Opts{Logger: logger, Mirrors: mirrors})
	if err := initPanel(d, *fast, *noinit); err != nil {
		return err
	}
	if !*serve {
		cfg.Listen = ""
	}
	err = run(ctx, d, &cfg, web, *repl)
	logger.Info("shutting down")
	if _, serr := d.Execute("sleep"); serr != nil && err == nil {
		err = serr
	}
	return err
}

// oneShot draws a single frame and puts the panel to sleep.
func oneShot(p command.Panel, r *render.Renderer, mirrors []command.Mirror, text string, clearPanel, fast, noinit bool) error {
	switch {
	case noinit:
		slog.Info("skipping panel initialization")
	case fast:
		if err := p.InitFast(); err != nil {
			return err
		}
	default:
		if err := p.Init(); err != nil {
			return err
		}
	}

	var img *monoimage.HorizontalMSB
	if clearPanel {
		_, bg := r.Colors()
		if err := p.Clear(bg); err != nil {
			return err
		}
		img = r.Blank(bg)
	} else {
		img = r.Frame(text)
		show := p.Display
		if fast {
			show = p.DisplayFast
		}
		if err := show(img.Bytes()); err != nil {
			return err
		}
	}
	for _, m := range mirrors {
		if err := m.Show(img); err != nil {
			slog.Warn("preview failed", "err", err)
		}
	}
	return p.Sleep()
}

// initPanel prepares the panel before commands are served.
func initPanel(d *command.Dispatcher, fast, noinit bool) error {
	cmd := "init"
	switch {
	case noinit:
		slog.Info("skipping panel initialization")
		return nil
	case fast:
		cmd = "init fast"
	}
	_, err := d.Execute(cmd)
	return err
}

// run serves commands until ctx is done, the REPL ends or a server fails.
func run(ctx context.Context, d *command.Dispatcher, cfg *config.Config, web *webpreview.Display, repl bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 3)
	n := 0
	if cfg.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return err
		}
		n++
		go func() { errc <- d.Serve(ctx, ln) }()
	}
	if web != nil {
		srv := &http.Server{Addr: cfg.HTTP, Handler: web}
		context.AfterFunc(ctx, func() {
			web.Halt()
			srv.Close()
		})
		slog.Info("web preview", "addr", cfg.HTTP)
		n++
		go func() {
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errc <- err
		}()
	}
	if repl {
		n++
		go func() {
			err := d.RunREPL(ctx, os.Stdin, os.Stdout)
			cancel()
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			errc <- err
		}()
	}
	if n == 0 {
		return errors.New("nothing to serve: configure listen or http, or use -repl")
	}

	var first error
	for i := 0; i < n; i++ {
		if err := <-errc; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "einkserver: %s.\n", err)
		os.Exit(1)
	}
}
