// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the einkserver YAML configuration.
package config

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"slices"

	"github.com/GermanBionicSystems/einkserver/render"
	"gopkg.in/yaml.v2"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Pins holds gpioreg names of the control lines.
type Pins struct {
	Busy string `yaml:"busy"`
	DC   string `yaml:"dc"`
	RST  string `yaml:"rst"`
}

// Render holds the text rendering options.
type Render struct {
	Face    string  `yaml:"face"`
	Size    float64 `yaml:"size"`
	Margin  int     `yaml:"margin"`
	Reverse bool    `yaml:"reverse"`
	Border  bool    `yaml:"border"`

	// CellWidth and CellHeight set the character grid. Zero uses the
	// face metrics.
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// Log holds the logging options.
type Log struct {
	Level string `yaml:"level"`
}

// Config is the complete configuration.
type Config struct {
	// SPI is passed to spireg.Open. Empty selects the first port.
	SPI  string `yaml:"spi"`
	Pins Pins   `yaml:"pins"`
	// Listen is the TCP command server address. Empty disables it.
	Listen string `yaml:"listen"`
	// HTTP is the preview server address. Empty disables it.
	HTTP   string `yaml:"http"`
	Render Render `yaml:"render"`
	Log    Log    `yaml:"log"`
}

// Default returns the configuration for the Waveshare HAT on a Raspberry Pi.
func Default() Config {
	return Config{
		Pins: Pins{
			Busy: "GPIO24",
			DC:   "GPIO25",
			RST:  "GPIO17",
		},
		Listen: "127.0.0.1:7070",
		Render: Render{
			Face:       string(render.FaceTinyfont),
			Size:       9,
			Margin:     6,
			Border:     true,
			CellWidth:  10,
			CellHeight: 20,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path and merges it over Default.
//
// Unknown keys are an error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem found in c.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range []struct{ name, value string }{
		{"pins.busy", c.Pins.Busy},
		{"pins.dc", c.Pins.DC},
		{"pins.rst", c.Pins.RST},
	} {
		if p.value == "" {
			errs = append(errs, fmt.Errorf("config: %w: %s is empty", ErrInvalid, p.name))
		}
	}
	if !slices.Contains(render.Faces, render.FaceName(c.Render.Face)) {
		errs = append(errs, fmt.Errorf("config: %w: unknown face %q", ErrInvalid, c.Render.Face))
	}
	if c.Render.Margin < 0 {
		errs = append(errs, fmt.Errorf("config: %w: negative margin %d", ErrInvalid, c.Render.Margin))
	}
	if c.Render.Size < 0 {
		errs = append(errs, fmt.Errorf("config: %w: negative size %g", ErrInvalid, c.Render.Size))
	}
	if c.Render.CellWidth < 0 || c.Render.CellHeight < 0 {
		errs = append(errs, fmt.Errorf("config: %w: negative cell %dx%d", ErrInvalid, c.Render.CellWidth, c.Render.CellHeight))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Opts converts r for render.New.
func (r Render) Opts() *render.Opts {
	return &render.Opts{
		Face:    render.FaceName(r.Face),
		Size:    r.Size,
		Margin:  r.Margin,
		Reverse: r.Reverse,
		Border:  r.Border,
		Cell:    image.Pt(r.CellWidth, r.CellHeight),
	}
}

// SlogLevel parses the level name. Empty means info.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return lvl, nil
}
