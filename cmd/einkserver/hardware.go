// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/GermanBionicSystems/einkserver/command"
	"github.com/GermanBionicSystems/einkserver/config"
	"github.com/GermanBionicSystems/einkserver/epd2in13v4"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var _ command.Panel = (*epd2in13v4.Dev)(nil)

// openPanel initializes the host drivers and opens the panel described by
// cfg. The returned function closes the SPI port.
func openPanel(cfg *config.Config) (*epd2in13v4.Dev, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	dc, err := lookupPin("dc", cfg.Pins.DC)
	if err != nil {
		return nil, nil, err
	}
	rst, err := lookupPin("rst", cfg.Pins.RST)
	if err != nil {
		return nil, nil, err
	}
	busy, err := lookupPin("busy", cfg.Pins.Busy)
	if err != nil {
		return nil, nil, err
	}

	p, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, nil, fmt.Errorf("opening SPI port %q: %w", cfg.SPI, err)
	}
	dev, err := epd2in13v4.New(p, dc, rst, busy, &epd2in13v4.EPD2in13v4)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return dev, p.Close, nil
}

func lookupPin(role, name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown %s pin %q", role, name)
	}
	return p, nil
}
