// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd2in13v4 controls the Waveshare 2.13 inch V4 e-paper display.
//
// Datasheet:
// https://files.waveshare.com/upload/5/59/2.13inch_e-Paper_V3_Specificition.pdf
//
// Product page:
// https://www.waveshare.com/wiki/2.13inch_e-Paper_HAT_Manual#Resources
//
// The panel is a 122×250 pixel black and white active matrix electrophoretic
// display driven by an SSD1680-class controller over SPI, with a data/command
// select line, a reset line and a busy line. Version 4 adds a fast refresh
// waveform to the version 3 command set.
//
// Images are handed to the driver as packed bytes: 16 bytes per row of 122
// pixels, 250 rows, most significant bit first, a set bit being white. The
// monoimage package produces this layout.
//
// Update modes:
//
//   - Display does a full refresh. It flickers but removes ghosting.
//   - DisplayFast uses the fast waveform loaded by InitFast.
//   - DisplayBase writes the image to both RAM banks of the controller. This
//     seeds the reference frame partial updates are computed against.
//   - DisplayPartial only drives changed pixels. The caller is responsible
//     for calling DisplayBase first; the driver does not track it.
//
// A Dev is not safe for concurrent use. Every operation blocks until the
// panel reports idle on the busy line, with no timeout.
package epd2in13v4
