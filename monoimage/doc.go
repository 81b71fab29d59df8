// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monoimage implements a packed 1-bit image in the native pixel
// format of SSD1680-class e-paper controllers.
//
// Rows are stored top to bottom, each row padded to a whole number of bytes.
// Within a byte the left-most pixel is the most significant bit. A set bit is
// white (no ink) and a cleared bit is black (ink), so a freshly created image
// is all 0xFF.
//
// Colors are expressed with image1bit.Bit: image1bit.On is white and
// image1bit.Off is black. Background and Foreground are provided as aliases
// that read better in drawing code.
package monoimage
