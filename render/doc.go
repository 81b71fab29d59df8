// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package render lays out text and draws it into e-paper frames.
//
// Text is wrapped by character count, which fits the fixed-width faces used
// on small panels. Three faces are available: a tinyfont bitmap font, the Go
// Regular TrueType font rendered through gg, and the 7x13 fixed face from
// golang.org/x/image.
package render
