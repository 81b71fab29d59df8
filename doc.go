// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package einkserver drives a Waveshare 2.13" V4 e-paper panel.
//
// The driver lives in epd2in13v4 and the frame format in monoimage. The
// render, command, termpreview and webpreview packages build the einkserver
// binary in cmd/einkserver on top of them.
package einkserver
