// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import "strings"

// Wrap breaks text into lines of at most maxChars characters.
//
// Newlines start a new paragraph and an empty paragraph yields an empty line.
// Words are joined with a single space. A word longer than maxChars is split
// into maxChars sized chunks.
func Wrap(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}

		var cur []rune
		for _, word := range strings.Fields(paragraph) {
			w := []rune(word)

			switch {
			case len(cur) == 0 && len(w) > maxChars:
				lines = append(lines, chunk(w, maxChars)...)
			case len(cur) == 0:
				cur = append(cur, w...)
			case len(cur)+1+len(w) <= maxChars:
				cur = append(append(cur, ' '), w...)
			default:
				lines = append(lines, string(cur))
				cur = cur[:0]
				if len(w) > maxChars {
					lines = append(lines, chunk(w, maxChars)...)
				} else {
					cur = append(cur, w...)
				}
			}
		}

		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
	}
	return lines
}

func chunk(w []rune, n int) []string {
	out := make([]string, 0, (len(w)+n-1)/n)
	for len(w) > n {
		out = append(out, string(w[:n]))
		w = w[n:]
	}
	return append(out, string(w))
}
