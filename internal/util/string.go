// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the loom client.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Rune-aware truncation and width measurement. Display width comes from
// go-runewidth so CJK and other double-width characters count as two
// terminal columns.

// TruncateRunes truncates a string to a maximum number of runes, appending
// "..." when something was cut.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateRunesNoEllipsis truncates a string to a maximum number of runes
// without appending an ellipsis.
func TruncateRunesNoEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// TruncateWidth truncates a string to a maximum display width in terminal
// columns, appending "..." when something was cut. The result never exceeds
// maxWidth columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads a string with spaces on the right to the given display
// width, truncating first if it is too wide.
func PadWidth(s string, width int) string {
	return runewidth.FillRight(TruncateWidth(s, width), width)
}

// SafeSubstring returns a substring using rune indices (not byte indices).
// This prevents splitting multi-byte UTF-8 characters.
func SafeSubstring(s string, start, end int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		return ""
	}
	if end < 0 || end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneWidth returns the display width of a single rune.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// RuneLen returns the number of runes (characters) in a string.
func RuneLen(s string) int {
	return len([]rune(s))
}

// WrapWidth word-wraps a string to the given display width. Words longer
// than the width are split at column boundaries rather than overflowing.
// An empty input yields a single empty line.
func WrapWidth(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)

		// Oversized word: split at column boundaries
		if w > width {
			if lineWidth > 0 {
				flush()
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if lineWidth+rw > width {
					flush()
				}
				line.WriteRune(r)
				lineWidth += rw
			}
			continue
		}

		sep := 0
		if lineWidth > 0 {
			sep = 1
		}
		if lineWidth+sep+w > width {
			flush()
			sep = 0
		}
		if sep == 1 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}

	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// HardWrapWidth wraps a string at exact column boundaries without regard to
// word breaks, never splitting a multi-byte character. Used for verbatim
// content such as diff lines.
func HardWrapWidth(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		line.WriteRune(r)
		lineWidth += rw
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
