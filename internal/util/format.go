// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the loom client.
package util

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups digits the way the status line wants them: 12345
// renders as "12,345".
var countPrinter = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// FormatTokenPair renders input/output token counts for the status line.
func FormatTokenPair(input, output int) string {
	return countPrinter.Sprintf("%d↑ %d↓", input, output)
}

// FormatPercent renders a ratio-percentage with no decimal places.
func FormatPercent(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return fmt.Sprintf("%d%%", int(p+0.5))
}

// FormatBytes renders a byte count in a compact human unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
