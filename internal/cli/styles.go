// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for the loom CLI paths.
//
// The --prompt and --repl paths print lipgloss-styled lines straight to
// the terminal; the styles live here so both use the same accents as
// the TUI palette.
//
// Color handling:
// - Colors are automatically disabled for non-TTY output
// - Respects NO_COLOR (https://no-color.org/)
// - Supports FORCE_COLOR to override detection

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

// init configures the lipgloss color profile before any style renders.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// headerStyle marks the "> ..." preamble lines in one-shot output
	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// promptStyle renders the REPL prompt
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// toolStyle renders tool-activity lines
	toolStyle = lipgloss.NewStyle().
			Foreground(styles.Purple)

	// infoStyle renders secondary informational lines
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// mutedStyle renders token counts and other low-priority detail
	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// errorStyle renders error lines
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// warnStyle renders cancellation and other warnings
	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)
