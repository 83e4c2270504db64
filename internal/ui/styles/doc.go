// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the loom TUI.

This package defines the color palette, theme, and animation primitives used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal adjustment.

# Color System (colors.go)

Primary accents:

  - Purple - Assistant output and selections
  - Cyan - User input, commands, mentions
  - Emerald - Success, build agent, added diff lines
  - Amber - Warnings, plan agent, elevated context pressure
  - Rose - Errors, removed diff lines

Timeline, diff, and markdown colors have their own token groups so the
renderer never hardcodes a hex value.

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewThemeWithMode(cfg.UI.Theme) // "dark", "light", "auto"
	if theme.IsDark {
		// Dark terminal detected or forced
	}

NO_COLOR is honored through termenv's environment-aware profile. Styles are
grouped by surface: timeline, markdown, diff, input, status line, overlays,
todo strip, toasts.

# Animation System (animations.go)

Spinner frame tables, indexed by the caller's tick:

	frame := styles.LineSpinner.Frame(tick) // "|", "/", "-", "\\"

# Accessibility

StatusIndicators pair every colored state with an ASCII shape ([OK], [X],
[!], [i]) so state is never conveyed by color alone. RenderSuccess,
RenderError, RenderWarning, and RenderInfo wrap message text with the
matching indicator and a high-contrast style.
*/
package styles
