// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the loom TUI.
package styles

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// LineSpinner - Simple line rotation, the working indicator next to the
// streaming assistant block.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
}

// SpinnerConfig holds a spinner's frame cycle. Pacing is owned by the
// caller's tick, not the config; the session ticks faster while a turn
// streams.
type SpinnerConfig struct {
	Frames []string
}

// Frame returns the frame for a given tick count.
func (s SpinnerConfig) Frame(tick int) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if tick < 0 {
		tick = -tick
	}
	return s.Frames[tick%len(s.Frames)]
}
