// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER
// =============================================================================

// Spinner cycles the loading animation shown ahead of the "Thinking..."
// label in the transcript. Frames come from styles.LineSpinner; the
// session advances the tick on its frame interval while a turn is
// streaming, and rendering happens in the timeline, which styles the raw
// frame itself.
type Spinner struct {
	tick int
}

// NewSpinner creates a spinner at its first frame.
func NewSpinner() *Spinner {
	return &Spinner{}
}

// Advance steps to the next frame.
func (s *Spinner) Advance() {
	s.tick++
}

// Frame returns the current frame character.
func (s *Spinner) Frame() string {
	return styles.LineSpinner.Frame(s.tick)
}

// Reset rewinds to the first frame.
func (s *Spinner) Reset() {
	s.tick = 0
}
