// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// SPLASH
// =============================================================================

// Splash is the empty-session welcome card: the wordmark plus version,
// project, and model, centered in the transcript area. It disappears after
// the first timeline event.
type Splash struct {
	theme  *styles.Theme
	width  int
	height int

	version string
	project string
	model   string
}

// NewSplash creates a splash for an 80x24 terminal.
func NewSplash(theme *styles.Theme) *Splash {
	return &Splash{theme: theme, width: 80, height: 24}
}

// SetSize updates the area the splash centers within.
func (s *Splash) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetVersion sets the version string shown under the wordmark.
func (s *Splash) SetVersion(version string) {
	s.version = version
}

// SetProject sets the project directory shown under the wordmark.
func (s *Splash) SetProject(project string) {
	s.project = project
}

// SetModel sets the model name shown under the wordmark.
func (s *Splash) SetModel(model string) {
	s.model = model
}

// View renders the centered card. Narrow terminals stack the info lines;
// wide ones join them on one row.
func (s *Splash) View() string {
	wordmark := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Render("loom")

	project := tailPath(s.project, max(s.width-30, 10))
	dim := s.theme.OverlayDesc
	body := s.theme.BodyText

	var lines []string
	lines = append(lines, wordmark)
	lines = append(lines, "")
	if s.width < 100 {
		lines = append(lines, dim.Render("v"+s.version+" • "+s.model))
		if project != "" {
			lines = append(lines, dim.Render(project))
		}
	} else {
		lines = append(lines,
			dim.Render("Version ")+body.Render(s.version)+
				dim.Render("  •  Project ")+body.Render(project)+
				dim.Render("  •  Model ")+body.Render(s.model))
	}
	lines = append(lines, "")
	lines = append(lines, s.theme.OverlayHint.Render("Type a message to begin. Press / for commands."))

	card := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))

	return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, card)
}

// tailPath shortens a path to fit, keeping its tail.
func tailPath(path string, maxWidth int) string {
	if util.StringWidth(path) <= maxWidth {
		return path
	}
	if maxWidth <= 6 {
		return path
	}
	runes := []rune(path)
	keep := maxWidth - 3
	if keep > len(runes) {
		keep = len(runes)
	}
	return "..." + string(runes[len(runes)-keep:])
}
