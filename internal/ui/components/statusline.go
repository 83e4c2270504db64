// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// STATUS LINE
// =============================================================================

// StatusLine renders the two-row session summary at the bottom of the
// input box: agent badge, model, reasoning level, and token counts on the
// first row, the context-window bar on the second.
type StatusLine struct {
	theme *styles.Theme
	width int

	baseModel string
	reasoning string
}

// NewStatusLine creates a status line.
func NewStatusLine(theme *styles.Theme) *StatusLine {
	return &StatusLine{theme: theme, width: 80, reasoning: "off"}
}

// SetWidth updates the row width used for bar sizing.
func (s *StatusLine) SetWidth(width int) {
	s.width = width
}

// SetBaseModel records the configured model shown when no override is set.
func (s *StatusLine) SetBaseModel(model string) {
	s.baseModel = model
}

// SetReasoning records the local reasoning-effort setting.
func (s *StatusLine) SetReasoning(effort string) {
	s.reasoning = effort
}

// Render produces the two status rows.
func (s *StatusLine) Render(state *protocol.State) []string {
	sep := s.theme.ShortcutDesc.Render("|")

	model := state.ModelOverride
	if model == "" {
		model = s.baseModel
	}
	agent := strings.ToUpper(state.Agent)
	if agent == "" {
		agent = "BUILD"
	}
	badge := s.theme.AgentBuild
	if state.Agent == "plan" {
		badge = s.theme.AgentPlan
	}

	line1 := badge.Render(agent) + sep + s.theme.ModelLabel.Render(model)
	if s.reasoning != "" && s.reasoning != "off" {
		line1 += sep + s.theme.ReasoningBadge.Render("Thinking "+strings.ToUpper(s.reasoning))
	}
	line1 += sep + s.theme.TokenLabel.Render(util.FormatTokenPair(state.Tokens.Input, state.Tokens.Output))

	return []string{line1, s.contextRow(state)}
}

// contextRow renders the context-usage bar, colored by pressure.
func (s *StatusLine) contextRow(state *protocol.State) string {
	barWidth := s.width / 5
	if barWidth < 8 {
		barWidth = 8
	}
	if barWidth > 20 {
		barWidth = 20
	}
	pct := int(state.ContextUsage.Percent)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	filled := min(pct*barWidth/100, barWidth)

	fill := s.theme.ContextOK
	switch {
	case pct > 90:
		fill = s.theme.ContextCrit
	case pct > 70:
		fill = s.theme.ContextWarn
	}
	empty := lipgloss.NewStyle().Foreground(styles.OverlayDim)

	row := s.theme.ShortcutDesc.Render("Context ") +
		fill.Render(strings.Repeat("=", filled)) +
		empty.Render(strings.Repeat(".", barWidth-filled)) +
		s.theme.ShortcutDesc.Render(" "+util.FormatPercent(float64(pct)))
	if state.ContextStatus != "" {
		row += s.theme.ShortcutDesc.Render(" " + state.ContextStatus)
	}
	return row
}
