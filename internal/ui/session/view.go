// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the frame: transcript (or splash, or the about modal) on
// top, then the optional toast row, then the composed input box.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var parts []string
	if m.timelineHeight > 0 {
		parts = append(parts, m.topView())
	}
	if m.toastShown {
		parts = append(parts, m.toast.View(m.width))
	}
	parts = append(parts, m.boxView)
	return strings.Join(parts, "\n")
}

// topView picks what fills the transcript area this frame.
func (m Model) topView() string {
	st := m.store.State()

	if m.mode == ModeHelpAbout {
		title, lines := m.overlays.About(m.version)
		return m.overlays.Modal(title, lines, m.width, m.timelineHeight)
	}

	if len(st.TimelineEvents) == 0 && !st.IsLoading && m.mode == ModeNormal {
		m.splash.SetSize(m.width, m.timelineHeight)
		return m.splash.View()
	}

	return m.viewport.View()
}

// overlayRows renders the active overlay into the input box's overlay
// section. ModeHelpAbout renders as a modal over the transcript instead.
func (m Model) overlayRows() []string {
	switch m.mode {
	case ModeCommandPalette:
		title, lines := m.overlays.CommandPalette(
			m.palette.filtered, m.palette.query, m.palette.selected, m.palette.offset)
		return m.inputBox.OverlayBlock(title, lines)

	case ModeFileMention:
		title, lines := m.overlays.FileMention(
			m.mention.results, m.mention.query, m.mention.selected)
		return m.inputBox.OverlayBlock(title, lines)

	case ModeModelPicker:
		title, lines := m.overlays.ModelPicker(
			m.picker.filtered, m.picker.query, m.picker.selected, m.picker.offset,
			m.picker.customMode, m.picker.customInput)
		return m.inputBox.OverlayBlock(title, lines)

	case ModeSessionHistory:
		title, lines := m.overlays.SessionHistory(
			m.history.sessions, m.history.selected, m.history.offset,
			m.history.renaming, m.renameInput.Value())
		return m.inputBox.OverlayBlock(title, lines)

	case ModeQuestionPrompt:
		title, lines := m.overlays.QuestionPrompt(
			m.question.question, m.question.checked, m.question.focused,
			m.question.customActive, m.question.customInput)
		return m.inputBox.OverlayBlock(title, lines)

	case ModePlanActions:
		title, lines := m.overlays.PlanActions()
		return m.inputBox.OverlayBlock(title, lines)
	}
	return nil
}
