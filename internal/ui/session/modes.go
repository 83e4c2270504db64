// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/components"
)

// =============================================================================
// COMMAND PALETTE
// =============================================================================

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := &m.palette

	switch msg.Type {
	case tea.KeyEsc:
		m.resetOverlay()
		return m, nil

	case tea.KeyEnter:
		if len(p.filtered) == 0 {
			m.toast.ShowError("Unknown command: /" + p.query)
			m.resetOverlay()
			return m, nil
		}
		chosen := p.filtered[p.selected]
		m.resetOverlay()
		return m, chosen.Handler(m.cmdCtx, nil)

	case tea.KeyUp:
		p.selected = clamp(p.selected-1, 0, max(len(p.filtered)-1, 0))
		p.offset = followOffset(p.selected, p.offset)
		return m, nil
	case tea.KeyDown:
		p.selected = clamp(p.selected+1, 0, max(len(p.filtered)-1, 0))
		p.offset = followOffset(p.selected, p.offset)
		return m, nil

	case tea.KeyBackspace:
		if p.query == "" {
			m.resetOverlay()
			return m, nil
		}
		p.query = trimLastRune(p.query)
		m.refilterPalette()
		return m, nil

	case tea.KeySpace:
		p.query += " "
		m.refilterPalette()
		return m, nil

	case tea.KeyRunes:
		p.query += string(msg.Runes)
		m.refilterPalette()
		return m, nil
	}
	return m, nil
}

// refilterPalette recomputes the match list and rewinds the selection, as
// every query edit does.
func (m *Model) refilterPalette() {
	m.palette.filtered = commands.Filter(m.registry.All(), m.palette.query)
	m.palette.selected = 0
	m.palette.offset = 0
}

// =============================================================================
// FILE MENTION
// =============================================================================

func (m Model) handleMentionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := &m.mention

	switch msg.Type {
	case tea.KeyEsc:
		m.resetOverlay()
		return m, nil

	case tea.KeyEnter:
		if len(f.results) > 0 {
			m.buf.InsertText("@" + f.results[f.selected] + " ")
		}
		m.resetOverlay()
		return m, nil

	case tea.KeyUp:
		f.selected = clamp(f.selected-1, 0, max(len(f.results)-1, 0))
		return m, nil
	case tea.KeyDown:
		f.selected = clamp(f.selected+1, 0, max(len(f.results)-1, 0))
		return m, nil

	case tea.KeyBackspace:
		if f.query == "" {
			m.resetOverlay()
			return m, nil
		}
		f.query = trimLastRune(f.query)
		f.results = m.searchFiles(f.query)
		f.selected = 0
		return m, nil

	case tea.KeyRunes:
		f.query += string(msg.Runes)
		f.results = m.searchFiles(f.query)
		f.selected = 0
		return m, nil
	}
	return m, nil
}

// =============================================================================
// MODEL PICKER
// =============================================================================

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := &m.picker

	if p.customMode {
		switch msg.Type {
		case tea.KeyEsc:
			p.customMode = false
			return m, nil

		case tea.KeyEnter:
			id := strings.TrimSpace(p.customInput)
			if id == "" {
				return m, nil
			}
			m.resetOverlay()
			params := map[string]interface{}{"model": id}
			return m, opCmd(m.client, protocol.MethodSetModel, params, "Model: "+id)

		case tea.KeyBackspace:
			if p.customInput == "" {
				p.customMode = false
				return m, nil
			}
			p.customInput = trimLastRune(p.customInput)
			return m, nil

		case tea.KeySpace:
			p.customInput += " "
			return m, nil
		case tea.KeyRunes:
			p.customInput += string(msg.Runes)
			return m, nil
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.resetOverlay()
		return m, nil

	case tea.KeyEnter:
		// The row after the last entry is the free-form escape hatch.
		if p.selected >= len(p.filtered) {
			p.customMode = true
			p.customInput = ""
			return m, nil
		}
		entry := p.filtered[p.selected]
		m.resetOverlay()
		params := map[string]interface{}{"model": entry.ID}
		return m, opCmd(m.client, protocol.MethodSetModel, params, "Model: "+entry.Name)

	case tea.KeyUp:
		p.selected = clamp(p.selected-1, 0, len(p.filtered))
		p.offset = pickerOffset(p.selected, p.offset, len(p.filtered))
		return m, nil
	case tea.KeyDown:
		p.selected = clamp(p.selected+1, 0, len(p.filtered))
		p.offset = pickerOffset(p.selected, p.offset, len(p.filtered))
		return m, nil

	case tea.KeyBackspace:
		if p.query != "" {
			p.query = trimLastRune(p.query)
			m.refilterPicker()
		}
		return m, nil

	case tea.KeySpace:
		p.query += " "
		m.refilterPicker()
		return m, nil
	case tea.KeyRunes:
		p.query += string(msg.Runes)
		m.refilterPicker()
		return m, nil
	}
	return m, nil
}

func (m *Model) refilterPicker() {
	m.picker.filtered = commands.FilterModels(m.picker.entries, m.picker.query)
	m.picker.selected = 0
	m.picker.offset = 0
}

// pickerOffset follows the selection through the entry list; landing on the
// custom row pins the window to the last page.
func pickerOffset(selected, offset, entries int) int {
	if selected >= entries {
		return max(entries-components.OverlayPageSize, 0)
	}
	return followOffset(selected, offset)
}

// =============================================================================
// SESSION HISTORY
// =============================================================================

func (m Model) handleHistoryKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	h := &m.history

	if h.renaming {
		switch msg.Type {
		case tea.KeyEsc:
			h.renaming = false
			m.renameInput.Blur()
			return m, nil

		case tea.KeyEnter:
			title := strings.TrimSpace(m.renameInput.Value())
			h.renaming = false
			m.renameInput.Blur()
			if title == "" || h.selected >= len(h.sessions) {
				return m, nil
			}
			id := h.sessions[h.selected].ID
			return m, sessionActionCmd(m.client, protocol.MethodRenameSession, id, title)
		}

		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.resetOverlay()
		return m, nil

	case tea.KeyEnter:
		if len(h.sessions) == 0 {
			m.resetOverlay()
			return m, nil
		}
		id := h.sessions[h.selected].ID
		m.resetOverlay()
		return m, sessionActionCmd(m.client, protocol.MethodLoadSession, id, "")

	case tea.KeyUp:
		h.selected = clamp(h.selected-1, 0, max(len(h.sessions)-1, 0))
		h.offset = followOffset(h.selected, h.offset)
		return m, nil
	case tea.KeyDown:
		h.selected = clamp(h.selected+1, 0, max(len(h.sessions)-1, 0))
		h.offset = followOffset(h.selected, h.offset)
		return m, nil
	}

	switch msg.String() {
	case "r":
		if len(h.sessions) > 0 {
			h.renaming = true
			m.renameInput.SetValue(h.sessions[h.selected].Title)
			m.renameInput.CursorEnd()
			m.renameInput.Focus()
		}
		return m, nil

	case "d":
		if len(h.sessions) > 0 {
			id := h.sessions[h.selected].ID
			return m, sessionActionCmd(m.client, protocol.MethodDeleteSession, id, "")
		}
		return m, nil
	}
	return m, nil
}

// =============================================================================
// QUESTION PROMPT
// =============================================================================

func (m Model) handleQuestionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	q := &m.question

	if q.customActive {
		switch msg.Type {
		case tea.KeyEsc:
			q.customActive = false
			return m, nil

		case tea.KeyEnter:
			answer := strings.TrimSpace(q.customInput)
			if answer == "" {
				return m, nil
			}
			return m.submitAnswers([]string{answer})

		case tea.KeyBackspace:
			if q.customInput == "" {
				q.customActive = false
				return m, nil
			}
			q.customInput = trimLastRune(q.customInput)
			return m, nil

		case tea.KeySpace:
			q.customInput += " "
			return m, nil
		case tea.KeyRunes:
			q.customInput += string(msg.Runes)
			return m, nil
		}
		return m, nil
	}

	maxFocus := len(q.question.Options) - 1
	if q.question.Custom {
		maxFocus = len(q.question.Options)
	}

	switch msg.Type {
	case tea.KeyEsc:
		id := m.activeQuestionID
		m.resetOverlay()
		return m, skipQuestionCmd(m.client, id)

	case tea.KeyUp:
		q.focused = clamp(q.focused-1, 0, max(maxFocus, 0))
		return m, nil
	case tea.KeyDown:
		q.focused = clamp(q.focused+1, 0, max(maxFocus, 0))
		return m, nil

	case tea.KeySpace:
		if q.question.Multiple && q.focused < len(q.checked) {
			q.checked[q.focused] = !q.checked[q.focused]
		}
		return m, nil

	case tea.KeyEnter:
		return m.commitAnswer()

	case tea.KeyRunes:
		// Digits select an option directly.
		if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
			i := int(msg.Runes[0] - '1')
			if i < len(q.question.Options) {
				if q.question.Multiple {
					q.checked[i] = !q.checked[i]
					q.focused = i
					return m, nil
				}
				return m.submitAnswers([]string{q.question.Options[i]})
			}
		}
		return m, nil
	}
	return m, nil
}

// commitAnswer resolves Enter on the option list.
func (m Model) commitAnswer() (Model, tea.Cmd) {
	q := &m.question

	if q.question.Custom && q.focused == len(q.question.Options) {
		q.customActive = true
		q.customInput = ""
		return m, nil
	}
	if len(q.question.Options) == 0 {
		return m, nil
	}

	if q.question.Multiple {
		var answers []string
		for i, on := range q.checked {
			if on {
				answers = append(answers, q.question.Options[i])
			}
		}
		if len(answers) == 0 {
			answers = []string{q.question.Options[q.focused]}
		}
		return m.submitAnswers(answers)
	}

	return m.submitAnswers([]string{q.question.Options[q.focused]})
}

// submitAnswers sends the chosen answers and closes the prompt. The
// question id stays recorded so the poll cannot reopen the same set.
func (m Model) submitAnswers(answers []string) (Model, tea.Cmd) {
	id := m.activeQuestionID
	m.resetOverlay()
	return m, answerQuestionCmd(m.client, id, answers)
}

// =============================================================================
// PLAN ACTIONS
// =============================================================================

func (m Model) handlePlanKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.resetOverlay()
		params := sendParams{
			Content:       planApprovalMessage,
			AgentOverride: "build",
			Options:       map[string]bool{"buildSwitch": true},
		}
		return m, sendMessageCmd(m.client, params)

	case tea.KeyEsc:
		m.resetOverlay()
		return m, opCmd(m.client, protocol.MethodResetPlanExit, nil, "")
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// trimLastRune removes the final rune of s.
func trimLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
