// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// KEY DISPATCH
// =============================================================================

// handleKey routes a keypress. ctrl+c is global; esc aborts a streaming
// turn in every mode, on top of whatever the active mode does with it;
// everything else goes to the active mode's handler.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.handleQuitChord()
	}
	m.quitArmed = false

	var abort tea.Cmd
	if msg.Type == tea.KeyEsc && m.loading() {
		m.toast.ShowInfo("Aborting...")
		abort = m.abortCmd()
	}

	next, cmd := m.dispatchKey(msg)
	if abort != nil {
		cmd = tea.Batch(abort, cmd)
	}
	return next, cmd
}

func (m Model) dispatchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeNormal:
		return m.handleNormalKey(msg)
	case ModeCommandPalette:
		return m.handlePaletteKey(msg)
	case ModeFileMention:
		return m.handleMentionKey(msg)
	case ModeModelPicker:
		return m.handlePickerKey(msg)
	case ModeSessionHistory:
		return m.handleHistoryKey(msg)
	case ModeQuestionPrompt:
		return m.handleQuestionKey(msg)
	case ModePlanActions:
		return m.handlePlanKey(msg)
	case ModeHelpAbout:
		m.resetOverlay()
		return m, nil
	}
	return m, nil
}

// handleQuitChord arms quit on the first ctrl+c and quits on the second.
// While a turn is streaming the first press also aborts it.
func (m Model) handleQuitChord() (Model, tea.Cmd) {
	if m.quitArmed {
		return m, tea.Quit
	}
	m.quitArmed = true
	if m.loading() {
		m.toast.ShowInfo("Aborting. ctrl+c again to quit.")
		return m, m.abortCmd()
	}
	m.toast.ShowInfo("ctrl+c again to quit")
	return m, nil
}

// =============================================================================
// NORMAL MODE
// =============================================================================

func (m Model) handleNormalKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.Newline):
		m.buf.InsertRune('\n')
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		// The abort-while-loading behavior lives in handleKey; with no
		// overlay open there is nothing else for esc to do.
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		return m.handleCommand(commandMsg{op: opClearSession})

	case key.Matches(msg, m.keys.NewChat):
		return m.handleCommand(commandMsg{op: opNewSession})

	case key.Matches(msg, m.keys.ClearLine):
		m.buf.Clear()
		m.attachments = nil
		return m, nil

	case key.Matches(msg, m.keys.DelWord):
		res := m.buf.DeleteWord()
		if res.RemovedImage {
			m.attachments = removeAttachment(m.attachments, res.ImageOrdinal)
		}
		return m, nil

	case key.Matches(msg, m.keys.LineHome):
		m.buf.MoveHome()
		return m, nil

	case key.Matches(msg, m.keys.LineEnd):
		m.buf.MoveEnd()
		return m, nil

	case key.Matches(msg, m.keys.Reasoning):
		return m.cycleReasoning()

	case key.Matches(msg, m.keys.Todos):
		return m.toggleTodos()

	case key.Matches(msg, m.keys.Agent):
		target := "plan"
		if m.store.State().Agent == "plan" {
			target = "build"
		}
		return m.handleCommand(commandMsg{op: opSetAgent, arg: target})

	case key.Matches(msg, m.keys.Info):
		m.toast.ShowInfo(m.sessionInfo())
		return m, nil

	case key.Matches(msg, m.keys.Paste):
		return m, pasteCmd()
	}

	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		return m.handleScrollKey(msg)

	case tea.KeyLeft:
		m.buf.MoveLeft()
		return m, nil
	case tea.KeyRight:
		m.buf.MoveRight()
		return m, nil

	case tea.KeyBackspace:
		res := m.buf.DeleteBackward()
		if res.RemovedImage {
			m.attachments = removeAttachment(m.attachments, res.ImageOrdinal)
		}
		return m, nil

	case tea.KeySpace:
		m.buf.InsertRune(' ')
		return m, nil

	case tea.KeyRunes:
		return m.handleRunes(msg.Runes)
	}
	return m, nil
}

// handleRunes inserts typed text, first checking the two overlay triggers:
// "/" with an empty buffer opens the palette, "@" opens the file picker
// unless a slash command is being typed.
func (m Model) handleRunes(runes []rune) (Model, tea.Cmd) {
	if len(runes) == 1 {
		switch runes[0] {
		case '/':
			if m.buf.IsEmpty() {
				m.mode = ModeCommandPalette
				m.palette = paletteState{
					filtered: commands.Filter(m.registry.All(), ""),
				}
				return m, nil
			}
		case '@':
			if !strings.HasPrefix(strings.TrimSpace(m.buf.Text()), "/") {
				m.mode = ModeFileMention
				m.mention = mentionState{results: m.searchFiles("")}
				return m, nil
			}
		}
	}
	for _, r := range runes {
		m.buf.InsertRune(r)
	}
	return m, nil
}

// handleScrollKey moves the transcript viewport while the input is empty;
// with text in the buffer, Home and End move the caret instead.
func (m Model) handleScrollKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.buf.IsEmpty() {
		switch msg.Type {
		case tea.KeyHome:
			m.buf.MoveHome()
		case tea.KeyEnd:
			m.buf.MoveEnd()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyUp:
		m.viewport.LineUp(1)
	case tea.KeyDown:
		m.viewport.LineDown(1)
	case tea.KeyPgUp:
		m.viewport.ViewUp()
	case tea.KeyPgDown:
		m.viewport.ViewDown()
	case tea.KeyHome:
		m.viewport.GotoTop()
	case tea.KeyEnd:
		m.viewport.GotoBottom()
	}
	return m, nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// submitInput sends the buffer: a leading slash runs a command, anything
// else (or any staged attachment) becomes a user turn.
func (m Model) submitInput() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.buf.Submit())

	if strings.HasPrefix(text, "/") {
		m.buf.Clear()
		m.attachments = nil
		cmd, ok := m.registry.Execute(m.cmdCtx, text)
		if !ok {
			name := text
			if i := strings.IndexAny(name, " \t"); i >= 0 {
				name = name[:i]
			}
			m.toast.ShowError("Unknown command: " + name)
			return m, nil
		}
		return m, cmd
	}

	if text == "" && len(m.attachments) == 0 {
		return m, nil
	}

	params := sendParams{Content: text, Attachments: m.attachments}
	m.buf.Clear()
	m.attachments = nil
	m.viewport.GotoBottom()
	return m, sendMessageCmd(m.client, params)
}

// cycleReasoning steps the effort setting and tells the worker.
func (m Model) cycleReasoning() (Model, tea.Cmd) {
	m.reasoning = nextReasoning(m.reasoning)
	m.statusBar.SetReasoning(m.reasoning)

	params := map[string]interface{}{"effort": m.reasoning}
	return m, opCmd(m.client, protocol.MethodSetReasoningEffort, params, "Reasoning: "+m.reasoning)
}

// searchFiles queries the local index for the @-picker.
func (m Model) searchFiles(query string) []string {
	if m.idx == nil {
		return nil
	}
	return m.idx.Search(query, mentionResultLimit)
}
