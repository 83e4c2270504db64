// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/components"
)

// planApprovalMessage is the fixed text sent when the user accepts a plan.
const planApprovalMessage = "Proceed with the plan."

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and re-syncs the composed frame afterwards.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next = next.sync()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case NotificationMsg:
		return m.handleNotification(msg)
	case WorkerClosedMsg:
		return m.handleWorkerClosed(msg)

	case FrameTickMsg:
		return m.handleFrameTick()
	case TodoTickMsg:
		return m.handleTodoTick()
	case QuestionTickMsg:
		return m.handleQuestionTick()

	case commandMsg:
		return m.handleCommand(msg)

	case SendDoneMsg:
		if msg.Err != nil {
			m.toast.ShowError("Send failed: " + msg.Err.Error())
		}
		return m, nil
	case OpDoneMsg:
		return m.handleOpDone(msg)
	case ModelsMsg:
		return m.handleModels(msg)
	case SessionsMsg:
		return m.handleSessions(msg)
	case SessionActionMsg:
		return m.handleSessionAction(msg)
	case TodosMsg:
		return m.handleTodos(msg)
	case QuestionMsg:
		return m.handleQuestion(msg)
	case AnswerDoneMsg:
		if msg.Err != nil {
			m.toast.ShowError("Answer failed: " + msg.Err.Error())
		}
		return m, nil
	case ReindexDoneMsg:
		if msg.Err != nil {
			m.toast.ShowError("Index rebuild failed: " + msg.Err.Error())
		}
		return m, nil

	case ClipboardMsg:
		return m.handleClipboard(msg)
	case ImageStagedMsg:
		return m.handleImageStaged(msg)
	}
	return m, nil
}

// =============================================================================
// RESIZE & FRAME STATE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.inputBox.SetWidth(msg.Width)
	m.statusBar.SetWidth(m.inputBox.ContentWidth())
	m.todoStrip.SetWidth(m.inputBox.ContentWidth())
	return m, nil
}

// inputPlaceholder is shown while the buffer is empty.
const inputPlaceholder = "Type a message. / for commands, @ for files."

// sync recomposes the bottom box, sizes the viewport to the leftover rows,
// and refreshes the transcript content through the render cache.
func (m Model) sync() Model {
	if !m.ready {
		return m
	}
	st := m.store.State()

	var todoRows []string
	if m.showTodos && (len(m.todos) > 0 || m.todosExpanded) {
		todoRows = m.todoStrip.Render(m.todos, m.todoCounts, m.todosExpanded)
	}
	overlayRows := m.overlayRows()
	display, cursor := m.buf.Display()
	statusRows := m.statusBar.Render(st)

	layout := components.PlanBox(m.height, len(todoRows), len(overlayRows),
		m.inputBox.InputRows(display), len(statusRows))
	inputRows := m.inputBox.RenderInput(display, cursor, layout.Input,
		m.mode == ModeNormal, inputPlaceholder)
	m.boxView = m.inputBox.Compose(layout, todoRows, overlayRows, inputRows, statusRows)

	m.toastShown = m.toast.Active()
	h := m.height - layout.Height
	if m.toastShown {
		h--
	}
	m.timelineHeight = max(h, 0)

	m.viewport.Width = m.width
	m.viewport.Height = m.timelineHeight

	rev := m.store.Revision()
	stale := !m.cacheValid || m.cacheRev != rev ||
		m.cacheWidth != m.width || m.cacheCompact != m.compact
	if st.IsLoading || stale {
		lines := m.timeline.Render(st, components.RenderOptions{
			Width:        m.width,
			Compact:      m.compact,
			SpinnerFrame: m.spin.Frame(),
		})
		atBottom := m.viewport.AtBottom()
		m.viewport.SetContent(strings.Join(lines, "\n"))
		if atBottom {
			m.viewport.GotoBottom()
		}

		// A streaming frame includes the spinner row, so it never counts
		// as a cache fill.
		m.cacheValid = !st.IsLoading
		m.cacheRev = rev
		m.cacheWidth = m.width
		m.cacheCompact = m.compact
	}
	return m
}

// =============================================================================
// WORKER NOTIFICATIONS
// =============================================================================

func (m Model) handleNotification(msg NotificationMsg) (Model, tea.Cmd) {
	res := m.store.Apply(msg.Notification)
	cmds := []tea.Cmd{listenCmd(m.client)}

	if res.Notice != "" {
		if msg.Notification.Method == protocol.NotifyError {
			m.toast.ShowError(res.Notice)
		} else {
			m.toast.ShowInfo(res.Notice)
		}
	}

	if res.PlanExitForced && m.mode != ModePlanActions {
		m.resetOverlay()
		m.mode = ModePlanActions
	}

	if res.SessionChanged {
		m.activeQuestionID = ""
		if m.mode == ModeSessionHistory && !m.history.renaming {
			m.history.stale = true
			cmds = append(cmds, listSessionsCmd(m.client, m.projectDir))
		}
	}

	// The worker may override reasoning effort server-side; mirror it.
	if st := m.store.State(); st.ReasoningEffort != "" && st.ReasoningEffort != m.reasoning {
		m.reasoning = st.ReasoningEffort
		m.statusBar.SetReasoning(st.ReasoningEffort)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleWorkerClosed(msg WorkerClosedMsg) (Model, tea.Cmd) {
	m.exitErr = msg.Err
	if m.exitErr == nil {
		m.exitErr = errors.New("worker exited")
	}
	return m, tea.Quit
}

// =============================================================================
// TICKS
// =============================================================================

func (m Model) handleFrameTick() (Model, tea.Cmd) {
	if m.loading() {
		m.spin.Advance()
	} else {
		m.spin.Reset()
	}
	return m, frameTickCmd(m.frameInterval())
}

func (m Model) handleTodoTick() (Model, tea.Cmd) {
	cmds := []tea.Cmd{todoTickCmd(m.todoInterval())}
	if !m.todoPoll {
		m.todoPoll = true
		cmds = append(cmds, fetchTodosCmd(m.client))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleTodos(msg TodosMsg) (Model, tea.Cmd) {
	m.todoPoll = false
	if msg.Err != nil {
		// Poll errors stay quiet; the next cycle retries.
		return m, nil
	}
	m.todos = msg.List.List
	m.todoCounts = msg.List.Counts
	return m, nil
}

func (m Model) handleQuestionTick() (Model, tea.Cmd) {
	cmds := []tea.Cmd{questionTickCmd()}
	if !m.questionPoll {
		m.questionPoll = true
		cmds = append(cmds, fetchQuestionCmd(m.client))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleQuestion(msg QuestionMsg) (Model, tea.Cmd) {
	m.questionPoll = false
	if msg.Err != nil {
		return m, nil
	}

	if msg.Pending == nil {
		m.activeQuestionID = ""
		// The worker withdrew the question (turn aborted or answered
		// elsewhere); close a prompt that no longer has a subject.
		if m.mode == ModeQuestionPrompt {
			m.resetOverlay()
		}
		return m, nil
	}

	if msg.Pending.ID == m.activeQuestionID || len(msg.Pending.Questions) == 0 {
		return m, nil
	}
	// Never steal focus from another overlay; the next poll retries.
	if m.mode != ModeNormal && m.mode != ModeQuestionPrompt {
		return m, nil
	}

	m.resetOverlay()
	m.mode = ModeQuestionPrompt
	m.activeQuestionID = msg.Pending.ID
	q := msg.Pending.Questions[0]
	m.question = questionState{
		pending:  msg.Pending,
		question: q,
		checked:  make([]bool, len(q.Options)),
	}
	return m, nil
}

// =============================================================================
// CALL RESULTS
// =============================================================================

func (m Model) handleOpDone(msg OpDoneMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toast.ShowError(msg.Op + " failed: " + msg.Err.Error())
		return m, nil
	}
	if msg.Toast != "" {
		m.toast.ShowInfo(msg.Toast)
	}
	return m, nil
}

func (m Model) handleModels(msg ModelsMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toast.ShowError("Could not list models: " + msg.Err.Error())
		return m, nil
	}

	sorted := commands.SortModelsByProvider(msg.Entries)
	m.resetOverlay()
	m.mode = ModeModelPicker
	m.picker = pickerState{entries: sorted, filtered: sorted}
	return m, nil
}

func (m Model) handleSessions(msg SessionsMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toast.ShowError("Could not list sessions: " + msg.Err.Error())
		return m, nil
	}

	if m.mode == ModeSessionHistory {
		// Refresh in place, keeping the cursor near where it was.
		m.history.sessions = msg.Sessions
		m.history.stale = false
		m.history.selected = clamp(m.history.selected, 0, max(len(msg.Sessions)-1, 0))
		m.history.offset = clamp(m.history.offset, 0, m.history.selected)
		return m, nil
	}

	m.resetOverlay()
	m.mode = ModeSessionHistory
	m.history = historyState{sessions: msg.Sessions}
	return m, nil
}

func (m Model) handleSessionAction(msg SessionActionMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toast.ShowError(msg.Action + " failed: " + msg.Err.Error())
		return m, nil
	}

	switch msg.Action {
	case protocol.MethodLoadSession:
		m.toast.ShowInfo("Session loaded")
	case protocol.MethodDeleteSession:
		m.toast.ShowInfo("Session deleted")
	case protocol.MethodRenameSession:
		m.toast.ShowInfo("Session renamed")
	}

	if msg.Refresh && m.mode == ModeSessionHistory {
		return m, listSessionsCmd(m.client, m.projectDir)
	}
	return m, nil
}

// =============================================================================
// CLIPBOARD RESULTS
// =============================================================================

func (m Model) handleClipboard(msg ClipboardMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toast.ShowError("Clipboard unavailable: " + msg.Err.Error())
		return m, nil
	}
	if msg.Text == "" {
		return m, nil
	}
	m.buf.InsertPaste(msg.Text)
	return m, nil
}

func (m Model) handleImageStaged(msg ImageStagedMsg) (Model, tea.Cmd) {
	ordinal := m.buf.InsertImage()
	m.attachments = insertAttachment(m.attachments, ordinal, msg.Attachment)
	m.toast.ShowInfo("Attached " + filepath.Base(msg.Path))
	return m, nil
}

// insertAttachment splices att into atts at index i, keeping the list
// aligned with the buffer's image markers.
func insertAttachment(atts []protocol.Attachment, i int, att protocol.Attachment) []protocol.Attachment {
	i = clamp(i, 0, len(atts))
	out := make([]protocol.Attachment, 0, len(atts)+1)
	out = append(out, atts[:i]...)
	out = append(out, att)
	out = append(out, atts[i:]...)
	return out
}

// removeAttachment drops index i.
func removeAttachment(atts []protocol.Attachment, i int) []protocol.Attachment {
	if i < 0 || i >= len(atts) {
		return atts
	}
	return append(atts[:i], atts[i+1:]...)
}

// =============================================================================
// PALETTE ACTIONS
// =============================================================================

func (m Model) handleCommand(msg commandMsg) (Model, tea.Cmd) {
	switch msg.op {
	case opNewSession:
		m.resetOverlay()
		m.buf.Clear()
		m.attachments = nil
		m.todos = nil
		m.todoCounts = protocol.TodoCounts{}
		m.activeQuestionID = ""
		return m, opCmd(m.client, protocol.MethodClear, nil, "New session")

	case opClearSession:
		return m, opCmd(m.client, protocol.MethodClear, nil, "Session cleared")

	case opOpenHistory:
		return m, listSessionsCmd(m.client, m.projectDir)

	case opSetAgent:
		params := map[string]interface{}{"agent": msg.arg}
		return m, opCmd(m.client, protocol.MethodSetAgent, params, "Agent: "+msg.arg)

	case opOpenModels:
		return m, listModelsCmd(m.client)

	case opReindex:
		if m.store.ReindexInFlight() {
			m.toast.ShowInfo("Reindex already running")
			return m, nil
		}
		m.store.SetReindexInFlight(true)
		m.toast.ShowInfo("Reindexing...")
		return m, tea.Batch(reindexWorkerCmd(m.client), buildIndexCmd(m.idx))

	case opToggleTodos:
		return m.toggleTodos()

	case opRevertLast:
		params := map[string]interface{}{
			"tool": "revert",
			"args": map[string]interface{}{},
		}
		return m, opCmd(m.client, protocol.MethodExecuteTool, params, "Reverted last edit")

	case opShowAbout:
		m.resetOverlay()
		m.mode = ModeHelpAbout
		return m, nil
	}
	return m, nil
}

// toggleTodos cycles the strip: hidden configs turn on collapsed first,
// then the chord flips collapsed and expanded.
func (m Model) toggleTodos() (Model, tea.Cmd) {
	if !m.showTodos {
		m.showTodos = true
		m.todosExpanded = false
	} else {
		m.todosExpanded = !m.todosExpanded
	}

	var cmd tea.Cmd
	if !m.todoPoll {
		m.todoPoll = true
		cmd = fetchTodosCmd(m.client)
	}
	return m, cmd
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// followOffset keeps the selection inside the overlay's visible page.
func followOffset(selected, offset int) int {
	if selected < offset {
		return selected
	}
	if selected >= offset+components.OverlayPageSize {
		return selected - components.OverlayPageSize + 1
	}
	return offset
}

// sessionInfo summarizes the live session for the info toast.
func (m Model) sessionInfo() string {
	st := m.store.State()
	id := st.SessionID
	if id == "" {
		id = "unsaved"
	}
	agent := st.Agent
	if agent == "" {
		agent = "build"
	}
	return fmt.Sprintf("Session %s • %d events • agent %s", id, len(st.TimelineEvents), agent)
}

// nextReasoning cycles the effort setting.
func nextReasoning(cur string) string {
	switch cur {
	case "off", "":
		return "low"
	case "low":
		return "medium"
	case "medium":
		return "high"
	default:
		return "off"
	}
}

// abortCmd cancels the running turn.
func (m Model) abortCmd() tea.Cmd {
	return opCmd(m.client, protocol.MethodAbort, nil, "")
}
