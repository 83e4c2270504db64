// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/config"
	"github.com/jeranaias/loom-tui/internal/index"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/worker"
)

// =============================================================================
// TIMING
// =============================================================================

const (
	// frameLoading/frameIdle pace the redraw tick: fast while a turn
	// streams, slow when idle.
	frameLoading = 80 * time.Millisecond
	frameIdle    = 220 * time.Millisecond

	// todoLoading/todoIdle pace the todo poll.
	todoLoading = 750 * time.Millisecond
	todoIdle    = 3 * time.Second

	// questionInterval paces the pending-question poll.
	questionInterval = 500 * time.Millisecond

	// callTimeout bounds every worker call except send_message, which runs
	// for the length of a turn, and abort, which gets a short leash.
	callTimeout  = 15 * time.Second
	abortTimeout = 5 * time.Second

	// sessionListLimit caps the history browser's fetch.
	sessionListLimit = 20

	// maxImageBytes caps a pasted image file.
	maxImageBytes = 50 * 1024 * 1024
)

func (m Model) frameInterval() time.Duration {
	if m.loading() {
		return frameLoading
	}
	return frameIdle
}

func (m Model) todoInterval() time.Duration {
	if m.loading() {
		return todoLoading
	}
	return todoIdle
}

// =============================================================================
// PALETTE REQUESTS
// =============================================================================

// commandOp names a palette action that needs model state to run. Handlers
// emit these as messages; the update loop performs the action.
type commandOp int

const (
	opNewSession commandOp = iota
	opClearSession
	opOpenHistory
	opSetAgent
	opOpenModels
	opReindex
	opToggleTodos
	opRevertLast
	opShowAbout
)

// commandMsg is a palette action request.
type commandMsg struct {
	op  commandOp
	arg string
}

// requestCmd builds the message-emitting command palette handlers hand to
// the update loop.
func requestCmd(op commandOp, arg string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg {
			return commandMsg{op: op, arg: arg}
		}
	}
}

// =============================================================================
// TICKS & LISTENERS
// =============================================================================

// listenCmd blocks on the worker's notification channel and re-arms after
// every delivery. A closed worker surfaces as WorkerClosedMsg.
func listenCmd(client *worker.Client) tea.Cmd {
	return func() tea.Msg {
		select {
		case n, ok := <-client.Notifications():
			if !ok {
				return WorkerClosedMsg{Err: client.Err()}
			}
			return NotificationMsg{Notification: n}
		case <-client.Done():
			return WorkerClosedMsg{Err: client.Err()}
		}
	}
}

func frameTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameTickMsg{At: t}
	})
}

func todoTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return TodoTickMsg{}
	})
}

func questionTickCmd() tea.Cmd {
	return tea.Tick(questionInterval, func(time.Time) tea.Msg {
		return QuestionTickMsg{}
	})
}

// =============================================================================
// WORKER CALLS
// =============================================================================

// initializeCmd announces the client to the worker. Optional fields ride
// along only when configured.
func initializeCmd(client *worker.Client, cfg *config.Config, projectDir string) tea.Cmd {
	return func() tea.Msg {
		params := map[string]interface{}{
			"cwd": projectDir,
		}
		if cfg.Model.Default != "" {
			params["model"] = cfg.Model.Default
		}
		if cfg.Model.Provider != "" {
			params["provider"] = cfg.Model.Provider
		}
		if cfg.Model.ReasoningEffort != "" && cfg.Model.ReasoningEffort != "off" {
			params["reasoningEffort"] = cfg.Model.ReasoningEffort
		}

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		_, err := client.Call(ctx, protocol.MethodInitialize, params)
		return OpDoneMsg{Op: protocol.MethodInitialize, Err: err}
	}
}

// sendParams is the send_message payload.
type sendParams struct {
	Content       string                `json:"content"`
	Attachments   []protocol.Attachment `json:"attachments,omitempty"`
	AgentOverride string                `json:"agentOverride,omitempty"`
	Options       map[string]bool       `json:"options,omitempty"`
}

// sendMessageCmd dispatches a user turn. No timeout: the call completes
// when the turn does, and the stream stays readable throughout.
func sendMessageCmd(client *worker.Client, params sendParams) tea.Cmd {
	return func() tea.Msg {
		_, err := client.Call(context.Background(), protocol.MethodSendMessage, params)
		return SendDoneMsg{Err: err}
	}
}

// opCmd runs a fire-and-forget worker call and reports the outcome with an
// optional success toast.
func opCmd(client *worker.Client, method string, params interface{}, toast string) tea.Cmd {
	return func() tea.Msg {
		timeout := callTimeout
		if method == protocol.MethodAbort {
			timeout = abortTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_, err := client.Call(ctx, method, params)
		return OpDoneMsg{Op: method, Toast: toast, Err: err}
	}
}

// listModelsCmd fetches the model catalog for the picker.
func listModelsCmd(client *worker.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var result struct {
			Models []protocol.ModelEntry `json:"models"`
		}
		err := client.CallDecode(ctx, protocol.MethodListModels, nil, &result)
		return ModelsMsg{Entries: result.Models, Err: err}
	}
}

// listSessionsCmd fetches the saved sessions for this project.
func listSessionsCmd(client *worker.Client, projectDir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		params := map[string]interface{}{
			"projectDir": projectDir,
			"limit":      sessionListLimit,
		}
		var result struct {
			Sessions []protocol.SessionSummary `json:"sessions"`
		}
		err := client.CallDecode(ctx, protocol.MethodListSessions, params, &result)
		return SessionsMsg{Sessions: result.Sessions, Err: err}
	}
}

// sessionActionCmd runs a load/delete/rename against one saved session.
// Delete and rename refresh the open browser afterwards; load closes it.
func sessionActionCmd(client *worker.Client, method, sessionID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		params := map[string]interface{}{"sessionId": sessionID}
		if method == protocol.MethodRenameSession {
			params["title"] = title
		}

		_, err := client.Call(ctx, method, params)
		return SessionActionMsg{
			Action:  method,
			Refresh: method != protocol.MethodLoadSession,
			Err:     err,
		}
	}
}

// fetchTodosCmd polls the worker's todo list.
func fetchTodosCmd(client *worker.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var list protocol.TodoList
		err := client.CallDecode(ctx, protocol.MethodListTodos, nil, &list)
		return TodosMsg{List: list, Err: err}
	}
}

// fetchQuestionCmd polls for a pending question; a null result decodes to
// a nil Pending.
func fetchQuestionCmd(client *worker.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var pending *protocol.PendingQuestion
		err := client.CallDecode(ctx, protocol.MethodGetPendingQuestion, nil, &pending)
		return QuestionMsg{Pending: pending, Err: err}
	}
}

// answerQuestionCmd submits the chosen answers for a question set.
func answerQuestionCmd(client *worker.Client, id string, answers []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		params := map[string]interface{}{
			"id":      id,
			"answers": answers,
		}
		_, err := client.Call(ctx, protocol.MethodAnswerQuestion, params)
		return AnswerDoneMsg{Err: err}
	}
}

// skipQuestionCmd declines a question set.
func skipQuestionCmd(client *worker.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		params := map[string]interface{}{"id": id}
		_, err := client.Call(ctx, protocol.MethodSkipQuestion, params)
		return AnswerDoneMsg{Skipped: true, Err: err}
	}
}

// reindexWorkerCmd asks the worker's code search to rebuild. Completion is
// observed as a codesearch tool_result notification, not here.
func reindexWorkerCmd(client *worker.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		params := map[string]interface{}{
			"tool": "codesearch",
			"args": map[string]interface{}{"action": "reindex"},
		}
		_, err := client.Call(ctx, protocol.MethodExecuteTool, params)
		return OpDoneMsg{Op: protocol.MethodExecuteTool, Err: err}
	}
}

// =============================================================================
// LOCAL INDEX
// =============================================================================

// buildIndexCmd (re)builds the file-mention index.
func buildIndexCmd(idx *index.Index) tea.Cmd {
	return func() tea.Msg {
		if idx == nil {
			return ReindexDoneMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := idx.Build(ctx); err != nil {
			return ReindexDoneMsg{Err: err}
		}
		return ReindexDoneMsg{Entries: idx.Stats().FileCount}
	}
}

// =============================================================================
// CLIPBOARD
// =============================================================================

// imageExtensions are the file types ctrl+v will attach as images.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// pasteCmd reads the clipboard. Text that names a readable image file
// becomes a staged attachment; anything else pastes as text.
func pasteCmd() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return ClipboardMsg{Err: err}
		}

		if att, path, ok := stageImage(text); ok {
			return ImageStagedMsg{Attachment: att, Path: path}
		}
		return ClipboardMsg{Text: text}
	}
}

// stageImage turns clipboard text into an image attachment when it names an
// existing image file of a supported type within the size cap.
func stageImage(text string) (protocol.Attachment, string, bool) {
	path := strings.TrimSpace(text)
	if path == "" || strings.ContainsAny(path, "\n\r") {
		return protocol.Attachment{}, "", false
	}
	// Shells quote dragged-in paths with spaces.
	path = strings.Trim(path, `"'`)

	mime, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return protocol.Attachment{}, "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxImageBytes {
		return protocol.Attachment{}, "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return protocol.Attachment{}, "", false
	}

	att := protocol.Attachment{
		Type: "image",
		Mime: mime,
		Data: base64.StdEncoding.EncodeToString(data),
	}
	return att, path, true
}
