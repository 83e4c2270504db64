// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// WORKER MESSAGES
// =============================================================================

// NotificationMsg delivers one worker notification to the update loop. The
// listener re-arms itself after each delivery, so arrival order matches the
// wire order.
type NotificationMsg struct {
	Notification protocol.Notification
}

// WorkerClosedMsg reports that the worker stream ended. Err carries the
// transport error when the exit was not clean.
type WorkerClosedMsg struct {
	Err error
}

// SendDoneMsg reports completion of a send_message call. The visible reply
// arrives through notifications; this only surfaces the call error.
type SendDoneMsg struct {
	Err error
}

// OpDoneMsg reports completion of a fire-and-forget worker call: abort,
// clear, set_agent, set_model, and friends. Toast carries the confirmation
// to show on success.
type OpDoneMsg struct {
	Op    string
	Toast string
	Err   error
}

// ModelsMsg carries a list_models result.
type ModelsMsg struct {
	Entries []protocol.ModelEntry
	Err     error
}

// SessionsMsg carries a list_sessions result.
type SessionsMsg struct {
	Sessions []protocol.SessionSummary
	Err      error
}

// SessionActionMsg reports a load, delete, or rename outcome. Refresh asks
// the open browser to refetch its listing.
type SessionActionMsg struct {
	Action  string
	Refresh bool
	Err     error
}

// TodosMsg carries a list_todos result.
type TodosMsg struct {
	List protocol.TodoList
	Err  error
}

// QuestionMsg carries a get_pending_question result; Pending is nil when
// no question is outstanding.
type QuestionMsg struct {
	Pending *protocol.PendingQuestion
	Err     error
}

// AnswerDoneMsg reports completion of answer_question or skip_question.
type AnswerDoneMsg struct {
	Skipped bool
	Err     error
}

// ReindexDoneMsg reports completion of a local index rebuild.
type ReindexDoneMsg struct {
	Entries int
	Err     error
}

// =============================================================================
// CLIPBOARD MESSAGES
// =============================================================================

// ClipboardMsg carries clipboard text that should be pasted as text.
type ClipboardMsg struct {
	Text string
	Err  error
}

// ImageStagedMsg carries an image attachment built from a pasted file path.
type ImageStagedMsg struct {
	Attachment protocol.Attachment
	Path       string
	Err        error
}

// =============================================================================
// TICKS
// =============================================================================

// FrameTickMsg drives the spinner, toast expiry, and streaming redraw.
type FrameTickMsg struct {
	At time.Time
}

// TodoTickMsg schedules the next todo poll.
type TodoTickMsg struct{}

// QuestionTickMsg schedules the next pending-question poll.
type QuestionTickMsg struct{}
