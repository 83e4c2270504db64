// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the wire types exchanged with the loomd worker
// process. Frames are newline-delimited JSON; payload field names follow the
// worker's camelCase convention exactly.
package protocol

import "encoding/json"

// =============================================================================
// FRAMES
// =============================================================================

// Version is the protocol tag carried on every request frame.
const Version = "2.0"

// Request is a single outbound call frame. One frame per line.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// Response is an inbound reply frame. Exactly one of Result/Error is set.
type Response struct {
	ID     *uint64         `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *ResponseError  `json:"error"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// ResponseError is the error object carried on a failed call.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Notification is a server-initiated frame (no id).
type Notification struct {
	Method string
	Params json.RawMessage
}

// =============================================================================
// OUTBOUND METHODS
// =============================================================================

// The worker's remote operations. Params shapes are documented next to the
// call sites; the client treats every method as an opaque pass-through.
const (
	MethodInitialize         = "initialize"
	MethodSendMessage        = "send_message"
	MethodAbort              = "abort"
	MethodClear              = "clear"
	MethodSetAgent           = "set_agent"
	MethodSetModel           = "set_model"
	MethodSetProvider        = "set_provider"
	MethodSetReasoningEffort = "set_reasoning_effort"
	MethodListModels         = "list_models"
	MethodListSessions       = "list_sessions"
	MethodLoadSession        = "load_session"
	MethodDeleteSession      = "delete_session"
	MethodRenameSession      = "rename_session"
	MethodListTodos          = "list_todos"
	MethodGetPendingQuestion = "get_pending_question"
	MethodAnswerQuestion     = "answer_question"
	MethodSkipQuestion       = "skip_question"
	MethodExecuteTool        = "execute_tool"
	MethodResetPlanExit      = "reset_plan_exit"
	MethodGetState           = "get_state"
)

// =============================================================================
// INBOUND NOTIFICATION METHODS
// =============================================================================

const (
	NotifyState            = "state"
	NotifyTimelineEvent    = "timeline_event"
	NotifyTokensUpdate     = "tokens_update"
	NotifyContextStatus    = "context_status"
	NotifyPlanExitProposed = "plan_exit_proposed"
	NotifySessionChanged   = "session_changed"
	NotifyError            = "error"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// State is the worker's full session snapshot, replaced wholesale on a
// "state" notification.
type State struct {
	TimelineEvents   []TimelineEvent `json:"timelineEvents"`
	IsLoading        bool            `json:"isLoading"`
	Error            string          `json:"error,omitempty"`
	Tokens           TokenUsage      `json:"tokens"`
	SessionTokens    *TokenUsage     `json:"sessionTokens,omitempty"`
	ContextUsage     ContextUsage    `json:"contextUsage"`
	ContextStatus    string          `json:"contextStatus,omitempty"`
	SessionID        string          `json:"sessionId,omitempty"`
	PlanExitProposed bool            `json:"planExitProposed"`
	Agent            string          `json:"agent"`
	ModelOverride    string          `json:"modelOverride,omitempty"`
	ProviderOverride string          `json:"providerOverride,omitempty"`
	ReasoningEffort  string          `json:"reasoningEffortOverride,omitempty"`
}

// TokenUsage reports input/output token counts for a turn or a session.
type TokenUsage struct {
	Input   int    `json:"input"`
	Output  int    `json:"output"`
	Context int    `json:"context,omitempty"`
	Model   string `json:"model,omitempty"`
}

// ContextUsage reports how much of the model context window is consumed.
type ContextUsage struct {
	Used    int     `json:"used"`
	Limit   int     `json:"limit"`
	Percent float64 `json:"percent"`
}

// =============================================================================
// TIMELINE
// =============================================================================

// Timeline event kinds. Anything else renders as EventOther.
const (
	EventUser       = "user"
	EventAssistant  = "assistant"
	EventReasoning  = "reasoning"
	EventToolCall   = "tool_call"
	EventToolResult = "tool_result"
	EventStatus     = "status"
)

// TimelineEvent is one entry in the session transcript. Events are upserted
// by ID: a repeated ID replaces the prior entry in place, which is how the
// worker streams progressive assistant text.
type TimelineEvent struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	Kind        string       `json:"kind"`
	Content     string       `json:"content"`
	Tokens      *TokenUsage  `json:"tokens,omitempty"`
	Streaming   bool         `json:"streaming,omitempty"`
	ToolCallID  string       `json:"toolCallId,omitempty"`
	ToolName    string       `json:"toolName,omitempty"`
	Status      string       `json:"status,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment rides along with a user message: pasted text blocks and
// clipboard images. Data carries base64-encoded bytes for images.
type Attachment struct {
	Type      string `json:"type"`
	Mime      string `json:"mime,omitempty"`
	LineCount int    `json:"lineCount,omitempty"`
	Text      string `json:"text,omitempty"`
	Data      string `json:"data,omitempty"`
}

// =============================================================================
// LIST RESULTS
// =============================================================================

// ModelEntry is one row of a list_models result.
type ModelEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// SessionSummary is one row of a list_sessions result.
type SessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Current   bool   `json:"current,omitempty"`
}

// TodoItem is one entry of a list_todos result.
type TodoItem struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// TodoCounts summarizes a todo list by status.
type TodoCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// TodoList is the full list_todos result.
type TodoList struct {
	List   []TodoItem `json:"list"`
	Counts TodoCounts `json:"counts"`
}

// Question is a single question inside a pending question set.
type Question struct {
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Multiple bool     `json:"multiple,omitempty"`
	Custom   bool     `json:"custom,omitempty"`
}

// PendingQuestion is the get_pending_question result; nil result means no
// question is outstanding.
type PendingQuestion struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}
