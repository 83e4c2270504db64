// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-side session state and folds worker
// notifications into it.
package session

import (
	"encoding/json"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// STORE
// =============================================================================

// Store owns the session snapshot the UI renders from. It is written only by
// the terminal event loop: background tasks hand their results to that loop
// as messages and never touch the store directly, so no locking is needed.
type Store struct {
	state protocol.State

	// eventIndex maps timeline event ids to their slice position so streamed
	// updates replace in place.
	eventIndex map[string]int

	revision uint64
	dirty    bool

	// reindexInFlight is set while a codesearch rebuild runs worker-side;
	// the matching tool_result clears it.
	reindexInFlight bool
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		eventIndex: make(map[string]int),
	}
}

// State returns the current snapshot for reading.
func (s *Store) State() *protocol.State {
	return &s.state
}

// Events returns the timeline in arrival order.
func (s *Store) Events() []protocol.TimelineEvent {
	return s.state.TimelineEvents
}

// Revision increments whenever the timeline changes; the render cache is
// keyed on it.
func (s *Store) Revision() uint64 {
	return s.revision
}

// MarkDirty requests a redraw on the next tick.
func (s *Store) MarkDirty() {
	s.dirty = true
}

// MarkClean is called after a frame has been drawn.
func (s *Store) MarkClean() {
	s.dirty = false
}

// IsDirty reports whether the next tick should redraw.
func (s *Store) IsDirty() bool {
	return s.dirty
}

// SetReindexInFlight marks a worker-side index rebuild as running.
func (s *Store) SetReindexInFlight(v bool) {
	s.reindexInFlight = v
}

// ReindexInFlight reports whether an index rebuild is still running.
func (s *Store) ReindexInFlight() bool {
	return s.reindexInFlight
}

// =============================================================================
// NOTIFICATION DISPATCH
// =============================================================================

// ApplyResult reports the side effects of folding one notification, for the
// UI layer to act on. Zero value means "state updated, nothing else to do".
type ApplyResult struct {
	// Handled is false for unknown methods and undecodable payloads.
	Handled bool

	// PlanExitForced is set when the worker proposed leaving plan mode and
	// the plan-approval overlay must open.
	PlanExitForced bool

	// SessionChanged is set when the active session id was replaced; a
	// visible history browser must re-fetch its list.
	SessionChanged bool

	// Notice carries a transient user-visible message (worker errors,
	// reindex completion).
	Notice string
}

// Apply folds one worker notification into the store. Unknown methods and
// malformed payloads are ignored without error.
func (s *Store) Apply(n protocol.Notification) ApplyResult {
	switch n.Method {
	case protocol.NotifyState:
		return s.applyState(n.Params)
	case protocol.NotifyTimelineEvent:
		return s.applyTimelineEvent(n.Params)
	case protocol.NotifyTokensUpdate:
		return s.applyTokensUpdate(n.Params)
	case protocol.NotifyContextStatus:
		return s.applyContextStatus(n.Params)
	case protocol.NotifyPlanExitProposed:
		return s.applyPlanExitProposed(n.Params)
	case protocol.NotifySessionChanged:
		return s.applySessionChanged(n.Params)
	case protocol.NotifyError:
		return s.applyError(n.Params)
	default:
		return ApplyResult{}
	}
}

// applyState replaces the whole snapshot.
func (s *Store) applyState(params json.RawMessage) ApplyResult {
	var st protocol.State
	if err := json.Unmarshal(params, &st); err != nil {
		return ApplyResult{}
	}

	s.state = st
	s.reindex()
	s.revision++
	s.dirty = true

	res := ApplyResult{Handled: true}
	if st.PlanExitProposed && st.Agent == "plan" {
		res.PlanExitForced = true
	}
	return res
}

// applyTimelineEvent upserts a single event by id.
func (s *Store) applyTimelineEvent(params json.RawMessage) ApplyResult {
	var ev protocol.TimelineEvent
	if err := json.Unmarshal(params, &ev); err != nil || ev.ID == "" {
		return ApplyResult{}
	}

	s.upsertEvent(ev)
	s.revision++
	s.dirty = true

	res := ApplyResult{Handled: true}
	// A finished codesearch call means the reindex the user asked for is
	// done; let them know.
	if s.reindexInFlight && ev.Kind == protocol.EventToolResult && ev.ToolName == "codesearch" {
		s.reindexInFlight = false
		res.Notice = "Reindex complete"
	}
	return res
}

// upsertEvent replaces an existing event in place or appends a new one.
// Positions of other entries never change.
func (s *Store) upsertEvent(ev protocol.TimelineEvent) {
	if i, ok := s.eventIndex[ev.ID]; ok {
		s.state.TimelineEvents[i] = ev
		return
	}
	s.eventIndex[ev.ID] = len(s.state.TimelineEvents)
	s.state.TimelineEvents = append(s.state.TimelineEvents, ev)
}

// reindex rebuilds the id lookup after a wholesale timeline replace.
func (s *Store) reindex() {
	s.eventIndex = make(map[string]int, len(s.state.TimelineEvents))
	for i, ev := range s.state.TimelineEvents {
		s.eventIndex[ev.ID] = i
	}
}

// applyTokensUpdate merges only the subfields present in the payload.
func (s *Store) applyTokensUpdate(params json.RawMessage) ApplyResult {
	var upd struct {
		Tokens        *protocol.TokenUsage   `json:"tokens"`
		SessionTokens *protocol.TokenUsage   `json:"sessionTokens"`
		ContextUsage  *protocol.ContextUsage `json:"contextUsage"`
	}
	if err := json.Unmarshal(params, &upd); err != nil {
		return ApplyResult{}
	}

	if upd.Tokens != nil {
		s.state.Tokens = *upd.Tokens
	}
	if upd.SessionTokens != nil {
		s.state.SessionTokens = upd.SessionTokens
	}
	if upd.ContextUsage != nil {
		s.state.ContextUsage = *upd.ContextUsage
	}
	s.dirty = true
	return ApplyResult{Handled: true}
}

// applyContextStatus replaces the status string.
func (s *Store) applyContextStatus(params json.RawMessage) ApplyResult {
	var upd struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(params, &upd); err != nil {
		return ApplyResult{}
	}

	s.state.ContextStatus = upd.Status
	s.dirty = true
	return ApplyResult{Handled: true}
}

// applyPlanExitProposed records the proposal and, while the plan agent is
// active, forces the approval overlay open.
func (s *Store) applyPlanExitProposed(params json.RawMessage) ApplyResult {
	proposed := true
	if len(params) > 0 {
		var flag bool
		if err := json.Unmarshal(params, &flag); err == nil {
			proposed = flag
		} else {
			var upd struct {
				Proposed bool `json:"proposed"`
			}
			if err := json.Unmarshal(params, &upd); err != nil {
				return ApplyResult{}
			}
			proposed = upd.Proposed
		}
	}

	s.state.PlanExitProposed = proposed
	s.dirty = true

	res := ApplyResult{Handled: true}
	if proposed && s.state.Agent == "plan" {
		res.PlanExitForced = true
	}
	return res
}

// applySessionChanged swaps the active session id.
func (s *Store) applySessionChanged(params json.RawMessage) ApplyResult {
	var upd struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(params, &upd); err != nil {
		return ApplyResult{}
	}

	s.state.SessionID = upd.SessionID
	s.dirty = true
	return ApplyResult{Handled: true, SessionChanged: true}
}

// applyError surfaces the worker's message as a transient notice.
func (s *Store) applyError(params json.RawMessage) ApplyResult {
	var msg string
	if err := json.Unmarshal(params, &msg); err != nil {
		var upd struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(params, &upd); err != nil {
			return ApplyResult{}
		}
		msg = upd.Message
	}
	if msg == "" {
		return ApplyResult{}
	}

	s.dirty = true
	return ApplyResult{Handled: true, Notice: msg}
}
