// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"testing"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

func notify(method, params string) protocol.Notification {
	return protocol.Notification{Method: method, Params: json.RawMessage(params)}
}

func seedTimeline(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		res := s.Apply(notify("timeline_event", `{"id":"`+id+`","kind":"assistant","content":"c-`+id+`"}`))
		if !res.Handled {
			t.Fatalf("seed event %s not handled", id)
		}
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	s := NewStore()
	seedTimeline(t, s, "a", "b", "c")

	before := s.Revision()
	res := s.Apply(notify("timeline_event", `{"id":"b","kind":"assistant","content":"updated","streaming":true}`))
	if !res.Handled {
		t.Fatal("upsert not handled")
	}

	events := s.Events()
	if len(events) != 3 {
		t.Fatalf("count = %d, want 3", len(events))
	}
	if events[1].ID != "b" || events[1].Content != "updated" || !events[1].Streaming {
		t.Errorf("middle entry = %+v", events[1])
	}
	if events[0].Content != "c-a" || events[2].Content != "c-c" {
		t.Errorf("neighbors changed: %q / %q", events[0].Content, events[2].Content)
	}
	if s.Revision() != before+1 {
		t.Errorf("revision = %d, want %d", s.Revision(), before+1)
	}

	// Unknown ids append.
	s.Apply(notify("timeline_event", `{"id":"d","kind":"user","content":"new"}`))
	if got := len(s.Events()); got != 4 {
		t.Errorf("count after append = %d, want 4", got)
	}
	if s.Events()[3].ID != "d" {
		t.Errorf("appended at wrong position: %+v", s.Events()[3])
	}
}

func TestFullStateReplace(t *testing.T) {
	s := NewStore()
	seedTimeline(t, s, "old1", "old2")

	res := s.Apply(notify("state", `{
		"timelineEvents":[{"id":"n1","kind":"user","content":"hi"}],
		"isLoading":true,
		"tokens":{"input":5,"output":9},
		"contextUsage":{"used":100,"limit":1000,"percent":10},
		"agent":"build"
	}`))
	if !res.Handled {
		t.Fatal("state not handled")
	}

	if got := len(s.Events()); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if s.Events()[0].ID != "n1" {
		t.Errorf("timeline not replaced: %+v", s.Events()[0])
	}
	if !s.State().IsLoading || s.State().Agent != "build" {
		t.Errorf("state fields not replaced: %+v", s.State())
	}

	// The rebuilt index must route upserts to the new timeline.
	s.Apply(notify("timeline_event", `{"id":"n1","kind":"user","content":"edited"}`))
	if len(s.Events()) != 1 || s.Events()[0].Content != "edited" {
		t.Errorf("upsert after replace: %+v", s.Events())
	}
}

func TestTokensUpdateMergesOnlyPresent(t *testing.T) {
	s := NewStore()
	s.Apply(notify("state", `{
		"timelineEvents":[],
		"tokens":{"input":10,"output":20},
		"contextUsage":{"used":500,"limit":1000,"percent":50},
		"agent":"build"
	}`))

	s.Apply(notify("tokens_update", `{"tokens":{"input":99,"output":1}}`))
	if s.State().Tokens.Input != 99 {
		t.Errorf("tokens not merged: %+v", s.State().Tokens)
	}
	if s.State().ContextUsage.Used != 500 {
		t.Errorf("absent contextUsage was touched: %+v", s.State().ContextUsage)
	}

	s.Apply(notify("tokens_update", `{"contextUsage":{"used":900,"limit":1000,"percent":90}}`))
	if s.State().ContextUsage.Percent != 90 {
		t.Errorf("contextUsage not merged: %+v", s.State().ContextUsage)
	}
	if s.State().Tokens.Input != 99 {
		t.Errorf("absent tokens were touched: %+v", s.State().Tokens)
	}

	s.Apply(notify("tokens_update", `{"sessionTokens":{"input":1000,"output":2000}}`))
	if s.State().SessionTokens == nil || s.State().SessionTokens.Output != 2000 {
		t.Errorf("sessionTokens not merged: %+v", s.State().SessionTokens)
	}
}

func TestContextStatusReplaced(t *testing.T) {
	s := NewStore()
	res := s.Apply(notify("context_status", `{"status":"compacting"}`))
	if !res.Handled || s.State().ContextStatus != "compacting" {
		t.Errorf("status = %q, handled = %v", s.State().ContextStatus, res.Handled)
	}
}

func TestPlanExitForcedOnlyForPlanAgent(t *testing.T) {
	tests := []struct {
		name   string
		agent  string
		params string
		want   bool
	}{
		{"plan agent bare true", "plan", `true`, true},
		{"plan agent object", "plan", `{"proposed":true}`, true},
		{"build agent", "build", `true`, false},
		{"plan agent false", "plan", `false`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Apply(notify("state", `{"timelineEvents":[],"tokens":{"input":0,"output":0},"contextUsage":{"used":0,"limit":0,"percent":0},"agent":"`+tt.agent+`"}`))

			res := s.Apply(notify("plan_exit_proposed", tt.params))
			if !res.Handled {
				t.Fatal("not handled")
			}
			if res.PlanExitForced != tt.want {
				t.Errorf("forced = %v, want %v", res.PlanExitForced, tt.want)
			}
		})
	}
}

func TestSessionChangedSignalsRefetch(t *testing.T) {
	s := NewStore()
	res := s.Apply(notify("session_changed", `{"sessionId":"sess-42"}`))
	if !res.Handled || !res.SessionChanged {
		t.Errorf("result = %+v", res)
	}
	if s.State().SessionID != "sess-42" {
		t.Errorf("sessionId = %q", s.State().SessionID)
	}
}

func TestErrorNotice(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   string
	}{
		{"bare string", `"model unavailable"`, "model unavailable"},
		{"object", `{"message":"rate limited"}`, "rate limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			res := s.Apply(notify("error", tt.params))
			if !res.Handled || res.Notice != tt.want {
				t.Errorf("result = %+v, want notice %q", res, tt.want)
			}
		})
	}
}

func TestUnknownAndMalformedIgnored(t *testing.T) {
	s := NewStore()
	seedTimeline(t, s, "a")
	s.MarkClean()
	before := s.Revision()

	tests := []struct {
		name   string
		method string
		params string
	}{
		{"unknown method", "totally_new_thing", `{"x":1}`},
		{"malformed state", "state", `{broken`},
		{"malformed event", "timeline_event", `[1,2,3]`},
		{"event without id", "timeline_event", `{"kind":"status","content":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Apply(notify(tt.method, tt.params))
			if res.Handled {
				t.Errorf("handled = true")
			}
			if s.IsDirty() {
				t.Errorf("dirty flag set")
			}
			if s.Revision() != before {
				t.Errorf("revision moved to %d", s.Revision())
			}
			if len(s.Events()) != 1 {
				t.Errorf("timeline changed: %d events", len(s.Events()))
			}
		})
	}
}

func TestReindexCompletionNotice(t *testing.T) {
	s := NewStore()
	s.SetReindexInFlight(true)

	// An unrelated tool finishing doesn't clear the flag.
	res := s.Apply(notify("timeline_event", `{"id":"t1","kind":"tool_result","toolName":"bash","content":"done"}`))
	if res.Notice != "" || !s.ReindexInFlight() {
		t.Errorf("unrelated tool cleared reindex: notice=%q inflight=%v", res.Notice, s.ReindexInFlight())
	}

	res = s.Apply(notify("timeline_event", `{"id":"t2","kind":"tool_result","toolName":"codesearch","content":"ok"}`))
	if res.Notice == "" || s.ReindexInFlight() {
		t.Errorf("codesearch result did not finish reindex: notice=%q inflight=%v", res.Notice, s.ReindexInFlight())
	}
}

func TestDirtyFlagLifecycle(t *testing.T) {
	s := NewStore()
	if s.IsDirty() {
		t.Fatal("new store is dirty")
	}
	s.Apply(notify("context_status", `{"status":"ok"}`))
	if !s.IsDirty() {
		t.Fatal("apply did not mark dirty")
	}
	s.MarkClean()
	if s.IsDirty() {
		t.Fatal("MarkClean did not clear")
	}
}
