// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/history", true},
		{"/models gpt", true},
		{"  /new", true},
		{"hello", false},
		{"hello /new", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/history", "/history"},
		{"/models gpt-5", "/models"},
		{"  /new  ", "/new"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPaletteQuery(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"/", "", true},
		{"/hi", "hi", true},
		{"/history", "history", true},
		{"/models ", "", false}, // Space after command means complete
		{"/models gpt", "", false},
		{"hello", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := PaletteQuery(tc.input)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("PaletteQuery(%q) = (%q, %v), want (%q, %v)",
				tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Should have built-in commands
	if len(r.commands) == 0 {
		t.Error("Registry should have built-in commands")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	cmd := &Command{
		Name:        "/test",
		Aliases:     []string{"/t"},
		Description: "Test command",
	}

	r.Register(cmd)

	if r.Get("/test") == nil {
		t.Error("Should get command by name")
	}

	if r.Get("/t") == nil {
		t.Error("Should get command by alias")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	// Built-in commands
	if r.Get("/history") == nil {
		t.Error("/history command should exist")
	}

	if r.Get("/n") == nil {
		t.Error("/n alias should resolve to /new")
	}

	if r.Get("/m") == nil {
		t.Error("/m alias should resolve to /models")
	}

	if r.Get("/nonexistent") != nil {
		t.Error("/nonexistent should return nil")
	}
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry()
	all := r.All()

	want := []string{
		"/new", "/clear", "/history", "/plan", "/build",
		"/models", "/reindex", "/todos", "/revert", "/about",
	}

	if len(all) != len(want) {
		t.Fatalf("All() returned %d commands, want %d", len(all), len(want))
	}

	// Registration order is the palette display order
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("All()[%d] = %s, want %s", i, all[i].Name, name)
		}
	}
}

func TestRegistry_AllSkipsHidden(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "/secret", Hidden: true})

	for _, cmd := range r.All() {
		if cmd.Name == "/secret" {
			t.Error("hidden command should not appear in All()")
		}
	}
}

// =============================================================================
// FILTER TESTS
// =============================================================================

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	r := NewRegistry()
	all := r.All()

	got := Filter(all, "")
	if len(got) != len(all) {
		t.Errorf("Filter(all, \"\") returned %d commands, want %d", len(got), len(all))
	}
}

func TestFilter_MatchesNameSubstring(t *testing.T) {
	r := NewRegistry()

	got := Filter(r.All(), "dex")
	if len(got) != 1 || got[0].Name != "/reindex" {
		t.Errorf("Filter(all, \"dex\") = %v, want just /reindex", names(got))
	}
}

func TestFilter_MatchesDescription(t *testing.T) {
	r := NewRegistry()

	// "saved" appears only in the /history description
	got := Filter(r.All(), "saved")
	if len(got) != 1 || got[0].Name != "/history" {
		t.Errorf("Filter(all, \"saved\") = %v, want just /history", names(got))
	}
}

func TestFilter_MatchesShortcut(t *testing.T) {
	r := NewRegistry()

	got := Filter(r.All(), "ctrl+t")
	if len(got) != 1 || got[0].Name != "/todos" {
		t.Errorf("Filter(all, \"ctrl+t\") = %v, want just /todos", names(got))
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	r := NewRegistry()

	got := Filter(r.All(), "HIST")
	if len(got) != 1 || got[0].Name != "/history" {
		t.Errorf("Filter(all, \"HIST\") = %v, want just /history", names(got))
	}
}

func TestFilter_HistoryMatchesModelsDoesNot(t *testing.T) {
	r := NewRegistry()

	got := Filter(r.All(), "h")

	var hasHistory, hasModels bool
	for _, cmd := range got {
		switch cmd.Name {
		case "/history":
			hasHistory = true
		case "/models":
			hasModels = true
		}
	}

	if !hasHistory {
		t.Error("query \"h\" should match /history by name")
	}
	if hasModels {
		t.Error("query \"h\" should not match /models: no field contains an h")
	}
}

func TestFilter_NoMatches(t *testing.T) {
	r := NewRegistry()

	got := Filter(r.All(), "zzz")
	if len(got) != 0 {
		t.Errorf("Filter(all, \"zzz\") = %v, want empty", names(got))
	}
}

func names(cmds []*Command) []string {
	out := make([]string, len(cmds))
	for i, cmd := range cmds {
		out[i] = cmd.Name
	}
	return out
}

// =============================================================================
// MODEL FILTER & SORT TESTS
// =============================================================================

func pickerEntries() []protocol.ModelEntry {
	return []protocol.ModelEntry{
		{ID: "claude-sonnet", Name: "Claude Sonnet", Group: "anthropic", Provider: "anthropic"},
		{ID: "gpt-5", Name: "GPT-5", Group: "openai", Provider: "openai"},
		{ID: "claude-haiku", Name: "Claude Haiku", Group: "anthropic", Provider: "anthropic"},
		{ID: "gemini-pro", Name: "Gemini Pro", Group: "google", Provider: "google"},
		{ID: "gpt-5-mini", Name: "GPT-5 Mini", Group: "openai", Provider: "openai"},
	}
}

func TestFilterModels_EmptyQueryReturnsAll(t *testing.T) {
	entries := pickerEntries()

	got := FilterModels(entries, "")
	if len(got) != len(entries) {
		t.Errorf("FilterModels(all, \"\") returned %d entries, want %d", len(got), len(entries))
	}

	got = FilterModels(entries, "   ")
	if len(got) != len(entries) {
		t.Errorf("FilterModels(all, \"   \") returned %d entries, want %d", len(got), len(entries))
	}
}

func TestFilterModels_MatchesFields(t *testing.T) {
	entries := pickerEntries()

	tests := []struct {
		query string
		want  int
	}{
		{"haiku", 1},     // name
		{"gpt-5", 2},     // id: gpt-5 and gpt-5-mini
		{"anthropic", 2}, // group/provider
		{"GEMINI", 1},    // case-insensitive
		{"zzz", 0},
	}

	for _, tc := range tests {
		got := FilterModels(entries, tc.query)
		if len(got) != tc.want {
			t.Errorf("FilterModels(all, %q) returned %d entries, want %d", tc.query, len(got), tc.want)
		}
	}
}

func TestSortModelsByProvider_OpenAIFirst(t *testing.T) {
	got := SortModelsByProvider(pickerEntries())

	want := []string{
		"gpt-5",         // openai group leads, name-sorted within
		"gpt-5-mini",    // "GPT-5 Mini" sorts after "GPT-5"
		"claude-haiku",  // anthropic before google
		"claude-sonnet", // name-sorted within anthropic
		"gemini-pro",
	}

	if len(got) != len(want) {
		t.Fatalf("SortModelsByProvider returned %d entries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("sorted[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSortModelsByProvider_DoesNotMutateInput(t *testing.T) {
	entries := pickerEntries()
	firstBefore := entries[0].ID

	SortModelsByProvider(entries)

	if entries[0].ID != firstBefore {
		t.Errorf("input slice was reordered: entries[0] = %s, want %s", entries[0].ID, firstBefore)
	}
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

func TestExecute_DispatchesToContext(t *testing.T) {
	r := NewRegistry()

	var gotAgent string
	marker := func() tea.Msg { return nil }
	ctx := &Context{
		SetAgent: func(agent string) tea.Cmd {
			gotAgent = agent
			return marker
		},
	}

	cmd, ok := r.Execute(ctx, "/plan")
	if !ok {
		t.Fatal("Execute(/plan) should find the command")
	}
	if cmd == nil {
		t.Fatal("Execute(/plan) should return the handler's tea.Cmd")
	}
	if gotAgent != "plan" {
		t.Errorf("SetAgent called with %q, want \"plan\"", gotAgent)
	}

	_, ok = r.Execute(ctx, "/build")
	if !ok {
		t.Fatal("Execute(/build) should find the command")
	}
	if gotAgent != "build" {
		t.Errorf("SetAgent called with %q, want \"build\"", gotAgent)
	}
}

func TestExecute_AliasResolves(t *testing.T) {
	r := NewRegistry()

	called := false
	ctx := &Context{
		NewSession: func() tea.Cmd {
			called = true
			return nil
		},
	}

	_, ok := r.Execute(ctx, "/n")
	if !ok {
		t.Fatal("Execute(/n) should resolve the alias")
	}
	if !called {
		t.Error("alias execution should reach the /new handler")
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	r := NewRegistry()

	cmd, ok := r.Execute(&Context{}, "/nonexistent")
	if ok {
		t.Error("Execute should report unknown commands")
	}
	if cmd != nil {
		t.Error("Execute should return nil cmd for unknown commands")
	}
}

func TestExecute_NilCallbacksAreNoOps(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{} // nothing wired

	for _, builtin := range r.All() {
		cmd, ok := r.Execute(ctx, builtin.Name)
		if !ok {
			t.Errorf("Execute(%s) should find the command", builtin.Name)
		}
		if cmd != nil {
			t.Errorf("Execute(%s) with empty context should be a no-op", builtin.Name)
		}
	}
}

func TestExecute_TrimsAndIgnoresArgs(t *testing.T) {
	r := NewRegistry()

	called := false
	ctx := &Context{
		OpenModels: func() tea.Cmd {
			called = true
			return nil
		},
	}

	_, ok := r.Execute(ctx, "  /models gpt-5  ")
	if !ok {
		t.Fatal("Execute should tolerate surrounding whitespace and args")
	}
	if !called {
		t.Error("handler should run despite trailing args")
	}
}
