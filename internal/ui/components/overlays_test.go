// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

func TestOverlayWindow(t *testing.T) {
	cases := []struct {
		n, offset          int
		wantStart, wantEnd int
		wantMore           bool
	}{
		{25, 0, 0, 10, true},
		{25, 20, 20, 25, false},
		{5, 9, 4, 5, false},
		{0, 0, 0, 0, false},
		{10, 0, 0, 10, false},
	}
	for _, tc := range cases {
		start, end, more := window(tc.n, tc.offset)
		if start != tc.wantStart || end != tc.wantEnd || more != tc.wantMore {
			t.Errorf("window(%d,%d) = (%d,%d,%v), want (%d,%d,%v)",
				tc.n, tc.offset, start, end, more, tc.wantStart, tc.wantEnd, tc.wantMore)
		}
	}
}

func TestCommandPalette_Rows(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	cmds := []*commands.Command{
		{Name: "help", Description: "Show help"},
		{Name: "quit", Description: "Exit loom"},
	}

	title, lines := o.CommandPalette(cmds, "q", 1, 0)
	if title != "Commands" {
		t.Errorf("Expected Commands title, got %q", title)
	}
	if lines[0] != "/q" {
		t.Errorf("Query row wrong: %q", lines[0])
	}
	if lines[1] != "   help       Show help " {
		t.Errorf("Unselected row wrong: %q", lines[1])
	}
	if lines[2] != " › quit       Exit loom " {
		t.Errorf("Selected row wrong: %q", lines[2])
	}
}

func TestCommandPalette_EmptyAndPaged(t *testing.T) {
	o := NewOverlays(styles.NewTheme())

	_, lines := o.CommandPalette(nil, "zzz", 0, 0)
	if len(lines) != 2 || lines[1] != " No commands found. " {
		t.Errorf("Empty palette wrong: %q", lines)
	}

	var many []*commands.Command
	for i := 0; i < 15; i++ {
		many = append(many, &commands.Command{Name: "cmd", Description: "d"})
	}
	_, lines = o.CommandPalette(many, "", 0, 0)
	// query row + 10 items + ellipsis
	if len(lines) != 12 {
		t.Fatalf("Expected 12 rows, got %d", len(lines))
	}
	if lines[11] != "..." {
		t.Errorf("Expected ellipsis row, got %q", lines[11])
	}
}

func TestCommandPalette_BuiltinsFilter(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	all := commands.NewRegistry().All()
	filtered := commands.Filter(all, "reindex")
	if len(filtered) != 1 {
		t.Fatalf("Expected one match for reindex, got %d", len(filtered))
	}
	_, lines := o.CommandPalette(filtered, "reindex", 0, 0)
	if !strings.Contains(lines[1], "reindex") {
		t.Errorf("Expected reindex row, got %q", lines[1])
	}
}

func TestFileMention_Rows(t *testing.T) {
	o := NewOverlays(styles.NewTheme())

	title, lines := o.FileMention([]string{"cmd/main.go", "go.mod"}, "go", 0)
	if title != "File Mention" {
		t.Errorf("Expected File Mention title, got %q", title)
	}
	if lines[0] != "Search: go" {
		t.Errorf("Search row wrong: %q", lines[0])
	}
	if lines[1] != " › cmd/main.go " {
		t.Errorf("Selected row wrong: %q", lines[1])
	}
	if lines[2] != "   go.mod " {
		t.Errorf("Unselected row wrong: %q", lines[2])
	}

	_, lines = o.FileMention(nil, "zzz", 0)
	if lines[1] != " No files found. Run /reindex. " {
		t.Errorf("Empty row wrong: %q", lines[1])
	}
}

func TestModelPicker_Rows(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	entries := []protocol.ModelEntry{
		{ID: "m1", Name: "alpha", Group: "fast"},
		{ID: "m2", Name: "beta"},
	}

	_, lines := o.ModelPicker(entries, "", 0, 0, false, "")
	if lines[0] != "Search: " {
		t.Errorf("Search row wrong: %q", lines[0])
	}
	if lines[1] != " › alpha (fast) " {
		t.Errorf("Grouped row wrong: %q", lines[1])
	}
	if lines[2] != "   beta " {
		t.Errorf("Ungrouped row wrong: %q", lines[2])
	}
	if lines[3] != "   Custom model... " {
		t.Errorf("Custom row wrong: %q", lines[3])
	}
}

func TestModelPicker_CustomRow(t *testing.T) {
	o := NewOverlays(styles.NewTheme())

	// Selection one past the list lands on the custom row.
	_, lines := o.ModelPicker(nil, "", 0, 0, false, "")
	if lines[1] != " No models found. " {
		t.Errorf("Empty row wrong: %q", lines[1])
	}
	if lines[2] != " › Custom model... " {
		t.Errorf("Expected custom row selected, got %q", lines[2])
	}

	_, lines = o.ModelPicker(nil, "", 0, 0, true, "llama3:8b")
	if lines[3] != "› llama3:8b" {
		t.Errorf("Custom input row wrong: %q", lines[3])
	}
}

func TestSessionHistory_Rows(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	sessions := []protocol.SessionSummary{
		{ID: "s1", Title: "Fix the parser"},
		{ID: "s2", Title: "Add tests"},
	}

	title, lines := o.SessionHistory(sessions, 1, 0, false, "")
	if title != "Session History" {
		t.Errorf("Expected Session History title, got %q", title)
	}
	if lines[0] != "   Fix the parser " {
		t.Errorf("Row 0 wrong: %q", lines[0])
	}
	if lines[1] != " › Add tests " {
		t.Errorf("Row 1 wrong: %q", lines[1])
	}
	if lines[2] != "r rename  d delete  Enter open  Esc close" {
		t.Errorf("Hint row wrong: %q", lines[2])
	}
}

func TestSessionHistory_RenameAndEmpty(t *testing.T) {
	o := NewOverlays(styles.NewTheme())

	_, lines := o.SessionHistory(nil, 0, 0, false, "")
	if lines[0] != " No sessions yet. " {
		t.Errorf("Empty row wrong: %q", lines[0])
	}

	sessions := []protocol.SessionSummary{{ID: "s1", Title: "Old name"}}
	_, lines = o.SessionHistory(sessions, 0, 0, true, "New name")
	last := lines[len(lines)-1]
	if last != "Rename: New name" {
		t.Errorf("Rename row wrong: %q", last)
	}
}

func TestQuestionPrompt_SingleSelect(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	q := protocol.Question{Text: "Pick a color", Options: []string{"red", "blue"}}

	title, lines := o.QuestionPrompt(q, nil, 0, false, "")
	if title != "Question" {
		t.Errorf("Expected Question title, got %q", title)
	}
	if lines[0] != "Pick a color" {
		t.Errorf("Question text wrong: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1. ") || !strings.Contains(lines[1], "> ") {
		t.Errorf("Focused option wrong: %q", lines[1])
	}
	if strings.Contains(lines[1], "[ ]") {
		t.Errorf("Single-select should not show checkboxes: %q", lines[1])
	}
	if lines[len(lines)-1] != "Up/Down move  Enter select  Esc skip" {
		t.Errorf("Hint wrong: %q", lines[len(lines)-1])
	}
}

func TestQuestionPrompt_MultiSelect(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	q := protocol.Question{Text: "Pick any", Options: []string{"a", "b"}, Multiple: true}

	_, lines := o.QuestionPrompt(q, []bool{true, false}, 1, false, "")
	if lines[1] != "1.   [x] a" {
		t.Errorf("Checked row wrong: %q", lines[1])
	}
	if !strings.Contains(lines[2], "> [ ] b") {
		t.Errorf("Focused unchecked row wrong: %q", lines[2])
	}
	if lines[len(lines)-1] != "Up/Down move  Space toggle  Enter submit  Esc skip" {
		t.Errorf("Hint wrong: %q", lines[len(lines)-1])
	}
}

func TestQuestionPrompt_CustomRow(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	q := protocol.Question{Text: "Name?", Options: []string{"default"}, Custom: true}

	// Focus past the options lands on the free-form row.
	_, lines := o.QuestionPrompt(q, nil, 1, false, "")
	if lines[2] != "Other: Type custom answer... (Enter)" {
		t.Errorf("Focused custom row wrong: %q", lines[2])
	}

	_, lines = o.QuestionPrompt(q, nil, 1, true, "loomling")
	if lines[2] != "Other: loomling|" {
		t.Errorf("Active custom row wrong: %q", lines[2])
	}

	_, lines = o.QuestionPrompt(q, nil, 0, false, "")
	if lines[2] != "Other: Or type your own answer..." {
		t.Errorf("Idle custom row wrong: %q", lines[2])
	}
}

func TestPlanActions(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	title, lines := o.PlanActions()
	want := []string{
		"Plan is ready.",
		"Enter = Accept and build",
		"Esc = Keep planning",
	}
	if title != "Plan Actions" {
		t.Errorf("Expected Plan Actions title, got %q", title)
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("row %d: %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestModal_CentersBox(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	out := o.Modal("About", []string{"line one"}, 40, 10)

	rows := strings.Split(out, "\n")
	if len(rows) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(rows))
	}
	if !strings.Contains(out, "About") || !strings.Contains(out, "line one") {
		t.Errorf("Modal content missing: %q", out)
	}
	if !strings.Contains(out, "╭") {
		t.Errorf("Expected rounded border in modal")
	}
}

func TestAbout_KeyReference(t *testing.T) {
	o := NewOverlays(styles.NewTheme())
	title, lines := o.About("0.3.0")
	if title != "About" {
		t.Errorf("Expected About title, got %q", title)
	}
	if lines[1] != "Version 0.3.0" {
		t.Errorf("Version row wrong: %q", lines[1])
	}
	if lines[3] != "enter       send message" {
		t.Errorf("Key row wrong: %q", lines[3])
	}
	found := false
	for _, l := range lines {
		if strings.HasPrefix(l, "ctrl+c") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected ctrl+c row in key reference")
	}
}
