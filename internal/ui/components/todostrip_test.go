// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

func fiveTodos() []protocol.TodoItem {
	return []protocol.TodoItem{
		{Content: "task1", Status: "pending"},
		{Content: "task2", Status: "pending"},
		{Content: "task3", Status: "pending"},
		{Content: "task4", Status: "pending"},
		{Content: "task5", Status: "pending"},
	}
}

func TestTodoStrip_SummaryCounts(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())
	counts := protocol.TodoCounts{Pending: 2, InProgress: 1, Completed: 3}
	rows := strip.Render(nil, counts, false)
	if rows[0] != "Todos: 2 pending  1 in progress  3 done" {
		t.Errorf("Summary wrong: %q", rows[0])
	}
}

func TestTodoStrip_CollapsedShowsThree(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())
	rows := strip.Render(fiveTodos(), protocol.TodoCounts{Pending: 5}, false)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[1] != "[ ] task1  [ ] task2  [ ] task3  +2 more" {
		t.Errorf("Collapsed row wrong: %q", rows[1])
	}
}

func TestTodoStrip_CollapsedRespectsWidth(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())
	strip.SetWidth(12)
	rows := strip.Render(fiveTodos(), protocol.TodoCounts{Pending: 5}, false)
	if rows[1] != "[ ] task1  +4 more" {
		t.Errorf("Width-limited row wrong: %q", rows[1])
	}
}

func TestTodoStrip_CollapsedTruncatesContent(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())
	todos := []protocol.TodoItem{
		{Content: strings.Repeat("a", 30), Status: "pending"},
	}
	rows := strip.Render(todos, protocol.TodoCounts{Pending: 1}, false)
	want := "[ ] " + strings.Repeat("a", 21) + "...  "
	if rows[1] != want {
		t.Errorf("Truncated row wrong: %q, want %q", rows[1], want)
	}
}

func TestTodoStrip_ExpandedRows(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())
	todos := []protocol.TodoItem{
		{Content: "write parser", Status: "completed"},
		{Content: "wire transport", Status: "in_progress"},
		{Content: "add tests", Status: "pending"},
	}
	counts := protocol.TodoCounts{Pending: 1, InProgress: 1, Completed: 1}
	rows := strip.Render(todos, counts, true)

	want := []string{
		"Todos: 1 pending  1 in progress  1 done",
		"",
		"[x] write parser",
		"[~] wire transport",
		"[ ] add tests",
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d: %q", len(want), len(rows), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestTodoStrip_EmptyList(t *testing.T) {
	strip := NewTodoStrip(styles.NewTheme())

	rows := strip.Render(nil, protocol.TodoCounts{}, false)
	if len(rows) != 2 || rows[1] != "No todos yet." {
		t.Errorf("Collapsed empty wrong: %q", rows)
	}

	rows = strip.Render(nil, protocol.TodoCounts{}, true)
	if len(rows) != 3 || rows[2] != "No todos yet." {
		t.Errorf("Expanded empty wrong: %q", rows)
	}
}
