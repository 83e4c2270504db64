// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// TODO STRIP
// =============================================================================

// TodoStrip renders the agent's todo list above the input area: a count
// summary plus either a single compact row of leading items or, when
// expanded, one row per item.
type TodoStrip struct {
	theme *styles.Theme
	width int
}

// NewTodoStrip creates a todo strip.
func NewTodoStrip(theme *styles.Theme) *TodoStrip {
	return &TodoStrip{theme: theme, width: 80}
}

// SetWidth updates the compact row budget.
func (t *TodoStrip) SetWidth(width int) {
	t.width = width
}

// Render produces the strip rows.
func (t *TodoStrip) Render(todos []protocol.TodoItem, counts protocol.TodoCounts, expanded bool) []string {
	summary := t.theme.TodoHeader.Render(fmt.Sprintf(
		"Todos: %d pending  %d in progress  %d done",
		counts.Pending, counts.InProgress, counts.Completed))

	if expanded {
		lines := []string{summary, ""}
		if len(todos) == 0 {
			return append(lines, t.theme.TodoMore.Render("No todos yet."))
		}
		for _, todo := range todos {
			icon, style := t.itemStyle(todo.Status)
			content := t.theme.BodyText
			if todo.Status == "completed" {
				content = t.theme.TodoDone
			}
			lines = append(lines, style.Render(icon)+" "+content.Render(todo.Content))
		}
		return lines
	}

	const maxItems = 3
	var row string
	rowWidth := 0
	shown := 0
	for _, todo := range todos {
		if shown == maxItems {
			break
		}
		icon, style := t.itemStyle(todo.Status)
		text := util.TruncateRunes(todo.Content, 24)
		chunkWidth := util.StringWidth(icon) + 1 + util.StringWidth(text) + 2
		if rowWidth+chunkWidth > t.width {
			break
		}
		content := t.theme.BodyText
		if todo.Status == "completed" {
			content = t.theme.TodoDone
		}
		row += style.Render(icon) + " " + content.Render(text) + "  "
		rowWidth += chunkWidth
		shown++
	}
	if len(todos) > shown {
		row += t.theme.TodoMore.Render(fmt.Sprintf("+%d more", len(todos)-shown))
	}
	if row == "" {
		row = t.theme.TodoMore.Render("No todos yet.")
	}
	return []string{summary, row}
}

// itemStyle maps a todo status to its checkbox badge and color. The badge
// for completed items keeps the done color without the strikethrough.
func (t *TodoStrip) itemStyle(status string) (string, lipgloss.Style) {
	switch status {
	case "completed":
		return "[x]", lipgloss.NewStyle().Foreground(styles.Emerald)
	case "in_progress":
		return "[~]", t.theme.TodoActive
	default:
		return "[ ]", t.theme.TodoPending
	}
}
