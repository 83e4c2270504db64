// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// TIMELINE RENDERER
// =============================================================================

// TimelineRenderer formats session timeline events into terminal rows.
// Consecutive non-user events render under a single assistant header; a
// user message closes the block and the next assistant event opens a
// fresh one.
type TimelineRenderer struct {
	theme *styles.Theme
}

// NewTimelineRenderer creates a timeline renderer.
func NewTimelineRenderer(theme *styles.Theme) *TimelineRenderer {
	return &TimelineRenderer{theme: theme}
}

// RenderOptions carries the per-frame knobs for timeline formatting.
type RenderOptions struct {
	Width        int
	Compact      bool
	SpinnerFrame string
}

// Render formats the full timeline. opts.Width is the viewport width; two
// columns are reserved for the surrounding frame.
func (tr *TimelineRenderer) Render(state *protocol.State, opts RenderOptions) []string {
	contentWidth := max(opts.Width-2, 10)

	var lines []string
	gap := func() {
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
	}
	indent := func(body []string) {
		for _, l := range body {
			lines = append(lines, "  "+l)
		}
	}

	inAssistantBlock := false
	for _, event := range state.TimelineEvents {
		if event.Kind == protocol.EventUser {
			inAssistantBlock = false
			gap()
			lines = append(lines, tr.theme.UserLabel.Render("> You"))
			body := wrapStyled(event.Content, contentWidth, tr.theme.BodyText)
			if n := len(event.Attachments); n > 0 {
				noun := "attachments"
				if n == 1 {
					noun = "attachment"
				}
				body = append(body, tr.theme.BodyText.Render(fmt.Sprintf("[%d %s]", n, noun)))
			}
			indent(body)
			continue
		}

		if !inAssistantBlock {
			gap()
			lines = append(lines, tr.theme.AssistantLabel.Render("> loom"))
			inAssistantBlock = true
		}

		switch event.Kind {
		case protocol.EventAssistant:
			var body []string
			if event.Streaming {
				body = wrapStyled(event.Content, contentWidth, tr.theme.BodyText)
			} else {
				body = NewMarkdownRenderer(tr.theme, contentWidth).Render(event.Content)
			}
			indent(body)

		case protocol.EventReasoning:
			if opts.Compact {
				continue
			}
			lines = append(lines, tr.theme.ReasoningText.Render("~ Reasoning"))
			indent(wrapStyled(event.Content, contentWidth, tr.theme.ReasoningText))

		case protocol.EventToolCall:
			lines = append(lines, tr.toolCallLine(event))

		case protocol.EventToolResult:
			d, ok := ExtractToolDiff(event.Content)
			if !ok {
				continue
			}
			view := NewDiffView(tr.theme, contentWidth)
			lines = append(lines,
				tr.theme.SuccessStyle.Render("[ok] Result")+" "+tr.theme.ToolResultText.Render(view.Summary(d)))
			indent(view.Render(d))

		case protocol.EventStatus:
			style := tr.theme.WarningStyle
			if strings.Contains(strings.ToLower(event.Content), "error") {
				style = tr.theme.ErrorEvent
			}
			for _, l := range util.WrapWidth("! "+event.Content, contentWidth) {
				lines = append(lines, style.Render(l))
			}

		default:
			lines = append(lines, event.Content)
		}
	}

	if len(lines) > 0 {
		lines = append(lines, "", "")
	}

	if state.IsLoading {
		frame := opts.SpinnerFrame
		if frame == "" {
			frame = "|"
		}
		lines = append(lines, tr.theme.Spinner.Render(frame)+" "+tr.theme.ThinkingText.Render("Thinking..."))
	}
	return lines
}

// toolCallLine formats one tool invocation: a status icon, the tool's
// display label, and a short argument hint.
func (tr *TimelineRenderer) toolCallLine(event protocol.TimelineEvent) string {
	name := event.ToolName
	if name == "" {
		name = "tool"
	}
	label, style := tr.toolDisplay(name)
	line := style.Render(statusIcon(event.Status)) + " " + style.Bold(true).Render(label)
	if args := FormatToolArgs(event.Content); args != "" {
		line += " " + tr.theme.ToolCallText.Render(args)
	}
	return line
}

// statusIcon maps a tool call's lifecycle status to its badge.
func statusIcon(status string) string {
	switch status {
	case "running":
		return "[.]"
	case "failed":
		return "[x]"
	case "completed":
		return "[ok]"
	default:
		return "[ ]"
	}
}

// toolDisplay maps a wire tool name to its display label and color.
func (tr *TimelineRenderer) toolDisplay(name string) (string, lipgloss.Style) {
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	switch name {
	case "read":
		return "Read", fg(styles.Emerald)
	case "write":
		return "Write", fg(styles.Amber)
	case "edit":
		return "Edit", fg(styles.Amber)
	case "multi_edit":
		return "Multi Edit", fg(styles.Amber)
	case "apply_patch":
		return "Patch", fg(styles.Amber)
	case "bash":
		return "Terminal", fg(styles.Cyan)
	case "grep":
		return "Search", fg(styles.Purple)
	case "glob":
		return "Glob", fg(styles.Purple)
	case "ls":
		return "List", fg(styles.Purple)
	case "task":
		return "Task", fg(styles.Amber)
	case "websearch":
		return "Web Search", fg(styles.Cyan)
	case "webfetch":
		return "Fetch", fg(styles.Cyan)
	case "question":
		return "Question", fg(styles.Amber)
	case "todoread", "todowrite":
		return "Todos", fg(styles.Amber)
	case "codesearch":
		return "Code Search", fg(styles.Purple)
	case "lsp":
		return "LSP", fg(styles.Purple)
	case "revert":
		return "Revert", fg(styles.Rose)
	default:
		return name, fg(styles.TextMuted)
	}
}

// ToolGlyph returns the compact bracket icon used in one-shot output.
func ToolGlyph(name string) string {
	switch name {
	case "read":
		return "[R]"
	case "write":
		return "[W]"
	case "edit", "multi_edit":
		return "[E]"
	case "bash":
		return "[$]"
	case "grep":
		return "[?]"
	case "glob":
		return "[G]"
	case "ls":
		return "[L]"
	case "task":
		return "[T]"
	case "websearch":
		return "[S]"
	case "webfetch":
		return "[F]"
	case "apply_patch":
		return "[P]"
	case "question":
		return "[Q]"
	case "todoread", "todowrite":
		return "[>]"
	case "codesearch":
		return "[C]"
	default:
		return "[*]"
	}
}

// FormatToolArgs summarizes a tool call's JSON arguments as a one-line
// hint, preferring the most identifying field.
func FormatToolArgs(argsJSON string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return ""
	}
	str := func(key string) (string, bool) {
		v, ok := args[key].(string)
		return v, ok && v != ""
	}
	if p, ok := str("file_path"); ok {
		return p
	}
	if cmd, ok := str("command"); ok {
		return util.TruncateRunes(cmd, 60)
	}
	if q, ok := str("query"); ok {
		return fmt.Sprintf("%q", q)
	}
	if pat, ok := str("pattern"); ok {
		return pat
	}
	if dir, ok := str("directory_path"); ok {
		return dir
	}
	if desc, ok := str("description"); ok {
		return util.TruncateRunes(desc, 60)
	}
	if u, ok := str("url"); ok {
		return u
	}
	return ""
}

// wrapStyled word-wraps plain text, preserving source line breaks and
// applying one style to every row.
func wrapStyled(content string, width int, style lipgloss.Style) []string {
	var out []string
	for _, raw := range strings.Split(content, "\n") {
		if raw == "" {
			out = append(out, "")
			continue
		}
		for _, l := range util.WrapWidth(raw, width) {
			out = append(out, style.Render(l))
		}
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}
