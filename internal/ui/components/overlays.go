// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

// =============================================================================
// INLINE OVERLAYS
// =============================================================================

// OverlayPageSize is how many list rows an overlay shows at once; longer
// lists page behind a trailing ellipsis row.
const OverlayPageSize = 10

// Overlays renders the pickers and prompts that take over the input box:
// each method returns the overlay's title and content rows, already styled,
// ready for InputBox.OverlayBlock. Selection, paging, and query state stay
// with the caller; rendering here is stateless.
type Overlays struct {
	theme *styles.Theme
}

// NewOverlays creates the overlay renderer.
func NewOverlays(theme *styles.Theme) *Overlays {
	return &Overlays{theme: theme}
}

// item renders one list row, highlighted when selected.
func (o *Overlays) item(text string, selected bool) string {
	if selected {
		return o.theme.OverlaySelected.Render("› " + text)
	}
	return o.theme.OverlayItem.Render("  " + text)
}

// window clamps a page of [offset, offset+OverlayPageSize) against n and
// reports whether rows remain below it.
func window(n, offset int) (start, end int, more bool) {
	if offset > n-1 {
		offset = max(n-1, 0)
	}
	end = min(offset+OverlayPageSize, n)
	return offset, end, end < n
}

// =============================================================================
// COMMAND PALETTE
// =============================================================================

// CommandPalette renders the slash-command list. cmds is the already
// filtered list; selected and offset index into it.
func (o *Overlays) CommandPalette(cmds []*commands.Command, query string, selected, offset int) (string, []string) {
	lines := []string{
		o.theme.OverlayCommand.Render("/") + o.theme.OverlayQuery.Render(query),
	}
	if len(cmds) == 0 {
		lines = append(lines, o.theme.OverlayEmpty.Render("No commands found."))
		return "Commands", lines
	}

	start, end, more := window(len(cmds), offset)
	for i := start; i < end; i++ {
		cmd := cmds[i]
		row := fmt.Sprintf("%-10s %s", cmd.Name, cmd.Description)
		lines = append(lines, o.item(row, i == selected))
	}
	if more {
		lines = append(lines, o.theme.OverlayDesc.Render("..."))
	}
	return "Commands", lines
}

// =============================================================================
// FILE MENTION
// =============================================================================

// FileMention renders the @-mention file picker over the already searched
// result page.
func (o *Overlays) FileMention(results []string, query string, selected int) (string, []string) {
	lines := []string{
		o.theme.OverlayDesc.Render("Search: ") + o.theme.OverlayQuery.Render(query),
	}
	if len(results) == 0 {
		lines = append(lines, o.theme.OverlayEmpty.Render("No files found. Run /reindex."))
		return "File Mention", lines
	}
	for i, path := range results {
		lines = append(lines, o.item(path, i == selected))
	}
	return "File Mention", lines
}

// =============================================================================
// MODEL PICKER
// =============================================================================

// ModelPicker renders the model list plus the trailing free-form row.
// entries is the filtered, provider-sorted list; selected == len(entries)
// means the custom row has focus.
func (o *Overlays) ModelPicker(entries []protocol.ModelEntry, query string, selected, offset int, customMode bool, customInput string) (string, []string) {
	lines := []string{
		o.theme.OverlayDesc.Render("Search: ") + o.theme.OverlayQuery.Render(query),
	}
	if len(entries) == 0 {
		lines = append(lines, o.theme.OverlayEmpty.Render("No models found."))
	} else {
		start, end, more := window(len(entries), offset)
		for i := start; i < end; i++ {
			entry := entries[i]
			row := entry.Name
			if entry.Group != "" {
				row += fmt.Sprintf(" (%s)", entry.Group)
			}
			lines = append(lines, o.item(row, i == selected))
		}
		if more {
			lines = append(lines, o.theme.OverlayDesc.Render("..."))
		}
	}
	lines = append(lines, o.item("Custom model...", selected == len(entries)))
	if customMode {
		lines = append(lines, o.theme.InputPrompt.Render("› ")+o.theme.OverlayQuery.Render(customInput))
	}
	return "Model Picker", lines
}

// =============================================================================
// SESSION HISTORY
// =============================================================================

// SessionHistory renders the saved-session browser with its action hint, or
// the rename prompt while a rename is underway.
func (o *Overlays) SessionHistory(sessions []protocol.SessionSummary, selected, offset int, renaming bool, renameInput string) (string, []string) {
	var lines []string
	if len(sessions) == 0 {
		lines = append(lines, o.theme.OverlayEmpty.Render("No sessions yet."))
	} else {
		start, end, more := window(len(sessions), offset)
		for i := start; i < end; i++ {
			lines = append(lines, o.item(sessions[i].Title, i == selected))
		}
		if more {
			lines = append(lines, o.theme.OverlayDesc.Render("..."))
		}
	}
	if renaming {
		lines = append(lines, o.theme.OverlayDesc.Render("Rename: ")+o.theme.OverlayQuery.Render(renameInput))
	} else {
		lines = append(lines, o.theme.OverlayHint.Render("r rename  d delete  Enter open  Esc close"))
	}
	return "Session History", lines
}

// =============================================================================
// QUESTION PROMPT
// =============================================================================

// QuestionPrompt renders one pending question: numbered options with
// checkboxes when multi-select is allowed, the free-form row when the
// worker permits one, and the key hint.
func (o *Overlays) QuestionPrompt(q protocol.Question, checked []bool, focused int, customActive bool, customInput string) (string, []string) {
	lines := []string{o.theme.BodyText.Render(q.Text)}

	for i, opt := range q.Options {
		isChecked := i < len(checked) && checked[i]
		isFocused := focused == i && !customActive

		marker := "  "
		if isFocused {
			marker = "> "
		}
		box := "   "
		if q.Multiple {
			box = "[ ]"
			if isChecked {
				box = "[x]"
			}
		}

		style := o.theme.BodyText
		switch {
		case isFocused:
			style = o.theme.OverlaySelected
		case isChecked:
			style = lipgloss.NewStyle().Foreground(styles.Emerald)
		}

		lines = append(lines,
			o.theme.OverlayDesc.Render(fmt.Sprintf("%d.", i+1))+" "+style.Render(marker+box+" "+opt))
	}

	if q.Custom {
		customFocused := focused == len(q.Options)
		label := o.theme.OverlayDesc.Render("Other: ")
		if customFocused || customActive {
			label = o.theme.OverlayCommand.Render("Other: ")
		}
		switch {
		case customActive:
			lines = append(lines, label+o.theme.BodyText.Render(customInput+"|"))
		case customFocused:
			lines = append(lines, label+o.theme.OverlayDesc.Render("Type custom answer... (Enter)"))
		default:
			lines = append(lines, label+o.theme.OverlayDesc.Render("Or type your own answer..."))
		}
	}

	hint := "Up/Down move  Enter select  Esc skip"
	if q.Multiple {
		hint = "Up/Down move  Space toggle  Enter submit  Esc skip"
	}
	lines = append(lines, o.theme.OverlayHint.Render(hint))
	return "Question", lines
}

// =============================================================================
// PLAN ACTIONS
// =============================================================================

// PlanActions renders the plan-approval prompt.
func (o *Overlays) PlanActions() (string, []string) {
	return "Plan Actions", []string{
		o.theme.BodyText.Render("Plan is ready."),
		o.theme.OverlayDesc.Render("Enter = Accept and build"),
		o.theme.OverlayDesc.Render("Esc = Keep planning"),
	}
}

// =============================================================================
// MODALS
// =============================================================================

// Modal centers a bordered box inside a width-by-height region, for the
// overlays that cover the transcript instead of the input box.
func (o *Overlays) Modal(title string, lines []string, width, height int) string {
	content := o.theme.OverlayTitle.Render(title)
	for _, line := range lines {
		content += "\n" + line
	}
	box := o.theme.OverlayBox.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// About returns the help modal content: identity, version, and the key
// reference.
func (o *Overlays) About(version string) (string, []string) {
	key := func(keys, desc string) string {
		return o.theme.ShortcutKey.Render(fmt.Sprintf("%-12s", keys)) + o.theme.ShortcutDesc.Render(desc)
	}
	return "About", []string{
		o.theme.BodyText.Render("loom — terminal client for the loom worker."),
		o.theme.OverlayDesc.Render("Version " + version),
		"",
		key("enter", "send message"),
		key("/", "command palette"),
		key("@", "mention a file"),
		key("tab", "switch agent (build/plan)"),
		key("ctrl+r", "cycle reasoning effort"),
		key("ctrl+t", "toggle todo strip"),
		key("ctrl+n", "new session"),
		key("ctrl+v", "paste text or image path"),
		key("esc", "abort the running turn"),
		key("ctrl+c", "abort, twice to quit"),
	}
}
