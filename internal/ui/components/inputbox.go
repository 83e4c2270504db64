// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// INPUT BOX
// =============================================================================

const (
	// inputMaxRows is the most visual rows the input section shows; longer
	// input scrolls vertically, following the caret.
	inputMaxRows = 3

	// overlayMinRows is the floor an inline overlay section shrinks to,
	// title row included.
	overlayMinRows = 6
)

// InputBox renders the bottom panel: an optional todo strip, an optional
// inline overlay, the editable input line, and the status rows, stacked
// inside one rounded border.
type InputBox struct {
	theme  *styles.Theme
	width  int
	scroll int
}

// NewInputBox creates an input box sized for an 80-column terminal.
func NewInputBox(theme *styles.Theme) *InputBox {
	return &InputBox{theme: theme, width: 80}
}

// SetWidth updates the full terminal width the box spans.
func (ib *InputBox) SetWidth(width int) {
	ib.width = width
}

// ContentWidth returns the columns available to input text: the terminal
// width minus the border, the prompt, and a one-cell margin on each side.
func (ib *InputBox) ContentWidth() int {
	return max(ib.width-6, 8)
}

// =============================================================================
// LAYOUT
// =============================================================================

// BoxLayout fixes how many rows each section of the box gets and the total
// box height, border included.
type BoxLayout struct {
	Todos   int
	Overlay int
	Input   int
	Status  int
	Height  int
}

// PlanBox sizes the box within the terminal height. Desired section heights
// go in; if they exceed the room available, rows are shed in priority
// order: the todo strip down to its summary row, then the overlay down to
// its floor, then the input down to one row. Status rows are never shed.
// The box keeps at least three terminal rows free for the timeline.
func PlanBox(termHeight, todoRows, overlayRows, inputRows, statusRows int) BoxLayout {
	if inputRows < 1 {
		inputRows = 1
	}
	if inputRows > inputMaxRows {
		inputRows = inputMaxRows
	}
	if overlayRows > 0 && overlayRows < overlayMinRows {
		overlayRows = overlayMinRows
	}

	maxHeight := max(termHeight-3, 8)
	height := todoRows + overlayRows + inputRows + statusRows + 2
	if height < 8 {
		height = 8
	}
	if height > maxHeight {
		height = maxHeight
	}

	inner := height - 2
	over := todoRows + overlayRows + inputRows + statusRows - inner
	if over > 0 && todoRows > 1 {
		cut := min(over, todoRows-1)
		todoRows -= cut
		over -= cut
	}
	if over > 0 && overlayRows > overlayMinRows {
		cut := min(over, overlayRows-overlayMinRows)
		overlayRows -= cut
		over -= cut
	}
	if over > 0 && inputRows > 1 {
		cut := min(over, inputRows-1)
		inputRows -= cut
	}

	return BoxLayout{
		Todos:   todoRows,
		Overlay: overlayRows,
		Input:   inputRows,
		Status:  statusRows,
		Height:  height,
	}
}

// OverlayBlock prepends the overlay title row and pads the section up to
// its minimum height.
func (ib *InputBox) OverlayBlock(title string, lines []string) []string {
	block := make([]string, 0, max(len(lines)+1, overlayMinRows))
	block = append(block, ib.theme.OverlayTitle.Render(title))
	block = append(block, lines...)
	for len(block) < overlayMinRows {
		block = append(block, "")
	}
	return block
}

// Compose stacks the sections per the layout and draws the border.
// Sections longer than their allotment are cut from the bottom; spare rows
// sit below the status section.
func (ib *InputBox) Compose(layout BoxLayout, todos, overlay, input, status []string) string {
	inner := layout.Height - 2
	rows := make([]string, 0, inner)
	rows = appendSection(rows, todos, layout.Todos)
	rows = appendSection(rows, overlay, layout.Overlay)
	rows = appendSection(rows, input, layout.Input)
	rows = appendSection(rows, status, layout.Status)
	for len(rows) < inner {
		rows = append(rows, "")
	}
	if len(rows) > inner {
		rows = rows[:inner]
	}

	return ib.theme.InputContainer.
		Width(max(ib.width-2, 1)).
		Render(strings.Join(rows, "\n"))
}

func appendSection(rows, section []string, allot int) []string {
	for i := 0; i < allot; i++ {
		if i < len(section) {
			rows = append(rows, section[i])
		} else {
			rows = append(rows, "")
		}
	}
	return rows
}

// =============================================================================
// INPUT SECTION
// =============================================================================

// InputRows reports how many visual rows the display projection needs,
// capped at the visible maximum.
func (ib *InputBox) InputRows(display string) int {
	if display == "" {
		return 1
	}
	return min(len(WrapDisplay(display, ib.ContentWidth())), inputMaxRows)
}

// RenderInput renders the visible slice of the input section: the prompt on
// the first row, two-space continuations after it, and a cell-wide caret
// when the input has focus. Empty input shows the placeholder.
func (ib *InputBox) RenderInput(display string, cursor, visible int, focused bool, placeholder string) []string {
	if visible < 1 {
		visible = 1
	}

	if display == "" {
		ib.scroll = 0
		row := ib.theme.InputPrompt.Render("› ")
		switch {
		case focused && placeholder != "":
			head, tail := splitFirstRune(placeholder)
			row += ib.theme.InputCursor.Render(head) + ib.theme.InputPlaceholder.Render(tail)
		case focused:
			row += ib.theme.InputCursor.Render(" ")
		default:
			row += ib.theme.InputPlaceholder.Render(placeholder)
		}
		return []string{row}
	}

	width := ib.ContentWidth()
	rows := WrapDisplay(display, width)
	curRow, curCol := CursorPosition(display, cursor, width)

	if visible > len(rows) {
		visible = len(rows)
	}
	if ib.scroll > curRow {
		ib.scroll = curRow
	}
	if curRow >= ib.scroll+visible {
		ib.scroll = curRow - visible + 1
	}
	if ib.scroll > len(rows)-visible {
		ib.scroll = len(rows) - visible
	}
	if ib.scroll < 0 {
		ib.scroll = 0
	}

	out := make([]string, 0, visible)
	for i := ib.scroll; i < ib.scroll+visible; i++ {
		var row string
		if i == 0 {
			row = ib.theme.InputPrompt.Render("› ")
		} else {
			row = "  "
		}
		if focused && i == curRow {
			row += ib.caretRow(rows[i], curCol)
		} else {
			row += ib.theme.InputText.Render(rows[i])
		}
		out = append(out, row)
	}
	return out
}

// caretRow styles one input row with the caret cell reversed at the given
// column. A caret past the row's end renders as a reversed space.
func (ib *InputBox) caretRow(row string, col int) string {
	pre, at, post := splitAtColumn(row, col)
	var b strings.Builder
	if pre != "" {
		b.WriteString(ib.theme.InputText.Render(pre))
	}
	if at == "" {
		at = " "
	}
	b.WriteString(ib.theme.InputCursor.Render(at))
	if post != "" {
		b.WriteString(ib.theme.InputText.Render(post))
	}
	return b.String()
}

// splitAtColumn cuts a plain row at a display column into the text before
// the caret, the rune under it, and the text after it.
func splitAtColumn(s string, col int) (pre, at, post string) {
	w := 0
	for i, r := range s {
		if w >= col {
			size := utf8.RuneLen(r)
			return s[:i], s[i : i+size], s[i+size:]
		}
		w += util.RuneWidth(r)
	}
	return s, "", ""
}

func splitFirstRune(s string) (head, tail string) {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size], s[size:]
}

// =============================================================================
// WRAPPING
// =============================================================================

// WrapDisplay splits the display projection into visual rows at the given
// column width: newlines break rows, and a character that would overflow
// the current row starts the next one. Always yields at least one row.
func WrapDisplay(display string, width int) []string {
	if width < 1 {
		width = 1
	}
	var rows []string
	var row strings.Builder
	col := 0
	for _, r := range display {
		if r == '\n' {
			rows = append(rows, row.String())
			row.Reset()
			col = 0
			continue
		}
		w := util.RuneWidth(r)
		if col+w > width {
			rows = append(rows, row.String())
			row.Reset()
			col = 0
		}
		row.WriteRune(r)
		col += w
	}
	rows = append(rows, row.String())
	return rows
}

// CursorPosition maps a byte offset in the display projection to the visual
// row and column it lands on under the same wrapping rule as WrapDisplay.
func CursorPosition(display string, cursor, width int) (row, col int) {
	if width < 1 {
		width = 1
	}
	if cursor > len(display) {
		cursor = len(display)
	}
	for i, r := range display {
		if i >= cursor {
			break
		}
		if r == '\n' {
			row++
			col = 0
			continue
		}
		w := util.RuneWidth(r)
		if col+w > width {
			row++
			col = 0
		}
		col += w
	}
	return row, col
}
