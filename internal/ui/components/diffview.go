// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/diff"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// DIFF VIEW
// =============================================================================

// maxDiffLines bounds how many rendered rows a single tool result may
// spend on its diff.
const maxDiffLines = 120

// DiffView renders parsed unified diffs with dual line-number gutters:
// a 4-wide old column, a 4-wide new column, then the prefixed content.
// Long content soft-wraps at display-column boundaries under a blank
// continuation gutter.
type DiffView struct {
	theme    *styles.Theme
	width    int
	maxLines int
}

// NewDiffView creates a diff view for the given content width.
func NewDiffView(theme *styles.Theme, width int) *DiffView {
	return &DiffView{theme: theme, width: width, maxLines: maxDiffLines}
}

// SetMaxLines overrides the rendered-line cap. Zero disables it.
func (v *DiffView) SetMaxLines(n int) {
	v.maxLines = n
}

// ExtractToolDiff pulls a unified diff out of tool-result content. Workers
// ship diffs as a {"diff": "..."} JSON payload; results without one are
// rendered as plain text by the caller.
func ExtractToolDiff(content string) (*diff.Diff, bool) {
	var payload struct {
		Diff string `json:"diff"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil || payload.Diff == "" {
		return nil, false
	}
	if !diff.IsUnifiedDiff(payload.Diff) {
		return nil, false
	}
	return diff.Parse(payload.Diff)
}

// Summary formats the "(+adds / -dels)" badge for a result header.
func (v *DiffView) Summary(d *diff.Diff) string {
	return fmt.Sprintf("(+%d / -%d)", d.Stats.Additions, d.Stats.Deletions)
}

// Render formats the diff, one styled string per row, capped at maxLines.
func (v *DiffView) Render(d *diff.Diff) []string {
	const numW = 4
	contentW := max(v.width-(numW*2+3), 10)
	blankGutter := strings.Repeat(" ", numW*2+2)

	var out []string
	if d.FilePath != "" {
		out = append(out, v.theme.DiffSummary.Render(util.TruncateWidth(d.FilePath, v.width)))
	}
	for _, hunk := range d.Hunks {
		for _, chunk := range util.HardWrapWidth(hunk.Header, contentW) {
			out = append(out, v.theme.DiffHunk.Render(chunk))
		}
		for _, line := range hunk.Lines {
			prefix, style := v.lineStyle(line.Type)
			gutter := fmt.Sprintf("%s %s ", diffNum(line.OldLine, numW), diffNum(line.NewLine, numW))
			for idx, chunk := range util.HardWrapWidth(line.Content, contentW) {
				g := gutter
				if idx > 0 {
					g = blankGutter
				}
				out = append(out, v.theme.DiffGutter.Render(g)+style.Render(prefix+chunk))
			}
		}
	}
	if v.maxLines > 0 && len(out) > v.maxLines {
		out = out[:v.maxLines]
	}
	return out
}

func (v *DiffView) lineStyle(t diff.DiffLineType) (string, lipgloss.Style) {
	switch t {
	case diff.DiffLineAdded:
		return "+", v.theme.DiffAdd
	case diff.DiffLineRemoved:
		return "-", v.theme.DiffDel
	default:
		return " ", v.theme.DiffContext
	}
}

// diffNum right-aligns a 1-based line number, blank when absent.
func diffNum(n, width int) string {
	if n <= 0 {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, n)
}
