// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// HighlightLines renders a fenced code block as one styled line per source
// line. Each source line keeps its own row; lines wider than width are
// hard-wrapped from the raw source instead of the highlighted output so that
// ANSI escapes never leak into the width math.
func HighlightLines(theme *styles.Theme, code, language string, width int) []string {
	if width < 1 {
		width = 1
	}
	raw := strings.Split(strings.TrimRight(code, "\n"), "\n")
	highlighted := strings.Split(strings.TrimRight(highlightCode(code, language), "\n"), "\n")
	aligned := len(highlighted) == len(raw)

	var out []string
	for i, line := range raw {
		if util.StringWidth(line) <= width {
			if aligned {
				out = append(out, highlighted[i])
			} else {
				out = append(out, theme.MdCodeBlock.Render(line))
			}
			continue
		}
		for _, chunk := range util.HardWrapWidth(line, width) {
			out = append(out, theme.MdCodeBlock.Render(chunk))
		}
	}
	return out
}

// highlightCode runs source through chroma and returns ANSI-styled text.
func highlightCode(code, language string) string {
	// Get lexer for language
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// Get style (use terminal-friendly style)
	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	// Get terminal formatter
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	// Tokenize and format
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code // Fallback to plain text
	}

	var buf strings.Builder
	err = formatter.Format(&buf, style, iterator)
	if err != nil {
		return code
	}

	return buf.String()
}
