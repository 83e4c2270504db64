// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer converts finalized assistant markdown into styled lines
// bounded by the viewport width. Streaming text is wrapped as plain text
// elsewhere; only completed events pay for full markdown rendering.
//
// Supported: headings, block quotes, ordered/unordered lists, emphasis,
// strong, strikethrough, inline code, links, horizontal rules, and fenced
// code blocks rendered verbatim line-by-line with syntax highlighting.
type MarkdownRenderer struct {
	theme *styles.Theme
	width int

	lines []string

	// Row in progress. rowW counts visible columns including any prefix
	// and indent already charged by ensureRow.
	frags      []string
	rowW       int
	wordsOnRow int
	pending    bool

	prefix  string // styled prefix repeated on every row (blockquote bar)
	prefixW int
	lead    string // one-shot styled prefix for the next row (list marker)
	leadW   int
	hang    int // space indent for item rows after the marker row
}

// NewMarkdownRenderer creates a renderer for the given viewport width.
func NewMarkdownRenderer(theme *styles.Theme, width int) *MarkdownRenderer {
	if width < 10 {
		width = 10
	}
	return &MarkdownRenderer{theme: theme, width: width}
}

// Render parses content and returns one string per terminal row.
func (m *MarkdownRenderer) Render(content string) []string {
	m.lines = nil
	m.frags = nil
	m.rowW = 0
	m.wordsOnRow = 0
	m.pending = false
	m.prefix = ""
	m.prefixW = 0
	m.lead = ""
	m.leadW = 0
	m.hang = 0

	src := strings.Split(content, "\n")

	// Consecutive plain lines accumulate into one soft-wrapped paragraph.
	var para []string
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		m.pushInline(strings.Join(para, " "), m.theme.BodyText)
		m.flushRow()
		para = para[:0]
	}

	for i := 0; i < len(src); i++ {
		trimmed := strings.TrimSpace(src[i])

		if lang, ok := fenceLine(trimmed); ok {
			flushPara()
			var code []string
			for i++; i < len(src); i++ {
				if _, end := fenceLine(strings.TrimSpace(src[i])); end {
					break
				}
				code = append(code, src[i])
			}
			m.blankBefore()
			m.lines = append(m.lines, HighlightLines(m.theme, strings.Join(code, "\n"), lang, m.width)...)
			continue
		}

		if item, ok := listItem(src[i]); ok {
			flushPara()
			m.renderListItem(item)
			continue
		}

		switch {
		case trimmed == "":
			flushPara()

		case isRule(trimmed):
			flushPara()
			m.blankBefore()
			m.lines = append(m.lines, m.theme.MdRule.Render(strings.Repeat("─", min(m.width, 40))))

		case strings.HasPrefix(trimmed, "#"):
			text, ok := headingText(trimmed)
			if !ok {
				para = append(para, trimmed)
				continue
			}
			flushPara()
			m.blankBefore()
			m.pushInline(text, m.theme.MdHeading)
			m.flushRow()

		case strings.HasPrefix(trimmed, ">"):
			flushPara()
			m.blankBefore()
			var quoted []string
			for {
				body := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
				if body == "" {
					m.renderQuote(quoted)
					quoted = nil
				} else {
					quoted = append(quoted, body)
				}
				if i+1 >= len(src) || !strings.HasPrefix(strings.TrimSpace(src[i+1]), ">") {
					break
				}
				i++
				trimmed = strings.TrimSpace(src[i])
			}
			m.renderQuote(quoted)

		default:
			para = append(para, trimmed)
		}
	}
	flushPara()
	return m.lines
}

// =============================================================================
// BLOCK ELEMENTS
// =============================================================================

func (m *MarkdownRenderer) renderListItem(item mdListItem) {
	m.flushRow()
	m.lead = strings.Repeat(" ", item.indent) + m.theme.MdListMarker.Render(item.marker)
	m.leadW = item.indent + util.StringWidth(item.marker)
	m.hang = m.leadW
	m.pushInline(item.body, m.theme.BodyText)
	m.flushRow()
	m.hang = 0
}

func (m *MarkdownRenderer) renderQuote(parts []string) {
	if len(parts) == 0 {
		return
	}
	m.prefix = m.theme.MdQuoteBar.Render("> ")
	m.prefixW = 2
	m.pushInline(strings.Join(parts, " "), m.theme.MdQuote)
	m.flushRow()
	m.prefix = ""
	m.prefixW = 0
}

type mdListItem struct {
	indent int // leading display columns before the marker
	marker string
	body   string
}

// listItem recognizes "- x"/"* x"/"+ x" bullets and "1. x"/"1) x" ordered
// items, preserving the source indent for nested lists.
func listItem(line string) (mdListItem, bool) {
	indent := 0
	rest := line
	for len(rest) > 0 {
		if rest[0] == ' ' {
			indent++
		} else if rest[0] == '\t' {
			indent += 4
		} else {
			break
		}
		rest = rest[1:]
	}
	if len(rest) >= 2 && (rest[0] == '-' || rest[0] == '*' || rest[0] == '+') && rest[1] == ' ' {
		return mdListItem{indent: indent, marker: "• ", body: strings.TrimSpace(rest[2:])}, true
	}
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j > 0 && j+1 < len(rest) && (rest[j] == '.' || rest[j] == ')') && rest[j+1] == ' ' {
		return mdListItem{indent: indent, marker: rest[:j] + ". ", body: strings.TrimSpace(rest[j+2:])}, true
	}
	return mdListItem{}, false
}

// fenceLine reports whether a trimmed line opens or closes a ``` fence,
// returning the info string.
func fenceLine(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "```")), true
}

// isRule matches ---, ***, ___ with three or more of the same character.
func isRule(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return false
		}
	}
	return true
}

// headingText strips the leading #-run. "#hashtag" and seven or more
// hashes stay plain text.
func headingText(trimmed string) (string, bool) {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return "", false
	}
	if n == len(trimmed) {
		return "", true
	}
	if trimmed[n] != ' ' {
		return "", false
	}
	return strings.TrimSpace(trimmed[n:]), true
}

// =============================================================================
// INLINE ELEMENTS
// =============================================================================

type inlineKind int

const (
	inlineNone inlineKind = iota
	inlineCode
	inlineStrong
	inlineEmph
	inlineStrike
	inlineLink
)

// pushInline walks one paragraph of text, mapping inline markdown onto
// styles. Nested markers inherit the enclosing style so bold survives
// inside headings and emphasis inside bold.
func (m *MarkdownRenderer) pushInline(text string, base lipgloss.Style) {
	for text != "" {
		i, kind, markerLen := findInlineStart(text)
		if kind == inlineNone {
			m.pushText(text, base)
			return
		}
		if i > 0 {
			m.pushText(text[:i], base)
			text = text[i:]
		}
		switch kind {
		case inlineCode:
			end := strings.IndexByte(text[1:], '`')
			m.pushWord(text[1:1+end], m.theme.MdInlineCode)
			text = text[2+end:]
		case inlineLink:
			label, rest, _ := parseLink(text)
			m.pushText(label, m.theme.MdLink.Inherit(base))
			text = rest
		default:
			closer := text[:markerLen]
			end := strings.Index(text[markerLen:], closer)
			inner := text[markerLen : markerLen+end]
			m.pushInline(inner, m.inlineStyle(kind).Inherit(base))
			text = text[markerLen+end+len(closer):]
		}
	}
}

func (m *MarkdownRenderer) inlineStyle(kind inlineKind) lipgloss.Style {
	switch kind {
	case inlineStrong:
		return m.theme.MdStrong
	case inlineStrike:
		return m.theme.MdStrike
	default:
		return m.theme.MdEmph
	}
}

// findInlineStart locates the first inline marker with a matching closer.
// Emphasis markers inside words (snake_case, 3*4) are left alone.
func findInlineStart(text string) (int, inlineKind, int) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '`':
			if strings.IndexByte(text[i+1:], '`') >= 0 {
				return i, inlineCode, 1
			}
		case '~':
			if strings.HasPrefix(text[i:], "~~") && strings.Contains(text[i+2:], "~~") {
				return i, inlineStrike, 2
			}
		case '*', '_':
			markerLen := 1
			if i+1 < len(text) && text[i+1] == text[i] {
				markerLen = 2
			}
			if !boundaryBefore(text, i) || !nonSpaceAt(text, i+markerLen) {
				continue
			}
			if !strings.Contains(text[i+markerLen:], text[i:i+markerLen]) {
				continue
			}
			if markerLen == 2 {
				return i, inlineStrong, 2
			}
			return i, inlineEmph, 1
		case '[':
			if _, _, ok := parseLink(text[i:]); ok {
				return i, inlineLink, 1
			}
		}
	}
	return -1, inlineNone, 0
}

// parseLink matches [label](target) at the start of text. The target is
// dropped from the rendering; only the styled label survives.
func parseLink(text string) (label, rest string, ok bool) {
	if len(text) == 0 || text[0] != '[' {
		return "", "", false
	}
	rb := strings.IndexByte(text, ']')
	if rb < 0 || rb+1 >= len(text) || text[rb+1] != '(' {
		return "", "", false
	}
	end := strings.IndexByte(text[rb+2:], ')')
	if end < 0 {
		return "", "", false
	}
	return text[1:rb], text[rb+3+end:], true
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func nonSpaceAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsSpace(r)
}

// =============================================================================
// WORD WRAPPING
// =============================================================================

// pushText splits text on whitespace and feeds the words through the
// wrapper. Runs of spaces collapse to single soft breaks.
func (m *MarkdownRenderer) pushText(text string, style lipgloss.Style) {
	if text == "" {
		return
	}
	if m.wordsOnRow > 0 && startsWithSpace(text) {
		m.pending = true
	}
	for idx, word := range strings.Fields(text) {
		if idx > 0 {
			m.pending = true
		}
		m.pushWord(word, style)
	}
	if endsWithSpace(text) {
		m.pending = true
	}
}

// pushWord appends one word, wrapping to a fresh row when it would
// overflow. Words wider than a full row are split by display columns.
func (m *MarkdownRenderer) pushWord(word string, style lipgloss.Style) {
	if word == "" {
		return
	}
	w := util.StringWidth(word)
	m.ensureRow()

	if m.wordsOnRow > 0 && m.pending {
		if m.rowW+1+w > m.width {
			m.emitRow()
			m.ensureRow()
		} else {
			m.frags = append(m.frags, " ")
			m.rowW++
		}
	}
	m.pending = false

	if m.rowW+w > m.width {
		if m.wordsOnRow > 0 {
			m.emitRow()
			m.ensureRow()
		}
		if m.rowW+w > m.width {
			avail := max(m.width-m.rowW, 1)
			chunks := util.HardWrapWidth(word, avail)
			for _, chunk := range chunks[:len(chunks)-1] {
				m.frags = append(m.frags, style.Render(chunk))
				m.rowW += util.StringWidth(chunk)
				m.wordsOnRow++
				m.emitRow()
				m.ensureRow()
			}
			word = chunks[len(chunks)-1]
			w = util.StringWidth(word)
		}
	}

	m.frags = append(m.frags, style.Render(word))
	m.rowW += w
	m.wordsOnRow++
}

// ensureRow charges the row prefix before the first word lands on it.
func (m *MarkdownRenderer) ensureRow() {
	if len(m.frags) == 0 {
		indent := m.hang
		if m.lead != "" {
			indent = m.leadW
		}
		m.rowW = m.prefixW + indent
	}
}

// flushRow emits the in-progress row if it holds anything, including a
// bare list marker for an empty item.
func (m *MarkdownRenderer) flushRow() {
	if len(m.frags) == 0 && m.lead == "" {
		m.pending = false
		return
	}
	m.emitRow()
}

func (m *MarkdownRenderer) emitRow() {
	var b strings.Builder
	b.WriteString(m.prefix)
	if m.lead != "" {
		b.WriteString(m.lead)
		m.lead = ""
		m.leadW = 0
	} else if m.hang > 0 {
		b.WriteString(strings.Repeat(" ", m.hang))
	}
	for _, f := range m.frags {
		b.WriteString(f)
	}
	m.lines = append(m.lines, b.String())
	m.frags = nil
	m.rowW = 0
	m.wordsOnRow = 0
	m.pending = false
}

// blankBefore separates a block element from earlier output with one
// empty line.
func (m *MarkdownRenderer) blankBefore() {
	m.flushRow()
	if len(m.lines) > 0 && m.lines[len(m.lines)-1] != "" {
		m.lines = append(m.lines, "")
	}
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
