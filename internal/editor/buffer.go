// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor implements the input line's logical text buffer: a flat
// string with a byte cursor, where pasted blocks and clipboard images are
// embedded inline as reserved sentinel runes and edited as atomic units.
package editor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// SENTINELS
// =============================================================================

// Reserved runes delimiting non-text regions inside the buffer. They come
// from a Unicode special-purpose range so real input never contains them.
const (
	// PasteStart and PasteEnd bracket a pasted block large enough to be
	// collapsed. Everything between them is the pasted text verbatim.
	PasteStart = '￰'
	PasteEnd   = '￱'

	// ImageMarker stands in for one attached image. The nth marker in the
	// buffer corresponds to the nth entry of the caller's attachment list.
	ImageMarker = '￼'
)

// A paste wraps into a collapsed region when it spans at least this many
// lines or more than this many runes.
const (
	pasteWrapMinLines = 3
	pasteWrapMaxChars = 150
)

var (
	pasteStartStr  = string(PasteStart)
	pasteEndStr    = string(PasteEnd)
	imageMarkerStr = string(ImageMarker)
)

// =============================================================================
// BUFFER
// =============================================================================

// Buffer is the editable input line. The cursor is a byte offset that always
// sits on a code-point boundary and never strictly inside a paste region.
//
// The attachment list backing the image markers lives with the caller; the
// mutating operations report the ordinal positions the caller must keep in
// lockstep.
type Buffer struct {
	text   string
	cursor int
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Text returns the raw logical content, sentinels included.
func (b *Buffer) Text() string {
	return b.text
}

// Cursor returns the byte offset of the caret.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// IsEmpty reports whether the buffer holds nothing at all.
func (b *Buffer) IsEmpty() bool {
	return len(b.text) == 0
}

// Clear resets the buffer. The caller must clear its attachment list in the
// same step.
func (b *Buffer) Clear() {
	b.text = ""
	b.cursor = 0
}

// SetText replaces the content wholesale and puts the caret at the end.
func (b *Buffer) SetText(text string) {
	b.text = text
	b.cursor = len(text)
	b.clamp()
}

// clamp repairs the cursor before every operation: back off mid-rune
// positions to the previous boundary, then snap out of any paste region to
// the region's start.
func (b *Buffer) clamp() {
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor > len(b.text) {
		b.cursor = len(b.text)
	}
	for b.cursor > 0 && b.cursor < len(b.text) && !utf8.RuneStart(b.text[b.cursor]) {
		b.cursor--
	}
	if start, _, inside := b.regionAround(b.cursor); inside {
		b.cursor = start
	}
}

// regionAround reports whether pos falls strictly inside a paste region and
// that region's byte span. Start is the index of the start sentinel, end the
// index just past the end sentinel.
func (b *Buffer) regionAround(pos int) (start, end int, inside bool) {
	off := 0
	rest := b.text
	for {
		i := strings.Index(rest, pasteStartStr)
		if i < 0 {
			return 0, 0, false
		}
		rs := off + i
		j := strings.Index(b.text[rs:], pasteEndStr)
		if j < 0 {
			// Unterminated region: treat everything after the start
			// sentinel as inside it.
			if pos > rs {
				return rs, len(b.text), true
			}
			return 0, 0, false
		}
		re := rs + j + len(pasteEndStr)
		if pos > rs && pos < re {
			return rs, re, true
		}
		if pos <= rs {
			return 0, 0, false
		}
		off = re
		rest = b.text[re:]
	}
}

// =============================================================================
// CURSOR MOVEMENT
// =============================================================================

// MoveLeft steps one code point left; a paste region is crossed in a single
// hop from its end to its start.
func (b *Buffer) MoveLeft() {
	b.clamp()
	if b.cursor == 0 {
		return
	}
	r, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	if r == PasteEnd {
		if start := strings.LastIndex(b.text[:b.cursor-size], pasteStartStr); start >= 0 {
			b.cursor = start
			return
		}
	}
	b.cursor -= size
}

// MoveRight steps one code point right; a paste region is crossed in a
// single hop from its start to its end.
func (b *Buffer) MoveRight() {
	b.clamp()
	if b.cursor >= len(b.text) {
		return
	}
	r, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	if r == PasteStart {
		if j := strings.Index(b.text[b.cursor:], pasteEndStr); j >= 0 {
			b.cursor += j + len(pasteEndStr)
			return
		}
	}
	b.cursor += size
}

// MoveHome puts the caret at the start of the buffer.
func (b *Buffer) MoveHome() {
	b.cursor = 0
}

// MoveEnd puts the caret past the last byte.
func (b *Buffer) MoveEnd() {
	b.cursor = len(b.text)
}

// =============================================================================
// INSERTION
// =============================================================================

// InsertRune splices one code point at the caret.
func (b *Buffer) InsertRune(r rune) {
	b.InsertText(string(r))
}

// InsertText splices plain text at the caret and advances past it.
func (b *Buffer) InsertText(text string) {
	if text == "" {
		return
	}
	b.clamp()
	b.text = b.text[:b.cursor] + text + b.text[b.cursor:]
	b.cursor += len(text)
}

// InsertPaste splices pasted text. Large pastes are wrapped in region
// sentinels so they collapse in the display and delete as a unit; pasting
// directly against an existing region extends that region instead of
// nesting a new one. Small pastes splice as plain text.
func (b *Buffer) InsertPaste(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return
	}
	b.clamp()

	lines := strings.Count(text, "\n") + 1
	if lines < pasteWrapMinLines && utf8.RuneCountInString(text) <= pasteWrapMaxChars {
		b.InsertText(text)
		return
	}

	// Extend a region the caret touches rather than creating a neighbor.
	if r, size := utf8.DecodeLastRuneInString(b.text[:b.cursor]); r == PasteEnd {
		at := b.cursor - size
		b.text = b.text[:at] + text + b.text[at:]
		b.cursor += len(text)
		return
	}
	if r, _ := utf8.DecodeRuneInString(b.text[b.cursor:]); r == PasteStart {
		at := b.cursor + len(pasteStartStr)
		b.text = b.text[:at] + text + b.text[at:]
		if j := strings.Index(b.text[at:], pasteEndStr); j >= 0 {
			b.cursor = at + j + len(pasteEndStr)
		} else {
			b.cursor = len(b.text)
		}
		return
	}

	region := pasteStartStr + text + pasteEndStr
	b.text = b.text[:b.cursor] + region + b.text[b.cursor:]
	b.cursor += len(region)
}

// InsertImage splices an image marker at the caret and returns the ordinal
// position at which the caller must insert the matching attachment entry.
func (b *Buffer) InsertImage() int {
	b.clamp()
	ordinal := strings.Count(b.text[:b.cursor], imageMarkerStr)
	b.text = b.text[:b.cursor] + imageMarkerStr + b.text[b.cursor:]
	b.cursor += len(imageMarkerStr)
	return ordinal
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteResult reports what a backward deletion removed so the caller can
// keep its attachment list aligned.
type DeleteResult struct {
	// RemovedImage is set when an image marker was deleted; ImageOrdinal is
	// the index of the attachment entry to drop.
	RemovedImage bool
	ImageOrdinal int
}

// DeleteBackward removes the unit immediately before the caret: a whole
// paste region, one image marker, or one code point.
func (b *Buffer) DeleteBackward() DeleteResult {
	b.clamp()
	if b.cursor == 0 {
		return DeleteResult{}
	}

	r, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	switch r {
	case PasteEnd:
		start := strings.LastIndex(b.text[:b.cursor-size], pasteStartStr)
		if start < 0 {
			// Orphaned end sentinel; drop just the sentinel.
			start = b.cursor - size
		}
		b.text = b.text[:start] + b.text[b.cursor:]
		b.cursor = start
		return DeleteResult{}

	case ImageMarker:
		ordinal := strings.Count(b.text[:b.cursor-size], imageMarkerStr)
		b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
		b.cursor -= size
		return DeleteResult{RemovedImage: true, ImageOrdinal: ordinal}

	default:
		b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
		b.cursor -= size
		return DeleteResult{}
	}
}

// DeleteWord removes the word before the caret: trailing spaces, then the
// run of non-space characters. It stops at region and image boundaries; when
// the caret sits directly on one, the unit itself is removed instead.
func (b *Buffer) DeleteWord() DeleteResult {
	b.clamp()
	if b.cursor == 0 {
		return DeleteResult{}
	}

	if r, _ := utf8.DecodeLastRuneInString(b.text[:b.cursor]); r == PasteEnd || r == ImageMarker {
		return b.DeleteBackward()
	}

	end := b.cursor
	pos := b.cursor
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(b.text[:pos])
		if !unicode.IsSpace(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(b.text[:pos])
		if unicode.IsSpace(r) || isSentinel(r) {
			break
		}
		pos -= size
	}

	b.text = b.text[:pos] + b.text[end:]
	b.cursor = pos
	return DeleteResult{}
}

func isSentinel(r rune) bool {
	return r == PasteStart || r == PasteEnd || r == ImageMarker
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// Display returns the human-readable projection of the buffer and the byte
// offset of the caret within it: paste regions collapse to a one-line
// summary, image markers to a fixed placeholder. Never submit this string.
func (b *Buffer) Display() (string, int) {
	b.clamp()

	var out strings.Builder
	displayCursor := -1
	i := 0
	for i < len(b.text) {
		if i == b.cursor {
			displayCursor = out.Len()
		}
		r, size := utf8.DecodeRuneInString(b.text[i:])
		switch r {
		case PasteStart:
			inner, next := b.regionInner(i)
			lines := strings.Count(inner, "\n") + 1
			out.WriteString(fmt.Sprintf("~%d pasted lines", lines))
			i = next
		case ImageMarker:
			out.WriteString("[image]")
			i += size
		case PasteEnd:
			// Orphaned end sentinel; hide it.
			i += size
		default:
			out.WriteRune(r)
			i += size
		}
	}
	if displayCursor < 0 {
		displayCursor = out.Len()
	}
	return out.String(), displayCursor
}

// regionInner returns the text between the sentinels of the region starting
// at start, and the byte index just past the region.
func (b *Buffer) regionInner(start int) (inner string, next int) {
	from := start + len(pasteStartStr)
	j := strings.Index(b.text[from:], pasteEndStr)
	if j < 0 {
		return b.text[from:], len(b.text)
	}
	return b.text[from : from+j], from + j + len(pasteEndStr)
}

// Submit returns the buffer with every sentinel stripped: paste contents
// stay inline, image markers vanish. This is the only projection that may
// cross the wire.
func (b *Buffer) Submit() string {
	return strings.Map(func(r rune) rune {
		if isSentinel(r) {
			return -1
		}
		return r
	}, b.text)
}

// ImageCount returns how many image markers the buffer holds.
func (b *Buffer) ImageCount() int {
	return strings.Count(b.text, imageMarkerStr)
}
