// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff parses unified diffs out of tool output for display.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// DIFF TYPES
// =============================================================================

// DiffLineType represents the type of a diff line.
type DiffLineType int

const (
	// DiffLineContext represents unchanged context lines
	DiffLineContext DiffLineType = iota
	// DiffLineAdded represents added lines
	DiffLineAdded
	// DiffLineRemoved represents removed lines
	DiffLineRemoved
)

// String returns the string representation of a diff line type.
func (t DiffLineType) String() string {
	switch t {
	case DiffLineContext:
		return "context"
	case DiffLineAdded:
		return "added"
	case DiffLineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the diff prefix character for this line type.
func (t DiffLineType) Prefix() string {
	switch t {
	case DiffLineContext:
		return " "
	case DiffLineAdded:
		return "+"
	case DiffLineRemoved:
		return "-"
	default:
		return " "
	}
}

// =============================================================================
// DIFF LINE
// =============================================================================

// DiffLine represents a single line in a diff.
type DiffLine struct {
	Type    DiffLineType // Type of line (added, removed, context)
	Content string       // The line content without its prefix character
	OldLine int          // Line number in old file (0 if added)
	NewLine int          // Line number in new file (0 if removed)
}

// =============================================================================
// DIFF HUNK
// =============================================================================

// DiffHunk represents a contiguous section of changes.
type DiffHunk struct {
	Header   string     // The original @@ header line, passed through verbatim
	OldStart int        // Starting line in old file
	OldCount int        // Number of lines in old file
	NewStart int        // Starting line in new file
	NewCount int        // Number of lines in new file
	Lines    []DiffLine // The actual diff lines
}

// =============================================================================
// DIFF STATS
// =============================================================================

// DiffStats holds statistics about a diff.
type DiffStats struct {
	Additions int    // Number of added lines
	Deletions int    // Number of removed lines
	FileMode  string // "new", "modified", "deleted"
}

// =============================================================================
// DIFF
// =============================================================================

// Diff represents a parsed unified diff.
type Diff struct {
	FilePath string     // Path from the +++/--- headers, if present
	Hunks    []DiffHunk // The diff hunks
	Stats    DiffStats  // Statistics
}

// =============================================================================
// DETECTION
// =============================================================================

// hunkHeaderRe matches "@@ -old[,count] +new[,count] @@" with an optional
// trailing section heading.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// IsUnifiedDiff reports whether content carries at least one parseable hunk.
// Tool results that merely mention "+x" lines in prose don't qualify.
func IsUnifiedDiff(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if hunkHeaderRe.MatchString(line) {
			return true
		}
	}
	return false
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a unified diff from tool output. Preamble lines before the
// first file header or hunk are tolerated and skipped; parsing is forgiving
// because tool output sometimes wraps the diff in extra text. Returns false
// when no hunk could be parsed.
func Parse(content string) (*Diff, bool) {
	content = strings.TrimSuffix(content, "\n")
	d := &Diff{}

	var (
		current  *DiffHunk
		oldNext  int
		newNext  int
		sawOld   bool
		sawNew   bool
		oldIsNul bool
		newIsNul bool
	)

	flush := func() {
		if current != nil {
			d.Hunks = append(d.Hunks, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &DiffHunk{
				Header:   line,
				OldStart: atoi(m[1]),
				OldCount: atoiDefault(m[2], 1),
				NewStart: atoi(m[3]),
				NewCount: atoiDefault(m[4], 1),
			}
			oldNext = current.OldStart
			newNext = current.NewStart
			continue
		}

		if strings.HasPrefix(line, "--- ") {
			flush()
			sawOld = true
			oldIsNul = strings.Contains(line, "/dev/null")
			if d.FilePath == "" {
				d.FilePath = headerPath(line[4:])
			}
			continue
		}
		if strings.HasPrefix(line, "+++ ") {
			flush()
			sawNew = true
			newIsNul = strings.Contains(line, "/dev/null")
			if p := headerPath(line[4:]); p != "" && (d.FilePath == "" || oldIsNul) {
				d.FilePath = p
			}
			continue
		}

		if current == nil {
			// Preamble, "diff --git", "index ..." and the like.
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineAdded,
				Content: line[1:],
				NewLine: newNext,
			})
			newNext++
			d.Stats.Additions++
		case strings.HasPrefix(line, "-"):
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineRemoved,
				Content: line[1:],
				OldLine: oldNext,
			})
			oldNext++
			d.Stats.Deletions++
		case strings.HasPrefix(line, " "):
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineContext,
				Content: line[1:],
				OldLine: oldNext,
				NewLine: newNext,
			})
			oldNext++
			newNext++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" applies to the previous line;
			// it carries no numbering of its own.
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineContext,
				Content: line,
			})
		case line == "":
			// Blank context line with its prefix space trimmed by transport.
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineContext,
				OldLine: oldNext,
				NewLine: newNext,
			})
			oldNext++
			newNext++
		default:
			// The diff ended and prose resumed.
			flush()
		}
	}
	flush()

	if len(d.Hunks) == 0 {
		return nil, false
	}

	switch {
	case sawOld && oldIsNul:
		d.Stats.FileMode = "new"
	case sawNew && newIsNul:
		d.Stats.FileMode = "deleted"
	case len(d.Hunks) > 0 && d.Hunks[0].OldStart == 0 && d.Hunks[0].OldCount == 0:
		d.Stats.FileMode = "new"
	default:
		d.Stats.FileMode = "modified"
	}

	return d, true
}

// headerPath strips the customary a/ or b/ prefix and any trailing metadata
// from a file header path.
func headerPath(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	if s == "/dev/null" {
		return ""
	}
	s = strings.TrimPrefix(s, "a/")
	s = strings.TrimPrefix(s, "b/")
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary returns a human-readable summary of the diff.
func (d *Diff) Summary() string {
	var parts []string

	if d.Stats.FileMode == "new" {
		parts = append(parts, "New file")
	} else if d.Stats.FileMode == "deleted" {
		parts = append(parts, "File deleted")
	} else {
		parts = append(parts, "Modified")
	}

	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}

	return strings.Join(parts, " ")
}

// LineCount returns the total number of diff lines across all hunks.
func (d *Diff) LineCount() int {
	n := 0
	for _, h := range d.Hunks {
		n += len(h.Lines)
	}
	return n
}
