// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff parses unified diffs out of tool output for display.
//
// Tool results frequently carry a unified diff describing an edit the agent
// made. This package detects such payloads and parses them into typed hunks
// and lines with old/new numbering so the renderer can draw them with
// gutters and colors.
//
// # Key Types
//
//   - DiffLineType: Type of diff line (context, added, removed)
//   - DiffLine: Single line in a diff with type, content and numbering
//   - DiffHunk: Group of related diff lines under one @@ header
//   - Diff: Complete parsed diff with hunks and statistics
//
// # Usage
//
// Detect and parse a tool result:
//
//	if diff.IsUnifiedDiff(content) {
//	    d, ok := diff.Parse(content)
//	    if ok {
//	        fmt.Println(d.Summary())
//	    }
//	}
package diff
