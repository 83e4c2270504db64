// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the loom client.
//
// This package contains common helper functions used throughout the
// application for string measurement, display formatting, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth, StringWidth, PadWidth: terminal-column aware sizing
//
// Display Formatting:
//   - FormatCount: thousands-separated integers for token counters
//   - FormatPercent, FormatBytes: compact human-readable values
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateRunes(longText, 50)
//
//	// Format token counts for the status line
//	s := util.FormatCount(128514)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
