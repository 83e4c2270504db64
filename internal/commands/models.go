// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// MODEL PICKER FILTER & SORT
// =============================================================================

// FilterModels narrows the model list for the picker. The query matches
// case-insensitively as a substring of the name, id, group, or provider.
// An empty or whitespace-only query returns the full list.
func FilterModels(entries []protocol.ModelEntry, query string) []protocol.ModelEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	var out []protocol.ModelEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.ID), q) ||
			strings.Contains(strings.ToLower(e.Group), q) ||
			strings.Contains(strings.ToLower(e.Provider), q) {
			out = append(out, e)
		}
	}
	return out
}

// SortModelsByProvider orders entries for display: the "openai" group comes
// first, remaining groups follow in lexical order, and entries are sorted by
// name within each group. The input slice is not modified.
func SortModelsByProvider(entries []protocol.ModelEntry) []protocol.ModelEntry {
	sorted := make([]protocol.ModelEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		gi, gj := strings.ToLower(sorted[i].Group), strings.ToLower(sorted[j].Group)
		if gi != gj {
			if gi == "openai" {
				return true
			}
			if gj == "openai" {
				return false
			}
			return gi < gj
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
