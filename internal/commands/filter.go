// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// =============================================================================
// PALETTE FILTER
// =============================================================================

// Filter narrows the command list for the palette. The query matches
// case-insensitively as a substring of the name, description, or shortcut.
// An empty query returns the full list.
func Filter(cmds []*Command, query string) []*Command {
	if query == "" {
		return cmds
	}
	q := strings.ToLower(query)
	var out []*Command
	for _, cmd := range cmds {
		if matchesQuery(cmd, q) {
			out = append(out, cmd)
		}
	}
	return out
}

func matchesQuery(cmd *Command, q string) bool {
	if strings.Contains(strings.ToLower(cmd.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(cmd.Description), q) {
		return true
	}
	return cmd.Shortcut != "" && strings.Contains(strings.ToLower(cmd.Shortcut), q)
}
