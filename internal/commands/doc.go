// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// This package owns the fixed set of slash commands, the palette filter
// that narrows them as the user types, and dispatch into UI-supplied
// callbacks. It knows nothing about the UI model itself; the UI hands it
// a Context of closures.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Command: One slash command with its palette metadata
//   - Context: Callbacks the UI wires in for handlers to invoke
//
// # Built-in Commands
//
//   - /new, /clear, /history: Session lifecycle
//   - /plan, /build: Agent switching
//   - /models: Model picker
//   - /reindex, /todos, /revert: Tooling
//   - /about: Version and key reference
//
// # Usage
//
// Filter for the palette while the user types:
//
//	if query, ok := commands.PaletteQuery(input); ok {
//	    visible := commands.Filter(registry.All(), query)
//	}
//
// Execute on submit:
//
//	if commands.IsCommand(input) {
//	    cmd, ok := registry.Execute(ctx, input)
//	}
package commands
