// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI run modes
// for loom.
//
// # Key Types
//
//   - Command: which mode the binary runs in (TUI, prompt, REPL)
//   - Args: parsed command-line flags, overlaid onto config via Apply
//
// # Usage
//
// Parse and dispatch:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdPrompt:
//	    err = cli.RunPrompt(cfg, args)
//	case cli.CmdREPL:
//	    err = cli.RunREPL(cfg, args)
//	// CmdTUI is handled by main with the Bubble Tea program.
//	}
//
// # Modes Overview
//
//   - (default): full-screen terminal interface
//   - --prompt: send one message, print the answer, exit
//   - --repl: plain readline loop for dumb terminals
//
// Both non-TUI modes talk to the same worker process over the same
// protocol as the TUI; they only swap the presentation layer.
package cli
