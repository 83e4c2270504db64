// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/history")
	Name string

	// Aliases are alternative names (e.g., "/n")
	Aliases []string

	// Description is shown in the command palette
	Description string

	// Usage shows argument syntax when the command takes any
	Usage string

	// Shortcut is the key binding that triggers the same action, if one
	// exists; the palette filter matches on it too
	Shortcut string

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in the palette
	Hidden bool

	// Category for grouping in the about screen
	Category string
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []string
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns visible commands in registration order, which is also the
// palette's display order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Hidden {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new session",
		Shortcut:    "ctrl+n",
		Category:    "Conversation",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the current session",
		Shortcut:    "ctrl+l",
		Category:    "Conversation",
		Handler:     handleClear,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "Browse saved sessions",
		Category:    "Conversation",
		Handler:     handleHistory,
	})

	r.Register(&Command{
		Name:        "/plan",
		Description: "Switch to the plan agent",
		Shortcut:    "tab",
		Category:    "Agent",
		Handler:     handlePlan,
	})

	r.Register(&Command{
		Name:        "/build",
		Description: "Switch to the build agent",
		Shortcut:    "tab",
		Category:    "Agent",
		Handler:     handleBuild,
	})

	r.Register(&Command{
		Name:        "/models",
		Aliases:     []string{"/m"},
		Description: "Select a model",
		Category:    "Model",
		Handler:     handleModels,
	})

	r.Register(&Command{
		Name:        "/reindex",
		Description: "Rebuild the project file index",
		Category:    "Tools",
		Handler:     handleReindex,
	})

	r.Register(&Command{
		Name:        "/todos",
		Description: "Toggle the todo strip",
		Shortcut:    "ctrl+t",
		Category:    "Tools",
		Handler:     handleTodos,
	})

	r.Register(&Command{
		Name:        "/revert",
		Description: "Revert the last file edit",
		Category:    "Tools",
		Handler:     handleRevert,
	})

	r.Register(&Command{
		Name:        "/about",
		Description: "Version and key reference",
		Category:    "Navigation",
		Handler:     handleAbout,
	})
}

// =============================================================================
// HANDLER IMPLEMENTATIONS
// =============================================================================

// Handlers delegate to the callbacks the UI injected. A nil callback means
// the surrounding mode doesn't support the action; the command is a no-op
// then.

func handleNew(ctx *Context, args []string) tea.Cmd {
	if ctx.NewSession == nil {
		return nil
	}
	return ctx.NewSession()
}

func handleClear(ctx *Context, args []string) tea.Cmd {
	if ctx.ClearSession == nil {
		return nil
	}
	return ctx.ClearSession()
}

func handleHistory(ctx *Context, args []string) tea.Cmd {
	if ctx.OpenHistory == nil {
		return nil
	}
	return ctx.OpenHistory()
}

func handlePlan(ctx *Context, args []string) tea.Cmd {
	if ctx.SetAgent == nil {
		return nil
	}
	return ctx.SetAgent("plan")
}

func handleBuild(ctx *Context, args []string) tea.Cmd {
	if ctx.SetAgent == nil {
		return nil
	}
	return ctx.SetAgent("build")
}

func handleModels(ctx *Context, args []string) tea.Cmd {
	if ctx.OpenModels == nil {
		return nil
	}
	return ctx.OpenModels()
}

func handleReindex(ctx *Context, args []string) tea.Cmd {
	if ctx.Reindex == nil {
		return nil
	}
	return ctx.Reindex()
}

func handleTodos(ctx *Context, args []string) tea.Cmd {
	if ctx.ToggleTodos == nil {
		return nil
	}
	return ctx.ToggleTodos()
}

func handleRevert(ctx *Context, args []string) tea.Cmd {
	if ctx.RevertLast == nil {
		return nil
	}
	return ctx.RevertLast()
}

func handleAbout(ctx *Context, args []string) tea.Cmd {
	if ctx.ShowAbout == nil {
		return nil
	}
	return ctx.ShowAbout()
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides command handlers access to session actions without
// coupling this package to the UI model. The UI wires its own methods in;
// handlers check for nil before calling.
//
// Example usage in a handler:
//
//	func handleTodos(ctx *Context, args []string) tea.Cmd {
//	    if ctx.ToggleTodos == nil {
//	        return nil
//	    }
//	    return ctx.ToggleTodos()
//	}
type Context struct {
	// NewSession starts a fresh session, clearing worker state.
	NewSession func() tea.Cmd

	// ClearSession clears the current session's timeline.
	ClearSession func() tea.Cmd

	// OpenHistory fetches saved sessions and opens the history browser.
	OpenHistory func() tea.Cmd

	// SetAgent switches the active agent ("plan" or "build").
	SetAgent func(agent string) tea.Cmd

	// OpenModels fetches the model list and opens the picker.
	OpenModels func() tea.Cmd

	// Reindex rebuilds the file-mention index and asks the worker to do
	// the same for its code search.
	Reindex func() tea.Cmd

	// ToggleTodos shows or hides the todo strip.
	ToggleTodos func() tea.Cmd

	// RevertLast undoes the most recent file edit via the worker.
	RevertLast func() tea.Cmd

	// ShowAbout opens the help/about overlay.
	ShowAbout func() tea.Cmd
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses a slash command line and runs its handler. The second
// return is false when no such command exists.
func (r *Registry) Execute(ctx *Context, input string) (tea.Cmd, bool) {
	fields := splitCommandLine(strings.TrimSpace(input))
	if len(fields) == 0 {
		return nil, false
	}
	cmd := r.Get(fields[0])
	if cmd == nil {
		return nil, false
	}
	return cmd.Handler(ctx, fields[1:]), true
}
