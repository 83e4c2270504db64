// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/jeranaias/loom-tui/internal/config"
)

// =============================================================================
// COMMAND SELECTION
// =============================================================================

func TestParseArgs_CommandSelection(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no arguments runs the TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "override flags alone still run the TUI",
			argv:    []string{"--compact", "--theme", "light"},
			wantCmd: CmdTUI,
			validate: func(t *testing.T, a Args) {
				if !a.Compact {
					t.Error("Compact should be true")
				}
				if a.Theme != "light" {
					t.Errorf("Theme = %q, want %q", a.Theme, "light")
				}
			},
		},
		{
			name:    "prompt with text",
			argv:    []string{"--prompt", "fix the tests"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "fix the tests" {
					t.Errorf("Prompt = %q, want %q", a.Prompt, "fix the tests")
				}
			},
		},
		{
			name:    "short prompt flag",
			argv:    []string{"-p", "hello"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "hello" {
					t.Errorf("Prompt = %q, want %q", a.Prompt, "hello")
				}
			},
		},
		{
			name:    "prompt with equals form",
			argv:    []string{"--prompt=explain main.go"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "explain main.go" {
					t.Errorf("Prompt = %q, want %q", a.Prompt, "explain main.go")
				}
			},
		},
		{
			name:    "bare prompt reads stdin",
			argv:    []string{"--prompt"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "" {
					t.Errorf("Prompt = %q, want empty (stdin mode)", a.Prompt)
				}
			},
		},
		{
			name:    "prompt does not swallow a following flag",
			argv:    []string{"--prompt", "--compact"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "" {
					t.Errorf("Prompt = %q, want empty", a.Prompt)
				}
				if !a.Compact {
					t.Error("Compact should still be parsed after bare --prompt")
				}
			},
		},
		{
			name:    "repl flag",
			argv:    []string{"--repl"},
			wantCmd: CmdREPL,
		},
		{
			name:    "prompt beats repl",
			argv:    []string{"--repl", "-p", "hi"},
			wantCmd: CmdPrompt,
		},
		{
			name:    "version short",
			argv:    []string{"-V"},
			wantCmd: CmdVersion,
		},
		{
			name:    "version long",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help short",
			argv:    []string{"-h"},
			wantCmd: CmdHelp,
		},
		{
			name:    "help long",
			argv:    []string{"--help"},
			wantCmd: CmdHelp,
		},
		{
			name:    "unknown flags are ignored",
			argv:    []string{"--frobnicate", "-p", "hi"},
			wantCmd: CmdPrompt,
			validate: func(t *testing.T, a Args) {
				if a.Prompt != "hi" {
					t.Errorf("Prompt = %q, want %q", a.Prompt, "hi")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("ParseArgs(%v) command = %d, want %d", tt.argv, cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

// =============================================================================
// VALUE FLAGS
// =============================================================================

func TestParseArgs_ValueFlags(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		get  func(Args) string
		want string
	}{
		{
			name: "worker space form",
			argv: []string{"--worker", "./dev-worker"},
			get:  func(a Args) string { return a.Worker },
			want: "./dev-worker",
		},
		{
			name: "worker equals form",
			argv: []string{"--worker=/usr/local/bin/loomd"},
			get:  func(a Args) string { return a.Worker },
			want: "/usr/local/bin/loomd",
		},
		{
			name: "model short",
			argv: []string{"-m", "claude-sonnet-4"},
			get:  func(a Args) string { return a.Model },
			want: "claude-sonnet-4",
		},
		{
			name: "model long",
			argv: []string{"--model", "gpt-5"},
			get:  func(a Args) string { return a.Model },
			want: "gpt-5",
		},
		{
			name: "model equals form",
			argv: []string{"--model=qwen2.5:14b"},
			get:  func(a Args) string { return a.Model },
			want: "qwen2.5:14b",
		},
		{
			name: "agent",
			argv: []string{"--agent", "plan"},
			get:  func(a Args) string { return a.Agent },
			want: "plan",
		},
		{
			name: "project short",
			argv: []string{"-C", "/home/dev/proj"},
			get:  func(a Args) string { return a.Project },
			want: "/home/dev/proj",
		},
		{
			name: "project equals form",
			argv: []string{"--project=/tmp/scratch"},
			get:  func(a Args) string { return a.Project },
			want: "/tmp/scratch",
		},
		{
			name: "theme",
			argv: []string{"--theme", "dark"},
			get:  func(a Args) string { return a.Theme },
			want: "dark",
		},
		{
			name: "config path",
			argv: []string{"--config", "/etc/loom.toml"},
			get:  func(a Args) string { return a.ConfigPath },
			want: "/etc/loom.toml",
		},
		{
			name: "config equals form",
			argv: []string{"--config=/etc/loom.toml"},
			get:  func(a Args) string { return a.ConfigPath },
			want: "/etc/loom.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != CmdTUI {
				t.Errorf("ParseArgs(%v) command = %d, want CmdTUI", tt.argv, cmd)
			}
			if got := tt.get(args); got != tt.want {
				t.Errorf("ParseArgs(%v) value = %q, want %q", tt.argv, got, tt.want)
			}
		})
	}
}

// =============================================================================
// WORKER PASSTHROUGH
// =============================================================================

func TestParseArgs_WorkerPassthrough(t *testing.T) {
	cmd, args := ParseArgs([]string{"--worker", "./w", "--", "--verbose", "--port", "9001"})
	if cmd != CmdTUI {
		t.Errorf("command = %d, want CmdTUI", cmd)
	}
	if args.Worker != "./w" {
		t.Errorf("Worker = %q, want %q", args.Worker, "./w")
	}
	joined := strings.Join(args.WorkerArgs, " ")
	if joined != "--verbose --port 9001" {
		t.Errorf("WorkerArgs = %q, want %q", joined, "--verbose --port 9001")
	}
}

func TestParseArgs_SeparatorStopsParsing(t *testing.T) {
	// Flags after -- belong to the worker, even ones loom knows.
	cmd, args := ParseArgs([]string{"--", "--repl", "--prompt", "hi"})
	if cmd != CmdTUI {
		t.Errorf("command = %d, want CmdTUI", cmd)
	}
	if args.Prompt != "" {
		t.Errorf("Prompt = %q, want empty", args.Prompt)
	}
	if len(args.WorkerArgs) != 3 {
		t.Errorf("len(WorkerArgs) = %d, want 3", len(args.WorkerArgs))
	}
}

func TestParseArgs_TrailingSeparator(t *testing.T) {
	_, args := ParseArgs([]string{"--repl", "--"})
	if len(args.WorkerArgs) != 0 {
		t.Errorf("len(WorkerArgs) = %d, want 0", len(args.WorkerArgs))
	}
}

// =============================================================================
// CONFIG OVERLAY
// =============================================================================

func TestArgsApply_OverridesConfig(t *testing.T) {
	cfg := config.Default()
	args := Args{
		Worker:     "./custom-worker",
		WorkerArgs: []string{"--debug"},
		Model:      "gpt-5",
		Theme:      "light",
		Compact:    true,
		NoWatch:    true,
	}
	args.Apply(cfg)

	if cfg.Worker.Command != "./custom-worker" {
		t.Errorf("Worker.Command = %q, want %q", cfg.Worker.Command, "./custom-worker")
	}
	if len(cfg.Worker.Args) != 1 || cfg.Worker.Args[0] != "--debug" {
		t.Errorf("Worker.Args = %v, want [--debug]", cfg.Worker.Args)
	}
	if cfg.Model.Default != "gpt-5" {
		t.Errorf("Model.Default = %q, want %q", cfg.Model.Default, "gpt-5")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "light")
	}
	if !cfg.UI.CompactMode {
		t.Error("UI.CompactMode should be true")
	}
	if cfg.Index.Watch {
		t.Error("Index.Watch should be false after --no-watch")
	}
}

func TestArgsApply_ZeroValuesKeepConfig(t *testing.T) {
	cfg := config.Default()
	Args{}.Apply(cfg)

	if cfg.Worker.Command != "loomd" {
		t.Errorf("Worker.Command = %q, want %q", cfg.Worker.Command, "loomd")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("UI.Theme = %q, want %q", cfg.UI.Theme, "auto")
	}
	if cfg.UI.CompactMode {
		t.Error("UI.CompactMode should stay false")
	}
	if !cfg.Index.Watch {
		t.Error("Index.Watch should stay true")
	}
}

func TestArgsApply_WorkerArgsAppend(t *testing.T) {
	cfg := config.Default()
	cfg.Worker.Args = []string{"--from-config"}
	Args{WorkerArgs: []string{"--from-flag"}}.Apply(cfg)

	joined := strings.Join(cfg.Worker.Args, " ")
	if joined != "--from-config --from-flag" {
		t.Errorf("Worker.Args = %q, want %q", joined, "--from-config --from-flag")
	}
}
