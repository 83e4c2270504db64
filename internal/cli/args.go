// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Command-line parsing for the loom binary.
//
// loom has a single top-level surface: run the TUI. Two escape hatches
// exist for terminals and scripts that cannot host Bubble Tea: --prompt
// sends one message and prints the answer, --repl runs a plain readline
// loop. Everything else is an override that beats the config file.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/loom-tui/internal/config"
)

// Version information (set at build time via -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command selects the mode the binary runs in.
type Command int

const (
	// CmdTUI runs the full-screen terminal interface (the default).
	CmdTUI Command = iota

	// CmdPrompt sends a single message and prints the final answer.
	CmdPrompt

	// CmdREPL runs the plain readline loop for dumb terminals.
	CmdREPL

	// CmdVersion prints version information and exits.
	CmdVersion

	// CmdHelp prints usage and exits.
	CmdHelp
)

// =============================================================================
// ARGS
// =============================================================================

// Args carries the parsed command line. Zero values mean "not given";
// Apply overlays the non-zero fields onto a loaded config, which makes
// flags the highest-precedence source (flag > env > file > default).
type Args struct {
	// Prompt is the one-shot message text. Empty with CmdPrompt means
	// the text arrives on stdin.
	Prompt string

	// Worker overrides the worker command from config.
	Worker string

	// WorkerArgs are passed to the worker verbatim (everything after --).
	WorkerArgs []string

	// Model overrides the model requested at initialize.
	Model string

	// Agent is the agent to start in ("plan" or "build").
	Agent string

	// Project overrides the project directory (default: cwd).
	Project string

	// Theme overrides the UI theme ("dark", "light", "auto").
	Theme string

	// ConfigPath loads config from an explicit file instead of ~/.loom.
	ConfigPath string

	// Compact switches the timeline to the compact layout.
	Compact bool

	// NoWatch disables the file-mention index watcher.
	NoWatch bool
}

const usageText = `loom - terminal client for the %s coding assistant worker

Usage:
  loom [flags]              Run the TUI (default)
  loom --prompt "text"      Send one message, print the answer, exit
  loom --repl               Plain readline loop (no full-screen UI)

Flags:
  -p, --prompt TEXT    One-shot message (reads stdin when TEXT is omitted)
      --repl           Readline loop instead of the TUI
      --worker CMD     Worker command (default: %s)
  -m, --model ID       Model requested at startup
      --agent NAME     Starting agent: plan or build
  -C, --project DIR    Project directory (default: current directory)
      --theme NAME     UI theme: dark, light, auto
      --config PATH    Config file (default: ~/.loom/config.toml)
      --compact        Compact timeline layout
      --no-watch       Disable live file-index updates
  -V, --version        Print version and exit
  -h, --help           Print this help and exit

Arguments after -- go to the worker process:
  loom --worker ./my-worker -- --verbose
`

// PrintUsage prints the top-level help text.
func PrintUsage() {
	fmt.Printf(usageText, "loomd", "loomd")
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("loom version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument vector. Both "--flag value" and
// "--flag=value" forms are accepted. Unknown flags are ignored rather
// than fatal; the worker owns most behavior and grows flags faster than
// this client does.
func ParseArgs(argv []string) (Command, Args) {
	var args Args
	promptSeen := false
	repl := false

	i := 0
	for i < len(argv) {
		arg := argv[i]

		// Everything after -- belongs to the worker.
		if arg == "--" {
			args.WorkerArgs = append(args.WorkerArgs, argv[i+1:]...)
			break
		}

		switch arg {
		case "-h", "--help":
			return CmdHelp, args
		case "-V", "--version":
			return CmdVersion, args
		case "--repl":
			repl = true
		case "--compact":
			args.Compact = true
		case "--no-watch":
			args.NoWatch = true
		case "-p", "--prompt":
			promptSeen = true
			if i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
				i++
				args.Prompt = argv[i]
			}
		case "--worker":
			if i+1 < len(argv) {
				i++
				args.Worker = argv[i]
			}
		case "-m", "--model":
			if i+1 < len(argv) {
				i++
				args.Model = argv[i]
			}
		case "--agent":
			if i+1 < len(argv) {
				i++
				args.Agent = argv[i]
			}
		case "-C", "--project":
			if i+1 < len(argv) {
				i++
				args.Project = argv[i]
			}
		case "--theme":
			if i+1 < len(argv) {
				i++
				args.Theme = argv[i]
			}
		case "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--prompt="):
				promptSeen = true
				args.Prompt = strings.TrimPrefix(arg, "--prompt=")
			case strings.HasPrefix(arg, "--worker="):
				args.Worker = strings.TrimPrefix(arg, "--worker=")
			case strings.HasPrefix(arg, "--model="):
				args.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--agent="):
				args.Agent = strings.TrimPrefix(arg, "--agent=")
			case strings.HasPrefix(arg, "--project="):
				args.Project = strings.TrimPrefix(arg, "--project=")
			case strings.HasPrefix(arg, "--theme="):
				args.Theme = strings.TrimPrefix(arg, "--theme=")
			case strings.HasPrefix(arg, "--config="):
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			}
		}
		i++
	}

	switch {
	case promptSeen:
		return CmdPrompt, args
	case repl:
		return CmdREPL, args
	default:
		return CmdTUI, args
	}
}

// Apply overlays the flag values onto cfg. Only fields the user actually
// set are copied, so config file and env values survive when no flag was
// given.
func (a Args) Apply(cfg *config.Config) {
	if a.Worker != "" {
		cfg.Worker.Command = a.Worker
	}
	if len(a.WorkerArgs) > 0 {
		cfg.Worker.Args = append(cfg.Worker.Args, a.WorkerArgs...)
	}
	if a.Model != "" {
		cfg.Model.Default = a.Model
	}
	if a.Theme != "" {
		cfg.UI.Theme = a.Theme
	}
	if a.Compact {
		cfg.UI.CompactMode = true
	}
	if a.NoWatch {
		cfg.Index.Watch = false
	}
}
