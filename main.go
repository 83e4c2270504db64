// loom - a terminal interface for a coding assistant worker.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/cli"
	"github.com/jeranaias/loom-tui/internal/config"
	"github.com/jeranaias/loom-tui/internal/index"
	"github.com/jeranaias/loom-tui/internal/ui/session"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdPrompt:
		if err := cli.RunPrompt(loadConfig(args), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdREPL:
		if err := cli.RunREPL(loadConfig(args), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		runTUI(args)
	}
}

// loadConfig loads the config (explicit --config path or the default
// chain) and overlays the CLI flags, so flags beat env beat file beat
// defaults. A broken default-chain config is a warning, not a fatal:
// losing your TUI because of a typo in ~/.loom/config.toml is worse
// than running with defaults.
func loadConfig(args cli.Args) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			cfg = config.Default()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (continuing with defaults)\n", err)
		}
	}
	args.Apply(cfg)
	return cfg
}

// resolveProjectDir turns -C/--project (or the cwd) into an absolute path.
func resolveProjectDir(args cli.Args) string {
	dir := args.Project
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
			os.Exit(1)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid project directory %q: %v\n", dir, err)
		os.Exit(1)
	}
	return abs
}

// openIndex opens the file-mention index for the project. Failure is
// not fatal; the TUI runs without @-completion when this returns nil.
func openIndex(cfg *config.Config, projectDir string) *index.Index {
	ic := index.DefaultConfig(projectDir)
	if cfg.Index.MaxDepth > 0 {
		ic.MaxDepth = cfg.Index.MaxDepth
	}
	if cfg.Index.MaxFiles > 0 {
		ic.MaxFiles = cfg.Index.MaxFiles
	}
	ic.EnableWatch = cfg.Index.Watch
	ic.IgnorePatterns = append(ic.IgnorePatterns, cfg.Index.ExtraIgnores...)

	idx, err := index.New(ic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file index unavailable: %v\n", err)
		return nil
	}
	return idx
}

func runTUI(args cli.Args) {
	if err := cli.RequiresTTY("run the TUI"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Try: loom --prompt \"your message\" or loom --repl\n")
		os.Exit(1)
	}

	cfg := loadConfig(args)
	projectDir := resolveProjectDir(args)

	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	idx := openIndex(cfg, projectDir)
	if idx != nil {
		defer idx.Close()
	}

	client, err := cli.SpawnWorker(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start worker %q: %v\n", cfg.Worker.Command, err)
		fmt.Fprintf(os.Stderr, "Install it, or point --worker (or worker.command in ~/.loom/config.toml) at the binary.\n")
		os.Exit(1)
	}
	defer client.Shutdown()

	m := session.New(session.Options{
		Client:     client,
		Config:     cfg,
		Theme:      theme,
		Index:      idx,
		Version:    Version,
		ProjectDir: projectDir,
		Agent:      args.Agent,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running loom: %v\n", err)
		os.Exit(1)
	}

	// The session screen records a worker crash instead of panicking the
	// UI; surface it as a non-zero exit after the terminal is restored.
	if fm, ok := final.(session.Model); ok {
		if err := fm.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
