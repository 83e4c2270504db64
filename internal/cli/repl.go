// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Plain readline loop for the loom CLI.
//
// Handles "loom --repl", the fallback for terminals that cannot host the
// full-screen UI. One worker turn per line, answers rendered the same way
// as --prompt, input history persisted under the config directory.
//
// Commands: /help /clear /models /model /provider /agent /quit

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/config"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/util"
	"github.com/jeranaias/loom-tui/internal/worker"
)

// abortTimeout bounds the abort call fired after a cancelled turn.
const abortTimeout = 5 * time.Second

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with history persistence.
type replInput struct {
	line        *liner.State
	historyFile string
	maxEntries  int
	persist     bool
}

func newReplInput(cfg *config.Config) *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "loom_history")
	}

	in := &replInput{
		line:        line,
		historyFile: historyFile,
		maxEntries:  cfg.History.MaxEntries,
		persist:     cfg.History.Enabled,
	}
	if in.persist {
		in.loadHistory()
	}
	return in
}

func (in *replInput) loadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation; non-empty input is
// appended to the history.
func (in *replInput) ReadInput(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists the history file with owner-only permissions,
// trimmed to the configured entry cap.
func (in *replInput) saveHistory() {
	if !in.persist {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	var buf bytes.Buffer
	if _, err := in.line.WriteHistory(&buf); err != nil {
		return
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if in.maxEntries > 0 && len(lines) > in.maxEntries {
		lines = lines[len(lines)-in.maxEntries:]
	}

	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	for _, l := range lines {
		fmt.Fprintln(f, l)
	}
}

// Close saves history and restores the terminal.
func (in *replInput) Close() {
	in.saveHistory()
	in.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// replSession holds the loop state for one REPL run.
type replSession struct {
	client *worker.Client
	input  *replInput

	// cancel aborts the in-flight turn when ctrl+c arrives mid-send.
	cancel context.CancelFunc
}

// =============================================================================
// REPL LOOP
// =============================================================================

// RunREPL runs the plain readline loop against the worker.
func RunREPL(cfg *config.Config, args Args) error {
	if err := RequiresTTY("run the REPL"); err != nil {
		return err
	}

	projectDir := args.Project
	if projectDir == "" {
		if wd, err := os.Getwd(); err == nil {
			projectDir = wd
		}
	}

	client, err := SpawnWorker(cfg)
	if err != nil {
		return err
	}
	defer client.Shutdown()

	if err := initializeWorker(client, cfg, projectDir); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	if args.Agent != "" {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		_, err := client.Call(ctx, protocol.MethodSetAgent, map[string]interface{}{"agent": args.Agent})
		cancel()
		if err != nil {
			return fmt.Errorf("set_agent failed: %w", err)
		}
	}

	session := &replSession{
		client: client,
		input:  newReplInput(cfg),
	}
	defer session.input.Close()

	stop := watchTools(client)
	defer stop()

	// First ctrl+c during a turn cancels it; at the prompt, liner turns
	// ctrl+c into ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if session.cancel != nil {
				session.cancel()
				session.cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+warnStyle.Render("[Cancelled]"))
			}
		}
	}()

	fmt.Println(promptStyle.Render("loom " + Version))
	fmt.Println(infoStyle.Render("Plain REPL. /help for commands, /quit or ctrl+d to exit."))
	fmt.Println()

	for {
		input, err := session.input.ReadInput(promptStyle.Render("loom> "))
		if err != nil {
			// ErrPromptAborted (ctrl+c) and io.EOF (ctrl+d) both exit.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := handleReplCommand(session, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := session.send(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// send runs one worker turn and prints the answer.
func (s *replSession) send(text string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer func() {
		s.cancel = nil
		cancel()
	}()

	params := map[string]interface{}{"content": text}
	if _, err := s.client.Call(ctx, protocol.MethodSendMessage, params); err != nil {
		if errors.Is(err, context.Canceled) {
			// The turn was interrupted; tell the worker to stop too.
			actx, acancel := context.WithTimeout(context.Background(), abortTimeout)
			defer acancel()
			s.client.Call(actx, protocol.MethodAbort, nil)
			return nil
		}
		return err
	}

	sctx, scancel := context.WithTimeout(context.Background(), callTimeout)
	defer scancel()
	var st protocol.State
	if err := s.client.CallDecode(sctx, protocol.MethodGetState, nil, &st); err != nil {
		return err
	}
	if st.Error != "" {
		return errors.New(st.Error)
	}

	answer := finalAssistantContent(st)
	if answer == "" {
		return errors.New("worker produced no answer")
	}
	out := renderAnswer(answer)
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}

	tokens := st.Tokens
	if st.SessionTokens != nil {
		tokens = *st.SessionTokens
	}
	fmt.Fprintln(os.Stderr, mutedStyle.Render(fmt.Sprintf(
		"Tokens: %s in / %s out",
		util.FormatCount(tokens.Input), util.FormatCount(tokens.Output))))

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleReplCommand executes a slash command. The first return is false
// when the loop should exit.
func handleReplCommand(s *replSession, input string) (bool, error) {
	fields := strings.Fields(input)

	switch fields[0] {
	case "/help":
		fmt.Println(infoStyle.Render("  /clear            start over (clears the session)"))
		fmt.Println(infoStyle.Render("  /models           list available models"))
		fmt.Println(infoStyle.Render("  /model ID         switch model"))
		fmt.Println(infoStyle.Render("  /provider NAME    pin a provider"))
		fmt.Println(infoStyle.Render("  /agent NAME       switch agent (plan, build)"))
		fmt.Println(infoStyle.Render("  /quit             exit"))
		return true, nil

	case "/quit", "/exit", "/q":
		return false, nil

	case "/clear":
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if _, err := s.client.Call(ctx, protocol.MethodClear, nil); err != nil {
			return true, err
		}
		fmt.Println(infoStyle.Render("Session cleared."))
		return true, nil

	case "/models":
		return true, listModels(s.client)

	case "/model":
		if len(fields) < 2 {
			return true, errors.New("usage: /model ID")
		}
		return true, setOption(s.client, protocol.MethodSetModel, "model", fields[1], "Model: "+fields[1])

	case "/provider":
		if len(fields) < 2 {
			return true, errors.New("usage: /provider NAME")
		}
		return true, setOption(s.client, protocol.MethodSetProvider, "provider", fields[1], "Provider: "+fields[1])

	case "/agent":
		if len(fields) < 2 {
			return true, errors.New("usage: /agent NAME")
		}
		return true, setOption(s.client, protocol.MethodSetAgent, "agent", fields[1], "Agent: "+fields[1])

	default:
		return true, fmt.Errorf("unknown command: %s (try /help)", fields[0])
	}
}

// setOption issues a single-field setter call and echoes the new value.
func setOption(client *worker.Client, method, key, value, echo string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if _, err := client.Call(ctx, method, map[string]interface{}{key: value}); err != nil {
		return err
	}
	fmt.Println(infoStyle.Render(echo))
	return nil
}

// listModels prints the model catalog grouped by provider.
func listModels(client *worker.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var result struct {
		Models []protocol.ModelEntry `json:"models"`
	}
	if err := client.CallDecode(ctx, protocol.MethodListModels, nil, &result); err != nil {
		return err
	}
	if len(result.Models) == 0 {
		fmt.Println(infoStyle.Render("No models reported."))
		return nil
	}

	sorted := commands.SortModelsByProvider(result.Models)
	group := ""
	for _, m := range sorted {
		if m.Group != group {
			group = m.Group
			label := group
			if label == "" {
				label = "other"
			}
			fmt.Println(promptStyle.Render(label))
		}
		fmt.Printf("  %s %s\n", m.Name, mutedStyle.Render("("+m.ID+")"))
	}
	return nil
}
