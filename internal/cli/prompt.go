// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - One-shot mode for the loom CLI.
//
// Handles "loom --prompt" which sends a single message to the worker and
// prints the final answer to stdout. Tool activity and token totals go
// to stderr so the answer stays pipeable.
//
// Examples:
//   loom --prompt "Explain this panic"
//   loom --prompt "Summarize the diff" --agent plan
//   git log -1 | loom --prompt

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/loom-tui/internal/config"
	"github.com/jeranaias/loom-tui/internal/protocol"
	"github.com/jeranaias/loom-tui/internal/ui/components"
	"github.com/jeranaias/loom-tui/internal/util"
	"github.com/jeranaias/loom-tui/internal/worker"
)

// callTimeout bounds the short control calls; send_message is unbounded
// because a turn legitimately runs for minutes.
const callTimeout = 15 * time.Second

// =============================================================================
// WORKER BOOTSTRAP (shared with the REPL)
// =============================================================================

// SpawnWorker starts the worker process described by cfg.
func SpawnWorker(cfg *config.Config) (*worker.Client, error) {
	return worker.Spawn(&worker.Config{
		Command: cfg.Worker.Command,
		Args:    cfg.Worker.Args,
		Dir:     cfg.Worker.Dir,
		Env:     cfg.Worker.Env,
	})
}

// initializeWorker performs the initialize round trip, bounded by the
// configured spawn timeout.
func initializeWorker(client *worker.Client, cfg *config.Config, projectDir string) error {
	params := map[string]interface{}{
		"cwd": projectDir,
	}
	if cfg.Model.Default != "" {
		params["model"] = cfg.Model.Default
	}
	if cfg.Model.Provider != "" {
		params["provider"] = cfg.Model.Provider
	}
	if cfg.Model.ReasoningEffort != "" && cfg.Model.ReasoningEffort != "off" {
		params["reasoningEffort"] = cfg.Model.ReasoningEffort
	}

	timeout := time.Duration(cfg.Worker.SpawnTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = callTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := client.Call(ctx, protocol.MethodInitialize, params)
	return err
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderAnswer renders markdown for terminal display. Piped output gets
// the raw text so downstream tools see what the worker said.
func renderAnswer(content string) string {
	if !IsStdoutTTY() {
		return content
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// TOOL ACTIVITY
// =============================================================================

// watchTools drains worker notifications while a turn runs, echoing each
// tool call to stderr once. The returned stop function ends the drain.
func watchTools(client *worker.Client) (stop func()) {
	done := make(chan struct{})
	go func() {
		seen := make(map[string]bool)
		for {
			select {
			case n, ok := <-client.Notifications():
				if !ok {
					return
				}
				if n.Method != protocol.NotifyTimelineEvent {
					continue
				}
				var ev protocol.TimelineEvent
				if err := json.Unmarshal(n.Params, &ev); err != nil {
					continue
				}
				if ev.Kind != protocol.EventToolCall || ev.ToolName == "" || seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				fmt.Fprintln(os.Stderr,
					toolStyle.Render(components.ToolGlyph(ev.ToolName)+" "+ev.ToolName))
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

// =============================================================================
// PROMPT HANDLER
// =============================================================================

// RunPrompt sends one message and prints the worker's final answer.
// Returns a non-nil error (and thus a non-zero exit) when the worker
// fails or produces no answer.
func RunPrompt(cfg *config.Config, args Args) error {
	text := strings.TrimSpace(args.Prompt)
	if text == "" {
		text = readStdinPrompt()
	}
	if text == "" {
		return errors.New(`no prompt text. Usage: loom --prompt "your message"`)
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

	agent := args.Agent
	if agent != "" {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		_, err := client.Call(ctx, protocol.MethodSetAgent, map[string]interface{}{"agent": agent})
		cancel()
		if err != nil {
			return fmt.Errorf("set_agent failed: %w", err)
		}
	} else {
		agent = "build"
	}

	fmt.Fprintln(os.Stderr, headerStyle.Render("> Running with agent: "+agent))
	fmt.Fprintln(os.Stderr, headerStyle.Render("> Project: "+projectDir))
	fmt.Fprintln(os.Stderr, headerStyle.Render("> You: ")+text)

	stop := watchTools(client)
	defer stop()

	// No timeout here: the turn runs as long as the worker needs.
	params := map[string]interface{}{"content": text}
	if _, err := client.Call(context.Background(), protocol.MethodSendMessage, params); err != nil {
		return fmt.Errorf("send_message failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var st protocol.State
	if err := client.CallDecode(ctx, protocol.MethodGetState, nil, &st); err != nil {
		return fmt.Errorf("get_state failed: %w", err)
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

// finalAssistantContent returns the content of the last completed
// assistant message in the timeline.
func finalAssistantContent(st protocol.State) string {
	for i := len(st.TimelineEvents) - 1; i >= 0; i-- {
		ev := st.TimelineEvents[i]
		if ev.Kind == protocol.EventAssistant && strings.TrimSpace(ev.Content) != "" {
			return ev.Content
		}
	}
	return ""
}

// readStdinPrompt reads piped stdin as the prompt text. Returns empty
// when stdin is a terminal.
func readStdinPrompt() string {
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
