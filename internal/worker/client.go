// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker manages the loomd worker process: spawning it, exchanging
// newline-delimited JSON frames over its pipes, and correlating responses
// back to in-flight calls.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/loom-tui/internal/protocol"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a transport-level failure talking to the worker.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeSpawn
	ErrTypeClosed
	ErrTypeEncode
	ErrTypeWrite
	ErrTypeExited
)

// Sentinel errors for easy checking.
var (
	ErrClientClosed = &ClientError{Type: ErrTypeClosed, Message: "worker client is closed"}
	ErrWorkerExited = &ClientError{Type: ErrTypeExited, Message: "worker process exited"}
)

// RemoteError is a failure the worker reported for a single call. It carries
// the worker's error code so callers can branch on it if they need to.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds spawn options for the worker process.
type Config struct {
	// Command is the worker executable (default: "loomd"). Resolved via PATH
	// when not an absolute path.
	Command string

	// Args are extra arguments passed to the worker.
	Args []string

	// Dir is the working directory the worker starts in (default: inherit).
	Dir string

	// Env is appended to the inherited environment.
	Env []string

	// NotifyBuffer is the notification channel capacity (default: 256).
	NotifyBuffer int
}

// DefaultConfig returns the default spawn configuration.
func DefaultConfig() *Config {
	return &Config{
		Command:      "loomd",
		NotifyBuffer: 256,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

type callResult struct {
	raw json.RawMessage
	err error
}

// Client is a correlating JSON-RPC client over the worker's stdio pipes.
//
// Requests are written one frame per line with monotonically increasing ids.
// A background reader routes response frames to the call that issued them and
// forwards id-less frames to the Notifications channel. All methods are safe
// for concurrent use.
type Client struct {
	cfg   *Config
	cmd   *exec.Cmd
	stdin io.WriteCloser

	writeMu sync.Mutex
	nextID  atomic.Uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan callResult
	fatalErr  error

	notifications chan protocol.Notification
	done          chan struct{}
	closeOnce     sync.Once
}

// Spawn starts the worker process and begins reading its output.
func Spawn(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Command == "" {
		cfg.Command = "loomd"
	}
	if cfg.NotifyBuffer == 0 {
		cfg.NotifyBuffer = 256
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = nil
	setProcAttrs(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &ClientError{Type: ErrTypeSpawn, Message: "failed to open worker stdin", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ClientError{Type: ErrTypeSpawn, Message: "failed to open worker stdout", Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &ClientError{
			Type:    ErrTypeSpawn,
			Message: fmt.Sprintf("failed to start worker (command: %s)", cfg.Command),
			Cause:   err,
		}
	}

	c := newClient(cfg, stdin, stdout)
	c.cmd = cmd
	go c.readLoop(stdout)
	return c, nil
}

// newClient wires a client over explicit pipes. Spawn uses it against the
// worker process; tests use it against in-memory pipes.
func newClient(cfg *Config, stdin io.WriteCloser, stdout io.Reader) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	buffer := cfg.NotifyBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		cfg:           cfg,
		stdin:         stdin,
		pending:       make(map[uint64]chan callResult),
		notifications: make(chan protocol.Notification, buffer),
		done:          make(chan struct{}),
	}
}

// Notifications returns the stream of server-initiated frames. The channel
// is closed once the worker's output pipe closes.
func (c *Client) Notifications() <-chan protocol.Notification {
	return c.notifications
}

// =============================================================================
// CALLS
// =============================================================================

// Call issues a request and blocks until the worker responds, the context is
// cancelled, or the connection dies. The returned bytes are the raw result
// payload for the caller to decode.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := c.nextID.Add(1)

	ch := make(chan callResult, 1)
	c.pendingMu.Lock()
	if c.fatalErr != nil {
		err := c.fatalErr
		c.pendingMu.Unlock()
		return nil, err
	}
	c.pending[id] = ch
	c.pendingMu.Unlock()

	frame := protocol.Request{
		JSONRPC: protocol.Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		c.unregister(id)
		return nil, &ClientError{Type: ErrTypeEncode, Message: "failed to encode request", Cause: err}
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	_, err = c.stdin.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		c.unregister(id)
		return nil, &ClientError{Type: ErrTypeWrite, Message: "failed to write to worker", Cause: err}
	}

	select {
	case res := <-ch:
		return res.raw, res.err
	case <-ctx.Done():
		c.unregister(id)
		return nil, ctx.Err()
	case <-c.done:
		c.unregister(id)
		c.pendingMu.Lock()
		err := c.fatalErr
		c.pendingMu.Unlock()
		if err == nil {
			err = ErrClientClosed
		}
		return nil, err
	}
}

// CallDecode issues a request and decodes the result into out. A nil out
// discards the result.
func (c *Client) CallDecode(ctx context.Context, method string, params interface{}, out interface{}) error {
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) unregister(id uint64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// =============================================================================
// READ LOOP
// =============================================================================

// readLoop consumes worker output line by line until the pipe closes, then
// fails every in-flight call and closes the notification stream.
func (c *Client) readLoop(stdout io.Reader) {
	reader := bufio.NewReaderSize(stdout, 64*1024)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			c.handleLine(line)
		}
		if err != nil {
			break
		}
	}

	c.failAll(ErrWorkerExited)
	close(c.notifications)

	// Reap the process so it doesn't linger as a zombie.
	if c.cmd != nil {
		_ = c.cmd.Wait()
	}
}

func (c *Client) handleLine(line []byte) {
	var frame protocol.Response
	if err := json.Unmarshal(line, &frame); err != nil {
		// Skip malformed lines
		return
	}

	if frame.ID != nil {
		c.deliver(*frame.ID, frame)
		return
	}

	if frame.Method == "" {
		return
	}
	n := protocol.Notification{Method: frame.Method, Params: frame.Params}
	select {
	case c.notifications <- n:
	case <-c.done:
	}
}

// deliver routes a response frame to its pending call. Responses with ids
// nothing is waiting on are dropped.
func (c *Client) deliver(id uint64, frame protocol.Response) {
	c.pendingMu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if !ok {
		return
	}

	if frame.Error != nil {
		ch <- callResult{err: &RemoteError{Code: frame.Error.Code, Message: frame.Error.Message}}
		return
	}
	ch <- callResult{raw: frame.Result}
}

// failAll records the fatal error, fails every pending call with it, and
// makes subsequent calls fail fast.
func (c *Client) failAll(err error) {
	c.pendingMu.Lock()
	if c.fatalErr == nil {
		c.fatalErr = err
	}
	for id, ch := range c.pending {
		ch <- callResult{err: c.fatalErr}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	c.closeOnce.Do(func() { close(c.done) })
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown tears the client down immediately: pending calls fail, the worker
// process is killed, and nothing waits for it to exit cleanly.
func (c *Client) Shutdown() {
	c.failAll(ErrClientClosed)

	c.writeMu.Lock()
	_ = c.stdin.Close()
	c.writeMu.Unlock()

	if c.cmd != nil && c.cmd.Process != nil {
		killProcess(c.cmd)
	}
}

// Done is closed once the client can no longer carry calls.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the fatal error recorded when the connection died, or nil
// while the client is healthy.
func (c *Client) Err() error {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return c.fatalErr
}
