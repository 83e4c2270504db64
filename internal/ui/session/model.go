// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loom-tui/internal/commands"
	"github.com/jeranaias/loom-tui/internal/config"
	"github.com/jeranaias/loom-tui/internal/editor"
	"github.com/jeranaias/loom-tui/internal/index"
	"github.com/jeranaias/loom-tui/internal/protocol"
	state "github.com/jeranaias/loom-tui/internal/session"
	"github.com/jeranaias/loom-tui/internal/ui/components"
	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/worker"
)

// =============================================================================
// MODES
// =============================================================================

// Mode is the interaction state of the session screen. Exactly one mode is
// active at a time; a flat switch over this enum drives key dispatch.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommandPalette
	ModeFileMention
	ModeModelPicker
	ModeSessionHistory
	ModeQuestionPrompt
	ModePlanActions
	ModeHelpAbout
)

// String names the mode for test failures and session-info display.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeCommandPalette:
		return "command-palette"
	case ModeFileMention:
		return "file-mention"
	case ModeModelPicker:
		return "model-picker"
	case ModeSessionHistory:
		return "session-history"
	case ModeQuestionPrompt:
		return "question-prompt"
	case ModePlanActions:
		return "plan-actions"
	case ModeHelpAbout:
		return "help-about"
	default:
		return "unknown"
	}
}

// mentionResultLimit caps the file rows the @-picker shows per query.
const mentionResultLimit = 10

// =============================================================================
// OVERLAY SUBSTATE
// =============================================================================

// paletteState is the command palette's transient state. filtered is
// recomputed on every query edit.
type paletteState struct {
	query    string
	filtered []*commands.Command
	selected int
	offset   int
}

// mentionState is the @-mention picker's transient state. results come from
// the local index; the query never touches the input buffer until commit.
type mentionState struct {
	query    string
	results  []string
	selected int
}

// pickerState is the model picker's transient state. entries holds the full
// provider-sorted list; filtered is the view of it under the query. The
// custom row sits at index len(filtered).
type pickerState struct {
	entries     []protocol.ModelEntry
	filtered    []protocol.ModelEntry
	query       string
	selected    int
	offset      int
	customMode  bool
	customInput string
}

// historyState is the session browser's transient state. stale is set when
// a session_changed notification arrives while the browser is open.
type historyState struct {
	sessions []protocol.SessionSummary
	selected int
	offset   int
	renaming bool
	stale    bool
}

// questionState is the pending-question prompt's transient state. focused
// ranges over the options plus, when the worker allows one, the custom row
// at index len(options).
type questionState struct {
	pending      *protocol.PendingQuestion
	question     protocol.Question
	checked      []bool
	focused      int
	customActive bool
	customInput  string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the session screen. It owns the worker client for the lifetime
// of the program and folds every worker notification through the state
// store before rendering.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	width  int
	height int
	ready  bool

	client *worker.Client
	store  *state.Store
	cfg    *config.Config

	version    string
	projectDir string
	startAgent string

	buf         *editor.Buffer
	attachments []protocol.Attachment

	registry *commands.Registry
	cmdCtx   *commands.Context
	idx      *index.Index

	timeline  *components.TimelineRenderer
	inputBox  *components.InputBox
	statusBar *components.StatusLine
	todoStrip *components.TodoStrip
	overlays  *components.Overlays
	toast     *components.Toast
	spin      *components.Spinner
	splash    *components.Splash

	viewport    viewport.Model
	renameInput textinput.Model

	mode     Mode
	palette  paletteState
	mention  mentionState
	picker   pickerState
	history  historyState
	question questionState

	todos         []protocol.TodoItem
	todoCounts    protocol.TodoCounts
	showTodos     bool
	todosExpanded bool
	todoPoll      bool
	questionPoll  bool

	// activeQuestionID is the id of the question set currently (or last)
	// displayed; the poll never reopens a prompt for the same id.
	activeQuestionID string

	reasoning string
	quitArmed bool
	compact   bool

	// Render cache for the transcript. Valid while the revision, width, and
	// compact flag all match; always bypassed while a turn is streaming.
	cacheRev     uint64
	cacheWidth   int
	cacheCompact bool
	cacheValid   bool

	// Frame state composed by sync() and consumed by View().
	boxView        string
	timelineHeight int
	toastShown     bool

	exitErr error
}

// Options carries the session screen's dependencies. Client and Config are
// required; Index may be nil when the project index failed to open.
type Options struct {
	Client     *worker.Client
	Config     *config.Config
	Theme      *styles.Theme
	Index      *index.Index
	Version    string
	ProjectDir string

	// Agent, when set, is requested right after initialize (--agent flag).
	Agent string
}

// New assembles the session screen.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	reasoning := opts.Config.Model.ReasoningEffort
	if reasoning == "" {
		reasoning = "off"
	}

	rename := textinput.New()
	rename.Prompt = ""
	rename.CharLimit = 120

	m := Model{
		theme:      theme,
		keys:       DefaultKeyMap(),
		client:     opts.Client,
		store:      state.NewStore(),
		cfg:        opts.Config,
		version:    opts.Version,
		projectDir: opts.ProjectDir,
		startAgent: opts.Agent,
		buf:        editor.New(),
		registry:   commands.NewRegistry(),
		idx:        opts.Index,

		timeline:  components.NewTimelineRenderer(theme),
		inputBox:  components.NewInputBox(theme),
		statusBar: components.NewStatusLine(theme),
		todoStrip: components.NewTodoStrip(theme),
		overlays:  components.NewOverlays(theme),
		toast:     components.NewToast(theme),
		spin:      components.NewSpinner(),
		splash:    components.NewSplash(theme),

		viewport:    viewport.New(0, 0),
		renameInput: rename,

		showTodos: opts.Config.UI.ShowTodos,
		compact:   opts.Config.UI.CompactMode,
		reasoning: reasoning,
	}

	m.statusBar.SetBaseModel(opts.Config.Model.Default)
	m.statusBar.SetReasoning(reasoning)
	m.splash.SetVersion(opts.Version)
	m.splash.SetProject(opts.ProjectDir)
	m.splash.SetModel(opts.Config.Model.Default)

	// Palette handlers cannot touch the model directly (they run against a
	// copy), so each one emits a request message that the update loop acts
	// on with current state.
	m.cmdCtx = &commands.Context{
		NewSession:   requestCmd(opNewSession, ""),
		ClearSession: requestCmd(opClearSession, ""),
		OpenHistory:  requestCmd(opOpenHistory, ""),
		SetAgent: func(agent string) tea.Cmd {
			return requestCmd(opSetAgent, agent)()
		},
		OpenModels:  requestCmd(opOpenModels, ""),
		Reindex:     requestCmd(opReindex, ""),
		ToggleTodos: requestCmd(opToggleTodos, ""),
		RevertLast:  requestCmd(opRevertLast, ""),
		ShowAbout:   requestCmd(opShowAbout, ""),
	}

	return m
}

// Init starts the notification listener, the frame tick, the poll loops,
// and the initial index build.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenCmd(m.client),
		frameTickCmd(m.frameInterval()),
		todoTickCmd(m.todoInterval()),
		questionTickCmd(),
		initializeCmd(m.client, m.cfg, m.projectDir),
	}
	if m.startAgent != "" {
		params := map[string]interface{}{"agent": m.startAgent}
		cmds = append(cmds, opCmd(m.client, protocol.MethodSetAgent, params, ""))
	}
	if m.idx != nil && !m.idx.IsBuilt() {
		cmds = append(cmds, buildIndexCmd(m.idx))
	}
	return tea.Batch(cmds...)
}

// Err reports the fatal error the screen exited with, if any. main checks
// this after the program returns.
func (m Model) Err() error {
	return m.exitErr
}

// loading reports whether a turn is currently streaming.
func (m Model) loading() bool {
	return m.store.State().IsLoading
}

// resetOverlay drops every overlay's transient state and returns to
// ModeNormal.
func (m *Model) resetOverlay() {
	m.mode = ModeNormal
	m.palette = paletteState{}
	m.mention = mentionState{}
	m.picker = pickerState{}
	m.history = historyState{}
	m.question = questionState{}
	m.renameInput.Blur()
	m.renameInput.SetValue("")
}

// invalidateCache forces the next transcript refresh to re-render.
func (m *Model) invalidateCache() {
	m.cacheValid = false
}
