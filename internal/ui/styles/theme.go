// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the loom TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// TIMELINE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	BodyText       lipgloss.Style
	ReasoningText  lipgloss.Style
	ToolCallText   lipgloss.Style
	ToolResultText lipgloss.Style
	StatusEvent    lipgloss.Style
	ErrorEvent     lipgloss.Style

	// ==========================================================================
	// MARKDOWN STYLES
	// ==========================================================================

	MdHeading    lipgloss.Style
	MdInlineCode lipgloss.Style
	MdCodeBlock  lipgloss.Style
	MdQuote      lipgloss.Style
	MdQuoteBar   lipgloss.Style
	MdListMarker lipgloss.Style
	MdRule       lipgloss.Style
	MdEmph       lipgloss.Style
	MdStrong     lipgloss.Style
	MdStrike     lipgloss.Style
	MdLink       lipgloss.Style

	// ==========================================================================
	// DIFF STYLES
	// ==========================================================================

	DiffAdd     lipgloss.Style
	DiffDel     lipgloss.Style
	DiffContext lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffGutter  lipgloss.Style
	DiffSummary lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputCursor      lipgloss.Style

	// ==========================================================================
	// STATUS LINE STYLES
	// ==========================================================================

	StatusBar      lipgloss.Style
	AgentPlan      lipgloss.Style
	AgentBuild     lipgloss.Style
	ModelLabel     lipgloss.Style
	ReasoningBadge lipgloss.Style
	TokenLabel     lipgloss.Style
	ContextOK      lipgloss.Style
	ContextWarn    lipgloss.Style
	ContextCrit    lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES (palette, files, models, history, question, plan, help)
	// ==========================================================================

	OverlayBox         lipgloss.Style
	OverlayTitle       lipgloss.Style
	OverlayQuery       lipgloss.Style
	OverlayItem        lipgloss.Style
	OverlaySelected    lipgloss.Style
	OverlayGroupHeader lipgloss.Style
	OverlayCommand     lipgloss.Style
	OverlayDesc        lipgloss.Style
	OverlayHint        lipgloss.Style
	OverlayEmpty       lipgloss.Style

	// ==========================================================================
	// TODO STRIP STYLES
	// ==========================================================================

	TodoHeader  lipgloss.Style
	TodoDone    lipgloss.Style
	TodoActive  lipgloss.Style
	TodoPending lipgloss.Style
	TodoMore    lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastInfo  lipgloss.Style
	ToastError lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme using the terminal's detected background.
// NO_COLOR is honored through termenv's environment-aware profile.
func NewTheme() *Theme {
	return NewThemeWithMode("auto")
}

// NewThemeWithMode creates a theme for an explicit mode: "dark", "light", or
// "auto" (detect from the terminal). The mode comes from config.UI.Theme.
func NewThemeWithMode(mode string) *Theme {
	colorProfile := termenv.EnvColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Timeline
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(UserLabelFg)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(AssistantLabelFg)

	t.BodyText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ReasoningText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ToolCallText = lipgloss.NewStyle().
		Foreground(ToolCallFg)

	t.ToolResultText = lipgloss.NewStyle().
		Foreground(ToolResultFg)

	t.StatusEvent = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorEvent = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	// Markdown
	t.MdHeading = lipgloss.NewStyle().
		Bold(true).
		Foreground(HeadingFg)

	t.MdInlineCode = lipgloss.NewStyle().
		Foreground(InlineCodeFg).
		Background(InlineCodeBg)

	t.MdCodeBlock = lipgloss.NewStyle().
		Foreground(CodeBlockFg).
		Background(CodeBlockBg)

	t.MdQuote = lipgloss.NewStyle().
		Foreground(QuoteFg).
		Italic(true)

	t.MdQuoteBar = lipgloss.NewStyle().
		Foreground(OverlayDim)

	t.MdListMarker = lipgloss.NewStyle().
		Foreground(ListMarkerFg)

	t.MdRule = lipgloss.NewStyle().
		Foreground(RuleFg)

	t.MdEmph = lipgloss.NewStyle().
		Italic(true)

	t.MdStrong = lipgloss.NewStyle().
		Bold(true)

	t.MdStrike = lipgloss.NewStyle().
		Strikethrough(true)

	t.MdLink = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	// Diff
	t.DiffAdd = lipgloss.NewStyle().
		Foreground(DiffAddFg)

	t.DiffDel = lipgloss.NewStyle().
		Foreground(DiffDelFg)

	t.DiffContext = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.DiffHunk = lipgloss.NewStyle().
		Foreground(DiffHunkFg).
		Bold(true)

	t.DiffGutter = lipgloss.NewStyle().
		Foreground(DiffGutterFg)

	t.DiffSummary = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputCursor = lipgloss.NewStyle().
		Reverse(true)

	// Status line
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.AgentPlan = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Bold(true).
		Padding(0, 1)

	t.AgentBuild = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true).
		Padding(0, 1)

	t.ModelLabel = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ReasoningBadge = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.TokenLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ContextOK = lipgloss.NewStyle().
		Foreground(Emerald)

	t.ContextWarn = lipgloss.NewStyle().
		Foreground(Amber)

	t.ContextCrit = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Overlays
	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.OverlayTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.OverlayQuery = lipgloss.NewStyle().
		Foreground(Cyan)

	t.OverlayItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.OverlaySelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.OverlayGroupHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.OverlayCommand = lipgloss.NewStyle().
		Foreground(Cyan)

	t.OverlayDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.OverlayHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.OverlayEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(0, 1)

	// Todo strip
	t.TodoHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.TodoDone = lipgloss.NewStyle().
		Foreground(Emerald).
		Strikethrough(true)

	t.TodoActive = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.TodoPending = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.TodoMore = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Toasts
	t.ToastInfo = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(CyanDeep).
		Padding(0, 1)

	t.ToastError = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(RoseDeep).
		Bold(true).
		Padding(0, 1)

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Accessibility status styles, paired with StatusIndicators shapes
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
