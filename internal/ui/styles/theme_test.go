// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the loom TUI.
package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Verify styles are initialized by rendering a test string
	rendered := theme.StatusBar.Render("test")
	if rendered == "" {
		t.Error("NewTheme() should initialize StatusBar style")
	}
}

func TestNewThemeWithMode(t *testing.T) {
	tests := []struct {
		mode     string
		wantDark bool
	}{
		{"dark", true},
		{"light", false},
	}

	for _, tc := range tests {
		theme := NewThemeWithMode(tc.mode)
		if theme.IsDark != tc.wantDark {
			t.Errorf("NewThemeWithMode(%q) IsDark = %v, want %v", tc.mode, theme.IsDark, tc.wantDark)
		}
	}

	// "auto" must not panic and must produce an initialized theme
	theme := NewThemeWithMode("auto")
	if theme == nil {
		t.Fatal("NewThemeWithMode(\"auto\") returned nil")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewThemeWithMode("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"UserLabel", theme.UserLabel},
		{"AssistantLabel", theme.AssistantLabel},
		{"ReasoningText", theme.ReasoningText},
		{"DiffAdd", theme.DiffAdd},
		{"DiffDel", theme.DiffDel},
		{"DiffHunk", theme.DiffHunk},
		{"InputPrompt", theme.InputPrompt},
		{"StatusBar", theme.StatusBar},
		{"AgentPlan", theme.AgentPlan},
		{"AgentBuild", theme.AgentBuild},
		{"OverlayBox", theme.OverlayBox},
		{"OverlaySelected", theme.OverlaySelected},
		{"TodoActive", theme.TodoActive},
		{"ToastError", theme.ToastError},
		{"Spinner", theme.Spinner},
	}

	for _, s := range styles {
		// An uninitialized style would return the input unchanged
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.GetLayoutMode()
		if got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}
