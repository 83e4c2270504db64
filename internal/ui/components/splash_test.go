// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

func newSplash() *Splash {
	s := NewSplash(styles.NewTheme())
	s.SetVersion("0.3.0")
	s.SetProject("/home/dev/proj")
	s.SetModel("model-a")
	return s
}

func TestSplash_NarrowStacksInfo(t *testing.T) {
	s := newSplash()
	out := s.View()

	rows := strings.Split(out, "\n")
	if len(rows) != 24 {
		t.Fatalf("Expected 24 rows, got %d", len(rows))
	}
	if !strings.Contains(out, "loom") {
		t.Error("Expected wordmark")
	}
	if !strings.Contains(out, "v0.3.0 • model-a") {
		t.Errorf("Expected stacked version line, got %q", out)
	}
	if !strings.Contains(out, "/home/dev/proj") {
		t.Error("Expected project line")
	}
	if !strings.Contains(out, "Type a message to begin. Press / for commands.") {
		t.Error("Expected hint line")
	}
}

func TestSplash_WideJoinsInfo(t *testing.T) {
	s := newSplash()
	s.SetSize(120, 30)
	out := s.View()

	if !strings.Contains(out, "Version 0.3.0  •  Project /home/dev/proj  •  Model model-a") {
		t.Errorf("Expected joined info row, got %q", out)
	}
	if len(strings.Split(out, "\n")) != 30 {
		t.Errorf("Expected 30 rows")
	}
}

func TestTailPath(t *testing.T) {
	cases := []struct {
		path     string
		maxWidth int
		want     string
	}{
		{"abc", 8, "abc"},
		{"abcdefghij", 8, "...fghij"},
		{"abcdefghij", 5, "abcdefghij"},
		{"abcdefghij", 10, "abcdefghij"},
	}
	for _, tc := range cases {
		if got := tailPath(tc.path, tc.maxWidth); got != tc.want {
			t.Errorf("tailPath(%q, %d) = %q, want %q", tc.path, tc.maxWidth, got, tc.want)
		}
	}
}
