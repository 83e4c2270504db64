// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
)

func TestToast_ShowAndClear(t *testing.T) {
	to := NewToast(styles.NewTheme())
	if to.Active() {
		t.Error("New toast should be inactive")
	}

	to.ShowInfo("Reindex complete")
	if !to.Active() {
		t.Error("Expected toast active after ShowInfo")
	}

	to.Clear()
	if to.Active() {
		t.Error("Expected toast inactive after Clear")
	}
	if to.View(40) != "" {
		t.Error("Cleared toast should render nothing")
	}
}

func TestToast_ExpiresAfterDuration(t *testing.T) {
	to := NewToast(styles.NewTheme())
	to.ShowInfo("short lived")
	to.shownAt = time.Now().Add(-ToastDuration - time.Second)
	if to.Active() {
		t.Error("Expected toast expired")
	}
	if to.View(40) != "" {
		t.Error("Expired toast should render nothing")
	}
}

func TestToast_ViewRightAligned(t *testing.T) {
	to := NewToast(styles.NewTheme())
	to.ShowInfo("Reindex complete")

	out := to.View(40)
	if len(out) != 40 {
		t.Errorf("Expected 40-column row, got %d", len(out))
	}
	if !strings.HasSuffix(out, " Reindex complete ") {
		t.Errorf("Expected right-aligned padded box, got %q", out)
	}
	if !strings.HasPrefix(out, "  ") {
		t.Errorf("Expected leading fill, got %q", out)
	}
}

func TestToast_TruncatesToWidth(t *testing.T) {
	to := NewToast(styles.NewTheme())
	to.ShowError(strings.Repeat("x", 60))

	out := to.View(20)
	if !strings.Contains(out, "...") {
		t.Errorf("Expected truncated message, got %q", out)
	}
	if len(out) != 20 {
		t.Errorf("Expected 20-column row, got %d", len(out))
	}
}

func TestToast_NewMessageReplacesOld(t *testing.T) {
	to := NewToast(styles.NewTheme())
	to.ShowInfo("first")
	to.ShowError("second")
	out := to.View(40)
	if strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("Expected replacement message, got %q", out)
	}
}
