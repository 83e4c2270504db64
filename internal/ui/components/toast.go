// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loom-tui/internal/ui/styles"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// TOAST
// =============================================================================

// ToastKind represents the flavor of a toast notice.
type ToastKind int

const (
	// ToastKindInfo is an informational toast.
	ToastKindInfo ToastKind = iota
	// ToastKindError is an error toast.
	ToastKindError
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 5 * time.Second

// Toast is a transient one-line notice shown over the timeline. Showing a
// new message replaces the previous one; expiry is checked on the frame
// tick rather than a dedicated timer.
type Toast struct {
	theme *styles.Theme

	message string
	kind    ToastKind
	shownAt time.Time
}

// NewToast creates an empty toast.
func NewToast(theme *styles.Theme) *Toast {
	return &Toast{theme: theme}
}

// ShowInfo displays an informational message.
func (t *Toast) ShowInfo(message string) {
	t.message = message
	t.kind = ToastKindInfo
	t.shownAt = time.Now()
}

// ShowError displays an error message.
func (t *Toast) ShowError(message string) {
	t.message = message
	t.kind = ToastKindError
	t.shownAt = time.Now()
}

// Clear dismisses the toast immediately.
func (t *Toast) Clear() {
	t.message = ""
}

// Active reports whether an unexpired toast is on screen.
func (t *Toast) Active() bool {
	return t.message != "" && time.Since(t.shownAt) < ToastDuration
}

// View renders the toast right-aligned in the given width, or "" when
// nothing is active.
func (t *Toast) View(width int) string {
	if !t.Active() {
		return ""
	}
	style := t.theme.ToastInfo
	if t.kind == ToastKindError {
		style = t.theme.ToastError
	}
	box := style.Render(util.TruncateWidth(t.message, max(width-4, 10)))
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, box)
}
