// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces the loom session screen
is composed from.

Everything here is a pure renderer over a *styles.Theme: components hold
presentation state (width, expansion, spinner frame) but never talk to
the worker, and none of them runs its own Bubble Tea update loop. The
session model feeds them state and stitches their View output together.

# Transcript

TimelineRenderer (timeline.go) - Renders the event timeline: user/assistant
turns, reasoning, tool calls with status badges, and the streaming row.
MarkdownRenderer (markdown.go) - Line-oriented markdown for assistant
content: headings, lists, quotes, inline spans, fenced code.
HighlightLines (codeblock.go) - Chroma syntax highlighting for fenced code.
DiffView (diffview.go) - Unified-diff rendering for edit tool results,
with per-file stats and a line cap.

# Chrome

InputBox (inputbox.go) - Bordered editor box plus the PlanBox layout
split between transcript and input.
StatusLine (statusline.go) - Bottom line: agent badge, model, reasoning,
token counts, context gauge.
TodoStrip (todostrip.go) - Collapsible worker todo summary above the box.
Splash (splash.go) - Pre-first-event banner with version and project.

# Transient surfaces

Overlays (overlays.go) - The palette, mention, model picker, history,
question, plan-exit, and about overlays, all drawn inside Modal.
Toast (toast.go) - Single transient notice with an expiry.
Spinner (spinner.go) - Four-frame line spinner advanced by the frame tick.

Components accept the shared theme at construction:

	theme := styles.NewTheme()
	tl := components.NewTimelineRenderer(theme)
	lines := tl.Render(events, components.RenderOptions{Width: 80})
*/
package components
