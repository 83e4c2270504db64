// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session hosts the interactive session screen: the Bubble Tea
// model that owns the worker connection, the input buffer, the overlay
// state machine, and the transcript viewport.
//
// Exactly one Mode is active at a time. Overlay modes (palette, pickers,
// prompts) borrow the lower portion of the screen and fall back to
// ModeNormal on commit or cancel; rendering for each overlay lives in
// internal/ui/components, while the selection, paging, and query state is
// kept here and clamped on every keypress.
package session
