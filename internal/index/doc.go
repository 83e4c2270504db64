// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains the file-path index behind @-mention search.
//
// The index is a flat list of project-relative paths in depth-then-lexical
// order, backed by a SQLite cache so restarts have paths available before
// the first walk completes. A file watcher (fsnotify, with a polling
// fallback) folds changes back in, debounced, with full rebuilds
// rate-limited.
//
// # Key Types
//
//   - Index: Path list with SQLite cache and lookup methods
//   - Config: Walk depth, file cap, ignore patterns, watch settings
//   - FileWatcher: Incremental update source (fsnotify or polling)
//
// # Usage
//
// Create and populate an index:
//
//	idx, err := index.New(index.DefaultConfig(root))
//	err = idx.Build(ctx)
//
// Search for @-mention candidates:
//
//	matches := idx.Search("handler", 20)
//	for _, path := range matches {
//	    fmt.Println(path)
//	}
package index
