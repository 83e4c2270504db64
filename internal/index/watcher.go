// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains the file-path index behind @-mention search.
package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// =============================================================================
// FILE WATCHER INTERFACE
// =============================================================================

// FileWatcher is the interface for file watching implementations
type FileWatcher interface {
	// Watch starts watching for file changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements FileWatcher using fsnotify
type FsnotifyWatcher struct {
	idx      *Index
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]time.Time // File path -> last change time
	rebuilds *rate.Limiter        // Caps watcher-triggered full rebuilds
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher(idx *Index, debounce time.Duration) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	interval := idx.config.RebuildMinInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	fw := &FsnotifyWatcher{
		idx:      idx,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		rebuilds: rate.NewLimiter(rate.Every(interval), 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	return fw, nil
}

// Watch starts watching for file changes
func (fw *FsnotifyWatcher) Watch() error {
	if err := fw.addRecursive(fw.idx.root); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.processPending()

	return nil
}

// addRecursive adds a directory and all its subdirectories to the watch
// list, respecting the ignore patterns and the depth cap.
func (fw *FsnotifyWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			return nil
		}

		if fw.idx.shouldIgnore(filepath.Base(path)) {
			return filepath.SkipDir
		}

		if rel, err := filepath.Rel(fw.idx.root, path); err == nil && rel != "." {
			if pathDepth(filepath.ToSlash(rel)) >= fw.idx.config.MaxDepth {
				return filepath.SkipDir
			}
		}

		if err := fw.watcher.Add(path); err != nil {
			// Non-fatal, continue
			return nil
		}

		return nil
	})
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	defer func() {
		// A panicking watcher must not take the TUI down with it
		if r := recover(); r != nil {
			_ = r
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fw.queueChange(event.Name)
			}

			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				if rel, ok := fw.idx.eligible(event.Name); ok {
					fw.idx.removePath(rel)
				}
			}

			// A new directory may already contain files; schedule a
			// rate-limited rebuild to pick them up
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.addRecursive(event.Name)
					fw.triggerRebuild()
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// queueChange records a changed path for debounced processing.
func (fw *FsnotifyWatcher) queueChange(path string) {
	if _, ok := fw.idx.eligible(path); !ok {
		return
	}

	fw.mu.Lock()
	fw.pending[path] = time.Now()
	fw.mu.Unlock()
}

// processPending applies pending file changes once they settle past the
// debounce window.
func (fw *FsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			fw.mu.Lock()
			var toProcess []string
			for path, changeTime := range fw.pending {
				if now.Sub(changeTime) >= fw.debounce {
					toProcess = append(toProcess, path)
					delete(fw.pending, path)
				}
			}
			fw.mu.Unlock()

			for _, path := range toProcess {
				fw.applyChange(path)
			}
		}
	}
}

// applyChange folds a settled change into the index.
func (fw *FsnotifyWatcher) applyChange(path string) {
	rel, ok := fw.idx.eligible(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Deleted between event and debounce
		fw.idx.removePath(rel)
		return
	}
	if info.IsDir() {
		return
	}

	fw.idx.addPath(rel)
}

// triggerRebuild kicks off a full rebuild unless one ran recently.
func (fw *FsnotifyWatcher) triggerRebuild() {
	if !fw.rebuilds.Allow() {
		return
	}
	go fw.idx.Build(fw.ctx)
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements FileWatcher using periodic rescans. Used when
// fsnotify cannot start (inotify exhaustion, exotic filesystems).
type PollingWatcher struct {
	idx      *Index
	interval time.Duration
	rebuilds *rate.Limiter
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPollingWatcher creates a new polling-based watcher
func NewPollingWatcher(idx *Index, interval time.Duration) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	minInterval := idx.config.RebuildMinInterval
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}

	return &PollingWatcher{
		idx:      idx,
		interval: interval,
		rebuilds: rate.NewLimiter(rate.Every(minInterval), 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts watching for file changes
func (pw *PollingWatcher) Watch() error {
	go pw.poll()
	return nil
}

// poll periodically rescans and rebuilds when the path set drifts.
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChanges()
		}
	}
}

// checkChanges walks the project and rebuilds if anything changed.
func (pw *PollingWatcher) checkChanges() {
	current, err := pw.idx.walk(pw.ctx)
	if err != nil {
		return
	}
	sortEntries(current)

	known := pw.idx.Entries()
	if equalPaths(current, known) {
		return
	}

	if pw.rebuilds.Allow() {
		pw.idx.Build(pw.ctx)
	}
}

func equalPaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// startWatcher starts the file watcher (fsnotify or polling fallback)
func (idx *Index) startWatcher() error {
	fw, err := NewFsnotifyWatcher(idx, idx.config.WatchDebounce)
	if err == nil {
		if err := fw.Watch(); err == nil {
			idx.mu.Lock()
			idx.watcher = fw
			idx.mu.Unlock()
			return nil
		}
		fw.Close()
	}

	pw := NewPollingWatcher(idx, 5*time.Second)
	if err := pw.Watch(); err != nil {
		return err
	}

	idx.mu.Lock()
	idx.watcher = pw
	idx.mu.Unlock()
	return nil
}
