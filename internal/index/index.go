// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains the file-path index behind @-mention search.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrBuildInProgress = errors.New("index build in progress")
	ErrDatabaseError   = errors.New("database error")
	ErrInvalidPath     = errors.New("invalid path")
)

// =============================================================================
// FILE INDEX
// =============================================================================

// Index holds the project's file paths for @-mention completion. Paths are
// relative to the root, slash-separated, and kept in depth-then-lexical
// order. The list is cached in SQLite so a restarted client has paths
// available before the first walk finishes.
type Index struct {
	db      *sql.DB
	watcher FileWatcher
	root    string
	mu      sync.RWMutex

	// Data, guarded by mu
	entries   []string
	lastBuilt time.Time
	buildID   string

	// Build state
	building bool
	buildMu  sync.Mutex

	config *Config
}

// Config holds index configuration
type Config struct {
	// Root is the project root directory
	Root string

	// DatabasePath is where to store the SQLite path cache
	DatabasePath string

	// MaxDepth limits how many directory levels below the root are walked
	MaxDepth int

	// MaxFiles caps the number of indexed paths
	MaxFiles int

	// IgnorePatterns are glob patterns matched against path base names
	IgnorePatterns []string

	// EnableWatch enables file watching for incremental updates
	EnableWatch bool

	// WatchDebounce is the debounce duration for file change events
	WatchDebounce time.Duration

	// RebuildMinInterval is the minimum gap between watcher-triggered
	// full rebuilds
	RebuildMinInterval time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig(root string) *Config {
	return &Config{
		Root:         root,
		DatabasePath: filepath.Join(root, ".loom", "index.db"),
		MaxDepth:     6,
		MaxFiles:     4000,
		IgnorePatterns: []string{
			".git", ".svn", ".hg", ".loom",
			"node_modules", "__pycache__", ".venv", "venv",
			"vendor", "target", "dist", "build",
			".idea", ".vscode", ".vs",
			"*.exe", "*.dll", "*.so", "*.dylib",
			"*.zip", "*.tar", "*.gz",
			"*.jpg", "*.png", "*.gif", "*.pdf",
		},
		EnableWatch:        true,
		WatchDebounce:      500 * time.Millisecond,
		RebuildMinInterval: 2 * time.Second,
	}
}

// New creates a file index rooted at config.Root. The SQLite cache is
// opened (and created if missing) immediately; a previous run's path list
// is loaded from it when the cached root matches.
func New(config *Config) (*Index, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	info, err := os.Stat(config.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory", ErrInvalidPath)
	}

	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &Index{
		db:     db,
		root:   config.Root,
		config: config,
	}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Warm start from the cache; a stale or foreign cache is just skipped
	if err := idx.loadCache(); err != nil {
		idx.mu.Lock()
		idx.entries = nil
		idx.mu.Unlock()
	}

	return idx, nil
}

// initSchema creates the database schema
func (idx *Index) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	if _, err := idx.db.Exec(InitMetadata); err != nil {
		return err
	}
	return nil
}

// Close stops the watcher and closes the cache database.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.watcher != nil {
		idx.watcher.Close()
		idx.watcher = nil
	}

	if idx.db != nil {
		return idx.db.Close()
	}

	return nil
}

// =============================================================================
// BUILDING
// =============================================================================

// Build walks the project and replaces the path list, then persists it to
// the cache in one transaction. Only one build runs at a time; concurrent
// callers get ErrBuildInProgress.
func (idx *Index) Build(ctx context.Context) error {
	idx.buildMu.Lock()
	if idx.building {
		idx.buildMu.Unlock()
		return ErrBuildInProgress
	}
	idx.building = true
	idx.buildMu.Unlock()

	defer func() {
		idx.buildMu.Lock()
		idx.building = false
		idx.buildMu.Unlock()
	}()

	startTime := time.Now()

	entries, err := idx.walk(ctx)
	if err != nil {
		return err
	}
	sortEntries(entries)

	buildID := uuid.NewString()
	if err := idx.saveCache(entries, buildID, startTime); err != nil {
		return err
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.lastBuilt = startTime
	idx.buildID = buildID
	idx.mu.Unlock()

	// Start the file watcher on the first successful build
	if idx.config.EnableWatch {
		idx.mu.Lock()
		needWatcher := idx.watcher == nil
		idx.mu.Unlock()
		if needWatcher {
			if err := idx.startWatcher(); err != nil {
				// Non-fatal, the index still works without live updates
				_ = err
			}
		}
	}

	return nil
}

// walk collects eligible relative paths under the root.
func (idx *Index) walk(ctx context.Context) ([]string, error) {
	var entries []string

	err := filepath.Walk(idx.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(idx.root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if idx.shouldIgnore(filepath.Base(path)) {
				return filepath.SkipDir
			}
			// Directories at MaxDepth would only contribute deeper files
			if pathDepth(rel) >= idx.config.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if idx.shouldIgnore(filepath.Base(path)) {
			return nil
		}
		if pathDepth(rel) > idx.config.MaxDepth {
			return nil
		}

		entries = append(entries, rel)
		if idx.config.MaxFiles > 0 && len(entries) >= idx.config.MaxFiles {
			return errTooManyFiles
		}

		return nil
	})

	if err != nil && !errors.Is(err, errTooManyFiles) {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to walk project: %w", err)
	}

	return entries, nil
}

// errTooManyFiles stops the walk once MaxFiles is reached; the partial
// list is kept.
var errTooManyFiles = errors.New("file cap reached")

// shouldIgnore checks if a file/directory should be ignored
func (idx *Index) shouldIgnore(name string) bool {
	for _, pattern := range idx.config.IgnorePatterns {
		matched, _ := filepath.Match(pattern, name)
		if matched {
			return true
		}
	}
	return false
}

// pathDepth counts directory levels in a slash-separated relative path.
// Files directly under the root have depth zero.
func pathDepth(rel string) int {
	return strings.Count(rel, "/")
}

// sortEntries orders paths by directory depth, then lexically.
func sortEntries(entries []string) {
	sort.Slice(entries, func(i, j int) bool {
		di, dj := pathDepth(entries[i]), pathDepth(entries[j])
		if di != dj {
			return di < dj
		}
		return entries[i] < entries[j]
	})
}

// =============================================================================
// CACHE PERSISTENCE
// =============================================================================

// saveCache replaces the cached path list in one transaction.
func (idx *Index) saveCache(entries []string, buildID string, builtAt time.Time) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO files (path, depth, indexed_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer stmt.Close()

	now := builtAt.Unix()
	for _, path := range entries {
		if _, err := stmt.Exec(path, pathDepth(path), now); err != nil {
			return fmt.Errorf("failed to insert path: %w", err)
		}
	}

	meta := map[string]string{
		"root_path":  idx.root,
		"build_id":   buildID,
		"last_build": fmt.Sprintf("%d", builtAt.Unix()),
	}
	for key, value := range meta {
		if _, err := tx.Exec("UPDATE metadata SET value = ? WHERE key = ?", value, key); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadCache restores the path list from a previous run. A cache built for
// a different root is ignored.
func (idx *Index) loadCache() error {
	var cachedRoot string
	err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'root_path'").Scan(&cachedRoot)
	if err != nil {
		return err
	}
	if cachedRoot != idx.root {
		return nil
	}

	var lastBuild int64
	var buildID string
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_build'").Scan(&lastBuild); err != nil {
		return err
	}
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'build_id'").Scan(&buildID); err != nil {
		return err
	}
	if lastBuild == 0 {
		return nil
	}

	rows, err := idx.db.Query("SELECT path FROM files ORDER BY depth, path")
	if err != nil {
		return err
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		entries = append(entries, path)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.lastBuilt = time.Unix(lastBuild, 0)
	idx.buildID = buildID
	idx.mu.Unlock()

	return nil
}

// =============================================================================
// LOOKUP
// =============================================================================

// Entries returns a copy of the full path list in depth-then-lexical order.
func (idx *Index) Entries() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Search returns paths containing the query, case-insensitively, keeping
// the index's depth-then-lexical order. A limit of 0 means unlimited. An
// empty query returns the leading entries up to the limit.
func (idx *Index) Search(query string, limit int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	q := strings.ToLower(query)
	var out []string
	for _, path := range idx.entries {
		if q != "" && !strings.Contains(strings.ToLower(path), q) {
			continue
		}
		out = append(out, path)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats describes the current index contents.
type Stats struct {
	FileCount    int
	LastBuilt    time.Time
	BuildID      string
	IsBuilding   bool
	DatabaseSize int64
}

// Stats returns current index statistics
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	fileCount := len(idx.entries)
	lastBuilt := idx.lastBuilt
	buildID := idx.buildID
	idx.mu.RUnlock()

	idx.buildMu.Lock()
	building := idx.building
	idx.buildMu.Unlock()

	var dbSize int64
	if info, err := os.Stat(idx.config.DatabasePath); err == nil {
		dbSize = info.Size()
	}

	return Stats{
		FileCount:    fileCount,
		LastBuilt:    lastBuilt,
		BuildID:      buildID,
		IsBuilding:   building,
		DatabaseSize: dbSize,
	}
}

// IsBuilt returns true if the index holds at least one completed build.
func (idx *Index) IsBuilt() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return !idx.lastBuilt.IsZero()
}

// =============================================================================
// INCREMENTAL UPDATES
// =============================================================================

// addPath inserts a single path, keeping order and cache in sync. Called
// by the watcher after debounce.
func (idx *Index) addPath(rel string) error {
	idx.mu.Lock()
	pos := sort.Search(len(idx.entries), func(i int) bool {
		di, dr := pathDepth(idx.entries[i]), pathDepth(rel)
		if di != dr {
			return di > dr
		}
		return idx.entries[i] >= rel
	})
	if pos < len(idx.entries) && idx.entries[pos] == rel {
		idx.mu.Unlock()
		return nil
	}
	idx.entries = append(idx.entries, "")
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = rel
	idx.mu.Unlock()

	_, err := idx.db.Exec(
		"INSERT OR IGNORE INTO files (path, depth, indexed_at) VALUES (?, ?, ?)",
		rel, pathDepth(rel), time.Now().Unix())
	return err
}

// removePath drops a single path from memory and cache.
func (idx *Index) removePath(rel string) error {
	idx.mu.Lock()
	for i, path := range idx.entries {
		if path == rel {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			break
		}
	}
	idx.mu.Unlock()

	_, err := idx.db.Exec("DELETE FROM files WHERE path = ?", rel)
	return err
}

// eligible reports whether an absolute path belongs in the index.
func (idx *Index) eligible(path string) (string, bool) {
	rel, err := filepath.Rel(idx.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if pathDepth(rel) > idx.config.MaxDepth {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if idx.shouldIgnore(part) {
			return "", false
		}
	}
	return rel, true
}
