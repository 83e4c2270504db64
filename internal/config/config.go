// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for loom.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.loom/config.toml
//   - ~/.loom/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/loom-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete loom configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Worker process configuration
	Worker WorkerConfig `toml:"worker" json:"worker"`

	// Model selection configuration
	Model ModelConfig `toml:"model" json:"model"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// File-mention index configuration
	Index IndexConfig `toml:"index" json:"index"`

	// REPL history configuration
	History HistoryConfig `toml:"history" json:"history"`
}

// WorkerConfig describes how the worker process is launched.
type WorkerConfig struct {
	// Command is the worker binary, resolved through PATH when relative
	Command string `toml:"command" json:"command"`
	// Args are extra arguments passed to the worker
	Args []string `toml:"args" json:"args"`
	// Dir is the working directory for the worker (empty = inherit)
	Dir string `toml:"dir" json:"dir"`
	// Env is extra environment for the worker, KEY=VALUE form
	Env []string `toml:"env" json:"env"`
	// SpawnTimeoutSecs bounds the initialize round trip at startup
	SpawnTimeoutSecs int `toml:"spawn_timeout_secs" json:"spawn_timeout_secs"`
}

// ModelConfig holds the model overrides sent to the worker on startup.
// Empty values leave the worker's own defaults in place.
type ModelConfig struct {
	// Default is the model id requested at initialize
	Default string `toml:"default" json:"default"`
	// Provider pins a provider for the default model
	Provider string `toml:"provider" json:"provider"`
	// ReasoningEffort is "low", "medium" or "high" (empty = worker default)
	ReasoningEffort string `toml:"reasoning_effort" json:"reasoning_effort"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact timeline layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ShowTodos shows the todo strip when the session has todos
	ShowTodos bool `toml:"show_todos" json:"show_todos"`
}

// IndexConfig tunes the file-mention index.
type IndexConfig struct {
	// MaxDepth limits how deep below the project root the walk goes
	MaxDepth int `toml:"max_depth" json:"max_depth"`
	// MaxFiles caps the number of indexed paths
	MaxFiles int `toml:"max_files" json:"max_files"`
	// Watch enables live index updates via the file watcher
	Watch bool `toml:"watch" json:"watch"`
	// ExtraIgnores adds glob patterns to the built-in ignore list
	ExtraIgnores []string `toml:"extra_ignores" json:"extra_ignores"`
}

// HistoryConfig controls the REPL readline history.
type HistoryConfig struct {
	// Enabled persists REPL input history under the config directory
	Enabled bool `toml:"enabled" json:"enabled"`
	// MaxEntries caps the history file length
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Worker: WorkerConfig{
			Command:          "loomd",
			Args:             nil,
			Dir:              "",
			SpawnTimeoutSecs: 10,
		},

		Model: ModelConfig{
			Default:         "",
			Provider:        "",
			ReasoningEffort: "",
		},

		UI: UIConfig{
			Theme:       "auto",
			CompactMode: false,
			ShowTodos:   true,
		},

		Index: IndexConfig{
			MaxDepth: 6,
			MaxFiles: 4000,
			Watch:    true,
		},

		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the loom configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".loom"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the path of the REPL history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Worker env entries may carry API keys, so keep the file owner-only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Defaults only
	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finishLoad applies overrides, migration, defaults and validation, in
// that order, to a freshly decoded config.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file over the receiver's
// current values, so absent keys keep their defaults.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by the --config flag.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The write is atomic
// and the file is created owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# loom configuration file")
	fmt.Fprintln(&buf, "# Generated by loom - edit with care")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Worker settings
	if strings.TrimSpace(c.Worker.Command) == "" {
		errs = append(errs, ValidationError{
			Field:   "worker.command",
			Message: "worker command cannot be empty",
		})
	}
	if c.Worker.SpawnTimeoutSecs < 1 || c.Worker.SpawnTimeoutSecs > 120 {
		errs = append(errs, ValidationError{
			Field:   "worker.spawn_timeout_secs",
			Message: fmt.Sprintf("must be 1-120 seconds, got %d", c.Worker.SpawnTimeoutSecs),
		})
	}
	for _, entry := range c.Worker.Env {
		if !strings.Contains(entry, "=") {
			errs = append(errs, ValidationError{
				Field:   "worker.env",
				Message: fmt.Sprintf("entry %q is not KEY=VALUE form", entry),
			})
		}
	}

	// Model settings
	if c.Model.ReasoningEffort != "" {
		validEfforts := map[string]bool{"low": true, "medium": true, "high": true}
		if !validEfforts[strings.ToLower(c.Model.ReasoningEffort)] {
			errs = append(errs, ValidationError{
				Field:   "model.reasoning_effort",
				Message: fmt.Sprintf("invalid effort '%s', must be one of: low, medium, high", c.Model.ReasoningEffort),
			})
		}
	}

	// UI settings
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Index settings
	if c.Index.MaxDepth < 1 || c.Index.MaxDepth > 12 {
		errs = append(errs, ValidationError{
			Field:   "index.max_depth",
			Message: fmt.Sprintf("max_depth must be 1-12, got %d", c.Index.MaxDepth),
		})
	}
	if c.Index.MaxFiles < 0 || c.Index.MaxFiles > 100000 {
		errs = append(errs, ValidationError{
			Field:   "index.max_files",
			Message: fmt.Sprintf("max_files must be 0-100000, got %d", c.Index.MaxFiles),
		})
	}

	// History settings
	if c.History.MaxEntries < 0 || c.History.MaxEntries > 100000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_entries",
			Message: fmt.Sprintf("max_entries must be 0-100000, got %d", c.History.MaxEntries),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Worker.Command == "" {
		c.Worker.Command = defaults.Worker.Command
	}
	if c.Worker.SpawnTimeoutSecs == 0 {
		c.Worker.SpawnTimeoutSecs = defaults.Worker.SpawnTimeoutSecs
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Index.MaxDepth == 0 {
		c.Index.MaxDepth = defaults.Index.MaxDepth
	}
	if c.Index.MaxFiles == 0 {
		c.Index.MaxFiles = defaults.Index.MaxFiles
	}

	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Reasoning effort was briefly documented with abbreviated values
	switch strings.ToLower(c.Model.ReasoningEffort) {
	case "min", "lo":
		c.Model.ReasoningEffort = "low"
	case "med", "mid":
		c.Model.ReasoningEffort = "medium"
	case "max", "hi":
		c.Model.ReasoningEffort = "high"
	default:
		c.Model.ReasoningEffort = strings.ToLower(c.Model.ReasoningEffort)
	}

	// "default" was the pre-1.0 name for the adaptive theme
	if strings.ToLower(c.UI.Theme) == "default" {
		c.UI.Theme = "auto"
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LOOM_WORKER: overrides worker.command
//   - LOOM_WORKER_DIR: overrides worker.dir
//   - LOOM_MODEL: overrides model.default
//   - LOOM_PROVIDER: overrides model.provider
//   - LOOM_REASONING: overrides model.reasoning_effort
//   - LOOM_THEME: overrides ui.theme
//   - LOOM_COMPACT: set to "1" or "true" to enable compact mode
//   - LOOM_NO_WATCH: set to "1" or "true" to disable the index watcher
func (c *Config) ApplyEnvOverrides() {
	if cmd := os.Getenv("LOOM_WORKER"); cmd != "" {
		c.Worker.Command = cmd
	}

	if dir := os.Getenv("LOOM_WORKER_DIR"); dir != "" {
		c.Worker.Dir = dir
	}

	if model := os.Getenv("LOOM_MODEL"); model != "" {
		c.Model.Default = model
	}

	if provider := os.Getenv("LOOM_PROVIDER"); provider != "" {
		c.Model.Provider = provider
	}

	if effort := os.Getenv("LOOM_REASONING"); effort != "" {
		c.Model.ReasoningEffort = effort
	}

	if theme := os.Getenv("LOOM_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if compact := os.Getenv("LOOM_COMPACT"); compact != "" {
		c.UI.CompactMode = compact == "1" || strings.ToLower(compact) == "true"
	}

	if noWatch := os.Getenv("LOOM_NO_WATCH"); noWatch != "" {
		if noWatch == "1" || strings.ToLower(noWatch) == "true" {
			c.Index.Watch = false
		}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Merge merges another config into this one, overwriting only non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Version != "" {
		c.Version = other.Version
	}

	// Worker
	if other.Worker.Command != "" {
		c.Worker.Command = other.Worker.Command
	}
	if len(other.Worker.Args) > 0 {
		c.Worker.Args = append([]string(nil), other.Worker.Args...)
	}
	if other.Worker.Dir != "" {
		c.Worker.Dir = other.Worker.Dir
	}
	if len(other.Worker.Env) > 0 {
		c.Worker.Env = append([]string(nil), other.Worker.Env...)
	}
	if other.Worker.SpawnTimeoutSecs != 0 {
		c.Worker.SpawnTimeoutSecs = other.Worker.SpawnTimeoutSecs
	}

	// Model
	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.ReasoningEffort != "" {
		c.Model.ReasoningEffort = other.Model.ReasoningEffort
	}

	// UI
	if other.UI.Theme != "" {
		c.UI.Theme = other.UI.Theme
	}
	if other.UI.CompactMode {
		c.UI.CompactMode = true
	}
	if other.UI.ShowTodos {
		c.UI.ShowTodos = true
	}

	// Index
	if other.Index.MaxDepth != 0 {
		c.Index.MaxDepth = other.Index.MaxDepth
	}
	if other.Index.MaxFiles != 0 {
		c.Index.MaxFiles = other.Index.MaxFiles
	}
	if other.Index.Watch {
		c.Index.Watch = true
	}
	if len(other.Index.ExtraIgnores) > 0 {
		c.Index.ExtraIgnores = append([]string(nil), other.Index.ExtraIgnores...)
	}

	// History
	if other.History.Enabled {
		c.History.Enabled = true
	}
	if other.History.MaxEntries != 0 {
		c.History.MaxEntries = other.History.MaxEntries
	}
}

// Clone creates a deep copy of the configuration. Slices are copied so
// mutations on the clone never reach the original.
func (c *Config) Clone() *Config {
	clone := *c

	if c.Worker.Args != nil {
		clone.Worker.Args = append([]string(nil), c.Worker.Args...)
	}
	if c.Worker.Env != nil {
		clone.Worker.Env = append([]string(nil), c.Worker.Env...)
	}
	if c.Index.ExtraIgnores != nil {
		clone.Index.ExtraIgnores = append([]string(nil), c.Index.ExtraIgnores...)
	}

	return &clone
}

// String returns a string representation of the config for debugging.
// Worker env values are redacted since they may carry provider API keys.
func (c *Config) String() string {
	safe := c.Clone()

	for i, entry := range safe.Worker.Env {
		if key, _, ok := strings.Cut(entry, "="); ok {
			safe.Worker.Env[i] = key + "=[REDACTED]"
		}
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
