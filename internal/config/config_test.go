// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := &Config{
				Version: "test",
				Worker: WorkerConfig{
					Command:          "loomd",
					SpawnTimeoutSecs: 10,
				},
			}
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.Worker.Command == "" {
		t.Error("Worker command should not be empty")
	}
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly overwrites
// the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()

	_ = Global()

	customCfg := &Config{
		Version: "custom-version",
		Worker:  WorkerConfig{Command: "custom-worker"},
	}
	SetGlobal(customCfg)

	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.Worker.Command != "custom-worker" {
		t.Errorf("Expected worker 'custom-worker', got '%s'", result.Worker.Command)
	}
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.Worker.Command != "loomd" {
		t.Errorf("Expected default worker 'loomd', got '%s'", cfg.Worker.Command)
	}
	if cfg.Worker.SpawnTimeoutSecs == 0 {
		t.Error("Default config should have a spawn timeout")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Expected default theme 'auto', got '%s'", cfg.UI.Theme)
	}
	if !cfg.UI.ShowTodos {
		t.Error("Todo strip should be enabled by default")
	}
	if cfg.Index.MaxDepth != 6 {
		t.Errorf("Expected default index depth 6, got %d", cfg.Index.MaxDepth)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "empty worker command",
			config: func() *Config {
				c := Default()
				c.Worker.Command = "  "
				return c
			}(),
			wantErr: true,
		},
		{
			name: "spawn timeout too small",
			config: func() *Config {
				c := Default()
				c.Worker.SpawnTimeoutSecs = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "spawn timeout too large",
			config: func() *Config {
				c := Default()
				c.Worker.SpawnTimeoutSecs = 300
				return c
			}(),
			wantErr: true,
		},
		{
			name: "malformed worker env entry",
			config: func() *Config {
				c := Default()
				c.Worker.Env = []string{"NOEQUALS"}
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid reasoning effort",
			config: func() *Config {
				c := Default()
				c.Model.ReasoningEffort = "extreme"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "valid reasoning effort",
			config: func() *Config {
				c := Default()
				c.Model.ReasoningEffort = "high"
				return c
			}(),
			wantErr: false,
		},
		{
			name: "invalid theme",
			config: func() *Config {
				c := Default()
				c.UI.Theme = "solarized"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "index depth zero",
			config: func() *Config {
				c := Default()
				c.Index.MaxDepth = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "index depth too large",
			config: func() *Config {
				c := Default()
				c.Index.MaxDepth = 40
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative history entries",
			config: func() *Config {
				c := Default()
				c.History.MaxEntries = -1
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_TOMLRoundTrip saves a config and loads it back.
func TestConfig_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	original := Default()
	original.Worker.Command = "custom-loomd"
	original.Worker.Args = []string{"--verbose"}
	original.Model.Default = "gpt-5"
	original.Model.ReasoningEffort = "high"
	original.UI.CompactMode = true
	original.Index.ExtraIgnores = []string{"*.log"}

	if err := SaveTOML(original, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}

	if loaded.Worker.Command != "custom-loomd" {
		t.Errorf("Worker.Command = %q, want custom-loomd", loaded.Worker.Command)
	}
	if !reflect.DeepEqual(loaded.Worker.Args, []string{"--verbose"}) {
		t.Errorf("Worker.Args = %v", loaded.Worker.Args)
	}
	if loaded.Model.Default != "gpt-5" {
		t.Errorf("Model.Default = %q, want gpt-5", loaded.Model.Default)
	}
	if !loaded.UI.CompactMode {
		t.Error("UI.CompactMode should survive the round trip")
	}
	if !reflect.DeepEqual(loaded.Index.ExtraIgnores, []string{"*.log"}) {
		t.Errorf("Index.ExtraIgnores = %v", loaded.Index.ExtraIgnores)
	}

	// Defaults not present in the file stay intact
	if loaded.UI.Theme != "auto" {
		t.Errorf("UI.Theme = %q, want auto", loaded.UI.Theme)
	}
}

// TestConfig_EnvOverrides tests environment variable overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LOOM_WORKER", "env-worker")
	t.Setenv("LOOM_MODEL", "env-model")
	t.Setenv("LOOM_REASONING", "low")
	t.Setenv("LOOM_COMPACT", "true")
	t.Setenv("LOOM_NO_WATCH", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Worker.Command != "env-worker" {
		t.Errorf("Worker.Command = %q, want env-worker", cfg.Worker.Command)
	}
	if cfg.Model.Default != "env-model" {
		t.Errorf("Model.Default = %q, want env-model", cfg.Model.Default)
	}
	if cfg.Model.ReasoningEffort != "low" {
		t.Errorf("Model.ReasoningEffort = %q, want low", cfg.Model.ReasoningEffort)
	}
	if !cfg.UI.CompactMode {
		t.Error("LOOM_COMPACT should enable compact mode")
	}
	if cfg.Index.Watch {
		t.Error("LOOM_NO_WATCH should disable the index watcher")
	}
}

// TestConfig_Migrate tests normalization of legacy values.
func TestConfig_Migrate(t *testing.T) {
	tests := []struct {
		effort string
		theme  string
		wantE  string
		wantT  string
	}{
		{"med", "default", "medium", "auto"},
		{"HI", "dark", "high", "dark"},
		{"Low", "auto", "low", "auto"},
		{"", "light", "", "light"},
	}

	for _, tc := range tests {
		cfg := Default()
		cfg.Model.ReasoningEffort = tc.effort
		cfg.UI.Theme = tc.theme

		if err := cfg.Migrate(); err != nil {
			t.Fatalf("Migrate: %v", err)
		}

		if cfg.Model.ReasoningEffort != tc.wantE {
			t.Errorf("Migrate effort %q = %q, want %q", tc.effort, cfg.Model.ReasoningEffort, tc.wantE)
		}
		if cfg.UI.Theme != tc.wantT {
			t.Errorf("Migrate theme %q = %q, want %q", tc.theme, cfg.UI.Theme, tc.wantT)
		}
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"
	original.Worker.Args = []string{"--a"}

	clone := original.Clone()
	clone.Version = "cloned"
	clone.Worker.Args[0] = "--b"

	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if original.Worker.Args[0] != "--a" {
		t.Error("Clone should deep copy slices")
	}
}

// TestConfig_Merge tests merging two configs.
func TestConfig_Merge(t *testing.T) {
	base := Default()
	base.Version = "base"

	other := &Config{
		Version: "merged",
		Model:   ModelConfig{Default: "merged-model"},
	}

	base.Merge(other)

	if base.Version != "merged" {
		t.Errorf("Merge should overwrite Version, got '%s'", base.Version)
	}
	if base.Model.Default != "merged-model" {
		t.Errorf("Merge should overwrite Model.Default, got '%s'", base.Model.Default)
	}
	// Verify non-overwritten values remain
	if base.Worker.Command != "loomd" {
		t.Error("Merge should not overwrite unset fields")
	}
}

// TestConfig_StringRedactsEnv tests that worker env values never appear
// in debug output.
func TestConfig_StringRedactsEnv(t *testing.T) {
	cfg := Default()
	cfg.Worker.Env = []string{"OPENAI_API_KEY=sk-secret-value"}

	out := cfg.String()

	if strings.Contains(out, "sk-secret-value") {
		t.Error("String() must redact worker env values")
	}
	if !strings.Contains(out, "OPENAI_API_KEY=[REDACTED]") {
		t.Error("String() should keep the env key with a redacted value")
	}

	// The original config is untouched
	if cfg.Worker.Env[0] != "OPENAI_API_KEY=sk-secret-value" {
		t.Error("String() must not mutate the receiver")
	}
}
