// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.StreamInterval() != 35*time.Millisecond {
		t.Errorf("StreamInterval = %v, want 35ms", cfg.StreamInterval())
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad endpoint url", func(c *Config) { c.Endpoint.URL = "not a url" }},
		{"negative interval", func(c *Config) { c.Stream.IntervalMs = -1 }},
		{"negative max conversations", func(c *Config) { c.Storage.MaxConversations = -5 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Stream.IntervalMs == 0 {
		t.Error("stream interval not defaulted")
	}
	if cfg.UI.Theme == "" {
		t.Error("theme not defaulted")
	}
	if cfg.Log.Level == "" {
		t.Error("log level not defaulted")
	}
}

// =============================================================================
// FEATURE FLAGS
// =============================================================================

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f FeatureSet)
	}{
		{
			name:  "on and off values",
			input: "voice=on,tone=on,tts=off",
			check: func(t *testing.T, f FeatureSet) {
				if !f.Enabled(FeatureVoice) || !f.Enabled(FeatureTone) {
					t.Error("voice and tone should be on")
				}
				if f.Enabled(FeatureTTS) {
					t.Error("tts should be off")
				}
			},
		},
		{
			name:  "bare name is enabled",
			input: "voice",
			check: func(t *testing.T, f FeatureSet) {
				if !f.Enabled(FeatureVoice) {
					t.Error("bare name should enable")
				}
			},
		},
		{
			name:  "whitespace and case tolerated",
			input: " Voice = ON , tone=True ",
			check: func(t *testing.T, f FeatureSet) {
				if !f.Enabled(FeatureVoice) || !f.Enabled(FeatureTone) {
					t.Error("expected both enabled")
				}
			},
		},
		{
			name:  "empty string",
			input: "",
			check: func(t *testing.T, f FeatureSet) {
				if len(f) != 0 {
					t.Errorf("expected empty set, got %v", f)
				}
			},
		},
		{
			name:  "unknown value disables",
			input: "tone=maybe",
			check: func(t *testing.T, f FeatureSet) {
				if f.Enabled(FeatureTone) {
					t.Error("non-truthy value must disable")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, ParseFeatures(tc.input))
		})
	}
}

// =============================================================================
// LOAD / SAVE ROUND TRIP
// =============================================================================

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want default dark", cfg.UI.Theme)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Endpoint.URL = "https://chat.example.com"
	cfg.Features = "voice=on,tone=off"
	cfg.Stream.IntervalMs = 50

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Endpoint.URL != cfg.Endpoint.URL {
		t.Errorf("endpoint url = %q", loaded.Endpoint.URL)
	}
	if loaded.Stream.IntervalMs != 50 {
		t.Errorf("interval = %d, want 50", loaded.Stream.IntervalMs)
	}
	if loaded.FeatureSet().Enabled(FeatureTone) {
		t.Error("tone should load as disabled")
	}
}

func TestLoadFromPath_InvalidFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("invalid theme should fail validation")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_ENDPOINT", "https://env.example.com")
	t.Setenv("PARLEY_FEATURES", "voice=on")
	t.Setenv("PARLEY_LOG_LEVEL", "debug")
	t.Setenv("PARLEY_STREAM_INTERVAL_MS", "10")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Endpoint.URL != "https://env.example.com" {
		t.Errorf("endpoint = %q", cfg.Endpoint.URL)
	}
	if !cfg.FeatureSet().Enabled(FeatureVoice) {
		t.Error("PARLEY_FEATURES should override")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Stream.IntervalMs != 10 {
		t.Errorf("interval = %d, want 10", cfg.Stream.IntervalMs)
	}
}

func TestApplyEnvOverrides_IgnoresBadInterval(t *testing.T) {
	t.Setenv("PARLEY_STREAM_INTERVAL_MS", "fast")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Stream.IntervalMs != 35 {
		t.Errorf("interval = %d, want untouched 35", cfg.Stream.IntervalMs)
	}
}
