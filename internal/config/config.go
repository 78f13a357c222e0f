// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
//
// Configuration comes from three layers, later layers winning:
//   - Built-in defaults
//   - ~/.parley/config.toml
//   - PARLEY_* environment variables
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete parley configuration.
type Config struct {
	Version string `toml:"version"`

	// Features is the raw feature-flag string, e.g. "voice=on,tone=on".
	Features string `toml:"features"`

	Endpoint EndpointConfig `toml:"endpoint"`
	Stream   StreamConfig   `toml:"stream"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// EndpointConfig configures the chat completion endpoint. An empty URL
// selects the built-in offline responder.
type EndpointConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// StreamConfig tunes the simulated streaming delivery.
type StreamConfig struct {
	// IntervalMs is the delay between chunk deliveries in milliseconds.
	IntervalMs int `toml:"interval_ms"`
}

// StorageConfig configures conversation persistence.
type StorageConfig struct {
	// Dir overrides the conversation directory (default ~/.parley/conversations).
	Dir string `toml:"dir"`
	// MaxConversations caps how many conversations are kept on disk.
	// Oldest are pruned past the cap. Zero disables pruning.
	MaxConversations int `toml:"max_conversations"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// CompactMode collapses message padding for small terminals.
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps displays message timestamps in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// LogConfig configures the application log file.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`
	// Path overrides the log file location (default ~/.parley/parley.log).
	Path string `toml:"path"`
}

// =============================================================================
// FEATURE FLAGS
// =============================================================================

// Feature names accepted in the features string.
const (
	FeatureVoice = "voice"
	FeatureTone  = "tone"
	FeatureTTS   = "tts"
)

// FeatureSet holds parsed feature flags.
type FeatureSet map[string]bool

// ParseFeatures parses a comma-separated flag string like
// "voice=on,tone=on,tts=off". A bare name counts as enabled. Unknown names
// are kept so callers can warn about them.
func ParseFeatures(s string) FeatureSet {
	set := make(FeatureSet)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !found {
			set[name] = true
			continue
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "on", "true", "1", "yes":
			set[name] = true
		default:
			set[name] = false
		}
	}
	return set
}

// Enabled reports whether the named feature is on.
func (f FeatureSet) Enabled(name string) bool {
	return f[strings.ToLower(name)]
}

// FeatureSet parses the config's feature string.
func (c *Config) FeatureSet() FeatureSet {
	return ParseFeatures(c.Features)
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:  "1.0.0",
		Features: "tone=on",

		Endpoint: EndpointConfig{},

		Stream: StreamConfig{
			IntervalMs: 35,
		},

		Storage: StorageConfig{
			MaxConversations: 200,
		},

		UI: UIConfig{
			Theme:          "dark",
			CompactMode:    false,
			ShowTimestamps: false,
		},

		Log: LogConfig{
			Level: "info",
		},
	}
}

// StreamInterval returns the chunk delivery interval as a duration.
func (c *Config) StreamInterval() time.Duration {
	return time.Duration(c.Stream.IntervalMs) * time.Millisecond
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the parley configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file, applies
// environment overrides, and validates. A missing file is not an error;
// defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file. The file is
// created with 0600 permissions: it may carry an API key.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# parley configuration file")
	fmt.Fprintln(file, "# Generated by parley - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION / DEFAULTS
// =============================================================================

// ValidationError is a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SetDefaults fills zero-value fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Stream.IntervalMs == 0 {
		c.Stream.IntervalMs = defaults.Stream.IntervalMs
	}
	if c.Storage.MaxConversations == 0 {
		c.Storage.MaxConversations = defaults.Storage.MaxConversations
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Endpoint.URL != "" {
		u, err := url.Parse(c.Endpoint.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ValidationError{
				Field:   "endpoint.url",
				Message: fmt.Sprintf("invalid URL %q", c.Endpoint.URL),
			}
		}
	}

	if c.Stream.IntervalMs < 0 {
		return ValidationError{
			Field:   "stream.interval_ms",
			Message: "must be non-negative",
		}
	}

	if c.Storage.MaxConversations < 0 {
		return ValidationError{
			Field:   "storage.max_conversations",
			Message: "must be non-negative",
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Log.Level),
		}
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PARLEY_ENDPOINT: overrides endpoint.url
//   - PARLEY_API_KEY: overrides endpoint.api_key
//   - PARLEY_FEATURES: overrides the feature flag string
//   - PARLEY_THEME: overrides ui.theme
//   - PARLEY_LOG_LEVEL: overrides log.level
//   - PARLEY_STREAM_INTERVAL_MS: overrides stream.interval_ms
//   - PARLEY_DATA_DIR: overrides storage.dir
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PARLEY_ENDPOINT"); v != "" {
		c.Endpoint.URL = v
	}
	if v := os.Getenv("PARLEY_API_KEY"); v != "" {
		c.Endpoint.APIKey = v
	}
	if v := os.Getenv("PARLEY_FEATURES"); v != "" {
		c.Features = v
	}
	if v := os.Getenv("PARLEY_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PARLEY_STREAM_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Stream.IntervalMs = ms
		}
	}
	if v := os.Getenv("PARLEY_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
