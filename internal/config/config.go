// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sladen configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Query   QueryConfig   `toml:"query"`
	UI      UIConfig      `toml:"ui"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`

	// path is where the config was loaded from and where Save writes.
	path string
}

// ServerConfig describes how to reach the LightRAG backend.
type ServerConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	HealthInterval int    `toml:"health_interval"`
}

// QueryConfig holds the per-query settings sent with every request.
type QueryConfig struct {
	Mode                     string   `toml:"mode"`
	HistoryTurns             int      `toml:"history_turns"`
	Stream                   bool     `toml:"stream"`
	ResponseType             string   `toml:"response_type"`
	TopK                     int      `toml:"top_k"`
	ChunkTopK                int      `toml:"chunk_top_k"`
	MaxTokenForTextUnit      int      `toml:"max_token_for_text_unit"`
	MaxTokenForGlobalContext int      `toml:"max_token_for_global_context"`
	MaxTokenForLocalContext  int      `toml:"max_token_for_local_context"`
	OnlyNeedContext          bool     `toml:"only_need_context"`
	OnlyNeedPrompt           bool     `toml:"only_need_prompt"`
	HLKeywords               []string `toml:"hl_keywords"`
	LLKeywords               []string `toml:"ll_keywords"`
	UserPrompt               string   `toml:"user_prompt"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme           string `toml:"theme"`
	Language        string `toml:"language"`
	CurrentTab      string `toml:"current_tab"`
	ShowSuggestions bool   `toml:"show_suggestions"`
	WordWrap        int    `toml:"word_wrap"`
}

// StorageConfig selects where the conversation is persisted.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Known enumerations.
var (
	ValidThemes    = []string{"dark", "light", "system"}
	ValidTabs      = []string{"chat", "documents", "features", "knowledge-graph"}
	ValidBackends  = []string{"json", "sqlite"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
	ValidLanguages = []string{"en", "zh", "fr", "ar"}
)

// Default returns a configuration with built-in defaults.
func Default() *Config {
	dir := util.DataDir()
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:9621",
			TimeoutSeconds: 120,
			HealthInterval: 15,
		},
		Query: QueryConfig{
			Mode:                     string(querymode.DefaultMode),
			HistoryTurns:             3,
			Stream:                   true,
			ResponseType:             "Multiple Paragraphs",
			TopK:                     10,
			MaxTokenForTextUnit:      4000,
			MaxTokenForGlobalContext: 4000,
			MaxTokenForLocalContext:  4000,
		},
		UI: UIConfig{
			Theme:           "system",
			Language:        "en",
			CurrentTab:      "chat",
			ShowSuggestions: true,
			WordWrap:        100,
		},
		Storage: StorageConfig{
			Backend: "json",
			Path:    filepath.Join(dir, "conversation.json"),
		},
		Log: LogConfig{
			Path:       filepath.Join(dir, "logs", "sladen.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		path: DefaultPath(),
	}
}

// =============================================================================
// PATHS
// =============================================================================

// DefaultPath returns ~/.sladen/config.toml, or $SLADEN_CONFIG when set.
func DefaultPath() string {
	if p := os.Getenv("SLADEN_CONFIG"); p != "" {
		return util.ExpandHome(p)
	}
	return filepath.Join(util.DataDir(), "config.toml")
}

// Path returns the file this config is saved to.
func (c *Config) Path() string {
	return c.path
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// HealthInterval returns the backend polling interval.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.Server.HealthInterval) * time.Second
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the config at path. A missing file yields defaults.
// Environment overrides are applied last and the result is validated.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file into the process environment when present.
// Existing variables win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// normalize canonicalizes values that are matched case-insensitively and
// resolves ~ in paths.
func (c *Config) normalize() {
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	c.Query.Mode = strings.ToLower(strings.TrimSpace(c.Query.Mode))
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	c.UI.Language = strings.ToLower(c.UI.Language)
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Storage.Path = util.ExpandHome(c.Storage.Path)
	c.Log.Path = util.ExpandHome(c.Log.Path)

	// An unknown saved tab falls back to chat rather than failing startup.
	if !contains(ValidTabs, c.UI.CurrentTab) {
		c.UI.CurrentTab = "chat"
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the config as TOML to path with owner-only permissions.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	buf.WriteString("# sladen configuration file\n")
	buf.WriteString("# Written by sladen; comments are not preserved.\n\n")

	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.path = path
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"server.url", fmt.Sprintf("invalid URL '%s'", c.Server.URL)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"server.url", "scheme must be http or https"})
	}
	if c.Server.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{"server.timeout_seconds", "must be positive"})
	}
	if c.Server.HealthInterval < 0 {
		errs = append(errs, ValidationError{"server.health_interval", "must not be negative"})
	}

	if _, err := querymode.Parse(c.Query.Mode); err != nil {
		errs = append(errs, ValidationError{"query.mode", fmt.Sprintf("invalid mode '%s', must be one of: %s",
			c.Query.Mode, strings.Join(querymode.Names(), ", "))})
	}
	if c.Query.HistoryTurns < 0 {
		errs = append(errs, ValidationError{"query.history_turns", "must not be negative"})
	}
	if c.Query.TopK < 0 || c.Query.ChunkTopK < 0 {
		errs = append(errs, ValidationError{"query.top_k", "must not be negative"})
	}

	if !contains(ValidThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{"ui.theme", "must be one of: " + strings.Join(ValidThemes, ", ")})
	}
	if !contains(ValidLanguages, c.UI.Language) {
		errs = append(errs, ValidationError{"ui.language", "must be one of: " + strings.Join(ValidLanguages, ", ")})
	}
	if !contains(ValidBackends, c.Storage.Backend) {
		errs = append(errs, ValidationError{"storage.backend", "must be one of: " + strings.Join(ValidBackends, ", ")})
	}
	if c.Storage.Path == "" {
		errs = append(errs, ValidationError{"storage.path", "must not be empty"})
	}
	if !contains(ValidLogLevels, c.Log.Level) {
		errs = append(errs, ValidationError{"log.level", "must be one of: " + strings.Join(ValidLogLevels, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SLADEN_SERVER_URL: overrides server.url
//   - LIGHTRAG_API_KEY: overrides server.api_key
//   - SLADEN_TOKEN: overrides server.token
//   - SLADEN_QUERY_MODE: overrides query.mode
//   - SLADEN_THEME: overrides ui.theme
//   - SLADEN_LANG: overrides ui.language
//   - SLADEN_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SLADEN_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("LIGHTRAG_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("SLADEN_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("SLADEN_QUERY_MODE"); v != "" {
		c.Query.Mode = v
	}
	if v := os.Getenv("SLADEN_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SLADEN_LANG"); v != "" {
		c.UI.Language = v
	}
	if v := os.Getenv("SLADEN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Query.HLKeywords = append([]string(nil), c.Query.HLKeywords...)
	cp.Query.LLKeywords = append([]string(nil), c.Query.LLKeywords...)
	return &cp
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
