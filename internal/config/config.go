// Package config loads the weft config file. Every field is optional;
// zero values fall back to defaults so a missing file is a valid config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"

	"github.com/adamavenir/weft/internal/loader"
)

// Config is the persisted config file schema.
type Config struct {
	Theme   string        `toml:"theme"`
	Log     LogConfig     `toml:"log"`
	Scroll  ScrollConfig  `toml:"scroll"`
	Tools   ToolsConfig   `toml:"tools"`
	Notify  NotifyConfig  `toml:"notify"`
	Loader  LoaderConfig  `toml:"loader"`
	History HistoryConfig `toml:"history"`

	Source string `toml:"-"`
}

// LogConfig controls the file logger. An empty file discards all output.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// ScrollConfig holds attachment thresholds in viewport lines.
type ScrollConfig struct {
	EnterLines int `toml:"enter_lines"`
	ExitLines  int `toml:"exit_lines"`
	FarLines   int `toml:"far_lines"`
}

// ToolsConfig controls tool row behavior. AutoExpand patterns match tool
// names that start expanded.
type ToolsConfig struct {
	AutoExpand []string `toml:"auto_expand"`
}

// NotifyConfig gates desktop notifications.
type NotifyConfig struct {
	Permissions bool `toml:"permissions"`
}

// LoaderConfig tunes the output fetch retry schedule.
type LoaderConfig struct {
	RetryBaseMS int     `toml:"retry_base_ms"`
	RetryGrowth float64 `toml:"retry_growth"`
	RetryCapMS  int     `toml:"retry_cap_ms"`
	MaxAttempts int     `toml:"max_attempts"`
}

// HistoryConfig bounds the in-memory entry window. Entries beyond Window
// spill to the spool; LoadStep come back per load-more.
type HistoryConfig struct {
	Window   int `toml:"window"`
	LoadStep int `toml:"load_step"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme: "dusk",
		Log:   LogConfig{Level: "info"},
		Scroll: ScrollConfig{
			EnterLines: 4,
			ExitLines:  12,
			FarLines:   40,
		},
		Notify:  NotifyConfig{Permissions: true},
		History: HistoryConfig{Window: 200, LoadStep: 50},
	}
}

// DefaultPath returns the conventional config location, or "" when no home
// directory can be resolved.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "weft", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "weft", "config.toml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields Default(); a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			cfg.Source = ""
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Scroll.EnterLines <= 0 {
		c.Scroll.EnterLines = def.Scroll.EnterLines
	}
	if c.Scroll.ExitLines <= c.Scroll.EnterLines {
		c.Scroll.ExitLines = max(def.Scroll.ExitLines, c.Scroll.EnterLines+1)
	}
	if c.Scroll.FarLines <= 0 {
		c.Scroll.FarLines = def.Scroll.FarLines
	}
	if c.History.Window <= 0 {
		c.History.Window = def.History.Window
	}
	if c.History.LoadStep <= 0 {
		c.History.LoadStep = def.History.LoadStep
	}
}

// RetryPolicy maps the loader section onto a retry schedule. Unset fields
// keep the loader defaults.
func (c Config) RetryPolicy() loader.RetryPolicy {
	policy := loader.DefaultRetryPolicy
	if c.Loader.RetryBaseMS > 0 {
		policy.Base = time.Duration(c.Loader.RetryBaseMS) * time.Millisecond
	}
	if c.Loader.RetryGrowth >= 1 {
		policy.Growth = c.Loader.RetryGrowth
	}
	if c.Loader.RetryCapMS > 0 {
		policy.Cap = time.Duration(c.Loader.RetryCapMS) * time.Millisecond
	}
	if c.Loader.MaxAttempts > 0 {
		policy.MaxAttempts = c.Loader.MaxAttempts
	}
	return policy
}

// AutoExpandMatcher compiles the tools.auto_expand patterns. Invalid
// patterns are reported, not skipped; a config typo should be loud.
func (c Config) AutoExpandMatcher() (func(toolName string) bool, error) {
	if len(c.Tools.AutoExpand) == 0 {
		return func(string) bool { return false }, nil
	}
	globs := make([]glob.Glob, 0, len(c.Tools.AutoExpand))
	for _, pattern := range c.Tools.AutoExpand {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile tools.auto_expand pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return func(toolName string) bool {
		for _, g := range globs {
			if g.Match(toolName) {
				return true
			}
		}
		return false
	}, nil
}
