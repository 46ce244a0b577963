// Package config handles loading and saving canopy configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/canopy/config.yaml
//   - State:  ~/.local/state/canopy/ (debug traces, if any)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source points canopy at a catalog to browse.
type Source struct {
	// Type is "fixture" (JSON catalog file), "sqlite" (database file) or
	// "dir" (filesystem directory). Empty means auto-detect from Path.
	Type string `yaml:"type,omitempty"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowMirror   bool    `yaml:"show_mirror"`              // Selected-objects pane visible at startup
	SplitRatio   float64 `yaml:"split_ratio,omitempty"`    // Catalog/mirror pane ratio (0.2-0.8)
	ExpandDepth  int     `yaml:"expand_depth,omitempty"`   // Levels auto-expanded at startup
	ShowKindTags bool    `yaml:"show_kind_tags,omitempty"` // Render [table]/[view] tags after names
}

// FixtureConfig controls the simulated fetch backend used for JSON catalogs.
type FixtureConfig struct {
	// FetchDelay is how long the timed resolver waits before returning
	// children, to exercise the loading states. Zero means instant.
	FetchDelay time.Duration `yaml:"fetch_delay,omitempty"`
}

// Config is the top-level configuration for canopy.
type Config struct {
	Source  Source        `yaml:"source,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Fixture FixtureConfig `yaml:"fixture,omitempty"`
	Watch   bool          `yaml:"watch,omitempty"` // Reload the tree when the source file changes
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			ShowMirror:  true,
			SplitRatio:  0.6,
			ExpandDepth: 1,
		},
		Fixture: FixtureConfig{
			FetchDelay: 400 * time.Millisecond,
		},
	}
}

// ConfigDir returns the XDG config directory for canopy.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "canopy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "canopy")
}

// StateDir returns the XDG state directory for canopy.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "canopy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "canopy")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Source.Path = expandHome(cfg.Source.Path)
	if cfg.UI.SplitRatio < 0.2 || cfg.UI.SplitRatio > 0.8 {
		cfg.UI.SplitRatio = DefaultConfig().UI.SplitRatio
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
