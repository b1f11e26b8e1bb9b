// Package config handles configuration loading and validation for murmur.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/layout"
	"github.com/colonyops/murmur/internal/core/scroll"
	"github.com/colonyops/murmur/internal/core/styles"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	User     string         `yaml:"user"`
	Database DatabaseConfig `yaml:"database"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Layout   LayoutConfig   `yaml:"layout"`
	Audio    AudioConfig    `yaml:"audio"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// FeedsConfig tunes the live feeds.
type FeedsConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MessageLimit int           `yaml:"message_limit"` // 0 loads the full history
	Watch        *bool         `yaml:"watch"`         // wake on database file changes, default true
}

// WatchEnabled reports whether database file watching is on.
func (f FeedsConfig) WatchEnabled() bool {
	return f.Watch == nil || *f.Watch
}

// ScrollConfig tunes the conversation auto-scroll anchor.
type ScrollConfig struct {
	// Threshold is the distance from the bottom, in pixels, below which the
	// view counts as scrolled away. Must be negative.
	Threshold float64 `yaml:"threshold"`
}

// LayoutConfig holds the responsive breakpoints. Terminal cells are
// converted to pixels with the cell size so breakpoints keep their meaning.
type LayoutConfig struct {
	MobileBelow       int `yaml:"mobile_below"`
	SecondaryPanelMax int `yaml:"secondary_panel_max"`
	CellWidthPx       int `yaml:"cell_width_px"`
	CellHeightPx      int `yaml:"cell_height_px"`
}

// Breakpoints returns the classifier breakpoints.
func (l LayoutConfig) Breakpoints() layout.Breakpoints {
	return layout.Breakpoints{
		MobileBelow:       l.MobileBelow,
		SecondaryPanelMax: l.SecondaryPanelMax,
	}
}

// AudioConfig holds the cue for each alert category.
type AudioConfig struct {
	Conversations CueConfig `yaml:"conversations"`
	Requests      CueConfig `yaml:"requests"`
	// Mute holds glob patterns matched against "category/feed".
	Mute []string `yaml:"mute"`
}

// CueConfig describes one audio cue.
type CueConfig struct {
	Kind        audio.Kind    `yaml:"kind"`
	Command     []string      `yaml:"command"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// Spec converts the config into an audio build spec.
func (c CueConfig) Spec() audio.Spec {
	return audio.Spec{
		Kind:        c.Kind,
		Command:     c.Command,
		MinInterval: c.MinInterval,
	}
}

// TUIConfig holds terminal UI options.
type TUIConfig struct {
	Markdown bool   `yaml:"markdown"`
	Theme    string `yaml:"theme"` // palette name, see styles.ThemeNames
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		User: os.Getenv("USER"),
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Feeds: FeedsConfig{
			PollInterval: 2 * time.Second,
			MessageLimit: 500,
		},
		Scroll: ScrollConfig{
			Threshold: scroll.DefaultThreshold,
		},
		Layout: LayoutConfig{
			MobileBelow:       layout.DefaultMobileBelow,
			SecondaryPanelMax: layout.DefaultSecondaryPanelMax,
			CellWidthPx:       8,
			CellHeightPx:      16,
		},
		Audio: AudioConfig{
			Conversations: CueConfig{Kind: audio.KindBell, MinInterval: time.Second},
			Requests:      CueConfig{Kind: audio.KindBell, MinInterval: time.Second},
		},
		TUI: TUIConfig{
			Markdown: true,
			Theme:    styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.User == "" {
		c.User = defaults.User
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Feeds.PollInterval == 0 {
		c.Feeds.PollInterval = defaults.Feeds.PollInterval
	}
	if c.Scroll.Threshold == 0 {
		c.Scroll.Threshold = defaults.Scroll.Threshold
	}
	if c.Layout.MobileBelow == 0 {
		c.Layout.MobileBelow = defaults.Layout.MobileBelow
	}
	if c.Layout.SecondaryPanelMax == 0 {
		c.Layout.SecondaryPanelMax = defaults.Layout.SecondaryPanelMax
	}
	if c.Layout.CellWidthPx == 0 {
		c.Layout.CellWidthPx = defaults.Layout.CellWidthPx
	}
	if c.Layout.CellHeightPx == 0 {
		c.Layout.CellHeightPx = defaults.Layout.CellHeightPx
	}
	if c.Audio.Conversations.Kind == "" {
		c.Audio.Conversations.Kind = defaults.Audio.Conversations.Kind
	}
	if c.Audio.Requests.Kind == "" {
		c.Audio.Requests.Kind = defaults.Audio.Requests.Kind
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}
