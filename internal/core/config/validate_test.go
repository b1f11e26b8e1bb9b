package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.User = "alice"
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty user", func(c *Config) { c.User = "" }, "user"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"no connections", func(c *Config) { c.Database.MaxOpenConns = 0 }, "database.max_open_conns"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 50 }, "database.max_idle_conns"},
		{"positive threshold", func(c *Config) { c.Scroll.Threshold = 5 }, "scroll.threshold"},
		{"inverted breakpoints", func(c *Config) { c.Layout.SecondaryPanelMax = 100 }, "layout.secondary_panel_max"},
		{"zero cell width", func(c *Config) { c.Layout.CellWidthPx = 0 }, "layout.cell_width_px"},
		{"bad cue kind", func(c *Config) { c.Audio.Requests.Kind = "trumpet" }, "audio.requests.kind"},
		{"command without argv", func(c *Config) { c.Audio.Conversations.Kind = audio.KindCommand }, "audio.conversations.command"},
		{"negative message limit", func(c *Config) { c.Feeds.MessageLimit = -1 }, "feeds.message_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.Contains(t, fieldNames(t, cfg.Validate()), tt.field)
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Audio.Mute = []string{"requests/**", "*/unread-*"}
	cfg.TUI.Theme = "gruvbox"

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_InvalidMutePattern(t *testing.T) {
	cfg := validConfig(t)
	cfg.Audio.Mute = []string{"ok/**", "bad/[abc"}

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"audio.mute[1]"}, fieldNames(t, err))
}

func TestValidateDeep_MissingCueExecutable(t *testing.T) {
	cfg := validConfig(t)
	cfg.Audio.Requests = CueConfig{Kind: audio.KindCommand, Command: []string{"definitely-not-a-real-player-xyz"}}

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"audio.requests.command"}, fieldNames(t, err))
}

func TestValidateDeep_UnknownTheme(t *testing.T) {
	cfg := validConfig(t)
	cfg.TUI.Theme = "neon-nightmare"

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"tui.theme"}, fieldNames(t, err))
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")
	assert.Equal(t, []string{"data_dir"}, fieldNames(t, err))
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())
	assert.Equal(t, []string{"config_file"}, fieldNames(t, err))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Audio.Requests.MinInterval = 0
	cfg.Feeds.MessageLimit = 0

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
}
