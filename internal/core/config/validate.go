package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.User == "" {
		errs = errs.Append("user", fmt.Errorf("cannot be empty"))
	}
	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("cannot be negative"))
	}

	if c.Feeds.PollInterval < 0 {
		errs = errs.Append("feeds.poll_interval", fmt.Errorf("cannot be negative"))
	}
	if c.Feeds.MessageLimit < 0 {
		errs = errs.Append("feeds.message_limit", fmt.Errorf("cannot be negative"))
	}

	if c.Scroll.Threshold >= 0 {
		errs = errs.Append("scroll.threshold", fmt.Errorf("must be negative, got %v", c.Scroll.Threshold))
	}

	if c.Layout.MobileBelow < 1 {
		errs = errs.Append("layout.mobile_below", fmt.Errorf("must be positive"))
	}
	if c.Layout.SecondaryPanelMax < c.Layout.MobileBelow {
		errs = errs.Append("layout.secondary_panel_max", fmt.Errorf("must be at least mobile_below"))
	}
	if c.Layout.CellWidthPx < 1 {
		errs = errs.Append("layout.cell_width_px", fmt.Errorf("must be positive"))
	}
	if c.Layout.CellHeightPx < 1 {
		errs = errs.Append("layout.cell_height_px", fmt.Errorf("must be positive"))
	}

	errs = appendCueErrors(errs, "audio.conversations", c.Audio.Conversations)
	errs = appendCueErrors(errs, "audio.requests", c.Audio.Requests)

	return errs.ToError()
}

func appendCueErrors(errs criterio.FieldErrorsBuilder, field string, cue CueConfig) criterio.FieldErrorsBuilder {
	if !cue.Kind.IsValid() {
		return errs.Append(field+".kind", fmt.Errorf("invalid kind %q", cue.Kind))
	}
	if cue.Kind == audio.KindCommand && len(cue.Command) == 0 {
		errs = errs.Append(field+".command", fmt.Errorf("required when kind is %q", audio.KindCommand))
	}
	if cue.MinInterval < 0 {
		errs = errs.Append(field+".min_interval", fmt.Errorf("cannot be negative"))
	}
	return errs
}

// ValidateDeep performs comprehensive validation of the configuration including
// mute patterns, cue executables, theme names and file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateMutePatterns(),
		c.validateCueCommands(),
		criterio.Run("tui.theme", c.TUI.Theme, themeExists),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	cues := map[string]CueConfig{
		"conversations": c.Audio.Conversations,
		"requests":      c.Audio.Requests,
	}
	for name, cue := range cues {
		if cue.Kind != audio.KindNone && cue.MinInterval == 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Audio",
				Item:     name,
				Message:  "min_interval is 0; a burst of arrivals plays once per item",
			})
		}
	}

	if c.Feeds.MessageLimit == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Feeds",
			Message:  "message_limit is 0; conversations load their full history",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateMutePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Audio.Mute {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("audio.mute[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}
	return errs.ToError()
}

func (c *Config) validateCueCommands() error {
	var errs criterio.FieldErrorsBuilder
	for field, cue := range map[string]CueConfig{
		"audio.conversations.command": c.Audio.Conversations,
		"audio.requests.command":      c.Audio.Requests,
	} {
		if cue.Kind != audio.KindCommand {
			continue
		}
		if _, err := exec.LookPath(cue.Command[0]); err != nil {
			errs = errs.Append(field, fmt.Errorf("executable not found: %s", cue.Command[0]))
		}
	}
	return errs.ToError()
}

func themeExists(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q, available: %v", name, styles.ThemeNames())
	}
	return nil
}
