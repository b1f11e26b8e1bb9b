package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/data/db"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// minPollInterval is the poll interval below which the feeds warn about
// database load.
const minPollInterval = 250 * time.Millisecond

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new config check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.configPath); err != nil {
		result.pass("config file", "not found, using defaults")
	} else {
		result.pass("config file", c.configPath)
	}

	if err := c.cfg.ValidateDeep(c.configPath); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.fail(fe.Field, fe.Err.Error())
			}
		} else {
			result.fail("validation", err.Error())
		}
	} else {
		result.pass("validation", "user "+c.cfg.User)
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " " + w.Item
		}
		result.warn(label, w.Message)
	}

	return result
}

// DatabaseCheck verifies the database is reachable, intact and fully
// migrated.
type DatabaseCheck struct {
	db *db.DB
}

// NewDatabaseCheck creates a new database check.
func NewDatabaseCheck(database *db.DB) *DatabaseCheck {
	return &DatabaseCheck{db: database}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.db == nil {
		result.fail("open", "database is not open")
		return result
	}

	conn := c.db.Conn()
	if err := conn.PingContext(ctx); err != nil {
		result.fail("open", err.Error())
		return result
	}
	result.pass("open", c.db.Path())

	var integrity string
	if err := conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&integrity); err != nil {
		result.fail("integrity", err.Error())
	} else if integrity != "ok" {
		result.fail("integrity", integrity)
	} else {
		result.pass("integrity", "ok")
	}

	latest, err := db.LatestVersion()
	if err != nil {
		result.fail("schema", err.Error())
		return result
	}
	applied, err := db.AppliedVersions(ctx, conn)
	switch {
	case err != nil:
		result.fail("schema", err.Error())
	case !slices.Contains(applied, latest):
		result.fail("schema", fmt.Sprintf("migration %d not applied", latest))
	default:
		result.pass("schema", fmt.Sprintf("version %d", latest))
	}

	return result
}

// FeedsCheck reports how live feeds will pick up changes.
type FeedsCheck struct {
	cfg *config.Config
}

// NewFeedsCheck creates a new feeds check.
func NewFeedsCheck(cfg *config.Config) *FeedsCheck {
	return &FeedsCheck{cfg: cfg}
}

func (c *FeedsCheck) Name() string {
	return "Live Feeds"
}

func (c *FeedsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	interval := c.cfg.Feeds.PollInterval
	if interval < minPollInterval {
		result.warn("poll interval", fmt.Sprintf("%s is aggressive; the database is queried on every tick", interval))
	} else {
		result.pass("poll interval", interval.String())
	}

	if c.cfg.Feeds.WatchEnabled() {
		result.pass("file watch", "changes from other processes wake the feeds")
	} else {
		result.warn("file watch", fmt.Sprintf("disabled; messages from other processes appear within %s", interval))
	}

	return result
}

// AudioCheck verifies every alert cue can play.
type AudioCheck struct {
	cfg *config.Config
}

// NewAudioCheck creates a new audio check.
func NewAudioCheck(cfg *config.Config) *AudioCheck {
	return &AudioCheck{cfg: cfg}
}

func (c *AudioCheck) Name() string {
	return "Alerts"
}

func (c *AudioCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	cues := []struct {
		label string
		cue   config.CueConfig
	}{
		{"conversations", c.cfg.Audio.Conversations},
		{"requests", c.cfg.Audio.Requests},
	}

	for _, cue := range cues {
		switch cue.cue.Kind {
		case audio.KindNone, "":
			result.warn(cue.label, "no cue configured")
		case audio.KindBell:
			detail := "terminal bell"
			if os.Getenv("TMUX") != "" {
				detail += " (tmux passthrough)"
			}
			result.pass(cue.label, detail)
		case audio.KindCommand:
			if len(cue.cue.Command) == 0 {
				result.fail(cue.label, "command cue without a command")
				continue
			}
			path, err := lookPathFunc(cue.cue.Command[0])
			if err != nil {
				result.fail(cue.label, cue.cue.Command[0]+" not found on PATH")
				continue
			}
			result.pass(cue.label, path)
		default:
			result.fail(cue.label, fmt.Sprintf("unknown cue kind %q", cue.cue.Kind))
		}
	}

	if len(c.cfg.Audio.Mute) > 0 {
		result.pass("mute", fmt.Sprintf("%d pattern(s)", len(c.cfg.Audio.Mute)))
	}

	return result
}

// DefaultChecks returns the checks run by murmur doctor.
func DefaultChecks(cfg *config.Config, configPath string, database *db.DB) []Check {
	return []Check{
		NewConfigCheck(cfg, configPath),
		NewDatabaseCheck(database),
		NewFeedsCheck(cfg),
		NewAudioCheck(cfg),
	}
}
