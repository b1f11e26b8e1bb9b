package commands

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/murmur/internal/core/config"
)

// ErrNoUser is returned when neither --user nor the config names the
// current user.
var ErrNoUser = errors.New("no user configured; pass --user or set user in the config file")

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	User       string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// CurrentUser returns the acting username: the --user flag, then the
// configured user.
func (f *Flags) CurrentUser() (string, error) {
	if f.User != "" {
		return f.User, nil
	}
	if f.Config != nil && f.Config.User != "" {
		return f.Config.User, nil
	}
	return "", ErrNoUser
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "murmur", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "murmur")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/murmur/murmur.log
// On Linux: $XDG_STATE_HOME/murmur/murmur.log (defaults to ~/.local/state/murmur/murmur.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "murmur", "murmur.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "murmur", "murmur.log")
	}

	return filepath.Join(home, ".local", "state", "murmur", "murmur.log")
}
