package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/data/db"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.User = "alice"
	cfg.DataDir = t.TempDir()
	return &cfg
}

func statuses(r Result) map[string]Status {
	out := make(map[string]Status, len(r.Items))
	for _, item := range r.Items {
		out[item.Label] = item.Status
	}
	return out
}

func TestConfigCheck_Valid(t *testing.T) {
	cfg := validConfig(t)

	result := NewConfigCheck(cfg, filepath.Join(t.TempDir(), "missing.yaml")).Run(context.Background())

	assert.Equal(t, "Configuration", result.Name)
	got := statuses(result)
	assert.Equal(t, StatusPass, got["config file"])
	assert.Equal(t, StatusPass, got["validation"])
}

func TestConfigCheck_FieldErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.User = ""
	cfg.Feeds.MessageLimit = -1

	result := NewConfigCheck(cfg, "").Run(context.Background())

	got := statuses(result)
	assert.Equal(t, StatusFail, got["user"])
	assert.Equal(t, StatusFail, got["feeds.message_limit"])
	_, passed := got["validation"]
	assert.False(t, passed)
}

func TestConfigCheck_Warnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Feeds.MessageLimit = 0

	result := NewConfigCheck(cfg, "").Run(context.Background())

	assert.Equal(t, StatusWarn, statuses(result)["Feeds"])
}

func TestDatabaseCheck(t *testing.T) {
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	result := NewDatabaseCheck(database).Run(context.Background())

	got := statuses(result)
	assert.Equal(t, StatusPass, got["open"])
	assert.Equal(t, StatusPass, got["integrity"])
	assert.Equal(t, StatusPass, got["schema"])
}

func TestDatabaseCheck_NotOpen(t *testing.T) {
	result := NewDatabaseCheck(nil).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}

func TestFeedsCheck(t *testing.T) {
	cfg := validConfig(t)
	result := NewFeedsCheck(cfg).Run(context.Background())
	assert.Equal(t, StatusPass, statuses(result)["poll interval"])
	assert.Equal(t, StatusPass, statuses(result)["file watch"])

	off := false
	cfg.Feeds.Watch = &off
	cfg.Feeds.PollInterval = 100 * time.Millisecond
	result = NewFeedsCheck(cfg).Run(context.Background())
	assert.Equal(t, StatusWarn, statuses(result)["poll interval"])
	assert.Equal(t, StatusWarn, statuses(result)["file watch"])
}

func TestAudioCheck(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		if file == "paplay" {
			return "/usr/bin/paplay", nil
		}
		return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
	}

	tests := []struct {
		name string
		cue  config.CueConfig
		want Status
	}{
		{"bell", config.CueConfig{Kind: audio.KindBell}, StatusPass},
		{"none", config.CueConfig{Kind: audio.KindNone}, StatusWarn},
		{"command found", config.CueConfig{Kind: audio.KindCommand, Command: []string{"paplay", "ding.oga"}}, StatusPass},
		{"command missing", config.CueConfig{Kind: audio.KindCommand, Command: []string{"afplay"}}, StatusFail},
		{"command empty", config.CueConfig{Kind: audio.KindCommand}, StatusFail},
		{"unknown", config.CueConfig{Kind: "chime"}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Audio.Conversations = tt.cue

			result := NewAudioCheck(cfg).Run(context.Background())
			assert.Equal(t, tt.want, statuses(result)["conversations"])
		})
	}
}

func TestRunAllAndSummary(t *testing.T) {
	cfg := validConfig(t)
	cfg.Audio.Requests = config.CueConfig{Kind: audio.KindNone}

	results := RunAll(context.Background(), []Check{NewFeedsCheck(cfg), NewAudioCheck(cfg)})
	require.Len(t, results, 2)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 0, failed)
}
