package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/colonyops/murmur/pkg/executil"
)

type failingCue struct{ err error }

func (f failingCue) Play(context.Context) error { return f.err }

type countingCue struct{ plays int }

func (c *countingCue) Play(context.Context) error {
	c.plays++
	return nil
}

func TestPlayBestEffort_SwallowsErrors(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		played := PlayBestEffort(ctx, failingCue{err: errors.New("autoplay blocked")}, zerolog.Nop())
		assert.False(t, played)
	})
	assert.False(t, PlayBestEffort(ctx, nil, zerolog.Nop()))
	assert.True(t, PlayBestEffort(ctx, Nop{}, zerolog.Nop()))
}

func TestWriterBell(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriterBell(&buf, false).Play(context.Background()))
		assert.Equal(t, "\a", buf.String())
	})

	t.Run("tmux passthrough", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriterBell(&buf, true).Play(context.Background()))
		assert.Equal(t, "\x1bPtmux;\a\x1b\\", buf.String())
	})
}

func TestBell_RefusesNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bell")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ErrorIs(t, NewBell(f).Play(context.Background()), ErrNotTerminal)
}

func TestBell_Router(t *testing.T) {
	var (
		buf    bytes.Buffer
		router Router
		routed []string
	)
	bell := NewWriterBell(&buf, true).WithRouter(&router)

	restore := router.Route(func(seq string) { routed = append(routed, seq) })
	require.NoError(t, bell.Play(context.Background()))
	assert.Equal(t, []string{"\x1bPtmux;\a\x1b\\"}, routed)
	assert.Empty(t, buf.String(), "routed bell must not touch the writer")

	restore()
	require.NoError(t, bell.Play(context.Background()))
	assert.Len(t, routed, 1)
	assert.Equal(t, "\x1bPtmux;\a\x1b\\", buf.String())
}

func TestBell_RoutedSkipsTerminalCheck(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bell")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var router Router
	calls := 0
	restore := router.Route(func(string) { calls++ })
	defer restore()

	require.NoError(t, NewBell(f).WithRouter(&router).Play(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestTmuxPassthrough_DoublesEscapes(t *testing.T) {
	assert.Equal(t, "\x1bPtmux;\x1b\x1b]9;hi\a\x1b\\", tmuxPassthrough("\x1b]9;hi\a"))
}

func TestCommand(t *testing.T) {
	rec := &executil.RecordingExecutor{}

	cue, err := NewCommand(rec, []string{"paplay", "--volume", "32768", "blip.oga"})
	require.NoError(t, err)
	require.NoError(t, cue.Play(context.Background()))

	cmds := rec.Recorded()
	require.Len(t, cmds, 1)
	assert.Equal(t, "paplay", cmds[0].Cmd)
	assert.Equal(t, []string{"--volume", "32768", "blip.oga"}, cmds[0].Args)

	_, err = NewCommand(rec, nil)
	assert.Error(t, err)
}

func TestThrottled(t *testing.T) {
	inner := &countingCue{}
	cue := NewThrottled(inner, rate.Every(time.Hour), 1)

	require.NoError(t, cue.Play(context.Background()))
	assert.ErrorIs(t, cue.Play(context.Background()), ErrThrottled)
	assert.ErrorIs(t, cue.Play(context.Background()), ErrThrottled)
	assert.Equal(t, 1, inner.plays)
}

func TestBuild(t *testing.T) {
	rec := &executil.RecordingExecutor{}

	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
		check   func(t *testing.T, c Cue)
	}{
		{
			name:  "empty kind is silent",
			spec:  Spec{},
			check: func(t *testing.T, c Cue) { assert.IsType(t, Nop{}, c) },
		},
		{
			name:  "bell",
			spec:  Spec{Kind: KindBell},
			check: func(t *testing.T, c Cue) { assert.IsType(t, &Bell{}, c) },
		},
		{
			name:  "command",
			spec:  Spec{Kind: KindCommand, Command: []string{"afplay", "harp.mp3"}},
			check: func(t *testing.T, c Cue) { assert.IsType(t, &Command{}, c) },
		},
		{
			name:  "throttled command",
			spec:  Spec{Kind: KindCommand, Command: []string{"afplay"}, MinInterval: time.Second},
			check: func(t *testing.T, c Cue) { assert.IsType(t, &Throttled{}, c) },
		},
		{
			name:    "command without argv",
			spec:    Spec{Kind: KindCommand},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			spec:    Spec{Kind: "trumpet"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cue, err := Build(tt.spec, rec, os.Stdout, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cue)
		})
	}
}
