// Package audio plays short alert sounds. Playback is always best-effort:
// a cue that cannot play (no terminal, missing player, throttled) must never
// break the caller.
package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/colonyops/murmur/pkg/executil"
)

var (
	ErrNotTerminal = errors.New("audio: output is not a terminal")
	ErrThrottled   = errors.New("audio: cue throttled")
)

// Cue is a playable sound.
type Cue interface {
	Play(ctx context.Context) error
}

// PlayBestEffort plays cue and swallows any failure. It reports whether the
// cue played.
func PlayBestEffort(ctx context.Context, cue Cue, logger zerolog.Logger) bool {
	if cue == nil {
		return false
	}
	if err := cue.Play(ctx); err != nil {
		logger.Debug().Err(err).Msg("audio cue not played")
		return false
	}
	return true
}

// Nop is a silent cue.
type Nop struct{}

func (Nop) Play(context.Context) error { return nil }

// Router hands bell sequences to whoever currently owns the terminal. With
// no route set, bells write straight to their output.
type Router struct {
	mu    sync.Mutex
	route func(seq string)
}

// Route sends every bell sequence to fn until restore is called. A
// full-screen program sets this so bells go through its own renderer.
func (r *Router) Route(fn func(seq string)) (restore func()) {
	r.mu.Lock()
	prev := r.route
	r.route = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		r.route = prev
		r.mu.Unlock()
	}
}

func (r *Router) current() func(string) {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// Bell rings the terminal bell.
type Bell struct {
	w        io.Writer
	fd       int
	checkTTY bool
	tmux     bool
	router   *Router
}

// NewBell rings the bell on f. Inside tmux the BEL is wrapped in a DCS
// passthrough so it reaches the outer terminal.
func NewBell(f *os.File) *Bell {
	return &Bell{
		w:        f,
		fd:       int(f.Fd()),
		checkTTY: true,
		tmux:     os.Getenv("TMUX") != "",
	}
}

// NewWriterBell writes the bell to an arbitrary writer without a terminal
// check.
func NewWriterBell(w io.Writer, tmux bool) *Bell {
	return &Bell{w: w, tmux: tmux}
}

// WithRouter makes the bell defer to r while a route is set.
func (b *Bell) WithRouter(r *Router) *Bell {
	b.router = r
	return b
}

func (b *Bell) Play(context.Context) error {
	seq := "\a"
	if b.tmux {
		seq = tmuxPassthrough(seq)
	}

	if route := b.router.current(); route != nil {
		route(seq)
		return nil
	}

	if b.checkTTY && !term.IsTerminal(b.fd) {
		return ErrNotTerminal
	}
	_, err := io.WriteString(b.w, seq)
	return err
}

// tmuxPassthrough wraps escape sequences in DCS passthrough for tmux.
// Each ESC byte in seq is doubled for tmux.
func tmuxPassthrough(seq string) string {
	doubled := strings.ReplaceAll(seq, "\x1b", "\x1b\x1b")
	return "\x1bPtmux;" + doubled + "\x1b\\"
}

// Command plays a sound by running an external player such as
// `paplay /usr/share/sounds/blip.oga`.
type Command struct {
	exec executil.Executor
	name string
	args []string
}

// NewCommand creates a Command cue. argv[0] is the program.
func NewCommand(exec executil.Executor, argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("audio: empty player command")
	}
	return &Command{exec: exec, name: argv[0], args: argv[1:]}, nil
}

func (c *Command) Play(ctx context.Context) error {
	return c.exec.Run(ctx, c.name, c.args...)
}

// Throttled limits how often a cue may play. A burst of arrivals produces a
// single sound instead of a cascade.
type Throttled struct {
	cue     Cue
	limiter *rate.Limiter
}

// NewThrottled lets cue play at limit plays per second, with the given
// burst.
func NewThrottled(cue Cue, limit rate.Limit, burst int) *Throttled {
	return &Throttled{cue: cue, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Play(ctx context.Context) error {
	if !t.limiter.Allow() {
		return ErrThrottled
	}
	return t.cue.Play(ctx)
}
