package audio

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/colonyops/murmur/pkg/executil"
)

// Kind selects a cue implementation.
type Kind string

const (
	KindNone    Kind = "none"
	KindBell    Kind = "bell"
	KindCommand Kind = "command"
)

// IsValid reports whether k is a known cue kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindNone, KindBell, KindCommand:
		return true
	default:
		return false
	}
}

// Spec describes a cue declaratively, as read from configuration.
type Spec struct {
	Kind        Kind
	Command     []string
	MinInterval time.Duration
}

// Build constructs the cue described by spec. Bells ring on out unless
// router has a route set.
func Build(spec Spec, exec executil.Executor, out *os.File, router *Router) (Cue, error) {
	var cue Cue
	switch spec.Kind {
	case KindNone, "":
		return Nop{}, nil
	case KindBell:
		cue = NewBell(out).WithRouter(router)
	case KindCommand:
		c, err := NewCommand(exec, spec.Command)
		if err != nil {
			return nil, err
		}
		cue = c
	default:
		return nil, fmt.Errorf("audio: unknown cue kind %q", spec.Kind)
	}

	if spec.MinInterval > 0 {
		cue = NewThrottled(cue, rate.Every(spec.MinInterval), 1)
	}
	return cue, nil
}
