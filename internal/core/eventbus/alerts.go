package eventbus

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/murmur/internal/core/audio"
	"github.com/rs/zerolog"
)

// AlertRouter plays the audio cue of each raised alert's category.
//
// Mute patterns are doublestar globs matched against "category/feed", for
// example "requests/**" silences every friend request alert.
type AlertRouter struct {
	ctx    context.Context
	bus    *EventBus
	cues   map[string]audio.Cue
	mutes  []string
	logger zerolog.Logger
}

// NewAlertRouter constructs a router. Categories without a cue are silent.
func NewAlertRouter(ctx context.Context, bus *EventBus, cues map[string]audio.Cue, mutes []string, logger zerolog.Logger) *AlertRouter {
	return &AlertRouter{
		ctx:    ctx,
		bus:    bus,
		cues:   cues,
		mutes:  mutes,
		logger: logger,
	}
}

// Register subscribes to alert.raised.
func (r *AlertRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeAlertRaised(func(p AlertRaisedPayload) {
		if r.Muted(p.Category, p.FeedID) {
			r.logger.Debug().Str("category", p.Category).Str("feed", p.FeedID).Msg("alert muted")
			return
		}

		cue, ok := r.cues[p.Category]
		if !ok {
			return
		}
		audio.PlayBestEffort(r.ctx, cue, r.logger)
	})
}

// Muted reports whether any mute pattern matches the category and feed.
func (r *AlertRouter) Muted(category, feedID string) bool {
	name := category + "/" + feedID
	for _, pattern := range r.mutes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidateMutePatterns returns an error for the first malformed pattern.
func ValidateMutePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid mute pattern %q", p)
		}
	}
	return nil
}
