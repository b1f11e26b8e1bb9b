package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook lifts conversation_id and feed_id from the event context.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if id := ConversationID(ctx); id != "" {
		e.Str(string(conversationIDKey), id)
	}

	if id := FeedID(ctx); id != "" {
		e.Str(string(feedIDKey), id)
	}
}
