package logging

import "context"

type contextKey string

const (
	conversationIDKey contextKey = "conversation_id"
	feedIDKey         contextKey = "feed_id"
)

// WithConversationID adds a conversation ID to the context.
func WithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationIDKey, id)
}

// WithFeedID adds a live feed ID to the context.
func WithFeedID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, feedIDKey, id)
}

// ConversationID returns the conversation ID from the context, or "".
func ConversationID(ctx context.Context) string {
	id, _ := ctx.Value(conversationIDKey).(string)
	return id
}

// FeedID returns the feed ID from the context, or "".
func FeedID(ctx context.Context) string {
	id, _ := ctx.Value(feedIDKey).(string)
	return id
}
