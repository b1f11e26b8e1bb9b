package social

import (
	"context"
	"time"
)

// ConversationStore persists conversations and read receipts.
type ConversationStore interface {
	// Create saves a new conversation and returns it with ID and timestamps set.
	Create(ctx context.Context, c Conversation) (Conversation, error)
	// Get returns a conversation by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (Conversation, error)
	// ListFor returns the conversations user participates in, newest activity first.
	ListFor(ctx context.Context, user string) ([]Conversation, error)
	// Newest returns the conversation with the most recent activity for user.
	// Returns ErrNotFound if the user has none.
	Newest(ctx context.Context, user string) (Conversation, error)
	// MarkRead records that user has read the conversation up to at.
	MarkRead(ctx context.Context, conversationID, user string, at time.Time) error
	// Unread returns conversations with messages from others newer than the
	// user's read receipt, newest first.
	Unread(ctx context.Context, user string) ([]UnreadConversation, error)
}

// MessageStore persists messages.
type MessageStore interface {
	// Send saves a message and returns it with ID and CreatedAt set.
	Send(ctx context.Context, m Message) (Message, error)
	// List returns the newest limit messages of a conversation in
	// chronological order (limit <= 0 means all).
	List(ctx context.Context, conversationID string, limit int) ([]Message, error)
	// Prune removes messages older than the given duration and returns how
	// many were removed.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

// RequestStore persists friend requests.
type RequestStore interface {
	// Send saves a new pending request.
	Send(ctx context.Context, r FriendRequest) (FriendRequest, error)
	// Pending returns requests addressed to user that are still pending, oldest first.
	Pending(ctx context.Context, user string) ([]FriendRequest, error)
	// Respond accepts or declines a pending request. Returns ErrNotFound or
	// ErrAlreadyHandled.
	Respond(ctx context.Context, id string, status RequestStatus) error
	// Friends returns the users who share an accepted request with user,
	// sorted by name.
	Friends(ctx context.Context, user string) ([]string, error)
}
