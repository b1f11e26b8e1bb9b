// Package social holds the messaging domain: users, conversations, messages
// and friend requests.
package social

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyBody         = errors.New("message body is required")
	ErrBodyTooLarge      = errors.New("message body exceeds maximum size")
	ErrEmptyConversation = errors.New("conversation is required")
	ErrEmptySender       = errors.New("sender is required")
	ErrSelfRequest       = errors.New("cannot send a friend request to yourself")
	ErrNoParticipants    = errors.New("conversation needs at least two participants")
)

// Lookup errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyHandled = errors.New("friend request already handled")
)

// MaxBodySize is the maximum message body size in bytes (64KiB).
const MaxBodySize = 64 << 10

// Message is a single chat message in a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessage creates a validated message. ID and CreatedAt are assigned by
// the store.
func NewMessage(conversationID, sender, body string) (Message, error) {
	m := Message{
		ConversationID: conversationID,
		Sender:         sender,
		Body:           body,
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks that the message meets all constraints.
func (m *Message) Validate() error {
	if m.ConversationID == "" {
		return ErrEmptyConversation
	}
	if strings.TrimSpace(m.Sender) == "" {
		return ErrEmptySender
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	if len(m.Body) > MaxBodySize {
		return ErrBodyTooLarge
	}
	return nil
}

// IsFrom reports whether the message was sent by user.
func (m *Message) IsFrom(user string) bool {
	return m.Sender == user
}

// Conversation is a thread between two or more users.
type Conversation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Participants  []string  `json:"participants"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Validate checks that the conversation can be created.
func (c *Conversation) Validate() error {
	seen := make(map[string]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		if strings.TrimSpace(p) == "" {
			continue
		}
		seen[p] = struct{}{}
	}
	if len(seen) < 2 {
		return ErrNoParticipants
	}
	return nil
}

// DisplayTitle returns the title, or the other participants when untitled.
func (c *Conversation) DisplayTitle(viewer string) string {
	if c.Title != "" {
		return c.Title
	}
	others := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != viewer {
			others = append(others, p)
		}
	}
	return strings.Join(others, ", ")
}

// UnreadConversation is a conversation with messages the user has not read.
type UnreadConversation struct {
	ConversationID  string    `json:"conversation_id"`
	Title           string    `json:"title"`
	Unread          int       `json:"unread"`
	NewestMessageAt time.Time `json:"newest_message_at"`
}

// RequestStatus is the lifecycle state of a friend request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest asks To to befriend From.
type FriendRequest struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewFriendRequest creates a validated pending request.
func NewFriendRequest(from, to string) (FriendRequest, error) {
	r := FriendRequest{From: from, To: to, Status: RequestPending}
	if err := r.Validate(); err != nil {
		return FriendRequest{}, err
	}
	return r, nil
}

// Validate checks that the request meets all constraints.
func (r *FriendRequest) Validate() error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return ErrEmptySender
	}
	if r.From == r.To {
		return ErrSelfRequest
	}
	return nil
}
