// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within murmur.
package eventbus

import (
	"time"

	"github.com/colonyops/murmur/internal/core/alert"
	"github.com/colonyops/murmur/internal/core/social"
)

// Event names a bus topic.
type Event string

// Keep list sorted A-Z.
const (
	EventAlertRaised        Event = "alert.raised"
	EventConversationOpened Event = "conversation.opened"
	EventMessageSent        Event = "message.sent"
	EventTuiStarted         Event = "tui.started"
	EventTuiStopped         Event = "tui.stopped"
)

// AlertRaisedPayload is emitted when a notifier decides an added feed item
// should notify.
type AlertRaisedPayload struct {
	Category string
	FeedID   string
	ItemKey  string
	Reason   alert.Reason
}

// ConversationOpenedPayload is emitted when a user opens a conversation.
type ConversationOpenedPayload struct {
	ConversationID string
	User           string
	At             time.Time
}

// MessageSentPayload is emitted after a message is stored.
type MessageSentPayload struct {
	Message *social.Message
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
