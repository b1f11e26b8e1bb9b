package murmur

import (
	"context"
	"time"

	"github.com/colonyops/murmur/internal/core/config"
	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/social"
)

// MessageService wraps social.MessageStore with domain logic.
type MessageService struct {
	store  social.MessageStore
	config *config.Config
	bus    *eventbus.EventBus
}

// NewMessageService creates a new MessageService.
func NewMessageService(store social.MessageStore, cfg *config.Config, bus *eventbus.EventBus) *MessageService {
	return &MessageService{
		store:  store,
		config: cfg,
		bus:    bus,
	}
}

// Send validates and stores a message from sender, then emits message.sent.
func (s *MessageService) Send(ctx context.Context, conversationID, sender, body string) (social.Message, error) {
	msg, err := social.NewMessage(conversationID, sender, body)
	if err != nil {
		return social.Message{}, err
	}

	msg, err = s.store.Send(ctx, msg)
	if err != nil {
		return social.Message{}, err
	}

	if s.bus != nil {
		s.bus.PublishMessageSent(eventbus.MessageSentPayload{Message: &msg})
	}
	return msg, nil
}

// List returns the newest messages of a conversation in chronological
// order. A limit of zero uses the configured feed message limit.
func (s *MessageService) List(ctx context.Context, conversationID string, limit int) ([]social.Message, error) {
	if limit == 0 && s.config != nil {
		limit = s.config.Feeds.MessageLimit
	}
	return s.store.List(ctx, conversationID, limit)
}

// Prune removes messages older than the given duration.
func (s *MessageService) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	return s.store.Prune(ctx, olderThan)
}
