package murmur

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/colonyops/murmur/internal/core/eventbus"
	"github.com/colonyops/murmur/internal/core/social"
)

// ConversationService wraps social.ConversationStore with domain logic.
type ConversationService struct {
	store social.ConversationStore
	bus   *eventbus.EventBus
	now   func() time.Time
}

// NewConversationService creates a new ConversationService.
func NewConversationService(store social.ConversationStore, bus *eventbus.EventBus) *ConversationService {
	return &ConversationService{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
}

// Start creates a conversation between creator and others.
func (s *ConversationService) Start(ctx context.Context, creator, title string, others []string) (social.Conversation, error) {
	if creator == "" {
		return social.Conversation{}, social.ErrEmptySender
	}

	participants := append([]string{creator}, others...)
	return s.store.Create(ctx, social.Conversation{
		Title:        title,
		Participants: participants,
	})
}

// Get returns a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, id string) (social.Conversation, error) {
	return s.store.Get(ctx, id)
}

// ListFor returns the user's conversations, newest activity first.
func (s *ConversationService) ListFor(ctx context.Context, user string) ([]social.Conversation, error) {
	return s.store.ListFor(ctx, user)
}

// Newest returns the user's most recently active conversation.
func (s *ConversationService) Newest(ctx context.Context, user string) (social.Conversation, error) {
	return s.store.Newest(ctx, user)
}

// Unread returns the user's unread conversations.
func (s *ConversationService) Unread(ctx context.Context, user string) ([]social.UnreadConversation, error) {
	return s.store.Unread(ctx, user)
}

// Open looks up a conversation the user participates in and emits
// conversation.opened so the read receipt moves asynchronously.
func (s *ConversationService) Open(ctx context.Context, id, user string) (social.Conversation, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return social.Conversation{}, err
	}
	if !slices.Contains(c.Participants, user) {
		return social.Conversation{}, fmt.Errorf("conversation %s: %w", id, social.ErrNotFound)
	}

	if s.bus != nil {
		s.bus.PublishConversationOpened(eventbus.ConversationOpenedPayload{
			ConversationID: id,
			User:           user,
			At:             s.now(),
		})
	}
	return c, nil
}

// MarkRead moves the user's read receipt to now.
func (s *ConversationService) MarkRead(ctx context.Context, id, user string) error {
	return s.store.MarkRead(ctx, id, user, s.now())
}
