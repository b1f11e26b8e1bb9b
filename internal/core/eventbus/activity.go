package eventbus

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/murmur/internal/core/logging"
)

// Receipts records that a user has read a conversation.
type Receipts interface {
	MarkRead(ctx context.Context, conversationID, user string, at time.Time) error
}

// Waker wakes live feeds after a local write.
type Waker interface {
	Notify()
}

// ActivityRouter applies the side effects of local user activity: opening a
// conversation moves the read receipt, and any local write wakes the feeds
// so badges and lists refresh without waiting for the next poll.
type ActivityRouter struct {
	ctx      context.Context
	bus      *EventBus
	receipts Receipts
	waker    Waker
	logger   zerolog.Logger
}

// NewActivityRouter constructs an activity router.
func NewActivityRouter(ctx context.Context, bus *EventBus, receipts Receipts, waker Waker, logger zerolog.Logger) *ActivityRouter {
	return &ActivityRouter{
		ctx:      ctx,
		bus:      bus,
		receipts: receipts,
		waker:    waker,
		logger:   logger,
	}
}

// Register subscribes to conversation.opened and message.sent.
func (r *ActivityRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeConversationOpened(func(p ConversationOpenedPayload) {
		ctx := logging.WithConversationID(r.ctx, p.ConversationID)
		if err := r.receipts.MarkRead(ctx, p.ConversationID, p.User, p.At); err != nil {
			r.logger.Warn().Ctx(ctx).Err(err).Msg("mark read failed")
			return
		}
		r.waker.Notify()
	})

	r.bus.SubscribeMessageSent(func(MessageSentPayload) {
		r.waker.Notify()
	})
}
