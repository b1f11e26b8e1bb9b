package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/murmur/internal/core/feed"
	"github.com/colonyops/murmur/internal/core/social"
)

// Feeds is the source of the three live feeds the TUI renders.
type Feeds interface {
	Messages() feed.Feed[social.Message]
	Unread() feed.Feed[social.UnreadConversation]
	Requests() feed.Feed[social.FriendRequest]
}

// Feed identifiers used for alert bookkeeping.
const (
	feedUnread   = "unread-conversations"
	feedRequests = "friend-requests"
)

// Alert categories. The audio router maps each to a cue.
const (
	CategoryUnread   = "unread"
	CategoryRequests = "requests"
)

// feedSubscribedMsg carries a new subscription back to the event loop. gen
// identifies the subscription attempt; a stale gen means the subscription
// was superseded before it arrived and must be closed.
type feedSubscribedMsg[T any] struct {
	gen uint64
	sub feed.Subscription[T]
	err error
}

// feedEventMsg carries one event from a subscription. closed is set when the
// event channel has been closed.
type feedEventMsg[T any] struct {
	gen    uint64
	event  feed.Event[T]
	closed bool
}

// resubscribeDelay spaces out subscriptions replacing a feed that closed
// underneath the TUI.
var resubscribeDelay = time.Second

func subscribeFeed[T any](ctx context.Context, f feed.Feed[T], filter feed.Filter, gen uint64) tea.Cmd {
	return func() tea.Msg {
		sub, err := f.Subscribe(ctx, filter)
		return feedSubscribedMsg[T]{gen: gen, sub: sub, err: err}
	}
}

// resubscribeFeed subscribes again after resubscribeDelay under a new
// generation.
func resubscribeFeed[T any](ctx context.Context, f feed.Feed[T], filter feed.Filter, gen uint64) tea.Cmd {
	return tea.Tick(resubscribeDelay, func(time.Time) tea.Msg {
		sub, err := f.Subscribe(ctx, filter)
		return feedSubscribedMsg[T]{gen: gen, sub: sub, err: err}
	})
}

// listenFeed waits for the next event. It is re-issued after every event so
// the event loop consumes the subscription in order.
func listenFeed[T any](sub feed.Subscription[T], gen uint64) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		return feedEventMsg[T]{gen: gen, event: ev, closed: !ok}
	}
}

// closeSub closes a subscription off the event loop; Close waits for the
// poller goroutine to exit.
func closeSub[T any](sub feed.Subscription[T]) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		_ = sub.Close()
		return nil
	}
}
