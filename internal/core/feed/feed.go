// Package feed defines the live feed contract consumed by the UI: an ordered
// stream of added, changed and removed items plus a one-time ready signal
// marking the end of the initial snapshot.
package feed

import (
	"context"
	"errors"
)

// ErrClosed is returned when subscribing through a closed feed.
var ErrClosed = errors.New("feed: closed")

// Kind identifies the type of a feed event.
type Kind string

const (
	KindAdded   Kind = "added"
	KindChanged Kind = "changed"
	KindRemoved Kind = "removed"
	// KindReady is delivered exactly once per subscription, after every
	// event belonging to the initial snapshot.
	KindReady Kind = "ready"
)

// Event is a single change delivered by a subscription. Item is the zero
// value for removed and ready events.
type Event[T any] struct {
	Kind Kind
	Key  string
	Item T
}

// Filter scopes a subscription. ID names the scoped entity (a conversation
// or a user) and Limit caps the snapshot size where the source supports it.
type Filter struct {
	ID    string
	Limit int
}

// Subscription is a live view over a feed.
type Subscription[T any] interface {
	// Events returns the ordered event stream. The channel is closed after
	// Close returns or the subscribe context is cancelled.
	Events() <-chan Event[T]
	// Ready reports whether the initial snapshot has been delivered. It
	// transitions from false to true once. Consumers that classify events
	// should rely on the in-band KindReady event instead, which is ordered
	// with the snapshot; Ready may flip slightly before it is received.
	Ready() bool
	// Close releases the subscription. It is safe to call more than once.
	Close() error
}

// Feed is a source of subscriptions.
type Feed[T any] interface {
	Subscribe(ctx context.Context, f Filter) (Subscription[T], error)
}
