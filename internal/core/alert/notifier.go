// Package alert turns live feed "item added" events into notification
// decisions.
//
// Every tracked feed starts in a loading state. Items delivered while
// loading are backfill from the feed's initial snapshot and never notify.
// Once the feed reports ready, every further added item notifies. The
// package only decides; playing sounds or bumping counters is up to the
// caller.
package alert

import "errors"

// ErrDetached is returned when a handle is used after Detach. It indicates a
// caller bug; the call has no effect.
var ErrDetached = errors.New("alert: handle is detached")

// Reason explains a notification decision.
type Reason string

const (
	ReasonNewItem    Reason = "new-item"
	ReasonSuppressed Reason = "suppressed-during-load"
)

// Decision is the outcome of a single added event.
type Decision struct {
	ShouldNotify bool
	Reason       Reason
}

// FeedState is the per-feed bookkeeping owned by a Notifier.
type FeedState struct {
	FeedID    string
	Ready     bool
	ItemsSeen int
}

// Notifier tracks feeds for one notification category. Instances never share
// state, so the unread-conversations notifier and the friend-requests
// notifier suppress independently.
//
// A Notifier is not safe for concurrent use. It has no locks, which also
// makes it safe to Detach a handle from inside a callback driven by that
// handle.
type Notifier struct {
	category string
	handles  map[*Handle]struct{}
}

// New creates a Notifier for the named category (for example "unread" or
// "requests").
func New(category string) *Notifier {
	return &Notifier{
		category: category,
		handles:  make(map[*Handle]struct{}),
	}
}

// Category returns the category the notifier was created with.
func (n *Notifier) Category() string {
	return n.category
}

// Attach begins tracking feedID in the loading state. Attaching a feed that
// was previously detached starts over; readiness is never carried across
// subscriptions.
func (n *Notifier) Attach(feedID string) *Handle {
	h := &Handle{
		owner:  n,
		feedID: feedID,
		state:  &FeedState{FeedID: feedID},
	}
	n.handles[h] = struct{}{}
	return h
}

// Active returns the number of attached handles.
func (n *Notifier) Active() int {
	return len(n.handles)
}

// DetachAll detaches every handle. Used on teardown.
func (n *Notifier) DetachAll() {
	for h := range n.handles {
		h.Detach()
	}
}

// Handle is a single tracked feed.
type Handle struct {
	owner  *Notifier
	feedID string
	state  *FeedState
}

// FeedID returns the feed the handle tracks. It stays readable after Detach.
func (h *Handle) FeedID() string {
	return h.feedID
}

// State returns a copy of the feed state and false if the handle is detached.
func (h *Handle) State() (FeedState, bool) {
	if h.owner == nil {
		return FeedState{}, false
	}
	return *h.state, true
}

// Ready moves the feed from loading to ready. Calling it again is a no-op.
func (h *Handle) Ready() error {
	if h.owner == nil {
		return ErrDetached
	}
	h.state.Ready = true
	return nil
}

// Added records an added item and decides whether it should notify.
func (h *Handle) Added() (Decision, error) {
	if h.owner == nil {
		return Decision{}, ErrDetached
	}

	h.state.ItemsSeen++
	if !h.state.Ready {
		return Decision{Reason: ReasonSuppressed}, nil
	}
	return Decision{ShouldNotify: true, Reason: ReasonNewItem}, nil
}

// Detach stops tracking the feed and releases its state. It is safe to call
// more than once.
func (h *Handle) Detach() {
	if h.owner == nil {
		return
	}
	delete(h.owner.handles, h)
	h.owner = nil
	h.state = nil
}
