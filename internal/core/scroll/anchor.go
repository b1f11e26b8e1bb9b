// Package scroll decides when a growing list should follow its newest item.
//
// An Anchor watches two things: the last scroll position reported by the
// viewport and the identity of the list being shown. On every content change
// it answers a single question, "should the consumer jump to the bottom?".
// It never moves the viewport itself.
package scroll

// DefaultThreshold is the distance (in pixels) past which the view is no
// longer considered "at the bottom". Rendering jitter can leave a view a few
// pixels short of its maximum offset; anything above this is treated as
// being at the bottom.
const DefaultThreshold = -10.0

// Viewport is a snapshot of a scrollable region.
type Viewport struct {
	ScrollOffset   float64
	ViewportHeight float64
	ContentHeight  float64
}

// DistanceFromBottom is zero when the view shows the last line of content
// and negative by the number of hidden pixels when the user has scrolled up.
func (v Viewport) DistanceFromBottom() float64 {
	return (v.ScrollOffset + v.ViewportHeight) - v.ContentHeight
}

// Reason explains an auto-scroll decision.
type Reason string

const (
	ReasonListChanged  Reason = "list-changed"
	ReasonAtBottom     Reason = "at-bottom"
	ReasonScrolledAway Reason = "scrolled-away"
	ReasonNotReady     Reason = "not-ready"
)

// Decision is the result of OnContentChanged.
type Decision struct {
	ScrollToBottom bool
	Reason         Reason
}

// Option configures an Anchor.
type Option func(*Anchor)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(px float64) Option {
	return func(a *Anchor) {
		a.threshold = px
	}
}

// Anchor tracks scroll position relative to a list and decides when to
// auto-scroll. It is not safe for concurrent use; drive it from a single
// event loop.
type Anchor struct {
	threshold float64

	listID   string
	hasList  bool
	distance float64
}

// New creates an Anchor with no list attached.
func New(opts ...Option) *Anchor {
	a := &Anchor{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Threshold returns the configured at-bottom tolerance.
func (a *Anchor) Threshold() float64 {
	return a.threshold
}

// OnScroll records the latest viewport position.
func (a *Anchor) OnScroll(v Viewport) {
	a.distance = v.DistanceFromBottom()
}

// Distance returns the last recorded distance from the bottom.
func (a *Anchor) Distance() float64 {
	return a.distance
}

// ListID returns the identity of the list seen on the last call to
// OnContentChanged, and false if none has been seen yet.
func (a *Anchor) ListID() (string, bool) {
	return a.listID, a.hasList
}

// OnContentChanged reports whether the consumer should scroll to the bottom
// after the list identified by listID changed.
//
// A list seen for the first time (or replacing a different list) always
// opens at its newest item. Otherwise nothing happens until ready, and once
// ready the view follows new items only while the user is at the bottom.
func (a *Anchor) OnContentChanged(listID string, ready bool) Decision {
	if !a.hasList || listID != a.listID {
		a.listID = listID
		a.hasList = true
		return Decision{ScrollToBottom: true, Reason: ReasonListChanged}
	}

	if !ready {
		return Decision{Reason: ReasonNotReady}
	}

	if a.distance > a.threshold {
		return Decision{ScrollToBottom: true, Reason: ReasonAtBottom}
	}

	return Decision{Reason: ReasonScrolledAway}
}

// Reset forgets the current list so the next content change is treated as a
// freshly opened list. The recorded scroll position is kept until the next
// OnScroll.
func (a *Anchor) Reset() {
	a.listID = ""
	a.hasList = false
}
