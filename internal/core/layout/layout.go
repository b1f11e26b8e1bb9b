// Package layout classifies a viewport width into responsive layout flags.
package layout

const (
	// DefaultMobileBelow is the width (exclusive) under which the layout is
	// considered mobile.
	DefaultMobileBelow = 768
	// DefaultSecondaryPanelMax is the widest width (inclusive) at which the
	// secondary panel is still hidden.
	DefaultSecondaryPanelMax = 1470
)

// Layout holds the flags derived from a viewport width.
type Layout struct {
	IsMobile           bool
	HideSecondaryPanel bool
}

// Breakpoints are the widths Classify compares against.
type Breakpoints struct {
	MobileBelow       int
	SecondaryPanelMax int
}

// DefaultBreakpoints returns the standard breakpoints.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		MobileBelow:       DefaultMobileBelow,
		SecondaryPanelMax: DefaultSecondaryPanelMax,
	}
}

// Classify applies the default breakpoints to width.
func Classify(width int) Layout {
	return DefaultBreakpoints().Classify(width)
}

// Classify applies b to width.
func (b Breakpoints) Classify(width int) Layout {
	return Layout{
		IsMobile:           width < b.MobileBelow,
		HideSecondaryPanel: width <= b.SecondaryPanelMax,
	}
}

// Tracker keeps the most recent layout across resize events. A zero width
// means the size is not known yet and leaves the previous layout in place.
type Tracker struct {
	bp      Breakpoints
	current Layout
	known   bool
}

// NewTracker creates a Tracker. Until the first non-zero width arrives the
// current layout is the desktop layout with the secondary panel hidden.
func NewTracker(bp Breakpoints) *Tracker {
	return &Tracker{
		bp:      bp,
		current: Layout{HideSecondaryPanel: true},
	}
}

// Resize reclassifies for width and reports whether the layout changed.
func (t *Tracker) Resize(width int) (Layout, bool) {
	if width <= 0 {
		return t.current, false
	}
	next := t.bp.Classify(width)
	changed := !t.known || next != t.current
	t.current = next
	t.known = true
	return next, changed
}

// Current returns the last computed layout.
func (t *Tracker) Current() Layout {
	return t.current
}
