package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		width int
		want  Layout
	}{
		{320, Layout{IsMobile: true, HideSecondaryPanel: true}},
		{767, Layout{IsMobile: true, HideSecondaryPanel: true}},
		{768, Layout{IsMobile: false, HideSecondaryPanel: true}},
		{1470, Layout{IsMobile: false, HideSecondaryPanel: true}},
		{1471, Layout{IsMobile: false, HideSecondaryPanel: false}},
		{2560, Layout{IsMobile: false, HideSecondaryPanel: false}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.width), "width %d", tt.width)
	}
}

func TestBreakpoints_Custom(t *testing.T) {
	bp := Breakpoints{MobileBelow: 60, SecondaryPanelMax: 120}

	assert.Equal(t, Layout{IsMobile: true, HideSecondaryPanel: true}, bp.Classify(59))
	assert.Equal(t, Layout{IsMobile: false, HideSecondaryPanel: true}, bp.Classify(120))
	assert.Equal(t, Layout{IsMobile: false, HideSecondaryPanel: false}, bp.Classify(121))
}

func TestTracker_Resize(t *testing.T) {
	tr := NewTracker(DefaultBreakpoints())

	got, changed := tr.Resize(0)
	assert.False(t, changed)
	assert.Equal(t, Layout{HideSecondaryPanel: true}, got)

	got, changed = tr.Resize(1600)
	assert.True(t, changed)
	assert.Equal(t, Layout{}, got)

	_, changed = tr.Resize(1700)
	assert.False(t, changed)

	got, changed = tr.Resize(500)
	assert.True(t, changed)
	assert.True(t, got.IsMobile)

	got, changed = tr.Resize(0)
	assert.False(t, changed)
	assert.True(t, got.IsMobile, "unknown width keeps the previous layout")
	assert.Equal(t, got, tr.Current())
}
