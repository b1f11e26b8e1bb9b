package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette is the palette most recently applied via SetTheme.
var CurrentPalette Palette

// Semantic colors, rebuilt by SetTheme.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	BrandStyle   lipgloss.Style
	UserStyle    lipgloss.Style
	BadgeStyle   lipgloss.Style
	DividerStyle lipgloss.Style

	PanelStyle         lipgloss.Style
	PanelTitleStyle    lipgloss.Style
	ListItemStyle      lipgloss.Style
	ListSelectedStyle  lipgloss.Style
	ListUnreadStyle    lipgloss.Style
	ListSecondaryStyle lipgloss.Style

	ConversationTitleStyle lipgloss.Style
	OwnSenderStyle         lipgloss.Style
	TimeStyle              lipgloss.Style
	BodyStyle              lipgloss.Style
	EmptyStyle             lipgloss.Style

	ComposerStyle        lipgloss.Style
	ComposerFocusedStyle lipgloss.Style

	HelpStyle   lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	// CLI output
	TextPrimaryBoldStyle lipgloss.Style
	TextMutedStyle       lipgloss.Style
	TextSuccessStyle     lipgloss.Style
	TextWarningStyle     lipgloss.Style
	TextErrorStyle       lipgloss.Style
)

// ColorPool is used for deterministic color hashing of senders.
var ColorPool []color.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	HeaderStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorForeground).
		Padding(0, 1)
	BrandStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	UserStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	BadgeStyle = lipgloss.NewStyle().
		Background(ColorError).
		Foreground(ColorBackground).
		Bold(true).
		Padding(0, 1)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(ColorSurface).
		PaddingRight(1)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		MarginBottom(1)
	ListItemStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		PaddingLeft(2)
	ListSelectedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		Foreground(ColorPrimary).
		PaddingLeft(1)
	ListUnreadStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true)
	ListSecondaryStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ConversationTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	OwnSenderStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)
	TimeStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	BodyStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	EmptyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	ComposerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1)
	ComposerFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	ColorPool = []color.Color{
		ColorPrimary,
		ColorSecondary,
		ColorWarning,
		ColorError,
		lipgloss.Color("#bb9af7"),
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) color.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// SenderStyle returns the style for a message sender's name.
func SenderStyle(sender string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorForString(sender)).Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
