package styles

import (
	"image/color"
	"sort"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color

	// Light marks palettes meant for light terminal backgrounds.
	Light bool
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "murmur"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	// Slate background, teal accents, coral for unread and errors.
	"murmur": {
		Primary:    lipgloss.Color("#5fd3bc"),
		Secondary:  lipgloss.Color("#b4a7f5"),
		Foreground: lipgloss.Color("#d8dee9"),
		Muted:      lipgloss.Color("#6b7389"),
		Background: lipgloss.Color("#1c2029"),
		Surface:    lipgloss.Color("#2e3440"),
		Success:    lipgloss.Color("#8fd694"),
		Warning:    lipgloss.Color("#f2c879"),
		Error:      lipgloss.Color("#ff8a7a"),
	},
	"murmur-light": {
		Primary:    lipgloss.Color("#0f8a78"),
		Secondary:  lipgloss.Color("#6a5acd"),
		Foreground: lipgloss.Color("#2b303b"),
		Muted:      lipgloss.Color("#8a90a0"),
		Background: lipgloss.Color("#f7f5f0"),
		Surface:    lipgloss.Color("#e6e2d8"),
		Success:    lipgloss.Color("#3c8d40"),
		Warning:    lipgloss.Color("#b7791f"),
		Error:      lipgloss.Color("#d1453b"),
		Light:      true,
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

func colorHexPtr(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	if CurrentPalette.Light {
		cfg = glamourstyles.LightStyleConfig
	}

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	surface := colorHexPtr(ColorSurface)

	cfg.Document.Color = fg

	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary
	cfg.H5.Color = primary
	cfg.H6.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
