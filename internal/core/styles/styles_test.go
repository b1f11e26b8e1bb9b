package styles

import (
	"testing"

	glamourstyles "github.com/charmbracelet/glamour/styles"
	lipglossv1 "github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPalette(t *testing.T) {
	for _, name := range ThemeNames() {
		_, ok := GetPalette(name)
		assert.True(t, ok, name)
	}

	_, ok := GetPalette("missing")
	assert.False(t, ok)
	assert.Contains(t, ThemeNames(), DefaultTheme)
}

func TestColorForString_Deterministic(t *testing.T) {
	assert.Equal(t, ColorForString("alice"), ColorForString("alice"))
}

func TestSetTheme_UpdatesColors(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	assert.Equal(t, p.Primary, ColorPrimary)
	assert.Equal(t, p, CurrentPalette)
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	assert.NotEmpty(t, *cfg.Document.Color)
}

func TestGlamourStyle_LightPalette(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	assert.Same(t, glamourstyles.DarkStyleConfig.CodeBlock.Chroma, GlamourStyle().CodeBlock.Chroma)

	p, ok := GetPalette("murmur-light")
	require.True(t, ok)
	require.True(t, p.Light)
	SetTheme(p)

	cfg := GlamourStyle()
	assert.Same(t, glamourstyles.LightStyleConfig.CodeBlock.Chroma, cfg.CodeBlock.Chroma)
	require.NotNil(t, cfg.Document.Color)
	assert.Equal(t, "#2b303b", *cfg.Document.Color)
}

func TestFormTheme_UsesPalette(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	theme := FormTheme()
	require.NotNil(t, theme)
	assert.Equal(t, lipglossv1.Color("#83a598"), theme.Focused.Title.GetForeground())
	assert.Equal(t, lipglossv1.Color("#665c54"), theme.Blurred.Title.GetForeground())
}

func TestV1Color_Nil(t *testing.T) {
	assert.Equal(t, lipglossv1.NoColor{}, v1Color(nil))
}
