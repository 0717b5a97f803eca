package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors every style is derived from. Disabled
// palettes render without color.
type Palette struct {
	Name string

	Primary, Secondary, Accent, Highlight lipgloss.Color
	Info, Success, Warning, Error         lipgloss.Color
	Muted, Border                         lipgloss.Color
	Background, Foreground                lipgloss.Color

	Disabled bool
}

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeMono  = "mono"
)

var palettes = map[string]Palette{
	ThemeDark: {
		Name:    ThemeDark,
		Primary: "#22D3EE", Secondary: "#A78BFA", Accent: "#38BDF8", Highlight: "#7DD3FC",
		Info: "#60A5FA", Success: "#34D399", Warning: "#FBBF24", Error: "#F87171",
		Muted: "#94A3B8", Border: "#334155",
		Background: "#0B1120", Foreground: "#E2E8F0",
	},
	ThemeLight: {
		Name:    ThemeLight,
		Primary: "#0E7490", Secondary: "#7C3AED", Accent: "#0369A1", Highlight: "#0891B2",
		Info: "#2563EB", Success: "#047857", Warning: "#B45309", Error: "#B91C1C",
		Muted: "#64748B", Border: "#CBD5E1",
		Background: "#F8FAFC", Foreground: "#0F172A",
	},
	ThemeMono: {
		Name:    ThemeMono,
		Primary: "#F1F5F9", Secondary: "#CBD5E1", Accent: "#A1A1AA", Highlight: "#FFFFFF",
		Info: "#F1F5F9", Success: "#F1F5F9", Warning: "#A1A1AA", Error: "#D4D4D8",
		Muted: "#71717A", Border: "#52525B",
		Background: "#09090B", Foreground: "#F1F5F9",
	},
}

// ThemeFor maps the dark_mode setting to a theme name.
func ThemeFor(dark bool) string {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// PaletteByName returns a palette by theme name. Unknown names get the
// light palette.
func PaletteByName(name string) Palette {
	if p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return palettes[ThemeLight]
}

// DefaultPalette returns the palette used before preferences are applied.
func DefaultPalette() Palette {
	return PaletteByName(ThemeFor(true))
}

// keyboardColors maps driver color names to swatches.
var keyboardColors = map[string]lipgloss.Color{
	"white":  "#F8FAFC",
	"red":    "#EF4444",
	"orange": "#F97316",
	"yellow": "#FACC15",
	"green":  "#22C55E",
	"blue":   "#3B82F6",
	"teal":   "#14B8A6",
	"purple": "#A855F7",
}

// Swatch renders a keyboard color name in that color. Names without a
// fixed color, like "random" or "none", render muted.
func Swatch(name string) string {
	c, ok := keyboardColors[strings.ToLower(name)]
	if !ok || palette.Disabled {
		return MutedStyle.Render(name)
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("■ " + name)
}
