// Package ui provides Charm-based UI components for backlight
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

var (
	// Color palette, refreshed by ApplyPalette
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Info       lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color

	// Text styles
	Bold         lipgloss.Style
	Title        lipgloss.Style
	Tagline      lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	HintStyle    lipgloss.Style
	LabelStyle   lipgloss.Style

	// Box styles
	ErrorBox lipgloss.Style

	// Status indicators
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style

	headerStyle lipgloss.Style
)

func init() {
	ApplyPalette(palette)
}

// ApplyPalette makes p the active palette and rebuilds every style from it.
func ApplyPalette(p Palette) {
	palette = p
	pick := func(c lipgloss.Color) lipgloss.Color {
		if p.Disabled {
			return lipgloss.Color("")
		}
		return c
	}

	Primary = pick(p.Primary)
	Secondary = pick(p.Secondary)
	Accent = pick(p.Accent)
	Info = pick(p.Info)
	Success = pick(p.Success)
	Warning = pick(p.Warning)
	Error = pick(p.Error)
	Muted = pick(p.Muted)
	Background = pick(p.Background)
	Foreground = pick(p.Foreground)
	Border = pick(p.Border)
	Highlight = pick(p.Highlight)

	Bold = lipgloss.NewStyle().Bold(true)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Tagline = lipgloss.NewStyle().
		Foreground(Secondary).
		Italic(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	WarningStyle = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	MutedStyle = lipgloss.NewStyle().
		Foreground(Muted)

	HintStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	LabelStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Width(14)

	ErrorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Error).
		Padding(0, 1).
		MarginTop(1)

	StatusSuccess = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	StatusError = lipgloss.NewStyle().Foreground(Error).SetString("✗")
	StatusPending = lipgloss.NewStyle().Foreground(Muted).SetString("○")

	headerStyle = lipgloss.NewStyle().
		Foreground(Background).
		Background(Primary).
		Padding(0, 1).
		Bold(true)
	if p.Disabled {
		headerStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	}
}

// CurrentPalette returns the active palette.
func CurrentPalette() Palette {
	return palette
}

// PrimaryStyle returns a bold style in the primary color.
func PrimaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Primary).Bold(true)
}

// Header renders a screen title bar.
func Header(title string) string {
	return headerStyle.Render(strings.ToUpper(title))
}

// KeyValue renders an aligned "label value" line.
func KeyValue(label string, value string) string {
	return "  " + LabelStyle.Render(label) + " " + value
}

// Meter renders n out of total as a bar of the given width.
func Meter(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	n = max(0, min(total, n))
	filled := 0
	if n > 0 {
		filled = max(1, n*width/total)
	}
	bar := lipgloss.NewStyle().Foreground(Primary).Render(strings.Repeat("█", filled)) +
		MutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d", bar, n, total)
}
