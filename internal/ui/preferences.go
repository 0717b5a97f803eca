package ui

// Preferences controls runtime UI settings.
type Preferences struct {
	Dark    bool
	Dense   bool
	NoColor bool
}

// CurrentPreferences holds the active UI preferences.
var CurrentPreferences = Preferences{Dark: true}

// ApplyPreferences updates UI preferences and the active palette.
func ApplyPreferences(p Preferences) {
	CurrentPreferences = p
	ApplyTheme(ThemeFor(p.Dark), p.NoColor)
}

// ApplyTheme switches the color palette for the TUI.
func ApplyTheme(theme string, noColor bool) {
	p := PaletteByName(theme)
	p.Disabled = noColor
	ApplyPalette(p)
}
