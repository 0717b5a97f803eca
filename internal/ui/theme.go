package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// HuhTheme returns a form theme built from the active palette.
func HuhTheme() *huh.Theme {
	t := huh.ThemeBase()
	if palette.Disabled {
		return t
	}

	f := &t.Focused
	f.Base = f.Base.BorderForeground(Border)
	f.Title = f.Title.Foreground(Highlight).Bold(true)
	f.NoteTitle = f.NoteTitle.Foreground(Primary).Bold(true).MarginBottom(1)
	f.Description = f.Description.Foreground(Muted)
	f.ErrorIndicator = f.ErrorIndicator.Foreground(Error)
	f.ErrorMessage = f.ErrorMessage.Foreground(Error)
	f.SelectSelector = f.SelectSelector.Foreground(Accent)
	f.NextIndicator = f.NextIndicator.Foreground(Accent)
	f.PrevIndicator = f.PrevIndicator.Foreground(Accent)
	f.Option = f.Option.Foreground(Foreground)
	f.MultiSelectSelector = f.MultiSelectSelector.Foreground(Accent)
	f.SelectedOption = f.SelectedOption.Foreground(Primary)
	f.SelectedPrefix = f.SelectedPrefix.Foreground(Primary)
	f.UnselectedOption = f.UnselectedOption.Foreground(Foreground)
	f.UnselectedPrefix = f.UnselectedPrefix.Foreground(Muted)
	f.FocusedButton = f.FocusedButton.Foreground(Background).Background(Primary).Bold(true)
	f.BlurredButton = f.BlurredButton.Foreground(Foreground).Background(lipgloss.Color(""))
	f.TextInput.Cursor = f.TextInput.Cursor.Foreground(Info)
	f.TextInput.Placeholder = f.TextInput.Placeholder.Foreground(Muted)
	f.TextInput.Prompt = f.TextInput.Prompt.Foreground(Accent)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = t.Focused.Title.Foreground(Muted).Bold(false)
	t.Blurred.NextIndicator = lipgloss.NewStyle()
	t.Blurred.PrevIndicator = lipgloss.NewStyle()

	t.Help.ShortKey = t.Help.ShortKey.Foreground(Accent)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(Muted)

	return t
}

// FormKeyMap keeps the default form bindings and adds q as a way back
// out of a form.
func FormKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "back"),
	)
	return km
}
