package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

const defaultWidth = 80

// StartScreen clears the terminal and prints the page heading used by the
// plain form fallback.
func StartScreen(title, subtitle string) {
	if IsInteractiveTerminal() {
		fmt.Print("\033[2J\033[H")
	}
	fmt.Println(heading(title, subtitle))
	if !CurrentPreferences.Dense {
		fmt.Println()
	}
}

func heading(title, subtitle string) string {
	if subtitle == "" {
		return Header(title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, Header(title), Tagline.Render(subtitle))
}

// IsInteractiveTerminal reports whether stdout is a terminal worth drawing
// to.
func IsInteractiveTerminal() bool {
	for _, ci := range []string{"CI", "GITHUB_ACTIONS"} {
		if os.Getenv(ci) != "" {
			return false
		}
	}
	switch os.Getenv("TERM") {
	case "", "dumb":
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// CanPrompt reports whether forms can be shown: both ends of the session
// must be terminals.
func CanPrompt() bool {
	return IsInteractiveTerminal() && term.IsTerminal(os.Stdin.Fd())
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// Frame stacks the heading, body and an optional footer.
func Frame(title, subtitle, body, footer string) string {
	blocks := []string{heading(title, subtitle), body}
	if footer != "" {
		blocks = append(blocks, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
