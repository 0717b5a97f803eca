package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type progressStatus string

type progressDone struct{ err error }

// progressModel draws one line for a running driver action: a spinner,
// the action and the latest status, then a result line when it finishes.
type progressModel struct {
	spin    spinner.Model
	action  string
	status  string
	started time.Time
	done    bool
	err     error
}

func newProgress(action string) progressModel {
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	s.Style = lipgloss.NewStyle().Foreground(Accent)
	return progressModel{spin: s, action: action, started: time.Now()}
}

func (m progressModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressStatus:
		m.status = string(msg)
	case progressDone:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return resultLine(m.action, time.Since(m.started), m.err) + "\n"
	}
	line := fmt.Sprintf("%s %s", m.spin.View(), m.action)
	if m.status != "" {
		line += MutedStyle.Render(" · " + m.status)
	}
	return line + "\n"
}

func resultLine(action string, elapsed time.Duration, err error) string {
	took := MutedStyle.Render(fmt.Sprintf("(%s)", elapsed.Round(10*time.Millisecond)))
	if err != nil {
		return ErrorStyle.Render("✗ "+action) + " " + took
	}
	return SuccessStyle.Render("✓ "+action) + " " + took
}

// RunWithSpinner runs fn while a spinner is shown. fn may report progress
// through status. Keystrokes do not interrupt fn, and RunWithSpinner does
// not return before fn does.
func RunWithSpinner(action string, fn func(status func(string)) error) error {
	if !IsInteractiveTerminal() {
		start := time.Now()
		err := fn(func(string) {})
		fmt.Println(resultLine(action, time.Since(start), err))
		return err
	}

	p := tea.NewProgram(newProgress(action), tea.WithoutSignalHandler())
	run := func() error {
		_, err := p.Run()
		return err
	}
	return runAlongside(run, p.Send, fn)
}

// runAlongside runs fn in the background while run drives the display, and
// waits for both.
func runAlongside(run func() error, send func(tea.Msg), fn func(status func(string)) error) error {
	result := make(chan error, 1)
	go func() {
		err := fn(func(s string) { send(progressStatus(s)) })
		result <- err
		send(progressDone{err: err})
	}()

	runErr := run()
	err := <-result
	if err == nil && runErr != nil {
		return fmt.Errorf("running spinner: %w", runErr)
	}
	return err
}
