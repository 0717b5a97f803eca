package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	spinnertea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestPaletteByName(t *testing.T) {
	assert.Equal(t, ThemeDark, PaletteByName("DARK").Name)
	assert.Equal(t, ThemeMono, PaletteByName(" mono ").Name)
	assert.Equal(t, ThemeLight, PaletteByName("nope").Name)
	assert.Equal(t, ThemeDark, ThemeFor(true))
	assert.Equal(t, ThemeLight, ThemeFor(false))
}

func TestApplyPreferences(t *testing.T) {
	t.Cleanup(func() { ApplyPreferences(Preferences{Dark: true}) })

	ApplyPreferences(Preferences{Dark: false, NoColor: true})
	assert.Equal(t, ThemeLight, CurrentPalette().Name)
	assert.True(t, CurrentPalette().Disabled)
	assert.Empty(t, string(Primary))

	ApplyPreferences(Preferences{Dark: true})
	assert.Equal(t, PaletteByName(ThemeDark).Primary, Primary)
	assert.NotNil(t, HuhTheme())
}

func TestMeter(t *testing.T) {
	assert.Empty(t, Meter(5, 0, 10))

	plain := ansi.Strip(Meter(25, 50, 10))
	assert.True(t, strings.HasSuffix(plain, " 25/50"))
	assert.Equal(t, 5, strings.Count(plain, "█"))

	assert.Equal(t, 10, strings.Count(ansi.Strip(Meter(80, 50, 10)), "█"))
	assert.Equal(t, 1, strings.Count(ansi.Strip(Meter(1, 50, 10)), "█"), "any light shows")
	assert.Contains(t, ansi.Strip(Meter(-4, 50, 10)), " 0/50")
}

func TestSwatchAndInfoLine(t *testing.T) {
	assert.Contains(t, ansi.Strip(Swatch("red")), "red")
	assert.Equal(t, "none", ansi.Strip(Swatch("none")))

	line := ansi.Strip(menuInfoLine("Profile", "", 40))
	assert.Equal(t, "profile:  unknown", line)
}

func TestResultLine(t *testing.T) {
	ok := ansi.Strip(resultLine("Applying Default", 1234*time.Millisecond, nil))
	assert.Equal(t, "✓ Applying Default (1.23s)", ok)

	failed := ansi.Strip(resultLine("Applying Default", 0, errors.New("boom")))
	assert.True(t, strings.HasPrefix(failed, "✗ Applying Default"))
}

func TestFrame(t *testing.T) {
	out := ansi.Strip(Frame("BACKLIGHT", "", "body", "keys"))
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "BACKLIGHT")
	assert.Equal(t, "keys", strings.TrimSpace(lines[len(lines)-1]))
}

func TestMenuKeys(t *testing.T) {
	items := []MenuItem{{ID: "apply", TitleText: "Apply"}, {ID: "off", TitleText: "Off"}}
	press := func(m menuModel, k tea.KeyPressMsg) menuModel {
		next, _ := m.Update(k)
		return next.(menuModel)
	}

	m := newMenuModel("T", "", items, menuConfig{selected: "off"})
	assert.Equal(t, "off", press(m, tea.KeyPressMsg{Code: tea.KeyEnter}).choice)
	assert.Equal(t, "apply", press(m, tea.KeyPressMsg{Code: '1', Text: "1"}).choice)
	assert.Equal(t, MenuActionQuit, press(m, tea.KeyPressMsg{Code: tea.KeyEscape}).choice)

	back := newMenuModel("T", "", items, menuConfig{allowBack: true, backLabel: "back"})
	assert.Equal(t, MenuActionBack, press(back, tea.KeyPressMsg{Code: 'q', Text: "q"}).choice)
}

func TestRunAlongsideWaitsForWork(t *testing.T) {
	release := make(chan struct{})
	finished := false
	broken := func() error {
		close(release)
		return errors.New("no tty")
	}

	err := runAlongside(broken, func(spinnertea.Msg) {}, func(status func(string)) error {
		<-release
		status("still going")
		finished = true
		return nil
	})
	assert.True(t, finished, "the work completes before the call returns")
	assert.ErrorContains(t, err, "no tty")

	boom := errors.New("driver failed")
	err = runAlongside(func() error { return errors.New("no tty") }, func(spinnertea.Msg) {}, func(func(string)) error {
		return boom
	})
	assert.ErrorIs(t, err, boom, "the work's error wins over the display's")
}
