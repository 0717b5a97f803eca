package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/executor"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(withCode(2, executor.ErrVerificationFailed)))
	assert.Equal(t, 1, exitCode(withCode(0, errors.New("no code"))))
	assert.Equal(t, 1, exitCode(withCode(-1, errors.New("killed"))), "a killed driver is a plain failure")
	assert.Equal(t, 1, exitCode(&ExitError{Code: -1}))
	assert.NoError(t, withCode(0, nil))

	err := withCode(4, executor.ErrCommandFailed)
	assert.ErrorIs(t, err, executor.ErrCommandFailed)
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}

func TestDescribeOutcome(t *testing.T) {
	static := profile.Default()
	assert.Equal(t, "Static applied: brightness 40, color white", describeProfile(static))

	off := profile.Default()
	off.Brightness = 0
	assert.Equal(t, "Backlight off", describeProfile(off))

	wave := profile.Default()
	wave.Mode = profile.ModeWave
	wave.Direction = profile.DirectionLeft

	out := executor.Outcome{
		Requested: plan.Effect(wave),
		Used:      plan.Effect(wave),
		Result:    driver.Result{},
	}
	assert.Equal(t, "Effect applied: -b 40 -d left wave", describeOutcome(wave, out))

	out.Used = plan.Command{"effect", "-b", "40", "wave"}
	assert.Equal(t, "Effect applied: -b 40 wave (unsupported attributes dropped)", describeOutcome(wave, out))
}

func TestSummarize(t *testing.T) {
	p := profile.Default()
	assert.Equal(t, "static white at 40", summarize(p))

	p.Mode = profile.ModeRipple
	p.Color = profile.ColorRed
	p.Reactive = true
	assert.Equal(t, "ripple, at 40, speed 5, red, reactive", summarize(p))

	p.Brightness = 0
	assert.Equal(t, "off", summarize(p))
}

func TestApplyEditFlags(t *testing.T) {
	c := &cobra.Command{Use: "edit"}
	c.Flags().IntVarP(&editBrightness, "brightness", "b", 0, "")
	c.Flags().StringVarP(&editMode, "mode", "m", "", "")
	c.Flags().StringVarP(&editStaticColor, "color", "c", "", "")
	c.Flags().IntVarP(&editSpeed, "speed", "s", 0, "")
	c.Flags().StringVar(&editColor, "effect-color", "", "")
	c.Flags().StringVarP(&editDirection, "direction", "d", "", "")
	c.Flags().BoolVarP(&editReactive, "reactive", "r", false, "")
	require.NoError(t, c.ParseFlags([]string{"--mode", "wave", "--speed", "9", "-d", "up"}))
	require.True(t, editFlagsChanged(c))

	state := formState(profile.Default())
	applyEditFlags(c, &state)
	p := profile.Capture(state)

	assert.Equal(t, profile.ModeWave, p.Mode)
	assert.Equal(t, 9, p.Speed)
	assert.Equal(t, profile.DirectionUp, p.Direction)
	assert.Equal(t, profile.DefaultBrightness, p.Brightness, "untouched fields keep their value")
	assert.Equal(t, profile.ColorWhite, p.StaticColor)
}

func TestIntInRange(t *testing.T) {
	v := intInRange(0, 50)
	assert.NoError(t, v("0"))
	assert.NoError(t, v(" 50 "))
	assert.Error(t, v("51"))
	assert.Error(t, v("-1"))
	assert.Error(t, v("bright"))
}

func TestCheckPreferences(t *testing.T) {
	store := profile.NewStore()
	require.NoError(t, store.Create("Dim"))

	assert.NoError(t, checkPreferences(store, settings.Settings{ACProfile: "Default", BatteryProfile: "Dim"}))
	assert.NoError(t, checkPreferences(store, settings.Settings{}))
	assert.ErrorIs(t, checkPreferences(store, settings.Settings{BatteryProfile: "Gone"}), profile.ErrNotFound)
}

func TestProfileLifecycle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()

	run := func(args ...string) error {
		rootCmd.SetArgs(append([]string{"--config-dir", dir, "--quiet"}, args...))
		return rootCmd.Execute()
	}

	require.NoError(t, run("profile", "new", "Night"))
	require.NoError(t, run("profile", "rename", "Night", "Dim"))
	require.NoError(t, run("settings", "--battery-profile", "Dim"))

	store := profile.Load(cfg.ProfilePath())
	assert.Equal(t, []string{"Default", "Dim"}, store.Names())
	active, _ := store.ActiveProfile()
	assert.Equal(t, "Dim", active)
	assert.Equal(t, "Dim", settings.Load(cfg.SettingsPath()).BatteryProfile)

	require.NoError(t, run("profile", "delete", "Dim"))

	store = profile.Load(cfg.ProfilePath())
	assert.Equal(t, []string{"Default"}, store.Names())
	active, _ = store.ActiveProfile()
	assert.Equal(t, "Default", active)
	assert.Empty(t, settings.Load(cfg.SettingsPath()).BatteryProfile, "deleting a profile clears preferences pointing at it")

	assert.ErrorIs(t, run("profile", "delete", "Default"), profile.ErrLastProfile)
}

func TestRootWithoutTerminalPrintsHelp(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CI", "1")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"--config-dir", t.TempDir(), "--quiet"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "backlight stores named lighting profiles")
	assert.Contains(t, out.String(), "Available Commands")
}
