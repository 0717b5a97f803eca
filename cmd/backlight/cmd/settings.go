package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
	"github.com/iiroan/backlight/internal/ui"
)

var (
	setACProfile      string
	setBatteryProfile string
	setDarkMode       bool
	setNotifications  bool
	setStartInTray    bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configure power source profiles and preferences",
	Long: `Choose which profile the monitor activates on AC and on battery, and
set display preferences. Without flags an interactive form is shown.

Pass an empty name to stop switching for a power source.

Examples:
  backlight settings
  backlight settings --ac-profile Bright --battery-profile Dim
  backlight settings --battery-profile ""`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	f := settingsCmd.Flags()
	f.StringVar(&setACProfile, "ac-profile", "", "Profile to activate on AC power")
	f.StringVar(&setBatteryProfile, "battery-profile", "", "Profile to activate on battery")
	f.BoolVar(&setDarkMode, "dark-mode", false, "Use the dark color theme")
	f.BoolVar(&setNotifications, "notifications", true, "Show notifications")
	f.BoolVar(&setStartInTray, "start-in-tray", false, "Start minimized to the tray")
}

func runSettings(cmd *cobra.Command, args []string) error {
	prefs := settings.Load(cfg.SettingsPath())
	store := profile.Load(cfg.ProfilePath())

	flags := cmd.Flags()
	changed := false
	for _, name := range []string{"ac-profile", "battery-profile", "dark-mode", "notifications", "start-in-tray"} {
		if flags.Changed(name) {
			changed = true
		}
	}

	switch {
	case changed:
		if flags.Changed("ac-profile") {
			prefs.ACProfile = strings.TrimSpace(setACProfile)
		}
		if flags.Changed("battery-profile") {
			prefs.BatteryProfile = strings.TrimSpace(setBatteryProfile)
		}
		if flags.Changed("dark-mode") {
			prefs.DarkMode = setDarkMode
		}
		if flags.Changed("notifications") {
			prefs.ShowNotifications = setNotifications
		}
		if flags.Changed("start-in-tray") {
			prefs.StartInTray = setStartInTray
		}
		if err := checkPreferences(store, prefs); err != nil {
			return err
		}
	case ui.CanPrompt():
		if err := runSettingsForm(store, &prefs); err != nil {
			return err
		}
	default:
		printSettings(store, prefs)
		return nil
	}

	if err := prefs.Save(cfg.SettingsPath()); err != nil {
		return err
	}
	applyUISettings()

	fmt.Println(ui.SuccessStyle.Render("Settings saved"))
	printSettings(store, prefs)
	return nil
}

func runSettingsForm(store *profile.Store, prefs *settings.Settings) error {
	options := append(
		[]huh.Option[string]{huh.NewOption("Keep current profile", "")},
		huh.NewOptions(store.Names()...)...,
	)
	if !store.Has(prefs.ACProfile) {
		prefs.ACProfile = ""
	}
	if !store.Has(prefs.BatteryProfile) {
		prefs.BatteryProfile = ""
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("On AC Power").
				Description("Activated when the charger is plugged in").
				Options(options...).
				Value(&prefs.ACProfile),
			huh.NewSelect[string]().
				Title("On Battery").
				Description("Activated when running on battery").
				Options(options...).
				Value(&prefs.BatteryProfile),
		).Title("Power Source Profiles"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Dark Theme").
				Value(&prefs.DarkMode),
			huh.NewConfirm().
				Title("Show Notifications").
				Value(&prefs.ShowNotifications),
			huh.NewConfirm().
				Title("Start in Tray").
				Value(&prefs.StartInTray),
		).Title("Preferences"),
	).WithTheme(ui.HuhTheme()).WithKeyMap(ui.FormKeyMap())

	return form.Run()
}

// checkPreferences rejects power source preferences naming unknown profiles.
func checkPreferences(store *profile.Store, prefs settings.Settings) error {
	for _, name := range []string{prefs.ACProfile, prefs.BatteryProfile} {
		if name != "" && !store.Has(name) {
			return fmt.Errorf("%w: %q (saved: %s)", profile.ErrNotFound, name, strings.Join(store.Names(), ", "))
		}
	}
	return nil
}

func printSettings(store *profile.Store, prefs settings.Settings) {
	fmt.Println(ui.Title.Render("Settings"))
	printKV("On AC", preferenceLabel(store, prefs.ACProfile))
	printKV("On battery", preferenceLabel(store, prefs.BatteryProfile))
	printKV("Dark theme", yesNo(prefs.DarkMode))
	printKV("Notifications", yesNo(prefs.ShowNotifications))
	printKV("Start in tray", yesNo(prefs.StartInTray))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
