package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/power"
	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
	"github.com/iiroan/backlight/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show driver, keyboard and power status",
	Long: `Display the current state including:
  - Driver location and detected devices
  - Keyboard power state and brightness
  - Active profile and power source preferences
  - Detected power supplies

Examples:
  backlight status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println(ui.Title.Render("Driver"))
	path, err := driver.Locate(cfg.Driver)
	if err != nil {
		printKV("Path", ui.ErrorStyle.Render("not found"))
		printKV("Hint", driver.Describe(driver.Result{ExitCode: driver.ExitNotFound, Err: err}))
	} else {
		printKV("Path", path)
		r := driver.New(path, logger)

		devices, res := driver.QueryDevices(ctx, r)
		if res.OK() {
			printKV("Devices", firstLine(devices))
		} else {
			printKV("Devices", ui.WarningStyle.Render(driver.Describe(res)))
		}

		state, res := driver.QueryState(ctx, r)
		if res.OK() {
			value := state.String()
			if state.On() {
				value = ui.SuccessStyle.Render(value)
			} else {
				value = ui.MutedStyle.Render(value)
			}
			printKV("Keyboard", value)
		} else {
			printKV("Keyboard", ui.WarningStyle.Render(driver.Describe(res)))
		}
	}

	fmt.Println()
	fmt.Println(ui.Title.Render("Profile"))
	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()
	if store.Origin() == profile.OriginDefault {
		name += " " + ui.MutedStyle.Render("(nothing saved yet)")
	}
	printKV("Active", name)
	printKV("Settings", summarize(p))
	printKV("Brightness", ui.Meter(p.Brightness, profile.MaxBrightness, 20))
	printKV("Saved", fmt.Sprintf("%d profiles", len(store.Names())))

	fmt.Println()
	fmt.Println(ui.Title.Render("Power"))
	supplies := power.Discover(cfg.PowerSupplyDir)
	src := power.Aggregate(supplies)
	printKV("Source", src.String())
	if len(supplies) == 0 {
		printKV("Supplies", ui.MutedStyle.Render("none found in "+cfg.PowerSupplyDir))
	}
	for _, s := range supplies {
		online, ok := power.ReadOnline(s)
		status := ui.StatusPending.String()
		if ok && online {
			status = ui.StatusSuccess.String()
		}
		fmt.Printf("  %s %s\n", status, ui.MutedStyle.Render(s))
	}

	prefs := settings.Load(cfg.SettingsPath())
	printKV("On AC", preferenceLabel(store, prefs.ACProfile))
	printKV("On battery", preferenceLabel(store, prefs.BatteryProfile))

	return nil
}

func preferenceLabel(store *profile.Store, name string) string {
	switch {
	case name == "":
		return ui.MutedStyle.Render("keep current")
	case !store.Has(name):
		return ui.WarningStyle.Render(name + " (missing)")
	default:
		return name
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	if s == "" {
		return ui.MutedStyle.Render("none")
	}
	return s
}

func printKV(key, value string) {
	fmt.Println(ui.KeyValue(key+":", value))
}
