package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/executor"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/restore"
	"github.com/iiroan/backlight/internal/ui"
)

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Switch the backlight off",
	Long:  `Switch the backlight off. Saved profiles are left untouched; run apply to turn it back on.`,
	Args:  cobra.NoArgs,
	RunE:  runOff,
}

var brightnessCmd = &cobra.Command{
	Use:   "brightness <0-50>",
	Short: "Set brightness and store it in the active profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrightness,
}

func runOff(cmd *cobra.Command, args []string) error {
	runner, err := openDriver()
	if err != nil {
		return err
	}

	rc, err := executor.New(runner, logger).RunWithRetry(context.Background(), plan.Plan{plan.Off()})
	if err != nil {
		return withCode(rc, err)
	}
	fmt.Println(ui.SuccessStyle.Render("Backlight off"))
	return nil
}

func runBrightness(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < profile.MinBrightness || n > profile.MaxBrightness {
		return fmt.Errorf("brightness must be an integer between %d and %d, got %q",
			profile.MinBrightness, profile.MaxBrightness, args[0])
	}

	runner, err := openDriver()
	if err != nil {
		return err
	}
	res := executor.New(runner, logger).SetBrightness(context.Background(), n)
	if !res.OK() {
		return withCode(res.ExitCode, errors.New(driver.Describe(res)))
	}

	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()
	p.Brightness = n
	if err := store.Put(name, p); err != nil {
		return err
	}
	if err := store.Save(cfg.ProfilePath()); err != nil {
		return err
	}

	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("Brightness set to %d", n)))
	return nil
}

func openDriver() (driver.Runner, error) {
	runner, err := driver.Open(cfg.Driver, logger)
	if err != nil {
		msg := driver.Describe(driver.Result{ExitCode: driver.ExitNotFound, Err: err})
		return nil, withCode(restore.ExitDriverMissing, fmt.Errorf("%s: %w", msg, err))
	}
	return runner, nil
}
