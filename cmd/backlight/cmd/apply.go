package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/executor"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/ui"
)

var applyVerify bool

var applyCmd = &cobra.Command{
	Use:   "apply [profile]",
	Short: "Apply a profile to the keyboard",
	Long: `Apply the active profile, or the named one after making it active.

Static colors are applied after a hard reset. Effects the keyboard does not
fully support are retried with the rejected attributes dropped.

Examples:
  backlight apply
  backlight apply Gaming
  backlight apply Night --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyVerify, "verify", false, "Retry with backoff and confirm the keyboard is lit")
}

func runApply(cmd *cobra.Command, args []string) error {
	store := profile.Load(cfg.ProfilePath())
	name, p := store.ActiveProfile()

	if len(args) == 1 && args[0] != name {
		var err error
		if p, err = store.Get(args[0]); err != nil {
			return err
		}
		name = args[0]
		if err := store.SetActive(name); err != nil {
			return err
		}
		if err := store.Save(cfg.ProfilePath()); err != nil {
			return err
		}
	}

	return applyProfile(context.Background(), name, p)
}

// applyProfile programs p and prints what the keyboard ended up with.
func applyProfile(ctx context.Context, name string, p profile.Profile) error {
	runner, err := openDriver()
	if err != nil {
		return err
	}

	exe := executor.New(runner, logger)
	var (
		summary string
		code    int
	)
	err = ui.RunWithSpinner("Applying "+name, func(status func(string)) error {
		if applyVerify {
			status("retrying until the keyboard responds")
			rc, err := exe.ApplyWithVerification(ctx, plan.Build(p), p.Brightness)
			if rc != 0 {
				code = rc
				return err
			}
			summary = describeProfile(p)
			return nil
		}

		out := exe.Apply(ctx, p)
		if !out.OK() {
			code = out.Result.ExitCode
			return errors.New(driver.Describe(out.Result))
		}
		summary = describeOutcome(p, out)
		return nil
	})
	if err != nil {
		return withCode(code, err)
	}

	fmt.Println(ui.SuccessStyle.Render(summary))
	return nil
}

func describeProfile(p profile.Profile) string {
	switch {
	case p.IsOff():
		return "Backlight off"
	case p.IsStatic():
		return fmt.Sprintf("Static applied: brightness %d, color %s", p.Brightness, p.StaticColor)
	default:
		return "Effect applied: " + plan.Effect(p)[1:].String()
	}
}

func describeOutcome(p profile.Profile, out executor.Outcome) string {
	if p.IsOff() || p.IsStatic() {
		return describeProfile(p)
	}
	msg := "Effect applied: " + out.Used[1:].String()
	if out.Stripped() {
		msg += " (unsupported attributes dropped)"
	}
	return msg
}
