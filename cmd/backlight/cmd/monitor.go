package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/lock"
	"github.com/iiroan/backlight/internal/platform"
	"github.com/iiroan/backlight/internal/power"
	"github.com/iiroan/backlight/internal/restore"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the power source and switch profiles",
	Long: `Poll the power supplies under /sys/class/power_supply. When the machine
moves between AC and battery, make the profile chosen for that source active
(see "backlight settings") and restore it.

Only one monitor runs per configuration directory.`,
	Annotations: map[string]string{annotationTimestamps: "true"},
	Args:        cobra.NoArgs,
	RunE:        runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Poll interval (default from config, 3s)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if err := platform.RequireLinux("power monitor"); err != nil {
		return err
	}
	if err := platform.RequireDir(cfg.PowerSupplyDir, "power supply class"); err != nil {
		return err
	}

	l, err := lock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return fmt.Errorf("another monitor is running: %w", err)
		}
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("releasing monitor lock", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.Poll()
	if monitorInterval > 0 {
		interval = monitorInterval
	}

	switcher := &power.ProfileSwitcher{
		ProfilePath:  cfg.ProfilePath(),
		SettingsPath: cfg.SettingsPath(),
		Restorer:     restore.New(cfg.ProfilePath(), cfg.Driver, logger),
		Logger:       logger,
	}
	monitor := power.NewMonitor(cfg.PowerSupplyDir, switcher, logger,
		power.WithInterval(interval),
		power.WithRediscoverEvery(cfg.RediscoverEvery),
	)

	logger.Info("power monitor started", "dir", cfg.PowerSupplyDir, "interval", interval, "lock", l.Path())
	if err := monitor.Run(ctx); err != nil {
		return err
	}
	logger.Info("power monitor stopped")
	return nil
}
