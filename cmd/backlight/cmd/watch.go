package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/restore"
	"github.com/iiroan/backlight/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Restore the active profile whenever the profile file changes",
	Long: `Watch the profile store and restore the active profile after it is
saved. Bursts of writes within the debounce window cause one restore.`,
	Annotations: map[string]string{annotationTimestamps: "true"},
	Args:        cobra.NoArgs,
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Delay after the last write before restoring (default from config, 500ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := cfg.Debounce()
	if watchDebounce > 0 {
		debounce = watchDebounce
	}

	restorer := restore.New(cfg.ProfilePath(), cfg.Driver, logger)
	return watch.New(cfg.ProfilePath(), debounce, restorer, logger).Run(ctx)
}
