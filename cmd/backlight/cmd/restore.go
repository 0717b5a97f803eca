package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iiroan/backlight/internal/restore"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-apply the active profile with retries and verification",
	Long: `Re-apply the active profile the way a resume hook or login script needs:
retry failing driver calls with backoff for up to 12 seconds, then confirm
the keyboard is lit and hard-reset it once if it is not.

Exit codes:
  0  applied, or no profile saved yet
  1  driver not found
  2  keyboard did not light up after the reset
  n  exit code of the last failing driver command`,
	Annotations: map[string]string{annotationTimestamps: "true"},
	Args:        cobra.NoArgs,
	RunE:        runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := restore.New(cfg.ProfilePath(), cfg.Driver, logger)
	rc, err := svc.Run(ctx)
	return withCode(rc, err)
}
