// Package restore re-applies the active profile from disk. It backs the
// restore command, the power monitor and the profile watcher.
package restore

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/executor"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
)

// ExitDriverMissing is the exit code when the driver cannot be located.
const ExitDriverMissing = 1

// Locator finds the driver. It is called on every Run so a driver
// installed while the monitor is running is picked up.
type Locator func() (driver.Runner, error)

// Service restores the active profile.
type Service struct {
	ProfilePath string
	Locate      Locator
	// ExecutorOptions are passed to every executor the service creates.
	ExecutorOptions []executor.Option
	Logger          *log.Logger
}

// New returns a Service that locates the driver with driver.Open.
func New(profilePath, explicitDriver string, logger *log.Logger, opts ...executor.Option) *Service {
	return &Service{
		ProfilePath: profilePath,
		Locate: func() (driver.Runner, error) {
			return driver.Open(explicitDriver, logger)
		},
		ExecutorOptions: opts,
		Logger:          logger,
	}
}

// Run applies the active profile and returns the process exit code: 0 on
// success or when there is nothing to restore, 1 when the driver is
// missing, otherwise the code of the last failing driver command.
func (s *Service) Run(ctx context.Context) (int, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store := profile.Load(s.ProfilePath)
	if store.Origin() == profile.OriginDefault {
		logger.Info("no profile found, nothing to restore", "path", s.ProfilePath)
		return 0, nil
	}
	name, p := store.ActiveProfile()

	runner, err := s.Locate()
	if err != nil {
		logger.Error(driver.Describe(driver.Result{ExitCode: driver.ExitNotFound, Err: err}))
		return ExitDriverMissing, err
	}

	steps := plan.Build(p)
	logger.Info("restoring profile", "profile", name, "plan", steps.String())

	exe := executor.New(runner, logger, s.ExecutorOptions...)
	rc, err := exe.ApplyWithVerification(ctx, steps, p.Brightness)
	if rc != 0 {
		logger.Error("restore failed", "plan", steps.String(), "rc", rc)
		if err == nil {
			err = fmt.Errorf("commands %s failed with exit code %d", steps, rc)
		}
		return rc, err
	}
	if err != nil {
		return 1, err
	}
	logger.Info("profile restored", "profile", name)
	return 0, nil
}
