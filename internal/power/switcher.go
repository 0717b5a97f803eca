package power

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/iiroan/backlight/internal/profile"
	"github.com/iiroan/backlight/internal/settings"
)

// Restorer re-applies the active profile and returns the driver exit code.
type Restorer interface {
	Run(ctx context.Context) (int, error)
}

// ProfileSwitcher is the monitor's Handler. On each transition it points
// the active profile at the user's preference for the new power source,
// when there is a valid one, and then re-applies the active profile.
type ProfileSwitcher struct {
	ProfilePath  string
	SettingsPath string
	Restorer     Restorer
	Logger       *log.Logger
}

// Transition implements Handler.
func (s *ProfileSwitcher) Transition(ctx context.Context, to State) error {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if to == OnAC || to == OnBattery {
		s.switchActive(logger, to)
	}

	rc, err := s.Restorer.Run(ctx)
	if err != nil {
		return fmt.Errorf("restore exited with code %d: %w", rc, err)
	}
	if rc != 0 {
		return fmt.Errorf("restore exited with code %d", rc)
	}
	return nil
}

func (s *ProfileSwitcher) switchActive(logger *log.Logger, to State) {
	prefs := settings.Load(s.SettingsPath)
	wanted := prefs.Preferred(to == OnAC)
	if wanted == "" {
		return
	}

	store := profile.Load(s.ProfilePath)
	want := prefs.Resolve(store, to == OnAC)
	switch {
	case store.Origin() == profile.OriginDefault:
		logger.Warn("no saved profiles, keeping current profile", "wanted", wanted)
		return
	case want == "":
		logger.Warn("preferred profile not found, keeping current profile", "source", to, "wanted", wanted)
		return
	case store.Active == want:
		logger.Debug("preferred profile already active", "profile", want)
		return
	}

	if err := store.SetActive(want); err != nil {
		logger.Warn("cannot switch profile", "wanted", want, "error", err)
		return
	}
	if err := store.Save(s.ProfilePath); err != nil {
		logger.Warn("failed to save profile store, keeping current profile", "error", err)
		return
	}
	logger.Info("active profile switched", "source", to, "profile", want)
}
