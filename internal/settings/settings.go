// Package settings persists user preferences, including which profile to
// prefer on mains and on battery power.
package settings

import (
	"fmt"
	"strings"

	"github.com/iiroan/backlight/internal/jsonfile"
	"github.com/iiroan/backlight/internal/profile"
)

// Settings is the flat settings.json document.
type Settings struct {
	StartInTray       bool   `json:"start_in_tray"`
	ShowNotifications bool   `json:"show_notifications"`
	DarkMode          bool   `json:"dark_mode"`
	ACProfile         string `json:"ac_profile"`
	BatteryProfile    string `json:"battery_profile"`
}

// Default returns the settings used when nothing is persisted.
func Default() Settings {
	return Settings{
		StartInTray:       false,
		ShowNotifications: true,
		DarkMode:          false,
		ACProfile:         "",
		BatteryProfile:    "",
	}
}

// Load reads settings from path, falling back to defaults for a missing or
// corrupt document and for each unusable field.
func Load(path string) Settings {
	raw, err := jsonfile.ReadObject(path)
	if err != nil {
		return Default()
	}
	return Sanitize(raw)
}

// Sanitize builds Settings from a decoded JSON object.
func Sanitize(raw map[string]any) Settings {
	s := Default()
	if raw == nil {
		return s
	}
	s.StartInTray = boolField(raw, "start_in_tray", s.StartInTray)
	s.ShowNotifications = boolField(raw, "show_notifications", s.ShowNotifications)
	s.DarkMode = boolField(raw, "dark_mode", s.DarkMode)
	s.ACProfile = stringField(raw, "ac_profile")
	s.BatteryProfile = stringField(raw, "battery_profile")
	return s
}

// Save writes settings to path atomically.
func (s Settings) Save(path string) error {
	if err := jsonfile.WriteAtomic(path, s); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// Preferred returns the profile name to prefer for the given power source,
// or "" when there is no preference.
func (s Settings) Preferred(onAC bool) string {
	if onAC {
		return s.ACProfile
	}
	return s.BatteryProfile
}

// Resolve returns the preferred profile name for the power source if it
// names a profile in store. An empty or unknown name resolves to "".
func (s Settings) Resolve(store *profile.Store, onAC bool) string {
	name := s.Preferred(onAC)
	if name == "" || store == nil || !store.Has(name) {
		return ""
	}
	return name
}

// ForgetProfile clears preferences pointing at name and reports whether
// anything changed.
func (s *Settings) ForgetProfile(name string) bool {
	changed := false
	if s.ACProfile == name {
		s.ACProfile = ""
		changed = true
	}
	if s.BatteryProfile == name {
		s.BatteryProfile = ""
		changed = true
	}
	return changed
}

// RenameProfile follows a profile rename.
func (s *Settings) RenameProfile(from, to string) bool {
	changed := false
	if s.ACProfile == from {
		s.ACProfile = to
		changed = true
	}
	if s.BatteryProfile == from {
		s.BatteryProfile = to
		changed = true
	}
	return changed
}

func boolField(raw map[string]any, key string, fallback bool) bool {
	v, ok := raw[key]
	if !ok {
		return fallback
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}

func stringField(raw map[string]any, key string) string {
	switch x := raw[key].(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strings.TrimSpace(fmt.Sprint(x))
	default:
		return ""
	}
}
