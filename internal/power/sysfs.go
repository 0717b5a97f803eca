// Package power watches the machine's power supplies and reacts when it
// moves between mains and battery.
package power

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSupplyDir is the kernel's power supply class directory.
const DefaultSupplyDir = "/sys/class/power_supply"

// MainsTypes are the supply types that count as line power. USB-C chargers
// report "USB".
var MainsTypes = []string{"mains", "ac", "usb"}

// State is the resolved power source.
type State int

const (
	Unknown State = iota
	OnAC
	OnBattery
)

func (s State) String() string {
	switch s {
	case OnAC:
		return "AC"
	case OnBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// Discover returns the sorted "online" files of every mains-like supply
// under dir. A missing dir yields no paths.
func Discover(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		base := filepath.Join(dir, entry.Name())
		kind, err := os.ReadFile(filepath.Join(base, "type"))
		if err != nil {
			continue
		}
		if !slices.Contains(MainsTypes, strings.ToLower(strings.TrimSpace(string(kind)))) {
			continue
		}
		online := filepath.Join(base, "online")
		if info, err := os.Stat(online); err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, online)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}

// ReadOnline reads one online file. ok is false when the file cannot be
// read; any readable value other than "1" means offline.
func ReadOnline(path string) (online, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false
	}
	return strings.TrimSpace(string(data)) == "1", true
}

// Aggregate resolves the power source from the online files: any online
// source means AC, otherwise a definite offline reading means battery.
func Aggregate(paths []string) State {
	offline := false
	for _, path := range paths {
		online, ok := ReadOnline(path)
		if !ok {
			continue
		}
		if online {
			return OnAC
		}
		offline = true
	}
	if offline {
		return OnBattery
	}
	return Unknown
}
