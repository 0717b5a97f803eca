// Package version reports build information for backlight
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags:
//
//	-X github.com/iiroan/backlight/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info holds version information for the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the build information, filling gaps from the module build
// info when the binary was built without ldflags.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && setting.Value != "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" && setting.Value != "" {
				info.BuildDate = setting.Value
			}
		}
	}
	return info
}

// Short returns a compact version string such as "v1.2.0" or "dev-1a2b3c4".
func (i Info) Short() string {
	if i.Version != "dev" {
		return i.Version
	}
	if i.Commit != "unknown" && i.Commit != "" {
		rev := i.Commit
		if len(rev) > 7 {
			rev = rev[:7]
		}
		return "dev-" + rev
	}
	return i.Version
}
