// Package platform checks host prerequisites for the Linux-only commands.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// RequireLinux returns an error if the current OS is not Linux.
func RequireLinux(feature string) error {
	if runtime.GOOS != "linux" {
		if feature == "" {
			feature = "backlight"
		}
		return fmt.Errorf("%s is supported on Linux only (current: %s)", feature, runtime.GOOS)
	}
	return nil
}

// RequireDir returns an error unless path is an existing directory.
// what names the directory in the message, e.g. "power supply class".
func RequireDir(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s directory %s does not exist", what, path)
		}
		return fmt.Errorf("checking %s directory: %w", what, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path %s is not a directory", what, path)
	}
	return nil
}
