package driver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iiroan/backlight/internal/exec"
)

// Power state values reported by `query --state`.
const (
	PowerOn  = "on"
	PowerOff = "off"
)

// State is the parsed output of `query --brightness --state`.
type State struct {
	Power         string
	Brightness    int
	HasBrightness bool
}

// On reports whether the device looks lit.
func (s State) On() bool {
	if s.Power == PowerOn {
		return true
	}
	if s.Power == PowerOff {
		return false
	}
	return s.HasBrightness && s.Brightness > 0
}

// String renders the state for logs.
func (s State) String() string {
	parts := []string{}
	if s.Power != "" {
		parts = append(parts, "state="+s.Power)
	}
	if s.HasBrightness {
		parts = append(parts, "brightness="+strconv.Itoa(s.Brightness))
	}
	if len(parts) == 0 {
		return "unknown state"
	}
	return strings.Join(parts, ", ")
}

// ParseState reads the line-oriented query output. Lines reading on/off
// set the power state; integer lines set the brightness; the rest is ignored.
func ParseState(out string) State {
	var st State
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if lower == PowerOn || lower == PowerOff {
			st.Power = lower
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		st.Brightness = n
		st.HasBrightness = true
	}
	return st
}

// QueryState asks the driver for brightness and power state.
func QueryState(ctx context.Context, r Runner) (State, Result) {
	res := r.Run(ctx, []string{"query", "--brightness", "--state"})
	if !res.OK() {
		return State{}, res
	}
	return ParseState(res.Stdout), res
}

// QueryDevices asks the driver which devices it can see.
func QueryDevices(ctx context.Context, r Runner) (string, Result) {
	res := r.Run(ctx, []string{"query", "--devices"})
	return strings.TrimSpace(res.Stdout), res
}

// Describe turns a failed result into a message for the user.
func Describe(res Result) string {
	text := res.Output()
	lower := strings.ToLower(text)

	switch {
	case res.Missing() || strings.Contains(lower, "cli tool not found"):
		return fmt.Sprintf("CLI tool not found. Install '%s' or set $%s.", BinaryName, EnvVar)
	case strings.Contains(lower, "libusb_error_access") || strings.Contains(lower, "permission denied"):
		return "Insufficient permissions to access the keyboard. Run as root or create a udev rule."
	case strings.Contains(lower, "device handle could not be acquired") || strings.Contains(lower, "no such device"):
		return "Keyboard not detected. Check the USB connection and try again."
	case text != "":
		// tracebacks end with the line that matters
		return fmt.Sprintf("Error (%d): %s", res.ExitCode, exec.LastNLines(text, 3))
	default:
		return fmt.Sprintf("Error (%d): unknown", res.ExitCode)
	}
}
