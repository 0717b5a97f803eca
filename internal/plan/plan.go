// Package plan turns lighting profiles into ordered driver invocations.
package plan

import (
	"slices"
	"strconv"
	"strings"

	"github.com/iiroan/backlight/internal/profile"
)

// Driver subcommands and flags.
const (
	CmdOff        = "off"
	CmdBrightness = "brightness"
	CmdMonocolor  = "monocolor"
	CmdEffect     = "effect"

	FlagBrightness = "-b"
	FlagSpeed      = "-s"
	FlagColor      = "-c"
	FlagReactive   = "-r"
	FlagDirection  = "-d"
	FlagColorName  = "--name"
)

// Command is the argument list of one driver invocation.
type Command []string

// Off returns the command that switches the backlight off.
func Off() Command {
	return Command{CmdOff}
}

// IsOff reports whether c is exactly the off command.
func (c Command) IsOff() bool {
	return len(c) == 1 && c[0] == CmdOff
}

// Has reports whether c contains flag.
func (c Command) Has(flag string) bool {
	return slices.Contains(c, flag)
}

// String joins the arguments with spaces.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Clone returns an independent copy.
func (c Command) Clone() Command {
	return slices.Clone(c)
}

// Plan is an ordered list of commands. Order matters: off always precedes
// reprogramming so the device starts from a known state.
type Plan []Command

// String renders the plan for logs.
func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " / ")
}

// Build maps a profile to its command plan.
func Build(p profile.Profile) Plan {
	if p.IsOff() {
		return Plan{Off()}
	}

	b := strconv.Itoa(p.Brightness)
	plan := Plan{Off()}

	if p.IsStatic() {
		plan = append(plan, Command{CmdMonocolor, FlagBrightness, b, FlagColorName, string(p.StaticColor)})
	} else {
		plan = append(plan, Effect(p))
	}

	// monocolor and effect can reset brightness on the device, so re-assert it
	return append(plan, Command{CmdBrightness, b})
}

// Effect builds the effect command for an animated profile. Flags equal to
// the driver's own defaults are left out.
func Effect(p profile.Profile) Command {
	cmd := Command{CmdEffect, FlagBrightness, strconv.Itoa(p.Brightness)}

	if p.Speed != profile.DefaultSpeed {
		cmd = append(cmd, FlagSpeed, strconv.Itoa(p.Speed))
	}
	if p.Color != profile.ColorNone && p.Color != "" {
		cmd = append(cmd, FlagColor, string(p.Color))
	}
	if p.Reactive {
		cmd = append(cmd, FlagReactive)
	} else if p.Direction != profile.DirectionNone && p.Direction != "" {
		cmd = append(cmd, FlagDirection, string(p.Direction))
	}

	return append(cmd, string(p.Mode))
}

// Brightness returns the command that only sets brightness.
func Brightness(n int) Command {
	return Command{CmdBrightness, strconv.Itoa(n)}
}
