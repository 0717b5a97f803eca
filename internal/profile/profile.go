// Package profile holds the lighting profile model and its persisted store.
package profile

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Brightness and speed ranges accepted by the driver.
const (
	MinBrightness = 0
	MaxBrightness = 50
	MinSpeed      = 0
	MaxSpeed      = 10

	// DefaultSpeed is the driver's implicit speed; the builder omits -s for it.
	DefaultSpeed      = 5
	DefaultBrightness = 40
)

// DefaultName names the profile synthesized when a store has none.
const DefaultName = "Default"

// Mode is a lighting effect.
type Mode string

const (
	ModeStatic    Mode = "static"
	ModeBreathing Mode = "breathing"
	ModeWave      Mode = "wave"
	ModeRandom    Mode = "random"
	ModeRainbow   Mode = "rainbow"
	ModeRipple    Mode = "ripple"
	ModeMarquee   Mode = "marquee"
	ModeRaindrop  Mode = "raindrop"
	ModeAurora    Mode = "aurora"
	ModeFireworks Mode = "fireworks"
)

// Modes lists every effect in display order.
var Modes = []Mode{
	ModeStatic,
	ModeBreathing, ModeWave, ModeRandom, ModeRainbow,
	ModeRipple, ModeMarquee, ModeRaindrop, ModeAurora, ModeFireworks,
}

// Color is a named driver color. ColorNone is only valid as a dynamic color.
type Color string

const (
	ColorNone   Color = "none"
	ColorWhite  Color = "white"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorTeal   Color = "teal"
	ColorPurple Color = "purple"
	ColorRandom Color = "random"
)

// Colors lists the named colors accepted by the driver.
var Colors = []Color{
	ColorWhite, ColorRed, ColorOrange, ColorYellow, ColorGreen,
	ColorBlue, ColorTeal, ColorPurple, ColorRandom,
}

// Direction is the travel direction of an animated effect.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Directions lists every direction including none.
var Directions = []Direction{DirectionNone, DirectionRight, DirectionLeft, DirectionUp, DirectionDown}

// Profile is one complete lighting configuration.
type Profile struct {
	Brightness  int       `json:"brightness" yaml:"brightness"`
	Mode        Mode      `json:"mode" yaml:"mode"`
	StaticColor Color     `json:"static_color" yaml:"static_color"`
	Speed       int       `json:"speed" yaml:"speed"`
	Color       Color     `json:"color" yaml:"color"`
	Direction   Direction `json:"direction" yaml:"direction"`
	Reactive    bool      `json:"reactive" yaml:"reactive"`
}

// Default returns the profile used for missing or unusable input.
func Default() Profile {
	return Profile{
		Brightness:  DefaultBrightness,
		Mode:        ModeStatic,
		StaticColor: ColorWhite,
		Speed:       DefaultSpeed,
		Color:       ColorNone,
		Direction:   DirectionNone,
		Reactive:    false,
	}
}

// IsOff reports whether applying the profile turns the backlight off.
func (p Profile) IsOff() bool {
	return p.Brightness <= 0
}

// IsStatic reports whether the profile uses a single static color.
func (p Profile) IsStatic() bool {
	return p.Mode == ModeStatic
}

// Sanitize builds a Profile from decoded JSON, replacing anything out of
// range or outside its enumeration with the default for that field.
func Sanitize(raw any) Profile {
	p := Default()
	data, ok := raw.(map[string]any)
	if !ok {
		return p
	}

	p.Brightness = clampInt(data["brightness"], MinBrightness, MaxBrightness, p.Brightness)
	p.Mode = choice(data["mode"], Modes, p.Mode)
	p.StaticColor = choice(data["static_color"], Colors, p.StaticColor)
	p.Speed = clampInt(data["speed"], MinSpeed, MaxSpeed, p.Speed)
	p.Color = choice(data["color"], Colors, ColorNone)
	p.Direction = choice(data["direction"], Directions, p.Direction)
	p.Reactive = truthy(data["reactive"])
	if p.Reactive {
		p.Direction = DirectionNone
	}
	return p
}

// Normalize re-applies the sanitize rules to an already typed profile.
func (p Profile) Normalize() Profile {
	d := Default()
	p.Brightness = clamp(p.Brightness, MinBrightness, MaxBrightness)
	p.Speed = clamp(p.Speed, MinSpeed, MaxSpeed)
	if !slices.Contains(Modes, p.Mode) {
		p.Mode = d.Mode
	}
	if !slices.Contains(Colors, p.StaticColor) {
		p.StaticColor = d.StaticColor
	}
	if !slices.Contains(Colors, p.Color) {
		p.Color = ColorNone
	}
	if !slices.Contains(Directions, p.Direction) || p.Reactive {
		p.Direction = DirectionNone
	}
	return p
}

// FormState is the editable state a form collects before it becomes a
// Profile. Values are strings as widgets deliver them.
type FormState struct {
	Brightness      int
	Mode            string
	StaticColor     string
	LastStaticColor Color
	Speed           int
	Color           string
	Direction       string
	Reactive        bool
}

// Capture snapshots form state into a Profile.
func Capture(s FormState) Profile {
	last := s.LastStaticColor
	if !slices.Contains(Colors, last) {
		last = ColorWhite
	}

	p := Profile{
		Brightness:  clamp(s.Brightness, MinBrightness, MaxBrightness),
		Mode:        choice(s.Mode, Modes, ModeStatic),
		StaticColor: choice(s.StaticColor, Colors, last),
		Speed:       clamp(s.Speed, MinSpeed, MaxSpeed),
		Color:       choice(s.Color, Colors, ColorNone),
		Direction:   choice(s.Direction, Directions, DirectionNone),
		Reactive:    s.Reactive,
	}
	if p.Reactive {
		p.Direction = DirectionNone
	}
	return p
}

func choice[T ~string](v any, options []T, fallback T) T {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	if slices.Contains(options, T(s)) {
		return T(s)
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// clampInt converts loosely typed JSON into an int in [lo, hi]. Integral
// strings and fractional numbers are accepted; anything else is fallback.
func clampInt(v any, lo, hi, fallback int) int {
	var n int
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fallback
		}
		x = math.Trunc(x)
		if x > float64(hi) {
			return hi
		}
		if x < float64(lo) {
			return lo
		}
		n = int(x)
	case int:
		n = x
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return fallback
		}
		n = int(max(int64(lo), min(int64(hi), i)))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return fallback
		}
		n = i
	case bool:
		if x {
			n = 1
		}
	default:
		return fallback
	}
	return clamp(n, lo, hi)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return false
	}
}
