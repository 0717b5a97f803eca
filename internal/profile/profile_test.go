package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Profile
	}{
		{
			name: "not an object",
			raw:  `[1, 2, 3]`,
			want: Default(),
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: Default(),
		},
		{
			name: "well formed effect",
			raw:  `{"brightness": 20, "mode": "wave", "static_color": "red", "speed": 8, "color": "blue", "direction": "left", "reactive": false}`,
			want: Profile{Brightness: 20, Mode: ModeWave, StaticColor: ColorRed, Speed: 8, Color: ColorBlue, Direction: DirectionLeft},
		},
		{
			name: "clamps out of range numbers",
			raw:  `{"brightness": 99, "speed": -4}`,
			want: func() Profile { p := Default(); p.Brightness = 50; p.Speed = 0; return p }(),
		},
		{
			name: "numeric strings and fractions",
			raw:  `{"brightness": "12", "speed": 7.9}`,
			want: func() Profile { p := Default(); p.Brightness = 12; p.Speed = 7; return p }(),
		},
		{
			name: "garbage numbers fall back",
			raw:  `{"brightness": "bright", "speed": null}`,
			want: Default(),
		},
		{
			name: "unknown enumerations fall back",
			raw:  `{"mode": "disco", "static_color": "magenta", "color": "magenta", "direction": "sideways"}`,
			want: Default(),
		},
		{
			name: "color none is kept",
			raw:  `{"mode": "breathing", "color": "none"}`,
			want: func() Profile { p := Default(); p.Mode = ModeBreathing; return p }(),
		},
		{
			name: "reactive forces direction none",
			raw:  `{"mode": "ripple", "direction": "up", "reactive": true}`,
			want: func() Profile { p := Default(); p.Mode = ModeRipple; p.Reactive = true; return p }(),
		},
		{
			name: "non-string enum values",
			raw:  `{"mode": 3, "color": 1, "direction": true}`,
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(decode(t, tt.raw)))
		})
	}
}

func TestNormalize(t *testing.T) {
	p := Profile{Brightness: 70, Mode: "x", StaticColor: "x", Speed: 11, Color: "x", Direction: DirectionUp, Reactive: true}
	got := p.Normalize()
	assert.Equal(t, 50, got.Brightness)
	assert.Equal(t, 10, got.Speed)
	assert.Equal(t, ModeStatic, got.Mode)
	assert.Equal(t, ColorWhite, got.StaticColor)
	assert.Equal(t, ColorNone, got.Color)
	assert.Equal(t, DirectionNone, got.Direction)
}

func TestCapture(t *testing.T) {
	t.Run("keeps last static color for unknown input", func(t *testing.T) {
		p := Capture(FormState{Brightness: 30, Mode: "static", StaticColor: "", LastStaticColor: ColorTeal, Speed: 5})
		assert.Equal(t, ColorTeal, p.StaticColor)
		assert.Equal(t, 30, p.Brightness)
	})

	t.Run("reactive clears direction", func(t *testing.T) {
		p := Capture(FormState{Brightness: 10, Mode: "wave", Direction: "down", Reactive: true, Speed: 3, Color: "red"})
		assert.Equal(t, DirectionNone, p.Direction)
		assert.True(t, p.Reactive)
		assert.Equal(t, ColorRed, p.Color)
		assert.Equal(t, 3, p.Speed)
	})

	t.Run("clamps", func(t *testing.T) {
		p := Capture(FormState{Brightness: 80, Speed: 40})
		assert.Equal(t, MaxBrightness, p.Brightness)
		assert.Equal(t, MaxSpeed, p.Speed)
		assert.Equal(t, ModeStatic, p.Mode)
	})
}

func TestIsOff(t *testing.T) {
	assert.True(t, Profile{Brightness: 0}.IsOff())
	assert.False(t, Default().IsOff())
}
