package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiroan/backlight/internal/profile"
)

func effectProfile() profile.Profile {
	p := profile.Default()
	p.Mode = profile.ModeWave
	return p
}

func TestBuildOff(t *testing.T) {
	for _, b := range []int{0, -3} {
		p := profile.Default()
		p.Brightness = b
		p.Mode = profile.ModeRainbow
		assert.Equal(t, Plan{{"off"}}, Build(p))
	}
}

func TestBuildStatic(t *testing.T) {
	p := profile.Default()
	p.Brightness = 40
	p.StaticColor = profile.ColorWhite

	want := Plan{
		{"off"},
		{"monocolor", "-b", "40", "--name", "white"},
		{"brightness", "40"},
	}
	assert.Equal(t, want, Build(p))
}

func TestBuildEffect(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*profile.Profile)
		want   Command
	}{
		{
			name:   "defaults omit speed and color",
			mutate: func(p *profile.Profile) {},
			want:   Command{"effect", "-b", "40", "wave"},
		},
		{
			name: "all flags",
			mutate: func(p *profile.Profile) {
				p.Speed = 9
				p.Color = profile.ColorRed
				p.Direction = profile.DirectionLeft
			},
			want: Command{"effect", "-b", "40", "-s", "9", "-c", "red", "-d", "left", "wave"},
		},
		{
			name: "reactive wins over direction",
			mutate: func(p *profile.Profile) {
				p.Reactive = true
				p.Direction = profile.DirectionUp
			},
			want: Command{"effect", "-b", "40", "-r", "wave"},
		},
		{
			name:   "speed zero is kept",
			mutate: func(p *profile.Profile) { p.Speed = 0 },
			want:   Command{"effect", "-b", "40", "-s", "0", "wave"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := effectProfile()
			tt.mutate(&p)
			got := Build(p)
			assert.Len(t, got, 3)
			assert.Equal(t, Off(), got[0])
			assert.Equal(t, tt.want, got[1])
			assert.Equal(t, Command{"brightness", "40"}, got[2])
		})
	}
}

func TestBuildEffectDefaultsHaveNoSpeedOrColor(t *testing.T) {
	for _, m := range profile.Modes {
		if m == profile.ModeStatic {
			continue
		}
		p := profile.Default()
		p.Mode = m
		cmd := Build(p)[1]
		assert.False(t, cmd.Has("-s"), "mode %s", m)
		assert.False(t, cmd.Has("-c"), "mode %s", m)
		assert.Equal(t, string(m), cmd[len(cmd)-1])
	}
}

func TestCommandHelpers(t *testing.T) {
	assert.True(t, Off().IsOff())
	assert.False(t, Command{"off", "now"}.IsOff())
	assert.Equal(t, "off / brightness 3", Plan{Off(), Brightness(3)}.String())
}
