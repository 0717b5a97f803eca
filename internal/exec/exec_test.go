package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	if _, err := LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()

	t.Run("captures output and exit code", func(t *testing.T) {
		res := Run(ctx, "sh", []string{"-c", "echo out; echo err >&2; exit 3"}, DefaultOptions())
		require.Error(t, res.Err)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err", res.Output())
		assert.False(t, res.OK())
	})

	t.Run("success", func(t *testing.T) {
		res := Run(ctx, "sh", []string{"-c", "echo hi"}, DefaultOptions())
		assert.True(t, res.OK())
		assert.Equal(t, "hi", res.Output())
	})

	t.Run("missing binary maps to 127", func(t *testing.T) {
		res := Run(ctx, "/nonexistent/backlight-test-binary", nil, DefaultOptions())
		require.Error(t, res.Err)
		assert.Equal(t, ExitNotFound, res.ExitCode)
	})
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"monocolor", "-b", "40"}, "drv monocolor -b 40"},
		{"spaces", []string{"--name", "light blue"}, "drv --name 'light blue'"},
		{"empty", []string{""}, "drv ''"},
		{"quote", []string{"it's"}, `drv 'it'\''s'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCommand("drv", tt.args))
		})
	}
}

func TestLastNLines(t *testing.T) {
	assert.Equal(t, "b\nc", LastNLines("a\nb\nc\n", 2))
	assert.Equal(t, "a", LastNLines("a", 3))
}
