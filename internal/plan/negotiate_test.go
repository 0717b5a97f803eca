package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iiroan/backlight/internal/driver"
	mock_driver "github.com/iiroan/backlight/internal/driver/mocks"
)

func rejected(attr string) driver.Result {
	return driver.Result{ExitCode: 1, Stderr: "Error: " + attr + " attr is not needed by effect"}
}

func TestDropFlag(t *testing.T) {
	cmd := Command{"effect", "-b", "30", "-s", "2", "-r", "-d", "up", "wave"}

	assert.Equal(t, Command{"effect", "-b", "30", "-s", "2", "-r", "wave"}, DropFlag(cmd, "-d"))
	assert.Equal(t, Command{"effect", "-b", "30", "-s", "2", "-d", "up", "wave"}, DropFlag(cmd, "-r"))
	assert.Equal(t, Command{"effect", "-s", "2", "-r", "-d", "up", "wave"}, DropFlag(cmd, "-b"))
	assert.Equal(t, cmd, DropFlag(cmd, "-c"))
	assert.Equal(t, Command{"effect"}, DropFlag(Command{"effect", "-s"}, "-s"))
}

func TestNegotiator(t *testing.T) {
	n := NewNegotiator(Command{"effect", "-b", "10", "-c", "red", "-d", "up", "wave"})

	cmd, attr, ok := n.Next("direction and color are not needed")
	require.True(t, ok)
	assert.Equal(t, "direction", attr.Name)
	assert.Equal(t, Command{"effect", "-b", "10", "-c", "red", "wave"}, cmd)

	cmd, attr, ok = n.Next("direction and color are not needed")
	require.True(t, ok)
	assert.Equal(t, "color", attr.Name, "direction was already tried")
	assert.Equal(t, Command{"effect", "-b", "10", "wave"}, cmd)

	_, _, ok = n.Next("something unrelated")
	assert.False(t, ok)
	assert.Equal(t, 3, n.attempts)
}

func TestNegotiatorBudget(t *testing.T) {
	n := NewNegotiator(Command{"effect", "-b", "1", "-s", "1", "-c", "red", "-r", "wave"})
	all := "direction reactive color speed brightness"
	steps := 0
	for {
		_, _, ok := n.Next(all)
		if !ok {
			break
		}
		steps++
	}
	assert.Equal(t, 4, steps, "direction is absent and must not cost an attempt")
	assert.LessOrEqual(t, n.attempts, MaxNegotiationAttempts)
	assert.Equal(t, Command{"effect", "wave"}, n.Current())
}

func TestApplyEffectWithFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("strips direction and succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := mock_driver.NewMockRunner(ctrl)

		original := Command{"effect", "-b", "40", "-d", "left", "rainbow"}
		stripped := Command{"effect", "-b", "40", "rainbow"}
		gomock.InOrder(
			r.EXPECT().Run(gomock.Any(), []string(original)).Return(rejected("direction")),
			r.EXPECT().Run(gomock.Any(), []string(stripped)).Return(driver.Result{}),
		)

		res, used := ApplyEffectWithFallback(ctx, r, original)
		assert.True(t, res.OK())
		assert.Equal(t, stripped, used)
		assert.NotContains(t, used, "-d")
		assert.NotContains(t, used, "left")
	})

	t.Run("success on first try", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := mock_driver.NewMockRunner(ctrl)
		cmd := Command{"effect", "-b", "40", "wave"}
		r.EXPECT().Run(gomock.Any(), []string(cmd)).Return(driver.Result{}).Times(1)

		res, used := ApplyEffectWithFallback(ctx, r, cmd)
		assert.True(t, res.OK())
		assert.Equal(t, cmd, used)
	})

	t.Run("unrelated failure is not negotiated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := mock_driver.NewMockRunner(ctrl)
		cmd := Command{"effect", "-b", "40", "-d", "up", "wave"}
		r.EXPECT().Run(gomock.Any(), []string(cmd)).Return(driver.Result{ExitCode: 1, Stderr: "no such device (direction)"}).Times(1)

		res, used := ApplyEffectWithFallback(ctx, r, cmd)
		assert.Equal(t, 1, res.ExitCode)
		assert.Equal(t, cmd, used)
	})

	t.Run("never exceeds the attempt budget", func(t *testing.T) {
		calls := 0
		seen := map[string]bool{}
		r := driver.RunnerFunc(func(_ context.Context, args []string) driver.Result {
			calls++
			key := Command(args).String()
			assert.False(t, seen[key], "command issued twice: %s", key)
			seen[key] = true
			return driver.Result{ExitCode: 1, Stderr: "direction reactive color speed brightness attr is not needed by effect"}
		})

		cmd := Command{"effect", "-b", "40", "-s", "2", "-c", "red", "-r", "ripple"}
		res, used := ApplyEffectWithFallback(ctx, r, cmd)
		assert.False(t, res.OK())
		assert.LessOrEqual(t, calls, MaxNegotiationAttempts)
		assert.Equal(t, Command{"effect", "ripple"}, used)
	})

	t.Run("stops when the error names nothing new", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := mock_driver.NewMockRunner(ctrl)
		cmd := Command{"effect", "-b", "40", "-s", "3", "wave"}
		noSpeed := Command{"effect", "-b", "40", "wave"}
		gomock.InOrder(
			r.EXPECT().Run(gomock.Any(), []string(cmd)).Return(rejected("speed")),
			r.EXPECT().Run(gomock.Any(), []string(noSpeed)).Return(driver.Result{ExitCode: 1, Stderr: "speed still unhappy"}),
		)

		res, used := ApplyEffectWithFallback(ctx, r, cmd)
		assert.Equal(t, 1, res.ExitCode)
		assert.Equal(t, noSpeed, used)
	})
}
