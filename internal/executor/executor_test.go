package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iiroan/backlight/internal/clock"
	"github.com/iiroan/backlight/internal/driver"
	mock_driver "github.com/iiroan/backlight/internal/driver/mocks"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeDriver answers driver invocations from a script keyed by the joined
// argument list and records every call.
type fakeDriver struct {
	calls   []string
	respond func(key string, n int) driver.Result
	counts  map[string]int
}

func newFakeDriver(respond func(key string, n int) driver.Result) *fakeDriver {
	return &fakeDriver{respond: respond, counts: map[string]int{}}
}

func (f *fakeDriver) Run(_ context.Context, args []string) driver.Result {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	f.counts[key]++
	return f.respond(key, f.counts[key])
}

func newExecutor(r driver.Runner) (*Executor, *clock.Fake) {
	clk := clock.NewFake(epoch)
	return New(r, nil, WithClock(clk)), clk
}

func TestRunWithRetryRecovers(t *testing.T) {
	fd := newFakeDriver(func(_ string, n int) driver.Result {
		if n <= 2 {
			return driver.Result{ExitCode: 1, Stderr: "busy"}
		}
		return driver.Result{}
	})
	e, clk := newExecutor(fd)

	rc, err := e.RunWithRetry(context.Background(), plan.Plan{plan.Brightness(40)})
	require.NoError(t, err)
	assert.Equal(t, 0, rc)
	assert.Len(t, fd.calls, 3)

	sleeps := clk.Sleeps()
	require.Len(t, sleeps, 2)
	assert.Equal(t, 600*time.Millisecond, sleeps[0])
	assert.InDelta(t, float64(960*time.Millisecond), float64(sleeps[1]), float64(time.Millisecond))
	assert.Less(t, clk.Now().Sub(epoch), 12*time.Second)
}

func TestRunWithRetryDeadline(t *testing.T) {
	fd := newFakeDriver(func(string, int) driver.Result {
		return driver.Result{ExitCode: 3, Stderr: "device handle could not be acquired"}
	})
	e, clk := newExecutor(fd)

	rc, err := e.RunWithRetry(context.Background(), plan.Plan{plan.Brightness(40), plan.Brightness(20)})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, 3, rc)
	assert.Equal(t, 12*time.Second, clk.Now().Sub(epoch))

	for _, call := range fd.calls {
		assert.Equal(t, "brightness 40", call, "later commands must not run after a terminal failure")
	}
	for _, s := range clk.Sleeps() {
		assert.LessOrEqual(t, s, 2500*time.Millisecond)
		assert.Positive(t, s)
	}
}

func TestRunWithRetryCallsEndNearDeadline(t *testing.T) {
	var budgets []time.Duration
	r := driver.RunnerFunc(func(ctx context.Context, _ []string) driver.Result {
		dl, ok := ctx.Deadline()
		require.True(t, ok)
		budgets = append(budgets, time.Until(dl))
		return driver.Result{ExitCode: 1}
	})
	e, _ := newExecutor(r)

	_, err := e.RunWithRetry(context.Background(), plan.Plan{plan.Off()})
	require.ErrorIs(t, err, ErrCommandFailed)
	require.GreaterOrEqual(t, len(budgets), 2)

	assert.InDelta(t, float64(14*time.Second), float64(budgets[0]), float64(time.Second))
	last := budgets[len(budgets)-1]
	assert.LessOrEqual(t, last, 2*time.Second, "a call started at the deadline only gets the grace period")
	assert.Greater(t, last, time.Second)
}

func TestRunWithRetryBackoffGrowsToCap(t *testing.T) {
	fd := newFakeDriver(func(string, int) driver.Result {
		return driver.Result{ExitCode: 1}
	})
	e, clk := newExecutor(fd)

	_, err := e.RunWithRetry(context.Background(), plan.Plan{plan.Off()})
	require.Error(t, err)

	sleeps := clk.Sleeps()
	require.GreaterOrEqual(t, len(sleeps), 5)
	for i := 1; i < len(sleeps)-1; i++ {
		assert.GreaterOrEqual(t, sleeps[i], sleeps[i-1])
	}
	assert.Equal(t, 2500*time.Millisecond, sleeps[4])
}

func TestRunWithRetryMissingDriver(t *testing.T) {
	e, clk := newExecutor(driver.Unavailable{})

	rc, err := e.RunWithRetry(context.Background(), plan.Build(profile.Default()))
	require.ErrorIs(t, err, driver.ErrNotFound)
	assert.Equal(t, driver.ExitNotFound, rc)
	assert.Empty(t, clk.Sleeps(), "a missing driver is not retried")
}

func TestRunWithRetryOffSettle(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mock_driver.NewMockRunner(ctrl)
	r.EXPECT().Run(gomock.Any(), gomock.Any()).Return(driver.Result{}).Times(3)

	e, clk := newExecutor(r)
	rc, err := e.RunWithRetry(context.Background(), plan.Build(profile.Default()))
	require.NoError(t, err)
	assert.Equal(t, 0, rc)
	assert.Equal(t, []time.Duration{60 * time.Millisecond}, clk.Sleeps())
}

func TestRunWithRetryOffOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mock_driver.NewMockRunner(ctrl)
	r.EXPECT().Run(gomock.Any(), []string{"off"}).Return(driver.Result{}).Times(1)

	e, clk := newExecutor(r)
	rc, err := e.RunWithRetry(context.Background(), plan.Plan{plan.Off()})
	require.NoError(t, err)
	assert.Equal(t, 0, rc)
	assert.Empty(t, clk.Sleeps())
}

func TestRunWithRetryCancelled(t *testing.T) {
	fd := newFakeDriver(func(string, int) driver.Result {
		return driver.Result{ExitCode: 1}
	})
	e, _ := newExecutor(fd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RunWithRetry(ctx, plan.Plan{plan.Brightness(10)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fd.calls, 1)
}

func TestVerifyOn(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		desired int
		want    bool
	}{
		{name: "query fails", result: driver.Result{ExitCode: 1, Stderr: "boom"}, desired: 40, want: true},
		{name: "state on", result: driver.Result{Stdout: "on\n0\n"}, desired: 40, want: true},
		{name: "bright enough", result: driver.Result{Stdout: "40\n"}, desired: 40, want: true},
		{name: "dim but lit", result: driver.Result{Stdout: "off\n5\n"}, desired: 40, want: true},
		{name: "off and dark", result: driver.Result{Stdout: "off\n0\n"}, desired: 40, want: false},
		{name: "no output", result: driver.Result{}, desired: 40, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r := mock_driver.NewMockRunner(ctrl)
			r.EXPECT().
				Run(gomock.Any(), []string{"query", "--brightness", "--state"}).
				Return(tt.result)

			e, _ := newExecutor(r)
			assert.Equal(t, tt.want, e.VerifyOn(context.Background(), tt.desired))
		})
	}
}

const queryKey = "query --brightness --state"

func TestApplyWithVerificationConfirmed(t *testing.T) {
	fd := newFakeDriver(func(key string, _ int) driver.Result {
		if key == queryKey {
			return driver.Result{Stdout: "on\n40"}
		}
		return driver.Result{}
	})
	e, clk := newExecutor(fd)

	p := plan.Build(profile.Default())
	rc, err := e.ApplyWithVerification(context.Background(), p, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, rc)
	assert.Equal(t, []string{"off", "monocolor -b 40 --name white", "brightness 40", queryKey}, fd.calls)
	assert.Equal(t, []time.Duration{60 * time.Millisecond, 250 * time.Millisecond}, clk.Sleeps())
}

func TestApplyWithVerificationEscalates(t *testing.T) {
	fd := newFakeDriver(func(key string, n int) driver.Result {
		if key == queryKey {
			if n == 1 {
				return driver.Result{Stdout: "off\n0"}
			}
			return driver.Result{Stdout: "on\n40"}
		}
		return driver.Result{}
	})
	e, clk := newExecutor(fd)

	p := plan.Build(profile.Default())
	rc, err := e.ApplyWithVerification(context.Background(), p, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, rc)

	want := []string{
		"off", "monocolor -b 40 --name white", "brightness 40",
		queryKey,
		"off", "monocolor -b 40 --name white", "brightness 40",
		queryKey,
	}
	assert.Equal(t, want, fd.calls)
	assert.Equal(t, []time.Duration{
		60 * time.Millisecond,
		250 * time.Millisecond,
		1800 * time.Millisecond,
		250 * time.Millisecond,
	}, clk.Sleeps())
}

func TestApplyWithVerificationFails(t *testing.T) {
	fd := newFakeDriver(func(key string, _ int) driver.Result {
		if key == queryKey {
			return driver.Result{Stdout: "off\n0"}
		}
		return driver.Result{}
	})
	e, _ := newExecutor(fd)

	rc, err := e.ApplyWithVerification(context.Background(), plan.Build(profile.Default()), 40)
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, ExitVerificationFailed, rc)
	assert.Equal(t, 2, fd.counts[queryKey])
}

func TestApplyWithVerificationEscalationCommandFails(t *testing.T) {
	fd := newFakeDriver(func(key string, n int) driver.Result {
		switch {
		case key == queryKey:
			return driver.Result{Stdout: "off\n0"}
		case strings.HasPrefix(key, "monocolor") && n == 2:
			return driver.Result{ExitCode: 4, Stderr: "nope"}
		}
		return driver.Result{}
	})
	e, _ := newExecutor(fd)

	rc, err := e.ApplyWithVerification(context.Background(), plan.Build(profile.Default()), 40)
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, 4, rc)
	assert.Equal(t, 1, fd.counts["brightness 40"], "escalation stops at the first failure")
	assert.Equal(t, 1, fd.counts[queryKey])
}

func TestApplyWithVerificationOffProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mock_driver.NewMockRunner(ctrl)
	r.EXPECT().Run(gomock.Any(), []string{"off"}).Return(driver.Result{}).Times(1)

	e, _ := newExecutor(r)
	p := profile.Default()
	p.Brightness = 0
	rc, err := e.ApplyWithVerification(context.Background(), plan.Build(p), p.Brightness)
	require.NoError(t, err)
	assert.Equal(t, 0, rc)
}
