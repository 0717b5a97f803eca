// Package executor runs command plans against the keyboard driver with
// bounded retries and checks that the keyboard ends up lit.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/backlight/internal/clock"
	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/plan"
)

// ExitVerificationFailed is returned when the keyboard still looks off
// after the hard-reset pass.
const ExitVerificationFailed = 2

var (
	// ErrCommandFailed means a command kept failing until the deadline.
	ErrCommandFailed = errors.New("command failed")
	// ErrVerificationFailed means the device did not confirm it is on.
	ErrVerificationFailed = errors.New("keyboard did not confirm it is on")
)

// Policy holds the timing rules for running a plan. The values were
// tuned against real hardware.
type Policy struct {
	// Backoff between retries of the same command.
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration

	// Deadline bounds retries for the whole plan, measured from its start.
	Deadline time.Duration
	// CallGrace is how far a single driver call may run past Deadline.
	CallGrace time.Duration

	// OffSettle is waited after an off command that is not the last one.
	OffSettle time.Duration
	// VerifyDelay is waited before querying the device state.
	VerifyDelay time.Duration
	// ResetDelay is waited after the hard-reset off.
	ResetDelay time.Duration
}

// DefaultPolicy returns the production timings.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 600 * time.Millisecond,
		Multiplier:   1.6,
		MaxDelay:     2500 * time.Millisecond,
		Deadline:     12 * time.Second,
		CallGrace:    2 * time.Second,
		OffSettle:    60 * time.Millisecond,
		VerifyDelay:  250 * time.Millisecond,
		ResetDelay:   1800 * time.Millisecond,
	}
}

// Executor applies plans through a driver Runner.
type Executor struct {
	runner driver.Runner
	policy Policy
	clock  clock.Clock
	logger *log.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithPolicy overrides the timing policy.
func WithPolicy(p Policy) Option {
	return func(e *Executor) { e.policy = p }
}

// WithClock overrides the clock.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// New returns an Executor. A nil logger discards output.
func New(r driver.Runner, logger *log.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Executor{
		runner: r,
		policy: DefaultPolicy(),
		clock:  clock.System{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunWithRetry runs each command in order, retrying a failing command with
// exponential backoff until it succeeds or the plan deadline passes. It
// returns 0 on success, otherwise the last driver exit code and an error.
// A missing driver is not retried.
func (e *Executor) RunWithRetry(ctx context.Context, p plan.Plan) (int, error) {
	deadline := e.clock.Now().Add(e.policy.Deadline)
	delay := e.policy.InitialDelay

	for idx, cmd := range p {
		for attempt := 1; ; attempt++ {
			e.logger.Info("running driver command", "cmd", cmd.String(), "attempt", attempt)
			res := e.runBefore(ctx, cmd, deadline)
			if res.OK() {
				if cmd.IsOff() && idx+1 < len(p) {
					if err := e.clock.Sleep(ctx, e.policy.OffSettle); err != nil {
						return 1, err
					}
				}
				break
			}

			rc := exitCode(res)
			if res.Missing() {
				e.logger.Error("keyboard driver not available", "cmd", cmd.String(), "error", driver.Describe(res))
				return rc, fmt.Errorf("%s: %w", cmd, driver.ErrNotFound)
			}

			now := e.clock.Now()
			if !now.Before(deadline) {
				e.logger.Error("giving up on command", "cmd", cmd.String(), "rc", rc, "attempts", attempt)
				return rc, fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, cmd, rc)
			}

			wait := min(delay, deadline.Sub(now))
			e.logger.Warn("command failed, retrying",
				"cmd", cmd.String(),
				"rc", rc,
				"attempt", attempt,
				"wait", wait.Round(100*time.Millisecond),
			)
			if err := e.clock.Sleep(ctx, wait); err != nil {
				return rc, err
			}
			delay = min(time.Duration(float64(delay)*e.policy.Multiplier), e.policy.MaxDelay)
		}
	}
	return 0, nil
}

// runBefore runs cmd with a timeout that ends CallGrace after deadline.
func (e *Executor) runBefore(ctx context.Context, cmd plan.Command, deadline time.Time) driver.Result {
	grace := e.policy.CallGrace
	if grace <= 0 {
		grace = DefaultPolicy().CallGrace
	}
	budget := max(deadline.Sub(e.clock.Now()), 0) + grace
	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return e.runner.Run(callCtx, cmd)
}

// VerifyOn reports whether the device looks lit. A failed query counts as
// success.
func (e *Executor) VerifyOn(ctx context.Context, desiredBrightness int) bool {
	st, res := driver.QueryState(ctx, e.runner)
	if !res.OK() {
		e.logger.Warn("could not query keyboard state, assuming success", "rc", exitCode(res))
		return true
	}
	e.logger.Debug("queried keyboard state", "state", st.String())

	if st.Power == driver.PowerOn {
		return true
	}
	if st.HasBrightness && st.Brightness >= max(1, desiredBrightness) {
		return true
	}
	return st.HasBrightness && st.Brightness > 0
}

// ApplyWithVerification runs the plan, then checks the device is on. If it
// is not, the device is switched off, given time to settle and every
// non-off command is issued once more before a final check.
func (e *Executor) ApplyWithVerification(ctx context.Context, p plan.Plan, desiredBrightness int) (int, error) {
	if rc, err := e.RunWithRetry(ctx, p); err != nil {
		return rc, err
	}
	if desiredBrightness <= 0 {
		// an off profile has nothing to confirm
		return 0, nil
	}

	if err := e.clock.Sleep(ctx, e.policy.VerifyDelay); err != nil {
		return 1, err
	}
	if e.VerifyOn(ctx, desiredBrightness) {
		e.logger.Info("keyboard confirmed on")
		return 0, nil
	}

	e.logger.Warn("keyboard still appears off after restore, retrying with longer delay")
	if res := e.runner.Run(ctx, plan.Off()); !res.OK() {
		e.logger.Warn("hard reset off failed", "rc", exitCode(res))
	}
	if err := e.clock.Sleep(ctx, e.policy.ResetDelay); err != nil {
		return 1, err
	}
	for _, cmd := range p {
		if cmd.IsOff() {
			continue
		}
		e.logger.Info("re-issuing driver command", "cmd", cmd.String())
		res := e.runner.Run(ctx, cmd)
		if !res.OK() {
			rc := exitCode(res)
			return rc, fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, cmd, rc)
		}
	}
	if err := e.clock.Sleep(ctx, e.policy.VerifyDelay); err != nil {
		return 1, err
	}

	if e.VerifyOn(ctx, desiredBrightness) {
		e.logger.Info("keyboard confirmed on after hard reset")
		return 0, nil
	}
	e.logger.Error("keyboard still appears off after hard reset")
	return ExitVerificationFailed, ErrVerificationFailed
}

// exitCode maps a failed result to a process exit code. Results without a
// usable code, such as a driver killed by its timeout, become 1.
func exitCode(res driver.Result) int {
	if res.ExitCode <= 0 && !res.OK() {
		return 1
	}
	return res.ExitCode
}
