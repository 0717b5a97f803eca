package executor

import (
	"context"
	"slices"

	"github.com/iiroan/backlight/internal/driver"
	"github.com/iiroan/backlight/internal/plan"
	"github.com/iiroan/backlight/internal/profile"
)

// Outcome describes one interactive apply.
type Outcome struct {
	// Requested is the command the profile maps to.
	Requested plan.Command
	// Used is the command that produced Result. It differs from Requested
	// when attributes were stripped during negotiation.
	Used   plan.Command
	Result driver.Result
}

// OK reports whether the driver accepted Used.
func (o Outcome) OK() bool {
	return o.Result.OK()
}

// Stripped reports whether negotiation removed attributes.
func (o Outcome) Stripped() bool {
	return !slices.Equal(o.Requested, o.Used)
}

// Apply programs p without retries, the way a user tweaking settings wants
// it: a static color gets a hard reset first, an effect goes through
// attribute negotiation. Use ApplyWithVerification for unattended restores.
func (e *Executor) Apply(ctx context.Context, p profile.Profile) Outcome {
	steps := plan.Build(p)
	if p.IsOff() {
		res := e.runner.Run(ctx, plan.Off())
		return Outcome{Requested: plan.Off(), Used: plan.Off(), Result: res}
	}

	cmd := steps[1]
	if p.IsStatic() {
		if res := e.runner.Run(ctx, plan.Off()); !res.OK() {
			e.logger.Warn("reset before static color failed", "rc", exitCode(res))
		}
		if err := e.clock.Sleep(ctx, e.policy.OffSettle); err != nil {
			return Outcome{Requested: cmd, Used: cmd, Result: driver.Result{Args: cmd, ExitCode: 1, Err: err}}
		}
		e.logger.Info("running driver command", "cmd", cmd.String())
		return Outcome{Requested: cmd, Used: cmd, Result: e.runner.Run(ctx, cmd)}
	}

	e.logger.Info("running driver command", "cmd", cmd.String())
	res, used := plan.ApplyEffectWithFallback(ctx, e.runner, cmd)
	if !slices.Equal(cmd, used) {
		e.logger.Warn("driver rejected effect attributes", "requested", cmd.String(), "used", used.String())
	}
	return Outcome{Requested: cmd, Used: used, Result: res}
}

// SetBrightness sets only the brightness, as the brightness slider does.
func (e *Executor) SetBrightness(ctx context.Context, n int) driver.Result {
	n = max(profile.MinBrightness, min(profile.MaxBrightness, n))
	return e.runner.Run(ctx, plan.Brightness(n))
}
