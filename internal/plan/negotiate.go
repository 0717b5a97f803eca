package plan

import (
	"context"
	"strings"

	"github.com/iiroan/backlight/internal/driver"
)

const (
	// MaxNegotiationAttempts bounds driver calls made by ApplyEffectWithFallback,
	// the first invocation included.
	MaxNegotiationAttempts = 6

	// NotNeededMarker is the driver's message for an attribute an effect
	// does not accept. Negotiation only starts when the first failure says so.
	NotNeededMarker = "attr is not needed by effect"
)

// Attribute ties the name the driver uses in error text to its flag.
type Attribute struct {
	Name       string
	Flag       string
	TakesValue bool
}

// Attributes lists strippable attributes in the order they are tried.
var Attributes = []Attribute{
	{Name: "direction", Flag: FlagDirection, TakesValue: true},
	{Name: "reactive", Flag: FlagReactive, TakesValue: false},
	{Name: "color", Flag: FlagColor, TakesValue: true},
	{Name: "speed", Flag: FlagSpeed, TakesValue: true},
	{Name: "brightness", Flag: FlagBrightness, TakesValue: true},
}

// Negotiator strips one rejected attribute at a time from an effect command.
// Each flag is removed at most once and the total number of attempts,
// counting the original command, never exceeds MaxNegotiationAttempts.
type Negotiator struct {
	current  Command
	tried    map[string]bool
	attempts int
}

// NewNegotiator starts negotiation for a command that has already been
// issued once.
func NewNegotiator(cmd Command) *Negotiator {
	return &Negotiator{
		current:  cmd.Clone(),
		tried:    make(map[string]bool, len(Attributes)),
		attempts: 1,
	}
}

// Current returns the command most recently handed out.
func (n *Negotiator) Current() Command {
	return n.current
}

// Next picks the first untried attribute named in failure and returns the
// command with that flag removed. ok is false when the budget is spent or
// the text names nothing left to strip.
func (n *Negotiator) Next(failure string) (cmd Command, attr Attribute, ok bool) {
	if n.attempts >= MaxNegotiationAttempts {
		return n.current, Attribute{}, false
	}
	text := strings.ToLower(failure)
	for _, a := range Attributes {
		if n.tried[a.Flag] || !strings.Contains(text, a.Name) {
			continue
		}
		n.tried[a.Flag] = true
		if !n.current.Has(a.Flag) {
			// nothing to strip; re-issuing an identical command cannot help
			continue
		}
		n.attempts++
		n.current = DropFlag(n.current, a.Flag)
		return n.current, a, true
	}
	return n.current, Attribute{}, false
}

// DropFlag removes every occurrence of flag from args, along with the value
// following it for flags that take one.
func DropFlag(args Command, flag string) Command {
	takesValue := false
	for _, a := range Attributes {
		if a.Flag == flag {
			takesValue = a.TakesValue
			break
		}
	}

	out := make(Command, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] != flag {
			out = append(out, args[i])
			continue
		}
		if takesValue && i+1 < len(args) {
			i++
		}
	}
	return out
}

// ApplyEffectWithFallback runs cmd and, if the driver rejects one of its
// attributes, retries with rejected attributes stripped until the driver
// accepts it or negotiation runs out. It returns the last result and the
// command that produced it.
func ApplyEffectWithFallback(ctx context.Context, r driver.Runner, cmd Command) (driver.Result, Command) {
	res := r.Run(ctx, cmd)
	if res.OK() {
		return res, cmd
	}
	if !strings.Contains(strings.ToLower(res.Output()), NotNeededMarker) {
		return res, cmd
	}

	n := NewNegotiator(cmd)
	for {
		next, _, ok := n.Next(res.Output())
		if !ok {
			return res, n.Current()
		}
		res = r.Run(ctx, next)
		if res.OK() {
			return res, next
		}
	}
}
