package power

import (
	"context"
	"errors"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/backlight/internal/clock"
)

const (
	DefaultInterval        = 3 * time.Second
	DefaultRediscoverEvery = 20
)

// Handler reacts to a power source transition.
type Handler interface {
	Transition(ctx context.Context, to State) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, to State) error

// Transition calls f.
func (f HandlerFunc) Transition(ctx context.Context, to State) error {
	return f(ctx, to)
}

// Debouncer filters resolved states down to transitions. Unknown never
// triggers and never replaces the last stable state.
type Debouncer struct {
	last State
}

// Observe records s and reports whether it should trigger an action. first
// is set for the very first resolved state, which always triggers.
func (d *Debouncer) Observe(s State) (trigger, first bool) {
	if s == Unknown {
		return false, false
	}
	if d.last == Unknown {
		d.last = s
		return true, true
	}
	if s == d.last {
		return false, false
	}
	d.last = s
	return true, false
}

// Last returns the last stable state.
func (d *Debouncer) Last() State {
	return d.last
}

// Monitor polls the power supplies and calls its Handler on transitions.
// It is single-threaded: a slow handler delays the next poll.
type Monitor struct {
	dir             string
	interval        time.Duration
	rediscoverEvery int
	handler         Handler
	clock           clock.Clock
	logger          *log.Logger

	paths     []string
	iteration int
	debounce  Debouncer
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRediscoverEvery sets how many polls pass between supply rescans.
func WithRediscoverEvery(n int) MonitorOption {
	return func(m *Monitor) {
		if n > 0 {
			m.rediscoverEvery = n
		}
	}
}

// WithClock overrides the clock used between polls.
func WithClock(c clock.Clock) MonitorOption {
	return func(m *Monitor) { m.clock = c }
}

// NewMonitor returns a Monitor over the supplies in dir.
func NewMonitor(dir string, h Handler, logger *log.Logger, opts ...MonitorOption) *Monitor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Monitor{
		dir:             dir,
		interval:        DefaultInterval,
		rediscoverEvery: DefaultRediscoverEvery,
		handler:         h,
		clock:           clock.System{},
		logger:          logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Step runs one poll. Supplies are rediscovered on the first poll and
// every rediscoverEvery polls after it. It returns the resolved state.
func (m *Monitor) Step(ctx context.Context) State {
	if m.iteration%m.rediscoverEvery == 0 {
		m.rediscover()
	}
	m.iteration++

	state := Aggregate(m.paths)
	prev := m.debounce.Last()
	trigger, first := m.debounce.Observe(state)
	if state == Unknown {
		if m.iteration == 1 {
			m.logger.Warn("unable to determine power state", "sources", len(m.paths))
		}
		return state
	}
	if !trigger {
		return state
	}

	if first {
		m.logger.Info("initial power state", "source", state)
	} else {
		m.logger.Info("power source changed", "from", prev, "source", state)
	}
	if err := m.handler.Transition(ctx, state); err != nil {
		m.logger.Error("restoring profile after power change failed", "source", state, "error", err)
	}
	return state
}

// Run polls until ctx is cancelled. Cancellation is only observed between
// polls, so a transition in progress completes first.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("watching power supplies", "dir", m.dir, "interval", m.interval)
	for {
		m.Step(context.WithoutCancel(ctx))
		if err := m.clock.Sleep(ctx, m.interval); err != nil {
			if errors.Is(err, context.Canceled) {
				m.logger.Info("monitor stopped")
				return nil
			}
			return err
		}
	}
}

func (m *Monitor) rediscover() {
	paths := Discover(m.dir)
	if !slices.Equal(paths, m.paths) {
		m.logger.Debug("power supplies discovered", "paths", paths)
	}
	m.paths = paths
}
