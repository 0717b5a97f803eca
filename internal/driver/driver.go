// Package driver wraps the external keyboard backlight command line driver.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/backlight/internal/exec"
)

//go:generate mockgen -source=driver.go -destination=mocks/mock_driver.go

const (
	// EnvVar overrides the driver location.
	EnvVar = "ITE8291R3_CTL"
	// BinaryName is looked up on PATH as a last resort.
	BinaryName = "ite8291r3-ctl"
	// DefaultPath is where the installer places the driver.
	DefaultPath = "/usr/local/bin/ite8291r3-ctl"

	// ExitNotFound is reported for invocations of a driver that is not installed.
	ExitNotFound = exec.ExitNotFound

	invokeTimeout = 10 * time.Second
)

// ErrNotFound is returned when no driver executable can be located.
var ErrNotFound = errors.New("keyboard driver not found")

// Result is the outcome of one driver invocation.
type Result struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// OK reports whether the invocation exited 0.
func (r Result) OK() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// Missing reports whether the driver binary could not be executed.
func (r Result) Missing() bool {
	return r.ExitCode == ExitNotFound || errors.Is(r.Err, ErrNotFound)
}

// Output returns stderr, or stdout when stderr is empty.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner runs a single driver invocation.
type Runner interface {
	Run(ctx context.Context, args []string) Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, args []string) Result

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, args []string) Result {
	return f(ctx, args)
}

// Candidates returns the locations tried by Locate, in order.
func Candidates(explicit string) []string {
	candidates := []string{}
	for _, c := range []string{explicit, os.Getenv(EnvVar), DefaultPath, BinaryName} {
		if c != "" {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// Locate finds the driver executable. explicit, usually from config, is
// tried first, then $ITE8291R3_CTL, the install path and PATH.
func Locate(explicit string) (string, error) {
	for _, candidate := range Candidates(explicit) {
		path := candidate
		if !filepath.IsAbs(candidate) {
			resolved, err := exec.LookPath(candidate)
			if err != nil {
				continue
			}
			path = resolved
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			continue
		}
		return path, nil
	}
	return "", fmt.Errorf("%w (searched: %s)", ErrNotFound, strings.Join(Candidates(explicit), ", "))
}

// Driver runs the located executable.
type Driver struct {
	path   string
	logger *log.Logger
}

// New returns a Driver for the executable at path.
func New(path string, logger *log.Logger) *Driver {
	return &Driver{path: path, logger: logger}
}

// Path returns the executable path.
func (d *Driver) Path() string {
	return d.path
}

// Run invokes the driver with args.
func (d *Driver) Run(ctx context.Context, args []string) Result {
	opts := exec.DefaultOptions()
	opts.Timeout = invokeTimeout
	opts.Logger = d.logger

	res := exec.Run(ctx, d.path, args, opts)
	out := Result{
		Args:     args,
		ExitCode: res.ExitCode,
		Stdout:   strings.TrimSpace(res.Stdout),
		Stderr:   strings.TrimSpace(res.Stderr),
		Err:      res.Err,
	}
	if d.logger != nil {
		if out.Stdout != "" {
			d.logger.Debug("driver stdout", "output", out.Stdout)
		}
		if out.Stderr != "" {
			d.logger.Debug("driver stderr", "output", out.Stderr)
		}
	}
	return out
}

// Unavailable is a Runner standing in for a driver that could not be
// located. Every invocation fails with ExitNotFound.
type Unavailable struct {
	Err error
}

// Run reports the driver as missing.
func (u Unavailable) Run(_ context.Context, args []string) Result {
	err := u.Err
	if err == nil {
		err = ErrNotFound
	}
	return Result{Args: args, ExitCode: ExitNotFound, Stderr: err.Error(), Err: err}
}

// Open locates the driver and returns a Runner for it. When the driver is
// missing the returned Runner is Unavailable and err is ErrNotFound.
func Open(explicit string, logger *log.Logger) (Runner, error) {
	path, err := Locate(explicit)
	if err != nil {
		return Unavailable{Err: err}, err
	}
	return New(path, logger), nil
}
