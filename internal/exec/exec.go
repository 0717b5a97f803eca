// Package exec provides command execution utilities for backlight
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ExitNotFound is the exit code reported when the executable could not be
// started at all, mirroring the shell's "command not found".
const ExitNotFound = 127

// Result holds the result of a command execution
type Result struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// OK reports whether the command exited with status 0.
func (r *Result) OK() bool {
	return r != nil && r.Err == nil && r.ExitCode == 0
}

// Output returns stderr if present, otherwise stdout, trimmed.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Options configures command execution
type Options struct {
	Timeout time.Duration
	Logger  *log.Logger
}

// DefaultOptions returns default execution options
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
	}
}

// Run executes a command, capturing both output streams. A command that
// cannot be started reports ExitNotFound.
func Run(ctx context.Context, name string, args []string, opts Options) *Result {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	line := FormatCommand(name, args)
	debug := func(msg string, kv ...any) {
		if opts.Logger != nil {
			opts.Logger.Debug(msg, append([]any{"cmd", line}, kv...)...)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	debug("executing command")
	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Command:  name,
		Args:     args,
		ExitCode: exitCodeOf(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Err:      err,
	}
	if err != nil {
		debug("command failed", "exit_code", result.ExitCode, "duration", result.Duration)
	} else {
		debug("command succeeded", "duration", result.Duration)
	}
	return result
}

func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return ExitNotFound
	default:
		return -1
	}
}

// LookPath resolves name on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// FormatCommand formats a command for display, quoting arguments that
// contain whitespace or shell metacharacters.
func FormatCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	if name != "" {
		parts = append(parts, quote(name))
	}
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]{}~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// LastNLines returns the last n lines of a string
func LastNLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
