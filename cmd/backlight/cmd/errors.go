package cmd

import (
	"errors"
	"fmt"
)

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// withCode wraps err with code; a zero code with no error yields nil.
// Codes that are not valid driver exit codes become 1.
func withCode(code int, err error) error {
	if code == 0 && err == nil {
		return nil
	}
	if code <= 0 {
		code = 1
	}
	return &ExitError{Code: code, Err: err}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 1
}
