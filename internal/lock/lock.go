// Package lock provides the advisory file lock that keeps a single monitor
// running per user.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const lockFilePerm = 0o644

// ErrHeld is returned when another process holds the lock.
var ErrHeld = errors.New("lock already held")

// Lock is a held flock on a file.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes an exclusive, non-blocking lock on path and records the
// caller's pid in it. When another process holds it, the error wraps
// ErrHeld and names that process if its pid is readable.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePerm)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	locked, err := tryLockExclusiveNonBlocking(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		holder := readPID(f)
		_ = f.Close()
		if holder > 0 {
			return nil, fmt.Errorf("%w by pid %d (%s)", ErrHeld, holder, path)
		}
		return nil, fmt.Errorf("%w (%s)", ErrHeld, path)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{f: f, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and closes the file. The file itself is left in place so
// a racing Acquire never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = l.f.Truncate(0)
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}

func tryLockExclusiveNonBlocking(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}
	return false, err
}

func readPID(f *os.File) int {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}
