// Package safefs wraps filesystem operations with a bounded timeout so a dead
// or stale network mount cannot hang the caller. The underlying kernel call is
// not cancelled; we only stop waiting for it.
package safefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var (
	osStat      = os.Stat
	osReadDir   = os.ReadDir
	osWriteFile = os.WriteFile
	osRemove    = os.Remove
)

// ErrTimeout is a sentinel error used to classify filesystem operations that did not
// complete within the configured timeout.
var ErrTimeout = errors.New("filesystem operation timed out")

// TimeoutError is returned when a filesystem operation exceeds its allowed duration.
type TimeoutError struct {
	Op      string
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return "filesystem operation timed out"
	}
	if e.Timeout > 0 {
		return fmt.Sprintf("%s %s: timeout after %s", e.Op, e.Path, e.Timeout)
	}
	return fmt.Sprintf("%s %s: timeout", e.Op, e.Path)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

func effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0
		}
		if remaining < timeout {
			return remaining
		}
	}
	return timeout
}

func run[T any](ctx context.Context, op, path string, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	timeout = effectiveTimeout(ctx, timeout)
	if timeout <= 0 {
		return fn()
	}

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := fn()
		ch <- result{val: val, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, &TimeoutError{Op: op, Path: path, Timeout: timeout}
	}
}

// Stat runs os.Stat bounded by timeout.
func Stat(ctx context.Context, path string, timeout time.Duration) (fs.FileInfo, error) {
	return run(ctx, "stat", path, timeout, func() (fs.FileInfo, error) {
		return osStat(path)
	})
}

// ReadDir runs os.ReadDir bounded by timeout.
func ReadDir(ctx context.Context, path string, timeout time.Duration) ([]os.DirEntry, error) {
	return run(ctx, "readdir", path, timeout, func() ([]os.DirEntry, error) {
		return osReadDir(path)
	})
}

// WriteFile runs os.WriteFile bounded by timeout.
func WriteFile(ctx context.Context, path string, data []byte, perm fs.FileMode, timeout time.Duration) error {
	_, err := run(ctx, "write", path, timeout, func() (struct{}, error) {
		return struct{}{}, osWriteFile(path, data, perm)
	})
	return err
}

// Remove runs os.Remove bounded by timeout.
func Remove(ctx context.Context, path string, timeout time.Duration) error {
	_, err := run(ctx, "remove", path, timeout, func() (struct{}, error) {
		return struct{}{}, osRemove(path)
	})
	return err
}
