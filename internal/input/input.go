// Package input reads the tool's interactive answers (usernames, credential
// secrets, store passphrases) with cancellation support: closing stdin or
// cancelling the context releases a blocked read instead of wedging the run.
package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrInputAborted signals that an interactive prompt was interrupted, either
// by context cancellation (Ctrl+C) or because stdin was closed under the
// blocked reader.
var ErrInputAborted = errors.New("input aborted")

// IsAborted reports whether a prompt error means "the user backed out" rather
// than a real read failure.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInputAborted) || errors.Is(err, context.Canceled)
}

// normalizeReadErr folds the stdin-was-closed error zoo into ErrInputAborted.
// The signal handler closes stdin on shutdown, so these surface on every
// aborted prompt.
func normalizeReadErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return ErrInputAborted
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "use of closed file") ||
		strings.Contains(msg, "bad file descriptor") ||
		strings.Contains(msg, "file already closed") {
		return ErrInputAborted
	}
	return err
}

type readResult[T any] struct {
	val T
	err error
}

// awaitRead races a blocking read against the context. The read goroutine is
// abandoned on cancellation; the prompt's stdin closure unblocks it.
func awaitRead[T any](ctx context.Context, read func() (T, error)) (T, error) {
	ch := make(chan readResult[T], 1)
	go func() {
		val, err := read()
		ch <- readResult[T]{val: val, err: normalizeReadErr(err)}
	}()
	select {
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, context.DeadlineExceeded
		}
		return zero, ErrInputAborted
	case res := <-ch:
		return res.val, res.err
	}
}

// ReadLineWithContext reads one answer line from reader. Cancellation or
// stdin closure yields ErrInputAborted; a context deadline yields
// context.DeadlineExceeded.
func ReadLineWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return awaitRead(ctx, func() (string, error) {
		return reader.ReadString('\n')
	})
}

// ReadPasswordWithContext reads a secret without echo through the injected
// readPassword function (x/term in production, a stub in tests). Abort
// semantics match ReadLineWithContext.
func ReadPasswordWithContext(ctx context.Context, readPassword func(int) ([]byte, error), fd int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if readPassword == nil {
		return nil, errors.New("readPassword function is nil")
	}
	return awaitRead(ctx, func() ([]byte, error) {
		return readPassword(fd)
	})
}
