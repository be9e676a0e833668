package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNormalizeReadErr(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		aborted bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"closed file", errors.New("read |0: use of closed file"), true},
		{"bad fd", errors.New("read: bad file descriptor"), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeReadErr(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("normalizeReadErr(nil) = %v; want nil", got)
				}
				return
			}
			if tt.aborted != errors.Is(got, ErrInputAborted) {
				t.Errorf("normalizeReadErr(%v) = %v; aborted want %v", tt.err, got, tt.aborted)
			}
		})
	}
}

func TestIsAborted(t *testing.T) {
	if IsAborted(nil) {
		t.Error("IsAborted(nil) = true")
	}
	if !IsAborted(ErrInputAborted) {
		t.Error("IsAborted(ErrInputAborted) = false")
	}
	if !IsAborted(context.Canceled) {
		t.Error("IsAborted(context.Canceled) = false")
	}
	if IsAborted(errors.New("other")) {
		t.Error("IsAborted(other) = true")
	}
}

func TestReadLineWithContext_ReadsLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("alice\n"))
	line, err := ReadLineWithContext(context.Background(), reader)
	if err != nil {
		t.Fatalf("ReadLineWithContext: %v", err)
	}
	if line != "alice\n" {
		t.Fatalf("line = %q; want %q", line, "alice\n")
	}
}

func TestReadLineWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked, _ := io.Pipe()
	reader := bufio.NewReader(blocked)
	_, err := ReadLineWithContext(ctx, reader)
	if !errors.Is(err, ErrInputAborted) {
		t.Fatalf("err = %v; want ErrInputAborted", err)
	}
}

func TestReadPasswordWithContext_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ReadPasswordWithContext(ctx, func(int) ([]byte, error) {
		select {}
	}, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v; want DeadlineExceeded", err)
	}
}

func TestReadPasswordWithContext_NilFunc(t *testing.T) {
	if _, err := ReadPasswordWithContext(context.Background(), nil, 0); err == nil {
		t.Fatal("expected error for nil readPassword")
	}
}

func TestReadPasswordWithContext_ReadsSecret(t *testing.T) {
	secret, err := ReadPasswordWithContext(context.Background(), func(int) ([]byte, error) {
		return []byte("s3cret"), nil
	}, 0)
	if err != nil {
		t.Fatalf("ReadPasswordWithContext: %v", err)
	}
	if string(secret) != "s3cret" {
		t.Fatalf("secret = %q; want %q", secret, "s3cret")
	}
}
