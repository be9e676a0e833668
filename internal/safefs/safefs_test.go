package safefs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStat_ReturnsTimeoutError(t *testing.T) {
	prev := osStat
	defer func() { osStat = prev }()

	osStat = func(string) (os.FileInfo, error) {
		select {}
	}

	start := time.Now()
	_, err := Stat(context.Background(), "/does/not/matter", 25*time.Millisecond)
	if err == nil || !errors.Is(err, ErrTimeout) {
		t.Fatalf("Stat err = %v; want timeout", err)
	}
	if time.Since(start) > 250*time.Millisecond {
		t.Fatalf("Stat took too long: %s", time.Since(start))
	}
}

func TestReadDir_ReturnsTimeoutError(t *testing.T) {
	prev := osReadDir
	defer func() { osReadDir = prev }()

	osReadDir = func(string) ([]os.DirEntry, error) {
		select {}
	}

	start := time.Now()
	_, err := ReadDir(context.Background(), "/does/not/matter", 25*time.Millisecond)
	if err == nil || !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReadDir err = %v; want timeout", err)
	}
	if time.Since(start) > 250*time.Millisecond {
		t.Fatalf("ReadDir took too long: %s", time.Since(start))
	}
}

func TestWriteFile_ReturnsTimeoutError(t *testing.T) {
	prev := osWriteFile
	defer func() { osWriteFile = prev }()

	osWriteFile = func(string, []byte, fs.FileMode) error {
		select {}
	}

	err := WriteFile(context.Background(), "/does/not/matter", []byte("x"), 0o644, 25*time.Millisecond)
	if err == nil || !errors.Is(err, ErrTimeout) {
		t.Fatalf("WriteFile err = %v; want timeout", err)
	}
}

func TestRemove_ReturnsTimeoutError(t *testing.T) {
	prev := osRemove
	defer func() { osRemove = prev }()

	osRemove = func(string) error {
		select {}
	}

	err := Remove(context.Background(), "/does/not/matter", 25*time.Millisecond)
	if err == nil || !errors.Is(err, ErrTimeout) {
		t.Fatalf("Remove err = %v; want timeout", err)
	}
}

func TestStat_PropagatesContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Stat(ctx, "/does/not/matter", 50*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stat err = %v; want context.Canceled", err)
	}
}

func TestWriteFileAndRemove_RealFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.tmp")

	if err := WriteFile(context.Background(), path, []byte("probe"), 0o644, time.Second); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := ReadDir(context.Background(), dir, time.Second)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ReadDir entries = %d; want 1", len(entries))
	}
	if err := Remove(context.Background(), path, time.Second); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}
