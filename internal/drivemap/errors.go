package drivemap

import (
	"errors"
	"fmt"
)

// ErrBackupNotFound reports that a required backup file is absent. This is the
// only failure class that aborts a whole operation; callers surface it with a
// non-zero exit code.
var ErrBackupNotFound = errors.New("backup file not found")

// MountFailure classifies a failed mount attempt.
type MountFailure struct {
	Record MappingRecord
	Output string
	// Transient failures trigger the credential-retry path; permanent ones
	// are reported per record while the batch continues.
	Transient bool
	Err       error
}

func (e *MountFailure) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Output != "" {
		return fmt.Sprintf("%s mount failure for %s: %s", kind, e.Record.RemotePath, e.Output)
	}
	return fmt.Sprintf("%s mount failure for %s: %v", kind, e.Record.RemotePath, e.Err)
}

func (e *MountFailure) Unwrap() error { return e.Err }
