package types

// ExitCode represents the application's exit codes.
type ExitCode int

const (
	// ExitSuccess - Execution completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGenericError - Unspecified generic error.
	ExitGenericError ExitCode = 1

	// ExitConfigError - Configuration error.
	ExitConfigError ExitCode = 2

	// ExitBackupFileMissing - Required backup file not found.
	ExitBackupFileMissing ExitCode = 3

	// ExitBackupError - Error while saving the backup or generating the script.
	ExitBackupError ExitCode = 4

	// ExitRestoreError - At least one mapping could not be restored.
	ExitRestoreError ExitCode = 5

	// ExitCleanupError - At least one mapping could not be removed.
	ExitCleanupError ExitCode = 6

	// ExitVerifyError - Access verification reported an unreachable target.
	ExitVerifyError ExitCode = 7

	// ExitCredentialError - A mapping failed for lack of valid credentials.
	ExitCredentialError ExitCode = 8

	// ExitPanicError - Unhandled panic caught.
	ExitPanicError ExitCode = 9
)

// String returns a human-readable description of the exit code.
func (e ExitCode) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitGenericError:
		return "generic error"
	case ExitConfigError:
		return "configuration error"
	case ExitBackupFileMissing:
		return "backup file missing"
	case ExitBackupError:
		return "backup error"
	case ExitRestoreError:
		return "restore error"
	case ExitCleanupError:
		return "cleanup error"
	case ExitVerifyError:
		return "verification error"
	case ExitCredentialError:
		return "credential store error"
	case ExitPanicError:
		return "panic error"
	default:
		return "unknown error"
	}
}

// Int returns the exit code as an integer.
func (e ExitCode) Int() int {
	return int(e)
}
