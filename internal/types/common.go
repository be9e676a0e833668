// Package types defines shared application data types.
package types

// DiscoveryScope selects which view of the system the drive discovery
// enumerates. Only the current interactive session is supported; machine
// scope is downgraded to user scope with a warning.
type DiscoveryScope string

const (
	// ScopeUser - mappings of the current interactive session.
	ScopeUser DiscoveryScope = "user"

	// ScopeMachine - machine-wide enumeration (unsupported, downgraded).
	ScopeMachine DiscoveryScope = "machine"
)

// String returns the string representation of the scope.
func (s DiscoveryScope) String() string {
	return string(s)
}

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogLevelDebug - Debug logs (maximum detail)
	LogLevelDebug LogLevel = 5

	// LogLevelInfo - General information
	LogLevelInfo LogLevel = 4

	// LogLevelWarning - Warnings
	LogLevelWarning LogLevel = 3

	// LogLevelError - Errors
	LogLevelError LogLevel = 2

	// LogLevelCritical - Critical errors
	LogLevelCritical LogLevel = 1

	// LogLevelNone - No logs
	LogLevelNone LogLevel = 0
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelError:
		return "ERROR"
	case LogLevelCritical:
		return "CRITICAL"
	case LogLevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}
