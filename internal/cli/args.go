package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/drivesave/drivesave/internal/types"
)

const (
	defaultConfigPath   = "./drivesave.env"
	configSourceDefault = "default path"
	configSourceFlag    = "specified via --config/-c flag"
)

// Args holds the parsed command-line arguments
type Args struct {
	ConfigPath       string
	ConfigPathSource string
	LogLevel         types.LogLevel
	DryRun           bool
	ForceCLI         bool
	ShowVersion      bool
	ShowHelp         bool

	Backup     bool
	Restore    bool
	Clear      bool
	Test       bool
	ListShares bool

	BackupFile   string
	ScriptFile   string
	NoCredStore  bool
	MachineScope bool
}

// Parse parses command-line arguments and returns Args struct
func Parse() *Args {
	args := &Args{}

	configFlag := newStringFlag(defaultConfigPath)

	// Define flags
	flag.Var(configFlag, "config", "Path to configuration file")
	flag.Var(configFlag, "c", "Path to configuration file (shorthand)")

	var logLevelStr string
	flag.StringVar(&logLevelStr, "log-level", "",
		"Log level (debug|info|warning|error|critical)")
	flag.StringVar(&logLevelStr, "l", "",
		"Log level (shorthand)")

	flag.BoolVar(&args.DryRun, "dry-run", false,
		"Perform a dry run without making actual changes")
	flag.BoolVar(&args.DryRun, "n", false,
		"Perform a dry run (shorthand)")

	flag.BoolVar(&args.Backup, "backup", false,
		"Record the current drive mappings to the backup file and generate the restore script")
	flag.BoolVar(&args.Restore, "restore", false,
		"Re-apply the drive mappings recorded in the backup file")
	flag.BoolVar(&args.Clear, "clear", false,
		"Disconnect all current drive mappings")
	flag.BoolVar(&args.Test, "test", false,
		"Verify read/write access to every recorded mapping")
	flag.BoolVar(&args.ListShares, "list-shares", false,
		"Scan the network for visible hosts and their disk shares")

	flag.StringVar(&args.BackupFile, "file", "",
		"Backup file path (overrides the configured path)")
	flag.StringVar(&args.BackupFile, "f", "",
		"Backup file path (shorthand)")
	flag.StringVar(&args.ScriptFile, "script", "",
		"Restore script output path (overrides the configured path)")

	flag.BoolVar(&args.NoCredStore, "no-cred-store", false,
		"Do not read or write the encrypted credential store (prompts are not cached)")
	flag.BoolVar(&args.ForceCLI, "cli", false,
		"Use CLI prompts instead of TUI for interactive credential requests")
	flag.BoolVar(&args.MachineScope, "machine-scope", false,
		"Request machine-wide discovery (falls back to the current session)")

	flag.BoolVar(&args.ShowVersion, "version", false,
		"Show version information")
	flag.BoolVar(&args.ShowVersion, "v", false,
		"Show version information (shorthand)")

	flag.BoolVar(&args.ShowHelp, "help", false,
		"Show help message")
	flag.BoolVar(&args.ShowHelp, "h", false,
		"Show help message (shorthand)")

	// Custom usage message
	flag.Usage = func() {
		printHelp(os.Stderr, os.Args[0])
	}

	// Parse flags
	flag.Parse()

	args.ConfigPath = configFlag.value
	if configFlag.set {
		args.ConfigPathSource = configSourceFlag
	} else {
		args.ConfigPathSource = configSourceDefault
	}

	// Parse log level if provided
	if logLevelStr != "" {
		args.LogLevel = parseLogLevel(logLevelStr)
	} else {
		args.LogLevel = types.LogLevelNone // Will be overridden by config
	}

	return args
}

// HasMode reports whether at least one operation flag was given.
func (a *Args) HasMode() bool {
	return a.Backup || a.Restore || a.Clear || a.Test || a.ListShares
}

// parseLogLevel converts string to LogLevel
func parseLogLevel(s string) types.LogLevel {
	switch s {
	case "debug", "5":
		return types.LogLevelDebug
	case "info", "4":
		return types.LogLevelInfo
	case "warning", "3":
		return types.LogLevelWarning
	case "error", "2":
		return types.LogLevelError
	case "critical", "1":
		return types.LogLevelCritical
	case "none", "0":
		return types.LogLevelNone
	default:
		return types.LogLevelInfo
	}
}

// ShowHelp displays help message and exits
func ShowHelp() {
	printHelp(os.Stderr, os.Args[0])
	os.Exit(0)
}

// ShowVersion displays version information and exits
func ShowVersion() {
	printVersion(os.Stdout)
	os.Exit(0)
}

func printHelp(w io.Writer, argv0 string) {
	fmt.Fprintf(w, "Usage: %s [options]\n\n", argv0)
	fmt.Fprintln(w, "drivesave - network drive mapping backup and restore")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s --backup\n", argv0)
	fmt.Fprintf(w, "  %s --restore -f mappings.json\n", argv0)
	fmt.Fprintf(w, "  %s --clear --restore --dry-run\n", argv0)
	fmt.Fprintf(w, "  %s --test --log-level debug\n", argv0)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "drivesave")
	fmt.Fprintln(w, "Version: 0.1.0-dev")
	fmt.Fprintln(w, "Build: development")
}

type stringFlag struct {
	value string
	set   bool
}

func newStringFlag(defaultValue string) *stringFlag {
	return &stringFlag{value: defaultValue}
}

func (s *stringFlag) String() string {
	return s.value
}

func (s *stringFlag) Set(val string) error {
	s.value = val
	s.set = true
	return nil
}
