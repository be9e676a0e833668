// Package config loads the drivesave configuration from a KEY=VALUE env file.
// CLI flags take precedence over file values; file values take precedence over
// the built-in defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drivesave/drivesave/internal/types"
	"github.com/drivesave/drivesave/pkg/utils"
)

// Config contains the whole drivesave configuration.
type Config struct {
	// General settings
	DebugLevel types.LogLevel
	UseColor   bool
	DryRun     bool

	// Paths
	BackupFile string
	ScriptFile string
	LogPath    string

	// Credential store
	CredStoreEnabled bool
	CredStorePath    string

	// Mount / verify behavior
	PersistentDefault    bool
	MountTimeoutSeconds  int
	VerifyTimeoutSeconds int

	// Network share scan
	ScanSubnet    string
	ScanWorkers   int
	ScanTimeoutMS int

	// Source of the loaded configuration
	ConfigPath string
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		DebugLevel:           types.LogLevelInfo,
		UseColor:             true,
		BackupFile:           "./drive-mappings.json",
		ScriptFile:           "./restore-mappings.ps1",
		LogPath:              "",
		CredStoreEnabled:     true,
		CredStorePath:        "./credentials.age",
		PersistentDefault:    true,
		MountTimeoutSeconds:  30,
		VerifyTimeoutSeconds: 10,
		ScanSubnet:           "",
		ScanWorkers:          32,
		ScanTimeoutMS:        500,
	}
}

// Load reads the configuration file at path and applies it over the defaults.
// A missing file is not an error: the defaults are returned unchanged so the
// tool stays usable without any installation step.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.ConfigPath = path

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if utils.IsComment(line) {
			continue
		}
		key, value, ok := utils.SplitKeyValue(line)
		if !ok {
			return nil, fmt.Errorf("config %s line %d: malformed entry", path, lineNo)
		}
		if err := cfg.apply(key, value); err != nil {
			return nil, fmt.Errorf("config %s line %d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(key, value string) error {
	switch strings.ToUpper(key) {
	case "LOG_LEVEL":
		c.DebugLevel = parseLogLevel(value)
	case "USE_COLOR":
		c.UseColor = utils.ParseBool(value)
	case "DRY_RUN":
		c.DryRun = utils.ParseBool(value)
	case "BACKUP_FILE":
		c.BackupFile = value
	case "SCRIPT_FILE":
		c.ScriptFile = value
	case "LOG_PATH":
		c.LogPath = value
	case "CRED_STORE_ENABLED":
		c.CredStoreEnabled = utils.ParseBool(value)
	case "CRED_STORE_PATH":
		c.CredStorePath = value
	case "PERSISTENT_DEFAULT":
		c.PersistentDefault = utils.ParseBool(value)
	case "MOUNT_TIMEOUT_SECONDS":
		return setPositiveInt(&c.MountTimeoutSeconds, key, value)
	case "VERIFY_TIMEOUT_SECONDS":
		return setPositiveInt(&c.VerifyTimeoutSeconds, key, value)
	case "SCAN_SUBNET":
		c.ScanSubnet = value
	case "SCAN_WORKERS":
		return setPositiveInt(&c.ScanWorkers, key, value)
	case "SCAN_TIMEOUT_MS":
		return setPositiveInt(&c.ScanTimeoutMS, key, value)
	default:
		// Unknown keys are ignored so old config files keep working.
	}
	return nil
}

func setPositiveInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, value)
	}
	if n <= 0 {
		return fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	*dst = n
	return nil
}

// Validate checks that the effective configuration is internally consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackupFile) == "" {
		return fmt.Errorf("BACKUP_FILE must not be empty")
	}
	if strings.TrimSpace(c.ScriptFile) == "" {
		return fmt.Errorf("SCRIPT_FILE must not be empty")
	}
	if c.CredStoreEnabled && strings.TrimSpace(c.CredStorePath) == "" {
		return fmt.Errorf("CRED_STORE_PATH must not be empty when the credential store is enabled")
	}
	return nil
}

func parseLogLevel(s string) types.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
