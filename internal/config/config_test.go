package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drivesave/drivesave/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drivesave.env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.BackupFile != def.BackupFile {
		t.Errorf("BackupFile = %q; want default %q", cfg.BackupFile, def.BackupFile)
	}
	if cfg.MountTimeoutSeconds != def.MountTimeoutSeconds {
		t.Errorf("MountTimeoutSeconds = %d; want %d", cfg.MountTimeoutSeconds, def.MountTimeoutSeconds)
	}
	if !cfg.CredStoreEnabled {
		t.Error("CredStoreEnabled = false; want default true")
	}
}

func TestLoad_AppliesValues(t *testing.T) {
	path := writeConfig(t, `
# drivesave config
LOG_LEVEL=debug
USE_COLOR=false
BACKUP_FILE="/var/backups/mappings.json"   # quoted with comment
SCRIPT_FILE=/var/backups/restore.ps1
CRED_STORE_ENABLED=no
MOUNT_TIMEOUT_SECONDS=45
SCAN_SUBNET=192.168.10.0/24
SCAN_WORKERS=8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebugLevel != types.LogLevelDebug {
		t.Errorf("DebugLevel = %v; want debug", cfg.DebugLevel)
	}
	if cfg.UseColor {
		t.Error("UseColor = true; want false")
	}
	if cfg.BackupFile != "/var/backups/mappings.json" {
		t.Errorf("BackupFile = %q", cfg.BackupFile)
	}
	if cfg.CredStoreEnabled {
		t.Error("CredStoreEnabled = true; want false")
	}
	if cfg.MountTimeoutSeconds != 45 {
		t.Errorf("MountTimeoutSeconds = %d; want 45", cfg.MountTimeoutSeconds)
	}
	if cfg.ScanSubnet != "192.168.10.0/24" {
		t.Errorf("ScanSubnet = %q", cfg.ScanSubnet)
	}
	if cfg.ScanWorkers != 8 {
		t.Errorf("ScanWorkers = %d; want 8", cfg.ScanWorkers)
	}
}

func TestLoad_UnknownKeysIgnored(t *testing.T) {
	path := writeConfig(t, "SOME_FUTURE_KEY=value\n")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_RejectsInvalidInteger(t *testing.T) {
	path := writeConfig(t, "MOUNT_TIMEOUT_SECONDS=soon\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid integer")
	}
}

func TestLoad_RejectsNonPositive(t *testing.T) {
	path := writeConfig(t, "SCAN_WORKERS=0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive worker count")
	}
}

func TestValidate_EmptyBackupFile(t *testing.T) {
	cfg := Default()
	cfg.BackupFile = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty BACKUP_FILE")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want types.LogLevel
	}{
		{"debug", types.LogLevelDebug},
		{"INFO", types.LogLevelInfo},
		{"3", types.LogLevelWarning},
		{"none", types.LogLevelNone},
		{"bogus", types.LogLevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
