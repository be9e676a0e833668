package drivemap

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/drivesave/drivesave/internal/logging"
)

var titleCaser = cases.Title(language.English)

// LabelSource is one provider of human-readable drive descriptions. Sources
// are consulted in priority order; a source returning "" (or an error) simply
// passes the question on to the next one. None of the system sources is
// reliably populated for every mapping, hence the cascade.
type LabelSource interface {
	Name() string
	Lookup(ctx context.Context, letter, remotePath string) (string, error)
}

// Resolver produces a description for a mapping by cascading through its
// sources and finally deriving a label from the UNC path itself. Resolve
// always returns a string; the empty string is a valid terminal value.
type Resolver struct {
	sources []LabelSource
	logger  *logging.Logger
}

// NewResolver creates a resolver over the given sources, in priority order.
func NewResolver(logger *logging.Logger, sources ...LabelSource) *Resolver {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return &Resolver{sources: sources, logger: logger}
}

// NewSystemResolver wires the standard three-source cascade: the per-drive
// registry override, the legacy WMI query and the CIM query, all executed via
// runner.
func NewSystemResolver(logger *logging.Logger, runner CommandRunner) *Resolver {
	return NewResolver(logger,
		&RegistryLabelSource{Runner: runner},
		&WMILabelSource{Runner: runner},
		&CIMLabelSource{Runner: runner},
	)
}

// Resolve walks the cascade. Each step is attempted only when the previous
// produced nothing; source failures are swallowed so one broken provider can
// never fail a whole backup over a label.
func (r *Resolver) Resolve(ctx context.Context, letter, remotePath string) string {
	for _, src := range r.sources {
		value, err := src.Lookup(ctx, letter, remotePath)
		if err != nil {
			r.logger.Debug("Label source %s failed for %s: %v", src.Name(), remotePath, err)
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			r.logger.Debug("Label for %s resolved by %s: %q", remotePath, src.Name(), value)
			return value
		}
	}
	return DeriveLabel(remotePath)
}

// DeriveLabel builds a "Share (Host)" label from a UNC path, title-casing both
// components. Returns "" when the path does not parse.
func DeriveLabel(remotePath string) string {
	host, share, ok := SplitUNC(remotePath)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%s)",
		titleCaser.String(strings.ToLower(share)),
		titleCaser.String(strings.ToLower(host)))
}

// RegistryLabelSource reads the per-drive label override Explorer keeps under
// MountPoints2. Fastest and most authoritative when present.
type RegistryLabelSource struct {
	Runner CommandRunner
}

func (s *RegistryLabelSource) Name() string { return "registry" }

func (s *RegistryLabelSource) Lookup(ctx context.Context, letter, remotePath string) (string, error) {
	host, share, ok := SplitUNC(remotePath)
	if !ok {
		return "", nil
	}
	keyPath := fmt.Sprintf(`HKCU\Software\Microsoft\Windows\CurrentVersion\Explorer\MountPoints2\##%s#%s`, host, share)
	output, err := s.Runner.Run(ctx, "reg", "query", keyPath, "/v", "_LabelFromReg")
	if err != nil {
		return "", err
	}
	return parseRegValue(string(output), "_LabelFromReg"), nil
}

// parseRegValue extracts the data column of a `reg query` value row, e.g.
// "    _LabelFromReg    REG_SZ    Team Share".
func parseRegValue(output, valueName string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimRight(line, "\r"))
		if len(fields) < 3 || fields[0] != valueName {
			continue
		}
		return strings.Join(fields[2:], " ")
	}
	return ""
}

// WMILabelSource queries the legacy management instrumentation interface for
// the volume name of the mounted device.
type WMILabelSource struct {
	Runner CommandRunner
}

func (s *WMILabelSource) Name() string { return "wmi" }

func (s *WMILabelSource) Lookup(ctx context.Context, letter, remotePath string) (string, error) {
	if letter == "" {
		return "", nil
	}
	where := fmt.Sprintf("DeviceID='%s:'", strings.ToUpper(letter))
	output, err := s.Runner.Run(ctx, "wmic", "logicaldisk", "where", where, "get", "VolumeName", "/value")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if value, found := strings.CutPrefix(line, "VolumeName="); found {
			return value, nil
		}
	}
	return "", nil
}

// CIMLabelSource queries the modern management instrumentation interface and
// title-cases the raw volume name.
type CIMLabelSource struct {
	Runner CommandRunner
}

func (s *CIMLabelSource) Name() string { return "cim" }

func (s *CIMLabelSource) Lookup(ctx context.Context, letter, remotePath string) (string, error) {
	if letter == "" {
		return "", nil
	}
	query := fmt.Sprintf(
		`(Get-CimInstance Win32_LogicalDisk -Filter "DeviceID='%s:'").VolumeName`,
		strings.ToUpper(letter))
	output, err := s.Runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", query)
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(output))
	if value == "" {
		return "", nil
	}
	return titleCaser.String(strings.ToLower(value)), nil
}
