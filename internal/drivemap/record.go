// Package drivemap implements the mapped-network-drive backup/restore engine:
// discovery of active mappings, description resolution, durable persistence,
// standalone restore-script generation, credential-aware restore, access
// verification and cleanup.
package drivemap

import (
	"fmt"
	"strings"
)

// MappingRecord describes one association between a local drive letter and a
// remote UNC path. DriveLetter may be empty for shares that were discovered on
// the network but are not mounted. Description is never null; the empty string
// is a valid terminal value.
type MappingRecord struct {
	DriveLetter string `json:"drive_letter"`
	RemotePath  string `json:"remote_path"`
	Description string `json:"description"`
	Persistent  bool   `json:"persistent"`
}

// Host returns the remote host component of the record's UNC path, or "" when
// the path cannot be parsed.
func (r MappingRecord) Host() string {
	host, _, ok := SplitUNC(r.RemotePath)
	if !ok {
		return ""
	}
	return host
}

// LocalTarget returns the local device name used by mount/unmount commands
// ("Z:"), or "" when the record has no drive letter.
func (r MappingRecord) LocalTarget() string {
	if r.DriveLetter == "" {
		return ""
	}
	return strings.ToUpper(r.DriveLetter) + ":"
}

// MappingSet is an ordered collection of mapping records. Order is irrelevant
// for restore correctness but preserved for deterministic diffing and tests.
type MappingSet []MappingRecord

// Validate checks the natural-key invariant: no two records may share the same
// (RemotePath, DriveLetter) pair.
func (s MappingSet) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, rec := range s {
		if strings.TrimSpace(rec.RemotePath) == "" {
			return fmt.Errorf("mapping record with drive letter %q has empty remote path", rec.DriveLetter)
		}
		key := strings.ToLower(rec.RemotePath) + "|" + strings.ToUpper(rec.DriveLetter)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate mapping record for %s (%s)", rec.RemotePath, rec.DriveLetter)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// FindByLetter returns the record mounted at the given drive letter, if any.
func (s MappingSet) FindByLetter(letter string) (MappingRecord, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for _, rec := range s {
		if strings.ToUpper(rec.DriveLetter) == letter && letter != "" {
			return rec, true
		}
	}
	return MappingRecord{}, false
}

// SplitUNC parses a \\host\share path into its host and share components.
// Trailing path segments below the share are ignored.
func SplitUNC(path string) (host, share string, ok bool) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, `\\`) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(trimmed, `\\`), `\`)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
