package drivemap

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save serializes the set as an indented JSON array of records. The whole
// operation fails when the target is unwritable; there is no retry. The
// persisted format carries no schema/version tag; unknown fields are ignored
// on load.
func Save(set MappingSet, path string) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("refusing to save malformed mapping set: %w", err)
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping set: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup file %s: %w", path, err)
	}
	return nil
}

// Load reads a mapping set back from path. A missing file yields
// ErrBackupNotFound so callers can produce a user-facing diagnostic and a
// non-zero exit code.
func Load(path string) (MappingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, path)
		}
		return nil, fmt.Errorf("read backup file %s: %w", path, err)
	}

	var set MappingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse backup file %s: %w", path, err)
	}
	return set, nil
}
