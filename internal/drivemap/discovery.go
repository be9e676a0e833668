package drivemap

import (
	"context"
	"strings"

	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/types"
	"github.com/drivesave/drivesave/pkg/utils"
)

// Discovery enumerates the remote-filesystem mappings of the current
// interactive session. Enumeration is read-only; a failing or missing
// enumeration command yields an empty set, never an error, because "no
// mappings" is a valid terminal state for every caller.
type Discovery struct {
	runner            CommandRunner
	logger            *logging.Logger
	persistentDefault bool
}

// NewDiscovery creates a Discovery using the given deps.
func NewDiscovery(deps Deps) *Discovery {
	deps.fillDefaults()
	return &Discovery{
		runner:            deps.Runner,
		logger:            deps.Logger,
		persistentDefault: deps.PersistentDefault,
	}
}

// ListActiveMappings returns the session's current mappings. Machine-wide
// scope is not supported by the underlying enumeration and is downgraded to
// the current user's session with a warning.
func (d *Discovery) ListActiveMappings(ctx context.Context, scope types.DiscoveryScope) MappingSet {
	if scope == types.ScopeMachine {
		d.logger.Warning("Machine-wide enumeration is not supported; falling back to the current session's mappings")
	}

	done := d.logger.TimedDebug("drive enumeration")
	output, err := d.runner.Run(ctx, "net", "use")
	done(err)
	if err != nil {
		d.logger.Debug("Drive enumeration unavailable (%v); treating as no active mappings", err)
		return MappingSet{}
	}

	set := parseNetUseTable(string(output), d.persistentDefault)
	d.logger.Debug("Discovered %d active mapping(s)", len(set))
	return set
}

// parseNetUseTable extracts (letter, remote) pairs from `net use` output.
// Long remote paths are wrapped onto a continuation line by the command, so a
// row with a drive letter but no remote pairs with the next UNC-only line.
func parseNetUseTable(output string, persistent bool) MappingSet {
	set := MappingSet{}
	pendingLetter := ""

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "---") {
			continue
		}
		if strings.HasPrefix(trimmed, "New connections") ||
			strings.HasPrefix(trimmed, "Status") ||
			strings.HasPrefix(trimmed, "The command") ||
			strings.HasPrefix(trimmed, "There are no entries") {
			continue
		}

		letter, remote := scanNetUseRow(trimmed)
		switch {
		case letter != "" && remote != "":
			set = append(set, MappingRecord{
				DriveLetter: letter,
				RemotePath:  remote,
				Persistent:  persistent,
			})
			pendingLetter = ""
		case letter != "":
			pendingLetter = letter
		case remote != "" && pendingLetter != "":
			set = append(set, MappingRecord{
				DriveLetter: pendingLetter,
				RemotePath:  remote,
				Persistent:  persistent,
			})
			pendingLetter = ""
		}
	}
	return set
}

// scanNetUseRow pulls the drive-letter and UNC columns out of one table row,
// tolerating the optional status column and trailing provider name. Columns
// are split on the table's multi-space gaps so a UNC path with embedded
// spaces stays whole.
func scanNetUseRow(line string) (letter, remote string) {
	for _, col := range utils.SplitColumns(line) {
		if letter == "" && isDriveLetterToken(col) {
			letter = strings.ToUpper(strings.TrimSuffix(col, ":"))
			continue
		}
		if remote == "" && strings.HasPrefix(col, `\\`) {
			remote = col
		}
	}
	return letter, remote
}

func isDriveLetterToken(field string) bool {
	if len(field) != 2 || field[1] != ':' {
		return false
	}
	c := field[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
