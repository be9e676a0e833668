package drivemap

import (
	"context"

	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/types"
)

// ClearFailure records one mapping that could not be unmounted.
type ClearFailure struct {
	Record MappingRecord
	Err    error
	Output string
}

// ClearSummary reports the outcome of a cleanup pass.
type ClearSummary struct {
	Attempted int
	Removed   int
	Failures  []ClearFailure
}

// Cleaner unmounts all current mappings, isolating per-mapping failures. Its
// own failure mode is best-effort, non-fatal: every mapping is attempted
// regardless of earlier failures.
type Cleaner struct {
	runner    CommandRunner
	logger    *logging.Logger
	dryRun    bool
	discovery *Discovery
}

// NewCleaner creates a Cleaner using the given deps.
func NewCleaner(deps Deps) *Cleaner {
	deps.fillDefaults()
	return &Cleaner{
		runner:    deps.Runner,
		logger:    deps.Logger,
		dryRun:    deps.DryRun,
		discovery: NewDiscovery(deps),
	}
}

// ClearAll discovers the active mappings and releases each drive letter.
func (c *Cleaner) ClearAll(ctx context.Context) ClearSummary {
	summary := ClearSummary{}

	for _, rec := range c.discovery.ListActiveMappings(ctx, types.ScopeUser) {
		if rec.LocalTarget() == "" {
			continue
		}
		summary.Attempted++

		if c.dryRun {
			c.logger.Skip("Dry run: would unmap %s (%s)", rec.LocalTarget(), rec.RemotePath)
			summary.Removed++
			continue
		}

		output, err := c.runner.Run(ctx, "net", "use", rec.LocalTarget(), "/delete", "/y")
		if err != nil {
			c.logger.Error("Failed to unmap %s (%s): %s", rec.LocalTarget(), rec.RemotePath, firstLine(string(output)))
			summary.Failures = append(summary.Failures, ClearFailure{
				Record: rec,
				Err:    err,
				Output: firstLine(string(output)),
			})
			continue
		}
		c.logger.Info("Unmapped %s (%s)", rec.LocalTarget(), rec.RemotePath)
		summary.Removed++
	}

	c.logger.Info("Cleanup complete: %d removed, %d failed (%d total)",
		summary.Removed, len(summary.Failures), summary.Attempted)
	return summary
}
