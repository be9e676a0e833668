package drivemap

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/safefs"
)

// VerifyResult reports read/write reachability of one target plus the latency
// of the whole probe sequence. Timing covers read+write together and is
// reported even when a check fails partway.
type VerifyResult struct {
	Target   string
	CanRead  bool
	CanWrite bool
	ReadErr  error
	WriteErr error
	Elapsed  time.Duration
}

// Verifier tests read and write reachability of a mounted drive or raw remote
// path. It performs no credential handling; an unauthenticated target simply
// fails its checks.
type Verifier struct {
	logger  *logging.Logger
	timeout time.Duration
	time    TimeProvider

	// probeName generates a unique temp-file name; injectable for tests.
	probeName func() string
}

// NewVerifier creates a Verifier using the given deps.
func NewVerifier(deps Deps) *Verifier {
	deps.fillDefaults()
	return &Verifier{
		logger:  deps.Logger,
		timeout: deps.VerifyTimeout,
		time:    deps.Time,
		probeName: func() string {
			return "drivesave-probe-" + uuid.NewString() + ".tmp"
		},
	}
}

// ResolveTarget picks the verification target for a record: the local mount
// root when the record's letter is currently mounted, the raw remote path
// otherwise.
func ResolveTarget(rec MappingRecord, mounted MappingSet) string {
	if current, ok := mounted.FindByLetter(rec.DriveLetter); ok &&
		strings.EqualFold(current.RemotePath, rec.RemotePath) {
		return rec.LocalTarget() + `\`
	}
	return rec.RemotePath
}

// removeProbe deletes the write-probe file; injectable for tests.
var removeProbe = safefs.Remove

// Verify probes target. The read check lists the target's immediate contents;
// the write check creates a uniquely-named temp file and deletes it, and both
// steps must succeed. The two checks are independent: a read-only share
// reports CanRead without CanWrite.
func (v *Verifier) Verify(ctx context.Context, target string) (res VerifyResult) {
	res.Target = target
	start := v.time.Now()
	defer func() {
		res.Elapsed = v.time.Now().Sub(start)
		v.logger.Debug("Verified %s: read=%v write=%v elapsed=%s", target, res.CanRead, res.CanWrite, res.Elapsed)
	}()

	// Reachability first: a dead mount fails fast here instead of failing
	// both probes separately.
	if _, err := safefs.Stat(ctx, target, v.timeout); err != nil {
		res.ReadErr = err
		res.WriteErr = err
		return res
	}

	if _, err := safefs.ReadDir(ctx, target, v.timeout); err != nil {
		res.ReadErr = err
	} else {
		res.CanRead = true
	}

	probe := filepath.Join(target, v.probeName())
	if err := safefs.WriteFile(ctx, probe, []byte("drivesave access probe"), 0o644, v.timeout); err != nil {
		res.WriteErr = err
		return res
	}
	if err := removeProbe(ctx, probe, v.timeout); err != nil {
		v.logger.Warning("Probe file %s was left behind: %v", probe, err)
		res.WriteErr = err
		return res
	}
	res.CanWrite = true
	return res
}
