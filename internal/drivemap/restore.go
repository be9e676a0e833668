package drivemap

import (
	"context"
	"strings"
	"time"

	"github.com/drivesave/drivesave/internal/credstore"
	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/types"
)

// ApplyStatus is the per-record outcome of a restore attempt.
type ApplyStatus int

const (
	// StatusApplied - the mapping was (re)mounted.
	StatusApplied ApplyStatus = iota

	// StatusAlreadySatisfied - the target was already mounted with the same
	// identity; idempotent no-op, not an error.
	StatusAlreadySatisfied

	// StatusFailed - the mapping could not be mounted; the batch continues.
	StatusFailed

	// StatusSkipped - the record was not attempted (abort requested).
	StatusSkipped
)

// String returns the status label used in per-record reporting.
func (s ApplyStatus) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusAlreadySatisfied:
		return "already satisfied"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ApplyResult reports one record's restore outcome.
type ApplyResult struct {
	Record MappingRecord
	Status ApplyStatus
	Err    error
}

// Executor applies mapping records to the live system using the
// credential-retry protocol. One Executor instance covers one batch: it
// remembers which hosts already prompted so no host is asked twice.
type Executor struct {
	runner       CommandRunner
	creds        credstore.Store
	prompter     CredentialPrompter
	logger       *logging.Logger
	dryRun       bool
	mountTimeout time.Duration

	discovery *Discovery
	prompted  map[string]bool
}

// NewExecutor creates an Executor using the given deps.
func NewExecutor(deps Deps) *Executor {
	deps.fillDefaults()
	return &Executor{
		runner:       deps.Runner,
		creds:        deps.Creds,
		prompter:     deps.Prompter,
		logger:       deps.Logger,
		dryRun:       deps.DryRun,
		mountTimeout: deps.MountTimeout,
		discovery:    NewDiscovery(deps),
		prompted:     make(map[string]bool),
	}
}

// ApplyAll restores every record in set, isolating per-record failures. An
// abort (context cancellation) stops launching new records; already-started
// work finishes. Every outcome is reported individually, then summarized.
func (e *Executor) ApplyAll(ctx context.Context, set MappingSet) []ApplyResult {
	snapshot := e.discovery.ListActiveMappings(ctx, types.ScopeUser)

	results := make([]ApplyResult, 0, len(set))
	for _, rec := range set {
		if ctx.Err() != nil {
			results = append(results, ApplyResult{Record: rec, Status: StatusSkipped, Err: ctx.Err()})
			continue
		}
		res := e.apply(ctx, rec, snapshot)
		e.report(res)
		results = append(results, res)
	}

	e.summarize(results)
	return results
}

// Apply restores a single record against a fresh discovery snapshot.
func (e *Executor) Apply(ctx context.Context, rec MappingRecord) ApplyResult {
	snapshot := e.discovery.ListActiveMappings(ctx, types.ScopeUser)
	res := e.apply(ctx, rec, snapshot)
	e.report(res)
	return res
}

func (e *Executor) apply(ctx context.Context, rec MappingRecord, snapshot MappingSet) ApplyResult {
	// Idempotency: already mounted with the same identity is success.
	if current, mounted := snapshot.FindByLetter(rec.DriveLetter); mounted {
		if strings.EqualFold(current.RemotePath, rec.RemotePath) {
			return ApplyResult{Record: rec, Status: StatusAlreadySatisfied}
		}
		return ApplyResult{Record: rec, Status: StatusFailed, Err: &MountFailure{
			Record: rec,
			Output: rec.LocalTarget() + " is mounted elsewhere (" + current.RemotePath + ")",
		}}
	}

	if e.dryRun {
		e.logger.Skip("Dry run: would mount %s at %s (persistent=%v)", rec.RemotePath, targetOf(rec), rec.Persistent)
		return ApplyResult{Record: rec, Status: StatusApplied}
	}

	// First attempt rides on ambient/cached credentials.
	output, err := e.mount(ctx, rec, credstore.Credential{})
	if err == nil {
		return ApplyResult{Record: rec, Status: StatusApplied}
	}
	if res, handled := e.classifyDeviceInUse(ctx, rec, output, err); handled {
		return res
	}
	if !isTransientMountFailure(output) {
		return ApplyResult{Record: rec, Status: StatusFailed, Err: &MountFailure{
			Record: rec, Output: firstLine(output), Err: err,
		}}
	}

	cred, ok := e.resolveCredential(ctx, rec.Host())
	if !ok {
		return ApplyResult{Record: rec, Status: StatusFailed, Err: &MountFailure{
			Record: rec, Transient: true,
			Output: "no credentials available for host " + rec.Host(),
			Err:    err,
		}}
	}

	output, err = e.mount(ctx, rec, cred)
	if err == nil {
		return ApplyResult{Record: rec, Status: StatusApplied}
	}
	if res, handled := e.classifyDeviceInUse(ctx, rec, output, err); handled {
		return res
	}
	return ApplyResult{Record: rec, Status: StatusFailed, Err: &MountFailure{
		Record: rec, Output: firstLine(output), Err: err,
	}}
}

// classifyDeviceInUse resolves the "local device name is already in use"
// failure (system error 85): a fresh enumeration showing the same remote means
// the mapping is already satisfied; anything else is a permanent conflict.
func (e *Executor) classifyDeviceInUse(ctx context.Context, rec MappingRecord, output string, err error) (ApplyResult, bool) {
	if !isDeviceInUse(output) {
		return ApplyResult{}, false
	}
	fresh := e.discovery.ListActiveMappings(ctx, types.ScopeUser)
	if current, mounted := fresh.FindByLetter(rec.DriveLetter); mounted &&
		strings.EqualFold(current.RemotePath, rec.RemotePath) {
		return ApplyResult{Record: rec, Status: StatusAlreadySatisfied}, true
	}
	return ApplyResult{Record: rec, Status: StatusFailed, Err: &MountFailure{
		Record: rec, Output: firstLine(output), Err: err,
	}}, true
}

// mount runs one `net use` invocation, optionally with explicit credentials.
func (e *Executor) mount(ctx context.Context, rec MappingRecord, cred credstore.Credential) (string, error) {
	mountCtx, cancel := context.WithTimeout(ctx, e.mountTimeout)
	defer cancel()

	persistFlag := "/persistent:no"
	if rec.Persistent {
		persistFlag = "/persistent:yes"
	}

	args := []string{"use", targetOf(rec), rec.RemotePath}
	if cred.Username != "" {
		args = append(args, cred.Secret, "/user:"+cred.Username)
	}
	args = append(args, persistFlag)

	output, err := e.runner.Run(mountCtx, "net", args...)
	return string(output), err
}

// resolveCredential returns a credential for host from the store, falling back
// to exactly one interactive prompt per host per batch. A prompted credential
// is written back to the store for future runs.
func (e *Executor) resolveCredential(ctx context.Context, host string) (credstore.Credential, bool) {
	if host == "" {
		return credstore.Credential{}, false
	}
	key := credstore.NormalizeHost(host)

	cred, found, err := e.creds.Get(key)
	if err != nil {
		e.logger.Warning("Credential store lookup for %s failed: %v", host, err)
	}
	if found {
		return cred, true
	}

	if e.prompter == nil || e.prompted[key] {
		return credstore.Credential{}, false
	}
	e.prompted[key] = true

	cred, err = e.prompter.PromptCredential(ctx, host)
	if err != nil {
		e.logger.Warning("Credential prompt for %s aborted: %v", host, err)
		return credstore.Credential{}, false
	}
	if putErr := e.creds.Put(key, cred); putErr != nil {
		e.logger.Warning("Could not cache credential for %s: %v", host, putErr)
	}
	return cred, true
}

func (e *Executor) report(res ApplyResult) {
	target := targetOf(res.Record)
	switch res.Status {
	case StatusApplied:
		e.logger.Info("Mapped %s -> %s", target, res.Record.RemotePath)
	case StatusAlreadySatisfied:
		e.logger.Skip("Already mapped: %s -> %s", target, res.Record.RemotePath)
	case StatusSkipped:
		e.logger.Skip("Skipped %s (abort requested)", res.Record.RemotePath)
	case StatusFailed:
		e.logger.Error("Failed to map %s -> %s: %v", target, res.Record.RemotePath, res.Err)
	}
}

func (e *Executor) summarize(results []ApplyResult) {
	var applied, satisfied, failed, skipped int
	for _, res := range results {
		switch res.Status {
		case StatusApplied:
			applied++
		case StatusAlreadySatisfied:
			satisfied++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	e.logger.Info("Restore complete: %d mapped, %d already present, %d failed, %d skipped (%d total)",
		applied, satisfied, failed, skipped, len(results))
}

func targetOf(rec MappingRecord) string {
	if t := rec.LocalTarget(); t != "" {
		return t
	}
	return "*"
}

// isTransientMountFailure recognizes the failure classes that the
// credential-retry path can fix: access denied (5), bad password (86) and
// conflicting credentials against the same server (1219).
func isTransientMountFailure(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "system error 5") ||
		strings.Contains(lower, "system error 86") ||
		strings.Contains(lower, "system error 1219") ||
		strings.Contains(lower, "access is denied") ||
		strings.Contains(lower, "password is not correct") ||
		strings.Contains(lower, "password is invalid")
}

// isDeviceInUse recognizes system error 85: the drive letter is taken. Whether
// that is the idempotency case or a conflict depends on the current remote.
func isDeviceInUse(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "system error 85") ||
		strings.Contains(lower, "local device name is already in use")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
