package drivemap

import (
	"context"
	"os/exec"
	"time"

	"github.com/drivesave/drivesave/internal/credstore"
	"github.com/drivesave/drivesave/internal/logging"
)

// CommandRunner executes system commands. The engine never spawns processes
// directly; every mount, unmount and enumeration call goes through this seam
// so tests can substitute canned output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// TimeProvider abstracts time acquisition for determinism in tests.
type TimeProvider interface {
	Now() time.Time
}

// CredentialPrompter asks the user for credentials for a remote host. The
// prompt suspends exactly one in-flight record; the executor guarantees it is
// never invoked concurrently.
type CredentialPrompter interface {
	PromptCredential(ctx context.Context, host string) (credstore.Credential, error)
}

// Deps groups the engine's injectable collaborators.
type Deps struct {
	Logger   *logging.Logger
	Runner   CommandRunner
	Time     TimeProvider
	Creds    credstore.Store
	Prompter CredentialPrompter

	DryRun            bool
	PersistentDefault bool
	MountTimeout      time.Duration
	VerifyTimeout     time.Duration
}

type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// NewOSCommandRunner returns a CommandRunner backed by os/exec.
func NewOSCommandRunner() CommandRunner {
	return osCommandRunner{}
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// NewRealTimeProvider returns a TimeProvider backed by time.Now.
func NewRealTimeProvider() TimeProvider {
	return realTimeProvider{}
}

func (d *Deps) fillDefaults() {
	if d.Logger == nil {
		d.Logger = logging.GetDefaultLogger()
	}
	if d.Runner == nil {
		d.Runner = osCommandRunner{}
	}
	if d.Time == nil {
		d.Time = realTimeProvider{}
	}
	if d.Creds == nil {
		d.Creds = credstore.NewMemory()
	}
	if d.MountTimeout <= 0 {
		d.MountTimeout = 30 * time.Second
	}
	if d.VerifyTimeout <= 0 {
		d.VerifyTimeout = 10 * time.Second
	}
}
