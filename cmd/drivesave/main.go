package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/drivesave/drivesave/internal/cli"
	"github.com/drivesave/drivesave/internal/config"
	"github.com/drivesave/drivesave/internal/credstore"
	"github.com/drivesave/drivesave/internal/drivemap"
	"github.com/drivesave/drivesave/internal/input"
	"github.com/drivesave/drivesave/internal/logging"
	"github.com/drivesave/drivesave/internal/netscan"
	"github.com/drivesave/drivesave/internal/tui"
	"github.com/drivesave/drivesave/internal/types"
	"github.com/drivesave/drivesave/pkg/utils"
)

const version = "0.1.0"

// Build-time variables (injected via ldflags)
var (
	buildTime = "" // Will be set during compilation via -ldflags "-X main.buildTime=..."
)

// passphraseEnvVar lets unattended runs unlock the credential store without a
// terminal prompt.
const passphraseEnvVar = "DRIVESAVE_PASSPHRASE"

func main() {
	os.Exit(run())
}

var closeStdinOnce sync.Once

func run() int {
	logger := logging.New(types.LogLevelInfo, true)

	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logger.Error("PANIC: %v", r)
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, stack)
			os.Exit(types.ExitPanicError.Int())
		}
	}()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT (Ctrl+C) and SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warning("\nReceived signal %v, initiating graceful shutdown...", sig)
		cancel()
		closeStdinOnce.Do(func() {
			if file := os.Stdin; file != nil {
				_ = file.Close()
			}
		})
	}()
	tui.SetAbortContext(ctx)

	// Parse command-line arguments
	args := cli.Parse()

	if args.ShowVersion {
		cli.ShowVersion()
		return types.ExitSuccess.Int()
	}
	if args.ShowHelp {
		cli.ShowHelp()
		return types.ExitSuccess.Int()
	}
	if !args.HasMode() {
		logger.Error("No operation requested. Use --backup, --restore, --clear, --test or --list-shares.")
		cli.ShowHelp()
		return types.ExitConfigError.Int()
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		logger.Error("Configuration error: %v", err)
		return types.ExitConfigError.Int()
	}

	// Flag overrides beat file values.
	if args.LogLevel != types.LogLevelNone {
		cfg.DebugLevel = args.LogLevel
	}
	if args.DryRun {
		cfg.DryRun = true
	}
	if args.BackupFile != "" {
		cfg.BackupFile = args.BackupFile
	}
	if args.ScriptFile != "" {
		cfg.ScriptFile = args.ScriptFile
	}
	if args.NoCredStore {
		cfg.CredStoreEnabled = false
	}

	logger = logging.New(cfg.DebugLevel, cfg.UseColor)
	logging.SetDefaultLogger(logger)
	if cfg.LogPath != "" {
		if err := logger.OpenLogFile(cfg.LogPath); err != nil {
			logger.Warning("Could not open log file %s: %v", cfg.LogPath, err)
		} else {
			defer logger.CloseLogFile()
		}
	} else if sessionLogger, sessionPath, cleanupSession, err := logging.StartSessionLogger("drivesave", cfg.DebugLevel, cfg.UseColor); err == nil {
		logger = sessionLogger
		logging.SetDefaultLogger(logger)
		defer cleanupSession()
		logger.Debug("Session log: %s", sessionPath)
	}
	logger.Debug("drivesave %s starting (config=%s, %s)", version, args.ConfigPath, args.ConfigPathSource)
	if buildTime != "" {
		logger.Debug("Build time: %s", buildTime)
	}

	scope := types.ScopeUser
	if args.MachineScope {
		scope = types.ScopeMachine
	}

	deps := drivemap.Deps{
		Logger:            logger,
		Runner:            drivemap.NewOSCommandRunner(),
		Time:              drivemap.NewRealTimeProvider(),
		DryRun:            cfg.DryRun,
		PersistentDefault: cfg.PersistentDefault,
		MountTimeout:      time.Duration(cfg.MountTimeoutSeconds) * time.Second,
		VerifyTimeout:     time.Duration(cfg.VerifyTimeoutSeconds) * time.Second,
	}

	exit := types.ExitSuccess
	setExit := func(code types.ExitCode) {
		if exit == types.ExitSuccess {
			exit = code
		}
	}

	if args.ListShares {
		if err := runListShares(ctx, logger, cfg, deps); err != nil {
			logger.Error("Share scan failed: %v", err)
			setExit(types.ExitGenericError)
		}
	}

	if args.Clear {
		logger.Step("Clearing current drive mappings")
		summary := drivemap.NewCleaner(deps).ClearAll(ctx)
		if len(summary.Failures) > 0 {
			setExit(types.ExitCleanupError)
		}
	}

	if args.Backup {
		logger.Step("Backing up drive mappings")
		if err := runBackup(ctx, logger, cfg, deps, scope); err != nil {
			logger.Error("Backup failed: %v", err)
			setExit(types.ExitBackupError)
		}
	}

	if args.Restore {
		logger.Step("Restoring drive mappings")
		if code := runRestore(ctx, logger, cfg, deps, args.ForceCLI); code != types.ExitSuccess {
			setExit(code)
		}
	}

	if args.Test {
		logger.Step("Verifying access to recorded mappings")
		if code := runVerify(ctx, logger, cfg, deps); code != types.ExitSuccess {
			setExit(code)
		}
	}

	if ctx.Err() != nil && exit == types.ExitSuccess {
		return 128 + int(syscall.SIGINT)
	}
	return exit.Int()
}

func runBackup(ctx context.Context, logger *logging.Logger, cfg *config.Config, deps drivemap.Deps, scope types.DiscoveryScope) error {
	discovery := drivemap.NewDiscovery(deps)
	set := discovery.ListActiveMappings(ctx, scope)
	if len(set) == 0 {
		logger.Warning("No active drive mappings found; writing an empty backup")
	}

	resolver := drivemap.NewSystemResolver(logger, deps.Runner)
	for i := range set {
		set[i].Description = resolver.Resolve(ctx, set[i].DriveLetter, set[i].RemotePath)
		logger.Info("Recorded %s -> %s (%s)", set[i].LocalTarget(), set[i].RemotePath, set[i].Description)
	}

	if cfg.DryRun {
		logger.Skip("Dry run: would write %s and %s (%d mapping(s))", cfg.BackupFile, cfg.ScriptFile, len(set))
		return nil
	}

	if err := utils.EnsureDir(filepath.Dir(cfg.BackupFile)); err != nil {
		return err
	}
	if err := drivemap.Save(set, cfg.BackupFile); err != nil {
		return err
	}
	if abs, err := utils.AbsPath(cfg.BackupFile); err == nil {
		logger.Info("Backup written to %s", abs)
	}

	script, err := drivemap.NewGenerator(deps).Generate(set)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(cfg.ScriptFile)); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.ScriptFile, script, 0o644); err != nil {
		return fmt.Errorf("write restore script %s: %w", cfg.ScriptFile, err)
	}
	logger.Info("Restore script written to %s", cfg.ScriptFile)
	return nil
}

func runRestore(ctx context.Context, logger *logging.Logger, cfg *config.Config, deps drivemap.Deps, forceCLI bool) types.ExitCode {
	set, err := drivemap.Load(cfg.BackupFile)
	if err != nil {
		if errors.Is(err, drivemap.ErrBackupNotFound) {
			logger.Error("Backup file not found: %s (run --backup first)", cfg.BackupFile)
			return types.ExitBackupFileMissing
		}
		logger.Error("Cannot read backup: %v", err)
		return types.ExitRestoreError
	}
	if err := set.Validate(); err != nil {
		logger.Error("Backup file is malformed: %v", err)
		return types.ExitRestoreError
	}

	deps.Creds = unlockCredStore(ctx, logger, cfg)
	deps.Prompter = selectPrompter(forceCLI)

	results := drivemap.NewExecutor(deps).ApplyAll(ctx, set)

	code := types.ExitSuccess
	for _, res := range results {
		if res.Status != drivemap.StatusFailed {
			continue
		}
		var mf *drivemap.MountFailure
		if errors.As(res.Err, &mf) && mf.Transient {
			code = types.ExitCredentialError
			continue
		}
		return types.ExitRestoreError
	}
	return code
}

func runVerify(ctx context.Context, logger *logging.Logger, cfg *config.Config, deps drivemap.Deps) types.ExitCode {
	set, err := drivemap.Load(cfg.BackupFile)
	if err != nil {
		if errors.Is(err, drivemap.ErrBackupNotFound) {
			logger.Error("Backup file not found: %s (run --backup first)", cfg.BackupFile)
			return types.ExitBackupFileMissing
		}
		logger.Error("Cannot read backup: %v", err)
		return types.ExitVerifyError
	}

	snapshot := drivemap.NewDiscovery(deps).ListActiveMappings(ctx, types.ScopeUser)
	verifier := drivemap.NewVerifier(deps)

	code := types.ExitSuccess
	for _, rec := range set {
		if ctx.Err() != nil {
			break
		}
		target := drivemap.ResolveTarget(rec, snapshot)
		res := verifier.Verify(ctx, target)
		switch {
		case res.CanRead && res.CanWrite:
			logger.Info("%s: read+write OK (%s)", target, res.Elapsed.Round(time.Millisecond))
		case res.CanRead:
			logger.Warning("%s: read-only (%s): %v", target, res.Elapsed.Round(time.Millisecond), res.WriteErr)
		default:
			logger.Error("%s: unreachable (%s): %v", target, res.Elapsed.Round(time.Millisecond), res.ReadErr)
			code = types.ExitVerifyError
		}
	}
	return code
}

func runListShares(ctx context.Context, logger *logging.Logger, cfg *config.Config, deps drivemap.Deps) error {
	scanner := netscan.New(logger, deps.Runner, netscan.Options{
		Subnet:       cfg.ScanSubnet,
		Workers:      cfg.ScanWorkers,
		ProbeTimeout: time.Duration(cfg.ScanTimeoutMS) * time.Millisecond,
	})
	set, err := scanner.ScanShares(ctx)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		logger.Info("No shares visible on the network")
		return nil
	}
	for _, rec := range set {
		logger.Info("%s  (%s)", rec.RemotePath, rec.Description)
	}
	logger.Info("%d share(s) found", len(set))
	return nil
}

// unlockCredStore opens the encrypted credential store when it is enabled and
// a passphrase is obtainable. Every failure degrades to an in-memory store:
// restore keeps working, prompted credentials just are not cached to disk.
func unlockCredStore(ctx context.Context, logger *logging.Logger, cfg *config.Config) credstore.Store {
	if !cfg.CredStoreEnabled {
		return credstore.NewMemory()
	}

	passphrase := os.Getenv(passphraseEnvVar)
	if passphrase == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			logger.Debug("No terminal available for the credential store passphrase; using in-memory store")
			return credstore.NewMemory()
		}
		prompt := "Credential store passphrase: "
		if !utils.FileExists(cfg.CredStorePath) {
			prompt = "New credential store passphrase (empty to skip caching): "
		}
		fmt.Print(prompt)
		b, err := input.ReadPasswordWithContext(ctx, term.ReadPassword, int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			logger.Warning("Passphrase entry aborted; continuing without cached credentials")
			return credstore.NewMemory()
		}
		passphrase = string(b)
	}
	if passphrase == "" {
		return credstore.NewMemory()
	}

	store, err := credstore.OpenFile(cfg.CredStorePath, passphrase)
	if err != nil {
		if errors.Is(err, credstore.ErrBadPassphrase) {
			logger.Warning("Wrong credential store passphrase; continuing without cached credentials")
		} else {
			logger.Warning("Credential store unavailable: %v", err)
		}
		return credstore.NewMemory()
	}
	return store
}

// selectPrompter picks the interactive credential prompter. Without a terminal
// there is no prompting at all; mounts that need credentials simply fail.
func selectPrompter(forceCLI bool) drivemap.CredentialPrompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	if forceCLI {
		return newCLIPrompter()
	}
	return tui.FormPrompter{}
}
