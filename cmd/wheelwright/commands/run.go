// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/archive"
	"github.com/wheelwright-build/wheelwright/lib/clock"
	"github.com/wheelwright-build/wheelwright/lib/config"
	"github.com/wheelwright-build/wheelwright/lib/pipeline"
	"github.com/wheelwright-build/wheelwright/lib/process"
	"github.com/wheelwright-build/wheelwright/lib/pyenv"
	"github.com/wheelwright-build/wheelwright/lib/runlog"
	"github.com/wheelwright-build/wheelwright/lib/step"
)

// defaultConfigPath is picked up from the working directory when no
// --config flag is given.
const defaultConfigPath = "wheelwright.yaml"

// runOptions collects the flag overrides for the run command. Each
// non-zero value replaces the corresponding config field, so a project
// config can be partially overridden from CI without editing the file.
type runOptions struct {
	configPath            string
	packageName           string
	projectDir            string
	versions              []string
	experimental          []string
	experimentalThreshold string
	stopOnError           bool
	logDir                string
	archiveResults        bool
}

func runCommand() *cli.Command {
	var opts runOptions
	return &cli.Command{
		Name:    "run",
		Summary: "Run the full build, test, and packaging pipeline",
		Description: `Run the full pipeline: pre hooks, the test matrix (one step per
interpreter version, each in a fresh synced environment), static
analysis, sdist and wheel packaging with binary repair, the optional
docs build, then post hooks.

Per-step results accumulate in the run ledger and are rendered as a
summary after the last step. The exit code is 1 when any step
hard-failed; soft failures (experimental interpreter versions, hooks
and checks marked allow_failure) are reported but do not affect it.
With --stop-on-error, a failed critical step (packaging) aborts the
run immediately; steps never reached appear nowhere in the summary.

Configuration is read from --config, or from wheelwright.yaml in the
working directory if present, or built-in defaults. Flags override
the file.`,
		Usage: "wheelwright run [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVar(&opts.configPath, "config", "", "configuration file (default: "+defaultConfigPath+" if present)")
			flagSet.StringVar(&opts.packageName, "package", "", "package name reported in logs and the result log")
			flagSet.StringVar(&opts.projectDir, "project", "", "project directory (default from config)")
			flagSet.StringSliceVar(&opts.versions, "versions", nil, "interpreter versions to test (comma-separated)")
			flagSet.StringSliceVar(&opts.experimental, "experimental", nil, "versions whose failures are soft")
			flagSet.StringVar(&opts.experimentalThreshold, "experimental-threshold", "", "versions at or above this are experimental")
			flagSet.BoolVar(&opts.stopOnError, "stop-on-error", false, "abort the run when a critical step fails")
			flagSet.StringVar(&opts.logDir, "log-dir", "", "directory for the run's log artifacts")
			flagSet.BoolVar(&opts.archiveResults, "archive", false, "bundle the results directory into an archive after the run")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Run with the project's wheelwright.yaml",
				Command:     "wheelwright run",
			},
			{
				Description: "Test an extra pre-release interpreter without failing the build",
				Command:     "wheelwright run --versions 3.13,3.14,3.15 --experimental 3.15",
			},
			{
				Description: "CI invocation: fail fast and keep the results archive",
				Command:     "wheelwright run --stop-on-error --archive",
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("run takes no positional arguments (got %q)", args[0])
			}
			return runPipeline(opts)
		},
	}
}

func runPipeline(opts runOptions) error {
	cfg, err := loadRunConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	clk := clock.Real()
	log, err := runlog.Open(cfg.ResolveDir(cfg.LogDir), os.Stderr, slog.LevelInfo, clk)
	if err != nil {
		return err
	}
	defer log.Close()
	logger := log.Logger()

	runner := &process.Runner{
		Dir:    cfg.ProjectDir,
		Stdout: log.Output(),
		Stderr: log.Output(),
		Logger: logger,
	}
	envs, err := pyenv.New(pyenv.Config{
		Root:   cfg.ResolveDir(cfg.EnvRoot),
		UV:     cfg.UV,
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	driver, err := pipeline.New(cfg, envs, runner)
	if err != nil {
		return err
	}
	driver.Clock = clk
	driver.Logger = logger

	executor := &step.Executor{
		StopOnError: cfg.StopOnError,
		Ledger:      step.NewLedger(),
		Results:     log.Results(),
		Clock:       clk,
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, runErr := driver.Run(ctx, executor)
	var abort *step.AbortError
	if runErr != nil && !errors.As(runErr, &abort) {
		return runErr
	}

	// The summary goes to both sinks: styled for the console, plain
	// for the file artifact.
	fmt.Fprintln(log.Console())
	ledger.Render(log.Console(), step.DefaultTheme, log.ColorProfile())
	ledger.Render(log.File(), step.DefaultTheme, termenv.Ascii)
	fmt.Fprintf(log.Console(), "\nfull log: %s\n", log.TextPath())

	if cfg.Archive.Enabled {
		// Archiving failures are reported but never change the run's
		// outcome; the results are still on disk uncompressed.
		if err := archiveResults(cfg, clk, logger); err != nil {
			logger.Error("archiving results failed", "error", err)
		}
	}

	if abort != nil {
		return &cli.ExitError{Code: 1}
	}
	if code := ledger.ExitCode(); code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// loadRunConfig loads the effective configuration: the explicit
// --config path, else wheelwright.yaml when present, else defaults.
func loadRunConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}

func applyOverrides(cfg *config.Config, opts runOptions) {
	if opts.packageName != "" {
		cfg.Package = opts.packageName
	}
	if opts.projectDir != "" {
		cfg.ProjectDir = opts.projectDir
	}
	if len(opts.versions) > 0 {
		cfg.Versions = opts.versions
	}
	if len(opts.experimental) > 0 {
		cfg.ExperimentalVersions = opts.experimental
	}
	if opts.experimentalThreshold != "" {
		cfg.ExperimentalThreshold = opts.experimentalThreshold
	}
	if opts.stopOnError {
		cfg.StopOnError = true
	}
	if opts.logDir != "" {
		cfg.LogDir = opts.logDir
	}
	if opts.archiveResults {
		cfg.Archive.Enabled = true
	}
}

// archiveResults bundles the results directory into the log directory
// as results-<stamp>.tar with the configured compression.
func archiveResults(cfg *config.Config, clk clock.Clock, logger *slog.Logger) error {
	compression, err := archive.ParseCompression(cfg.Archive.Compression)
	if err != nil {
		return err
	}

	resultsDir := cfg.ResolveDir(cfg.ResultsDir)
	if _, err := os.Stat(resultsDir); err != nil {
		return fmt.Errorf("results directory: %w", err)
	}

	stamp := clk.Now().UTC().Format("20060102-150405")
	dest := filepath.Join(cfg.ResolveDir(cfg.LogDir), "results-"+stamp+compression.Extension())
	return archive.Create(resultsDir, dest, compression, logger)
}
