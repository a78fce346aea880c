// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wheelwright-build/wheelwright/lib/clock"
	"github.com/wheelwright-build/wheelwright/lib/config"
	"github.com/wheelwright-build/wheelwright/lib/process"
	"github.com/wheelwright-build/wheelwright/lib/pyenv"
	"github.com/wheelwright-build/wheelwright/lib/pyver"
	"github.com/wheelwright-build/wheelwright/lib/step"
	"github.com/wheelwright-build/wheelwright/lib/wheel"
)

// Wheelhouse is the subdirectory of the dist directory that receives
// published wheels after the repair pass.
const Wheelhouse = "wheelhouse"

// Driver declares the pipeline's step sequence and runs it through a
// step executor.
type Driver struct {
	// Config is the validated run configuration.
	Config *config.Config

	// Envs creates and destroys the per-step virtual environments.
	Envs *pyenv.Manager

	// Runner executes external commands in the project directory with
	// output streamed to the run's combined log sink.
	Runner *process.Runner

	// Clock times the run for the result log. Defaults to the real
	// clock.
	Clock clock.Clock

	// Logger receives pipeline-level markers. Defaults to
	// slog.Default.
	Logger *slog.Logger

	name        string
	policy      pyver.Policy
	stripPolicy *wheel.Policy
}

// New builds a Driver from a validated configuration. The package name
// defaults to the project directory's base name. A configured strip
// policy file is loaded here so a malformed policy fails the run
// before any step executes.
func New(cfg *config.Config, envs *pyenv.Manager, runner *process.Runner) (*Driver, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	name := cfg.Package
	if name == "" {
		absolute, err := filepath.Abs(cfg.ProjectDir)
		if err != nil {
			return nil, fmt.Errorf("resolving project directory: %w", err)
		}
		name = filepath.Base(absolute)
	}

	var stripPolicy *wheel.Policy
	if cfg.Packaging.Strip.Enabled && cfg.Packaging.Strip.Policy != "" {
		stripPolicy, err = wheel.LoadPolicy(cfg.Packaging.Strip.Policy)
		if err != nil {
			return nil, err
		}
	}

	return &Driver{
		Config:      cfg,
		Envs:        envs,
		Runner:      runner,
		name:        name,
		policy:      policy,
		stripPolicy: stripPolicy,
	}, nil
}

// Name returns the package name the run reports under.
func (d *Driver) Name() string { return d.name }

func (d *Driver) clock() clock.Clock {
	if d.Clock == nil {
		return clock.Real()
	}
	return d.Clock
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Steps declares the run's steps in execution order: pre hooks, one
// test step per configured interpreter version, static analysis, sdist
// packaging, wheel packaging, the docs step when enabled, then post
// hooks.
func (d *Driver) Steps() []step.Step {
	var steps []step.Step
	for _, hook := range d.Config.Hooks.Pre {
		steps = append(steps, d.hookStep(hook))
	}
	for _, version := range d.Config.Versions {
		steps = append(steps, d.testStep(version))
	}
	steps = append(steps, d.analysisStep())
	steps = append(steps, d.sdistStep())
	steps = append(steps, d.wheelStep())
	if d.Config.Docs.Enabled {
		steps = append(steps, d.docsStep())
	}
	for _, hook := range d.Config.Hooks.Post {
		steps = append(steps, d.hookStep(hook))
	}
	return steps
}

// Run executes the declared steps through the executor and records the
// run outcome in the executor's result log. The ledger always reflects
// every step that executed, including on the abort path; the returned
// error is the *step.AbortError when a critical step aborted the run,
// nil otherwise.
func (d *Driver) Run(ctx context.Context, executor *step.Executor) (*step.Ledger, error) {
	if executor.Ledger == nil {
		executor.Ledger = step.NewLedger()
	}
	steps := d.Steps()

	d.logger().Info("pipeline starting", "package", d.name, "steps", len(steps))
	start := d.clock().Now()
	executor.Results.Start(d.name, len(steps), start)

	runErr := executor.Run(ctx, steps)
	duration := d.clock().Since(start)
	ledger := executor.Ledger

	var abort *step.AbortError
	if errors.As(runErr, &abort) {
		executor.Results.Aborted(abort.Step, abort.Err.Error(), duration)
		d.logger().Error("pipeline aborted",
			"package", d.name, "step", abort.Step, "duration", duration)
		return ledger, runErr
	}

	executor.Results.Complete(duration,
		len(ledger.Succeeded()), len(ledger.Failed()), len(ledger.SoftFailed()))
	d.logger().Info("pipeline complete",
		"package", d.name,
		"duration", duration,
		"succeeded", len(ledger.Succeeded()),
		"failed", len(ledger.Failed()),
		"soft_failed", len(ledger.SoftFailed()))
	return ledger, nil
}

// testStep runs the package's test suite under one interpreter
// version, in a fresh synced environment. Versions classified
// experimental are allowed to fail without affecting the exit code; a
// failed dependency sync counts as a failure of this same step.
func (d *Driver) testStep(version string) step.Step {
	return step.Step{
		Name:         "test-" + version,
		AllowFailure: d.policy.IsExperimental(version),
		Action: func(ctx context.Context) error {
			env, err := d.Envs.Create(ctx, version, "test")
			if err != nil {
				return err
			}
			defer d.teardown(env)

			if err := d.Envs.Sync(ctx, env, d.syncOptions()); err != nil {
				return err
			}
			return d.runTests(ctx, env)
		},
	}
}

// runTests invokes pytest with per-version report paths: the version
// string is embedded in every artifact name so matrix runs never
// overwrite each other's reports.
func (d *Driver) runTests(ctx context.Context, env *pyenv.Environment) error {
	resultsDir := d.Config.ResolveDir(d.Config.ResultsDir)
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	version := env.Version
	return d.envRunner(env).Run(ctx, d.Config.UV,
		"run", "--no-sync", "pytest",
		"--junitxml="+filepath.Join(resultsDir, "junit-"+version+".xml"),
		"--html="+filepath.Join(resultsDir, "report-"+version+".html"),
		"--self-contained-html",
		"--cov",
		"--cov-report=xml:"+filepath.Join(resultsDir, "coverage-"+version+".xml"),
		"--cov-report=html:"+filepath.Join(resultsDir, "htmlcov-"+version),
	)
}

// analysisStep runs the configured quality tools in a fresh
// environment. Each check is advisory: its failure is logged and the
// remaining checks still run. The step itself fails only when the
// environment cannot be created or synced.
func (d *Driver) analysisStep() step.Step {
	version := d.Config.Analysis.Version
	if version == "" {
		version = d.Config.Versions[0]
	}
	return step.Step{
		Name: "analysis",
		Action: func(ctx context.Context) error {
			env, err := d.Envs.Create(ctx, version, "analysis")
			if err != nil {
				return err
			}
			defer d.teardown(env)

			if err := d.Envs.Sync(ctx, env, d.syncOptions()); err != nil {
				return err
			}

			runner := d.envRunner(env)
			for _, check := range d.Config.Analysis.Checks {
				step.RunOptional(ctx, d.logger(), check.Name, func(ctx context.Context) error {
					return runner.Run(ctx, check.Command[0], check.Command[1:]...)
				})
			}
			return nil
		},
	}
}

// sdistStep builds the source distribution into the dist directory.
// Critical: without an sdist there is nothing to publish, so under
// stop-on-error policy a failure here aborts the run.
func (d *Driver) sdistStep() step.Step {
	version := d.packagingVersion()
	return step.Step{
		Name:     "package-sdist",
		Critical: true,
		Action: func(ctx context.Context) error {
			env, err := d.Envs.Create(ctx, version, "sdist")
			if err != nil {
				return err
			}
			defer d.teardown(env)

			if err := d.Envs.Sync(ctx, env, d.syncOptions()); err != nil {
				return err
			}

			distDir := d.Config.ResolveDir(d.Config.DistDir)
			if err := d.envRunner(env).Run(ctx, d.Config.UV,
				"build", "--sdist", "--out-dir", distDir); err != nil {
				return err
			}

			// The build tool exits zero even when filtering leaves the
			// archive empty of the package; an absent sdist means a
			// misconfigured build, not a publishable artifact.
			built, err := doublestar.FilepathGlob(filepath.Join(distDir, "*.tar.gz"))
			if err != nil {
				return fmt.Errorf("listing sdists: %w", err)
			}
			if len(built) == 0 {
				return fmt.Errorf("build produced no sdist in %s", distDir)
			}
			return nil
		},
	}
}

// wheelStep builds wheels, publishes them through the repair pass
// (platform wheels get their shared libraries bundled, pure wheels are
// copied), optionally strips sources, and writes the integrity
// manifest. Critical, like the sdist step.
func (d *Driver) wheelStep() step.Step {
	version := d.packagingVersion()
	return step.Step{
		Name:     "package-wheel",
		Critical: true,
		Action: func(ctx context.Context) error {
			env, err := d.Envs.Create(ctx, version, "wheel")
			if err != nil {
				return err
			}
			defer d.teardown(env)

			if err := d.Envs.Sync(ctx, env, d.syncOptions()); err != nil {
				return err
			}

			distDir := d.Config.ResolveDir(d.Config.DistDir)
			if err := d.envRunner(env).Run(ctx, d.Config.UV,
				"build", "--wheel", "--out-dir", distDir); err != nil {
				return err
			}

			repairer := &wheel.Repairer{
				Command: d.Config.Packaging.RepairCommand,
				Runner:  d.envRunner(env),
				Logger:  d.logger(),
			}
			wheelhouse := filepath.Join(distDir, Wheelhouse)
			published, err := repairer.Repair(ctx, distDir, wheelhouse)
			if err != nil {
				return err
			}

			if d.Config.Packaging.Strip.Enabled {
				for _, path := range published {
					if err := wheel.Strip(path, d.stripPolicy, d.logger()); err != nil {
						return err
					}
				}
			}

			if _, err := wheel.WriteManifest(wheelhouse); err != nil {
				return err
			}
			return nil
		},
	}
}

// docsStep builds the documentation in its own environment. Always
// advisory: broken docs are worth knowing about but never block a
// release.
func (d *Driver) docsStep() step.Step {
	version := d.packagingVersion()
	command := d.Config.Docs.Command
	return step.Step{
		Name:         "docs",
		AllowFailure: true,
		Action: func(ctx context.Context) error {
			env, err := d.Envs.Create(ctx, version, "docs")
			if err != nil {
				return err
			}
			defer d.teardown(env)

			if err := d.Envs.Sync(ctx, env, d.syncOptions()); err != nil {
				return err
			}
			return d.envRunner(env).Run(ctx, command[0], command[1:]...)
		},
	}
}

// hookStep wraps a configured hook script as a pipeline step. The
// script's ${NAME} references are expanded against the run's variables
// before the embedded interpreter parses it.
func (d *Driver) hookStep(hook config.Hook) step.Step {
	return step.Step{
		Name:         hook.Name,
		AllowFailure: hook.AllowFailure,
		Action: func(ctx context.Context) error {
			script, err := Expand(hook.Run, d.Variables())
			if err != nil {
				return fmt.Errorf("hook %q: %w", hook.Name, err)
			}

			timeout, err := hook.TimeoutDuration()
			if err != nil {
				return fmt.Errorf("hook %q: %w", hook.Name, err)
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return d.Runner.RunScript(ctx, hook.Name, script)
		},
	}
}

// packagingVersion returns the interpreter version for the packaging
// and docs environments: the configured one, or the first matrix
// version.
func (d *Driver) packagingVersion() string {
	if d.Config.Packaging.Version != "" {
		return d.Config.Packaging.Version
	}
	return d.Config.Versions[0]
}

func (d *Driver) syncOptions() pyenv.SyncOptions {
	return pyenv.SyncOptions{
		Locked:        d.Config.Sync.Locked,
		Dev:           d.Config.Sync.Dev,
		ExcludeExtras: d.Config.Sync.ExcludeExtras,
	}
}

// envRunner derives a runner whose uv invocations target the given
// environment instead of discovering one from the project layout.
func (d *Driver) envRunner(env *pyenv.Environment) *process.Runner {
	return d.Runner.WithEnv(
		"UV_PROJECT_ENVIRONMENT="+env.Dir,
		"VIRTUAL_ENV="+env.Dir,
	)
}

// teardown destroys a step's environment. Failures are logged, not
// propagated: the step outcome is decided by the step's own work, and
// Destroy is idempotent so a later run recovers any leftover
// directory.
func (d *Driver) teardown(env *pyenv.Environment) {
	if err := d.Envs.Destroy(env); err != nil {
		d.logger().Warn("environment teardown failed", "env", env.Name, "error", err)
	}
}
