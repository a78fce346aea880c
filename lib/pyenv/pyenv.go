// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package pyenv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wheelwright-build/wheelwright/lib/process"
)

// Manager creates, syncs, and destroys versioned virtual environments.
type Manager struct {
	root   string
	uv     string
	runner *process.Runner
	logger *slog.Logger
}

// Config holds configuration for creating a Manager.
type Config struct {
	// Root is the directory that holds all managed environments.
	Root string

	// UV is the uv executable to invoke. Defaults to "uv" on PATH.
	UV string

	// Runner executes uv commands. Its working directory should be the
	// project directory so uv can locate pyproject.toml and the lockfile.
	Runner *process.Runner

	// Logger for environment operations.
	Logger *slog.Logger
}

// Environment is a handle to one created virtual environment. Handles
// are returned by Create only after the environment fully exists; a
// failed creation never yields a handle.
type Environment struct {
	// Version is the Python version the environment was created for.
	Version string

	// Purpose distinguishes environments for the same version, for
	// example "test" versus "analysis" versus "package".
	Purpose string

	// Name uniquely identifies the environment under the manager root.
	Name string

	// Dir is the environment directory.
	Dir string
}

// Python returns the interpreter path inside the environment.
func (e *Environment) Python() string {
	return filepath.Join(e.Dir, "bin", "python")
}

// SyncOptions controls how dependencies are installed into an environment.
type SyncOptions struct {
	// Locked requires the lockfile to be up to date (uv sync --locked).
	Locked bool

	// Dev installs development dependency groups.
	Dev bool

	// ExcludeExtras lists optional dependency extras to skip.
	ExcludeExtras []string
}

// New creates a Manager rooted at config.Root.
func New(config Config) (*Manager, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("environment root is required")
	}
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving environment root: %w", err)
	}

	uv := config.UV
	if uv == "" {
		uv = "uv"
	}
	runner := config.Runner
	if runner == nil {
		runner = &process.Runner{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		root:   root,
		uv:     uv,
		runner: runner,
		logger: logger,
	}, nil
}

// Root returns the directory that holds all managed environments.
func (m *Manager) Root() string {
	return m.root
}

func (m *Manager) environmentName(version, purpose string) string {
	name := "py" + version
	if purpose != "" {
		name += "-" + purpose
	}
	return name
}

// Create builds a fresh virtual environment for a Python version. The
// purpose becomes part of the environment name so environments for the
// same version never collide across pipeline stages. Any leftover
// directory from an earlier run is removed first. If creation fails,
// the partially created directory is removed and a *CreationError is
// returned; the caller never observes a half-built environment.
func (m *Manager) Create(ctx context.Context, version, purpose string) (*Environment, error) {
	name := m.environmentName(version, purpose)
	dir := filepath.Join(m.root, name)

	if err := os.RemoveAll(dir); err != nil {
		return nil, &CreationError{Version: version, Err: err}
	}

	m.logger.Info("creating environment", "version", version, "name", name, "dir", dir)
	if err := m.runner.Run(ctx, m.uv, "venv", "--python", version, dir); err != nil {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			m.logger.Warn("removing partial environment",
				"dir", dir, "error", removeErr)
		}
		return nil, &CreationError{Version: version, Err: err}
	}

	return &Environment{
		Version: version,
		Purpose: purpose,
		Name:    name,
		Dir:     dir,
	}, nil
}

// Sync installs the project's dependencies into the environment. On
// failure the environment is left as the underlying tool left it and a
// *SyncError is returned; the caller decides whether to destroy it.
func (m *Manager) Sync(ctx context.Context, env *Environment, opts SyncOptions) error {
	args := []string{"sync"}
	if opts.Locked {
		args = append(args, "--locked")
	}
	if opts.Dev {
		args = append(args, "--dev")
	} else {
		args = append(args, "--no-dev")
	}
	for _, extra := range opts.ExcludeExtras {
		args = append(args, "--no-extra", extra)
	}

	m.logger.Info("syncing environment", "name", env.Name, "dir", env.Dir)
	runner := m.runner.WithEnv("UV_PROJECT_ENVIRONMENT=" + env.Dir)
	if err := runner.Run(ctx, m.uv, args...); err != nil {
		return &SyncError{Version: env.Version, Err: err}
	}
	return nil
}

// Destroy removes the environment behind a handle. It is idempotent and
// nil-safe: destroying a nil handle, or one whose directory is already
// gone, succeeds silently. This makes unconditional deferred cleanup
// safe on every exit path.
func (m *Manager) Destroy(env *Environment) error {
	if env == nil {
		return nil
	}
	if _, err := os.Stat(env.Dir); os.IsNotExist(err) {
		return nil
	}
	m.logger.Info("destroying environment", "name", env.Name, "dir", env.Dir)
	if err := os.RemoveAll(env.Dir); err != nil {
		return fmt.Errorf("destroying environment %s: %w", env.Name, err)
	}
	return nil
}

// CreationError reports a failed environment creation.
type CreationError struct {
	Version string
	Err     error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("creating environment for python %s: %v", e.Version, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// SyncError reports a failed dependency installation.
type SyncError struct {
	Version string
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("syncing environment for python %s: %v", e.Version, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
