// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for wheelwright runs.
//
// Configuration comes from a single YAML file (wheelwright.yaml by
// convention) layered over [Default]. Command-line flags override file
// values; the file overrides defaults. There is no automatic discovery
// beyond the conventional file name: an explicitly passed path that
// does not exist is an error, never silently skipped.
//
// A .env file next to the config file is loaded into the process
// environment before ${VAR} expansion, so machine-local settings
// (cache locations, index URLs) can stay out of the committed config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wheelwright-build/wheelwright/lib/process"
	"github.com/wheelwright-build/wheelwright/lib/pyver"
)

// Config describes one pipeline run: the package under build, the
// interpreter matrix, failure policy, and the directories the run
// writes to.
type Config struct {
	// Package is the distribution name, used in summaries and the
	// result log. Empty means the run command derives it from the
	// project directory name.
	Package string `yaml:"package"`

	// ProjectDir is the directory containing pyproject.toml. Relative
	// config paths resolve against it.
	ProjectDir string `yaml:"project_dir"`

	// UV is the uv executable used for environment management, builds,
	// and tool invocations. Defaults to "uv" resolved from PATH.
	UV string `yaml:"uv"`

	// Versions is the interpreter test matrix, executed in order.
	Versions []string `yaml:"versions"`

	// ExperimentalVersions lists matrix entries whose failures are
	// tolerated, matched by exact string.
	ExperimentalVersions []string `yaml:"experimental_versions"`

	// ExperimentalThreshold additionally tolerates any version that
	// parses greater-or-equal to it. Empty disables the threshold
	// rule.
	ExperimentalThreshold string `yaml:"experimental_threshold"`

	// StopOnError aborts the run when a critical step hard-fails.
	StopOnError bool `yaml:"stop_on_error"`

	// LogDir receives the per-run text and JSONL logs.
	LogDir string `yaml:"log_dir"`

	// ResultsDir receives per-version test and coverage reports.
	ResultsDir string `yaml:"results_dir"`

	// DistDir receives built artifacts.
	DistDir string `yaml:"dist_dir"`

	// EnvRoot is where per-step virtual environments are created.
	EnvRoot string `yaml:"env_root"`

	// Sync configures dependency installation into each environment.
	Sync SyncConfig `yaml:"sync"`

	// Analysis configures the static-analysis step.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Packaging configures artifact builds and post-processing.
	Packaging PackagingConfig `yaml:"packaging"`

	// Hooks declares extra shell steps around the fixed sequence.
	Hooks HooksConfig `yaml:"hooks"`

	// Archive configures the optional results bundle.
	Archive ArchiveConfig `yaml:"archive"`

	// Docs configures the optional documentation step.
	Docs DocsConfig `yaml:"docs"`
}

// SyncConfig controls how dependencies are installed into an
// environment.
type SyncConfig struct {
	// Locked installs exactly the locked dependency versions.
	Locked bool `yaml:"locked"`

	// Dev includes development dependency groups.
	Dev bool `yaml:"dev"`

	// ExcludeExtras names optional dependency components to skip.
	ExcludeExtras []string `yaml:"exclude_extras"`
}

// AnalysisConfig configures the static-analysis step.
type AnalysisConfig struct {
	// Version is the interpreter for the analysis environment. Empty
	// means the first matrix version.
	Version string `yaml:"version"`

	// Checks run in order inside the analysis environment. Each is
	// independently advisory: a failing check is logged and the next
	// one still runs.
	Checks []Check `yaml:"checks"`
}

// Check is one advisory sub-check of the static-analysis step.
type Check struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

// PackagingConfig configures the two packaging steps.
type PackagingConfig struct {
	// Version is the interpreter for the packaging environment. Empty
	// means the first matrix version.
	Version string `yaml:"version"`

	// RepairCommand is the tool invocation for platform-specific
	// wheel repair. The repair pass appends --wheel-dir <dir> and the
	// wheel path.
	RepairCommand []string `yaml:"repair_command"`

	// Strip configures source stripping of built wheels.
	Strip StripConfig `yaml:"strip"`
}

// StripConfig controls source stripping of built wheels.
type StripConfig struct {
	// Enabled turns on stripping during the binary packaging step.
	Enabled bool `yaml:"enabled"`

	// Policy is an optional JSONC file overriding the default
	// excluded-suffix list.
	Policy string `yaml:"policy"`
}

// HooksConfig declares extra steps: pre hooks run before the test
// matrix, post hooks after packaging.
type HooksConfig struct {
	Pre  []Hook `yaml:"pre"`
	Post []Hook `yaml:"post"`
}

// Hook is a named POSIX shell script run as its own pipeline step.
type Hook struct {
	Name string `yaml:"name"`

	// Run is the script body, executed with the embedded interpreter.
	Run string `yaml:"run"`

	// AllowFailure records a failure as soft instead of hard.
	AllowFailure bool `yaml:"allow_failure"`

	// Timeout bounds the script's execution, e.g. "2m". Empty means
	// no hook-level timeout.
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration parses the hook's timeout. Zero with nil error when
// no timeout is set.
func (h Hook) TimeoutDuration() (time.Duration, error) {
	if h.Timeout == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", h.Timeout, err)
	}
	return parsed, nil
}

// ArchiveConfig configures the optional results bundle.
type ArchiveConfig struct {
	// Enabled bundles the results directory after the run.
	Enabled bool `yaml:"enabled"`

	// Compression is one of none, gzip, zstd, lz4.
	Compression string `yaml:"compression"`
}

// DocsConfig configures the optional documentation step. The step is
// always advisory: a docs failure never affects the exit code.
type DocsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"`
}

// Default returns the default configuration. These defaults make a
// flags-only invocation work against a conventional uv project layout;
// the config file overrides them.
func Default() *Config {
	return &Config{
		ProjectDir: ".",
		UV:         "uv",
		Versions:   []string{"3.13"},
		LogDir:     "logs",
		ResultsDir: "results",
		DistDir:    "dist",
		EnvRoot:    filepath.Join(".wheelwright", "envs"),
		Sync: SyncConfig{
			Locked: true,
			Dev:    true,
		},
		Analysis: AnalysisConfig{
			Checks: []Check{
				{Name: "format", Command: []string{"uv", "run", "ruff", "format", "--check", "."}},
				{Name: "lint", Command: []string{"uv", "run", "ruff", "check", "."}},
				{Name: "types", Command: []string{"uv", "run", "mypy", "."}},
				{Name: "security", Command: []string{"uv", "run", "bandit", "-r", "src"}},
			},
		},
		Packaging: PackagingConfig{
			RepairCommand: []string{"uv", "run", "auditwheel", "repair"},
		},
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
		Docs: DocsConfig{
			Command: []string{"uv", "run", "sphinx-build", "-b", "html", "docs/source", "docs/build"},
		},
	}
}

// Load reads configuration from path, layering the file over
// [Default]. A .env file in the same directory is loaded into the
// process environment first, then ${VAR} and ${VAR:-default} patterns
// in path fields are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Machine-local environment next to the config file. Missing is
	// fine; a malformed file is not.
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, statErr := os.Stat(envPath); statErr == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields. PROJECT_DIR expands to the configured project directory so
// derived paths can reference it.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"PROJECT_DIR": c.ProjectDir,
		"HOME":        os.Getenv("HOME"),
	}

	c.ProjectDir = expandVars(c.ProjectDir, vars)
	vars["PROJECT_DIR"] = c.ProjectDir // Update for dependent paths.

	c.LogDir = expandVars(c.LogDir, vars)
	c.ResultsDir = expandVars(c.ResultsDir, vars)
	c.DistDir = expandVars(c.DistDir, vars)
	c.EnvRoot = expandVars(c.EnvRoot, vars)
	c.Packaging.Strip.Policy = expandVars(c.Packaging.Strip.Policy, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// ResolveDir resolves a configured directory against the project
// directory. Absolute paths pass through unchanged.
func (c *Config) ResolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ProjectDir, dir)
}

// Policy builds the experimental-version policy from the configured
// set and threshold.
func (c *Config) Policy() (pyver.Policy, error) {
	return pyver.NewPolicy(c.ExperimentalVersions, c.ExperimentalThreshold)
}

// Validate checks the configuration for errors, collecting every
// problem rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.ProjectDir == "" {
		errs = append(errs, fmt.Errorf("project_dir is required"))
	}
	if c.UV == "" {
		errs = append(errs, fmt.Errorf("uv executable is required"))
	}
	if len(c.Versions) == 0 {
		errs = append(errs, fmt.Errorf("versions must list at least one interpreter"))
	}
	seen := make(map[string]bool, len(c.Versions))
	for _, version := range c.Versions {
		if version == "" {
			errs = append(errs, fmt.Errorf("versions must not contain empty entries"))
			continue
		}
		if seen[version] {
			errs = append(errs, fmt.Errorf("version %q listed more than once", version))
		}
		seen[version] = true
	}

	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}

	if c.LogDir == "" {
		errs = append(errs, fmt.Errorf("log_dir is required"))
	}
	if c.ResultsDir == "" {
		errs = append(errs, fmt.Errorf("results_dir is required"))
	}
	if c.DistDir == "" {
		errs = append(errs, fmt.Errorf("dist_dir is required"))
	}
	if c.EnvRoot == "" {
		errs = append(errs, fmt.Errorf("env_root is required"))
	}

	if c.Analysis.Version != "" && !seen[c.Analysis.Version] {
		errs = append(errs, fmt.Errorf("analysis.version %q is not in the version matrix", c.Analysis.Version))
	}
	checkNames := make(map[string]bool, len(c.Analysis.Checks))
	for i, check := range c.Analysis.Checks {
		if check.Name == "" {
			errs = append(errs, fmt.Errorf("analysis.checks[%d]: name is required", i))
		} else if checkNames[check.Name] {
			errs = append(errs, fmt.Errorf("analysis check %q declared more than once", check.Name))
		}
		checkNames[check.Name] = true
		if len(check.Command) == 0 {
			errs = append(errs, fmt.Errorf("analysis check %q: command is required", check.Name))
		}
	}

	if c.Packaging.Version != "" && !seen[c.Packaging.Version] {
		errs = append(errs, fmt.Errorf("packaging.version %q is not in the version matrix", c.Packaging.Version))
	}
	if len(c.Packaging.RepairCommand) == 0 {
		errs = append(errs, fmt.Errorf("packaging.repair_command is required"))
	}

	errs = append(errs, validateHooks("hooks.pre", c.Hooks.Pre)...)
	errs = append(errs, validateHooks("hooks.post", c.Hooks.Post)...)

	if !slices.Contains([]string{"none", "gzip", "zstd", "lz4"}, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of none, gzip, zstd, lz4; got %q", c.Archive.Compression))
	}

	if c.Docs.Enabled && len(c.Docs.Command) == 0 {
		errs = append(errs, fmt.Errorf("docs.command is required when docs.enabled is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validateHooks checks one hook list: names present and unique,
// scripts syntactically valid, timeouts parseable.
func validateHooks(section string, hooks []Hook) []error {
	var errs []error
	names := make(map[string]bool, len(hooks))
	for i, hook := range hooks {
		if hook.Name == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", section, i))
		} else if names[hook.Name] {
			errs = append(errs, fmt.Errorf("%s: hook %q declared more than once", section, hook.Name))
		}
		names[hook.Name] = true

		if hook.Run == "" {
			errs = append(errs, fmt.Errorf("%s hook %q: run is required", section, hook.Name))
		} else if err := process.CheckScript(hook.Name, hook.Run); err != nil {
			errs = append(errs, fmt.Errorf("%s hook: %w", section, err))
		}

		if _, err := hook.TimeoutDuration(); err != nil {
			errs = append(errs, fmt.Errorf("%s hook %q: %w", section, hook.Name, err))
		}
	}
	return errs
}
