// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete wheelwright CLI command tree.
package commands

import (
	"fmt"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/version"
)

// Root builds and returns the complete wheelwright CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "wheelwright",
		Description: `Wheelwright: build, test, and package Python projects.

Runs a fixed pipeline against per-step isolated virtual environments:
dependency sync, the test matrix across interpreter versions, static
analysis, sdist and wheel packaging with binary repair. Every step's
outcome lands in a summary; hard failures make the exit code non-zero.`,
		Subcommands: []*cli.Command{
			runCommand(),
			validateCommand(),
			repairCommand(),
			stripCommand(),
			verifyCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("wheelwright %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run the pipeline for the project in the current directory",
				Command:     "wheelwright run",
			},
			{
				Description: "Run with an explicit config and abort on the first critical failure",
				Command:     "wheelwright run --config ci/wheelwright.yaml --stop-on-error",
			},
			{
				Description: "Check a configuration file without running anything",
				Command:     "wheelwright validate ci/wheelwright.yaml",
			},
			{
				Description: "Re-run binary repair over an existing dist directory",
				Command:     "wheelwright repair dist",
			},
			{
				Description: "Strip source files from built wheels",
				Command:     "wheelwright strip dist/wheelhouse/*.whl",
			},
			{
				Description: "Verify published wheels against the integrity manifest",
				Command:     "wheelwright verify dist/wheelhouse",
			},
		},
	}
}
