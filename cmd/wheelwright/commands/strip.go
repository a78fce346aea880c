// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/wheel"
)

// stripCommand returns the "strip" subcommand: the source-strip
// rewrite of the packaging step, runnable on its own against built
// wheels.
func stripCommand() *cli.Command {
	var policyPath string
	return &cli.Command{
		Name:    "strip",
		Summary: "Strip source files from built wheels",
		Description: `Rewrite wheels in place without their source files (.py, .pyc, .pyo,
.c, .h, .pxd, .pyi by default), leaving only compiled extension
modules and package metadata. The dist-info RECORD is rebuilt over
the surviving entries; signature entries are dropped because the
rewrite invalidates them.

The rewrite is deterministic: stripping the same wheel twice yields
byte-identical output. A JSONC policy file (--policy) can extend the
exclusion list or force-keep entries.`,
		Usage: "wheelwright strip <wheel>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("strip", pflag.ContinueOnError)
			flagSet.StringVar(&policyPath, "policy", "", "JSONC strip-policy file")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Strip every published wheel",
				Command:     "wheelwright strip dist/wheelhouse/*.whl",
			},
			{
				Description: "Strip with a project policy",
				Command:     "wheelwright strip --policy strip-policy.jsonc dist/wheelhouse/*.whl",
			},
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: wheelwright strip <wheel>...")
			}

			var policy *wheel.Policy
			if policyPath != "" {
				loaded, err := wheel.LoadPolicy(policyPath)
				if err != nil {
					return err
				}
				policy = loaded
			}

			// Expand glob patterns ourselves so invocations from
			// environments without shell expansion (CI YAML, Windows)
			// behave the same.
			var wheels []string
			for _, arg := range args {
				matches, err := doublestar.FilepathGlob(arg)
				if err != nil {
					return fmt.Errorf("bad pattern %q: %w", arg, err)
				}
				if len(matches) == 0 {
					return fmt.Errorf("no wheels match %q", arg)
				}
				wheels = append(wheels, matches...)
			}

			logger := cli.NewCommandLogger().With("command", "strip")
			for _, path := range wheels {
				if err := wheel.Strip(path, policy, logger); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
