// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/pipeline"
	"github.com/wheelwright-build/wheelwright/lib/process"
	"github.com/wheelwright-build/wheelwright/lib/wheel"
)

// repairCommand returns the "repair" subcommand: the binary
// post-processing pass of the packaging step, runnable on its own
// against an existing dist directory.
func repairCommand() *cli.Command {
	var (
		configPath string
		outputDir  string
	)
	return &cli.Command{
		Name:    "repair",
		Summary: "Repair built wheels in a dist directory",
		Description: `Run only the wheel post-processing pass over an existing dist
directory: platform wheels are fed through the configured repair tool
(which bundles their shared-library dependencies and retags them),
pure wheels are copied unchanged, and the integrity manifest is
rewritten over the published set.

The repair tool comes from packaging.repair_command in the
configuration. Given a deterministic repair tool, repairing the same
input twice produces byte-identical output, manifest included.`,
		Usage: "wheelwright repair [dist-dir]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("repair", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "configuration file (default: "+defaultConfigPath+" if present)")
			flagSet.StringVar(&outputDir, "output", "", "directory for published wheels (default: <dist-dir>/"+pipeline.Wheelhouse+")")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Repair wheels built by an earlier run",
				Command:     "wheelwright repair dist",
			},
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: wheelwright repair [dist-dir]")
			}

			cfg, err := loadRunConfig(configPath)
			if err != nil {
				return err
			}

			distDir := cfg.ResolveDir(cfg.DistDir)
			if len(args) == 1 {
				distDir = args[0]
			}
			if outputDir == "" {
				outputDir = filepath.Join(distDir, pipeline.Wheelhouse)
			}

			logger := cli.NewCommandLogger().With("command", "repair")
			repairer := &wheel.Repairer{
				Command: cfg.Packaging.RepairCommand,
				Runner:  &process.Runner{Dir: cfg.ProjectDir, Logger: logger},
				Logger:  logger,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			published, err := repairer.Repair(ctx, distDir, outputDir)
			if err != nil {
				return err
			}
			if _, err := wheel.WriteManifest(outputDir); err != nil {
				return err
			}

			for _, path := range published {
				fmt.Fprintln(os.Stdout, path)
			}
			return nil
		},
	}
}
