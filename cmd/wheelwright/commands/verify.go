// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/pipeline"
	"github.com/wheelwright-build/wheelwright/lib/wheel"
)

// verifyCommand returns the "verify" subcommand for checking published
// artifacts against their integrity manifest.
func verifyCommand() *cli.Command {
	var configPath string
	return &cli.Command{
		Name:    "verify",
		Summary: "Verify published artifacts against their manifest",
		Description: `Re-hash every artifact in a published directory and compare against
its ` + wheel.ManifestName + `. Reports hash and size mismatches, files the
manifest lists that are missing on disk, and files on disk the
manifest does not list. Every finding is reported, not just the
first.

Without a directory argument, the configured dist directory's
` + pipeline.Wheelhouse + ` subdirectory is checked.`,
		Usage: "wheelwright verify [dir]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "configuration file (default: "+defaultConfigPath+" if present)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Verify the published wheelhouse",
				Command:     "wheelwright verify dist/wheelhouse",
			},
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: wheelwright verify [dir]")
			}

			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := loadRunConfig(configPath)
				if err != nil {
					return err
				}
				dir = filepath.Join(cfg.ResolveDir(cfg.DistDir), pipeline.Wheelhouse)
			}

			err := wheel.VerifyManifest(dir)
			if err == nil {
				fmt.Fprintf(os.Stdout, "%s: %d artifact(s) verified\n", dir, countManifestEntries(dir))
				return nil
			}

			findings := strings.Split(err.Error(), "\n")
			for _, finding := range findings {
				fmt.Fprintf(os.Stderr, "  - %s\n", finding)
			}
			fmt.Fprintf(os.Stderr, "%s: %d integrity issue(s) found\n", dir, len(findings))
			return &cli.ExitError{Code: 1}
		},
	}
}

// countManifestEntries counts the non-empty lines of the manifest, for
// the success message. Failures read as zero; the verification itself
// already passed.
func countManifestEntries(dir string) int {
	data, err := os.ReadFile(filepath.Join(dir, wheel.ManifestName))
	if err != nil {
		return 0
	}
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
