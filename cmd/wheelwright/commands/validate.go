// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/config"
)

// validateCommand returns the "validate" subcommand for checking
// configuration files.
func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Summary: "Validate a configuration file",
		Description: `Validate a wheelwright configuration file. Checks that the YAML is
well-formed and that the configuration is runnable: at least one
interpreter version, no duplicate versions or check names, hook
scripts that parse, timeouts and compression choices that parse, and
referenced versions (analysis.version, packaging.version) present in
the matrix.

Does not touch the project; this is a purely local check. Every
issue is reported, not just the first.`,
		Usage: "wheelwright validate [file]",
		Examples: []cli.Example{
			{
				Description: "Validate the project's configuration",
				Command:     "wheelwright validate wheelwright.yaml",
			},
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: wheelwright validate [file]")
			}
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				issues := strings.Split(err.Error(), "\n")
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
				return fmt.Errorf("%s: %d validation issue(s) found", path, len(issues))
			}

			fmt.Fprintf(os.Stdout, "%s: valid\n", path)
			return nil
		},
	}
}
