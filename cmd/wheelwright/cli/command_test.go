// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "wheelwright",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "run",
				Run: func(args []string) error {
					called = "run"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"run"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "run" {
		t.Errorf("dispatched to %q, want %q", called, "run")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "wheelwright",
		Subcommands: []*Command{
			{
				Name: "wheel",
				Subcommands: []*Command{
					{
						Name: "strip",
						Run: func(args []string) error {
							called = "wheel strip"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"wheel", "strip", "demo.whl"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "wheel strip" {
		t.Errorf("dispatched to %q, want %q", called, "wheel strip")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "demo.whl" {
		t.Errorf("args = %v, want [demo.whl]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var configPath string
	var target string

	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "wheelwright.yaml", "config file")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--config", "custom.yaml", "positional"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if configPath != "custom.yaml" {
		t.Errorf("configPath = %q, want %q", configPath, "custom.yaml")
	}
	if target != "positional" {
		t.Errorf("target = %q, want %q", target, "positional")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.Bool("stop-on-error", false, "abort on critical failure")
			flagSet.String("config", "wheelwright.yaml", "config file")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--confg"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --config") {
		t.Errorf("error = %q, want suggestion for '--config'", errStr)
	}
	// Suggestion should be on the same line as the error, not buried.
	if !strings.Contains(errStr, "confg") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	// Should include a pointer to --help.
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.Bool("stop-on-error", false, "abort on critical failure")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "wheelwright",
		Subcommands: []*Command{
			{Name: "run"},
			{Name: "validate"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"validte"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"validate\"") {
		t.Errorf("error = %q, want suggestion for 'validate'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "wheelwright",
		Subcommands: []*Command{
			{Name: "run"},
			{Name: "validate"},
		},
	}

	err := root.Execute([]string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "wheelwright",
				Summary: "Python package build pipeline",
				Subcommands: []*Command{
					{Name: "run", Summary: "Run the pipeline"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "wheelwright",
		Subcommands: []*Command{
			{Name: "run", Summary: "Run the pipeline"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "wheelwright",
		Description: "Build, test, and package Python projects.",
		Subcommands: []*Command{
			{Name: "run", Summary: "Run the full pipeline"},
			{Name: "validate", Summary: "Validate a configuration file"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Run the pipeline for the current project",
				Command:     "wheelwright run",
			},
			{
				Description: "Validate a configuration without running anything",
				Command:     "wheelwright validate wheelwright.yaml",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	// Verify structural elements are present.
	for _, want := range []string{
		"Build, test, and package Python projects.",
		"Usage:",
		"wheelwright <command> [flags]",
		"Commands:",
		"run",
		"Run the full pipeline",
		"validate",
		"Validate a configuration file",
		"Examples:",
		"wheelwright run",
		"wheelwright validate wheelwright.yaml",
		"Run 'wheelwright <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "run",
		Summary: "Run the full pipeline",
		Usage:   "wheelwright run [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.String("config", "wheelwright.yaml", "configuration file")
			flagSet.Bool("stop-on-error", false, "abort on critical failure")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"wheelwright run [flags]",
		"Flags:",
		"config",
		"stop-on-error",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "wheelwright"}
	wheel := &Command{Name: "wheel", parent: root}
	strip := &Command{Name: "strip", parent: wheel}

	if got := root.fullName(); got != "wheelwright" {
		t.Errorf("root.fullName() = %q, want %q", got, "wheelwright")
	}
	if got := wheel.fullName(); got != "wheelwright wheel" {
		t.Errorf("wheel.fullName() = %q, want %q", got, "wheelwright wheel")
	}
	if got := strip.fullName(); got != "wheelwright wheel strip" {
		t.Errorf("strip.fullName() = %q, want %q", got, "wheelwright wheel strip")
	}
}
