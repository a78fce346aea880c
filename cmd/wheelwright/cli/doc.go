// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the wheelwright
// CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// the commands package and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// Commands whose non-zero exit is an outcome rather than an error (a
// pipeline run with failed steps, a manifest that fails verification)
// return [*ExitError]; the main function exits with its code without
// printing a redundant error line.
package cli
