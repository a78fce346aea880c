// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunScript executes a POSIX shell script with the embedded
// interpreter. The script runs in the runner's working directory with
// the runner's environment, and its output streams to the runner's
// sinks. The name identifies the script in errors and is what a
// resulting *CommandError carries as its Command.
//
// Running scripts in-process keeps hook behavior independent of the
// host's /bin/sh and works in minimal containers that carry no shell
// at all.
func (r *Runner) RunScript(ctx context.Context, name, script string) error {
	parsed, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return fmt.Errorf("parsing script %q: %w", name, err)
	}

	environ := append(os.Environ(), r.Env...)
	shell, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, r.stdout(), r.stderr()),
	)
	if err != nil {
		return fmt.Errorf("creating interpreter for script %q: %w", name, err)
	}

	r.logger().Debug("running script", "script", name, "dir", r.Dir)

	if err := shell.Run(ctx, parsed); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &CommandError{Command: name, Code: int(status)}
		}
		return fmt.Errorf("script %q: %w", name, err)
	}
	return nil
}

// CheckScript parses a script without executing it, returning syntax
// errors. Used by config validation so malformed hooks are reported
// before a run starts instead of failing mid-pipeline.
func CheckScript(name, script string) error {
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), name); err != nil {
		return fmt.Errorf("script %q: %w", name, err)
	}
	return nil
}
