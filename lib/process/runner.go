// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/wheelwright-build/wheelwright/lib/clock"
)

// CommandError reports that an external command ran to completion but
// exited non-zero. This is the single point where "a tool failed"
// becomes a typed failure the step engine can classify.
type CommandError struct {
	// Command is the rendered command line (or hook script name).
	Command string

	// Code is the process exit code.
	Code int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
}

// Runner executes external commands with output streamed to the
// pipeline's combined log sink. The zero value runs commands in the
// current directory with the ambient environment, writing to the
// process's stdout and stderr.
type Runner struct {
	// Dir is the working directory for commands. Empty means the
	// current directory.
	Dir string

	// Env holds extra NAME=VALUE pairs appended to the ambient
	// environment for every command.
	Env []string

	// Stdout and Stderr receive the command's output streams. Nil
	// defaults to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// GracePeriod is the SIGTERM-to-SIGKILL escalation window applied
	// when a command is cancelled. Zero means immediate SIGKILL.
	GracePeriod time.Duration

	// Clock drives the escalation sleep. Nil means the real clock.
	Clock clock.Clock

	// Logger traces command invocations at debug level. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// WithEnv returns a copy of the runner with additional environment
// variables appended. The receiver is not modified.
func (r *Runner) WithEnv(pairs ...string) *Runner {
	derived := *r
	derived.Env = append(slices.Clone(r.Env), pairs...)
	return &derived
}

// WithDir returns a copy of the runner with a different working
// directory. The receiver is not modified.
func (r *Runner) WithDir(dir string) *Runner {
	derived := *r
	derived.Dir = dir
	return &derived
}

// Run executes the command and blocks until it completes. Output
// streams to the runner's sinks as it is produced. A non-zero exit
// returns a *CommandError; all other failures (missing executable,
// signal, context cancellation) return a wrapped error.
//
// The command runs in its own process group so that cancellation
// kills the command and all its children. Without Setpgid, only the
// direct child receives the signal; grandchildren survive and hold
// open the inherited output file descriptors, blocking the parent
// from exiting until they finish.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	rendered := renderCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = r.cancelFunc(cmd)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	r.logger().Debug("running command", "command", rendered, "dir", r.Dir)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	// A cancelled context kills the process, and the kill surfaces as
	// an ExitError (signal: killed). Check the context first so the
	// cancellation is not misclassified as a tool failure.
	if ctx.Err() != nil {
		return fmt.Errorf("running %q: %w", rendered, ctx.Err())
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return &CommandError{Command: rendered, Code: exitError.ExitCode()}
	}
	return fmt.Errorf("running %q: %w", rendered, err)
}

// cancelFunc builds the cmd.Cancel hook. With a zero grace period the
// whole process group receives SIGKILL immediately. With a positive
// grace period the group receives SIGTERM first, and a background
// goroutine escalates to SIGKILL if the command has not exited in
// time. The signals target the process group (negative PID) so
// children spawned by the command are also terminated.
func (r *Runner) cancelFunc(cmd *exec.Cmd) func() error {
	if r.GracePeriod <= 0 {
		return func() error {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
	}
	return func() error {
		processGroupID := -cmd.Process.Pid
		if err := syscall.Kill(processGroupID, syscall.SIGTERM); err != nil {
			// SIGTERM failed (process group already gone), escalate.
			return syscall.Kill(processGroupID, syscall.SIGKILL)
		}
		go func() {
			r.clock().Sleep(r.GracePeriod)
			// Best-effort: ESRCH from a dead process group is harmless.
			_ = syscall.Kill(processGroupID, syscall.SIGKILL)
		}()
		return nil
	}
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func (r *Runner) clock() clock.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clock.Real()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// renderCommand joins the executable and arguments for error messages
// and debug traces. Arguments containing whitespace are quoted so the
// rendering is unambiguous.
func renderCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t\n") {
			parts = append(parts, fmt.Sprintf("%q", arg))
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}
