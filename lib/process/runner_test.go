// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	if err := runner.Run(context.Background(), "true"); err != nil {
		t.Fatalf("Run(true): %v", err)
	}
}

func TestRunExitCode(t *testing.T) {
	t.Parallel()

	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err := runner.Run(context.Background(), "sh", "-c", "exit 7")
	if err == nil {
		t.Fatal("Run should fail for non-zero exit")
	}

	var commandError *CommandError
	if !errors.As(err, &commandError) {
		t.Fatalf("error is %T, want *CommandError", err)
	}
	if commandError.Code != 7 {
		t.Errorf("Code = %d, want 7", commandError.Code)
	}
	if !strings.Contains(commandError.Command, "sh -c") {
		t.Errorf("Command = %q, want it to contain the rendered command line", commandError.Command)
	}
}

func TestRunStreamsOutput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	runner := &Runner{Stdout: &stdout, Stderr: &stderr}

	err := runner.Run(context.Background(), "sh", "-c", "echo to-stdout; echo to-stderr >&2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := stdout.String(); got != "to-stdout\n" {
		t.Errorf("stdout = %q, want %q", got, "to-stdout\n")
	}
	if got := stderr.String(); got != "to-stderr\n" {
		t.Errorf("stderr = %q, want %q", got, "to-stderr\n")
	}
}

func TestRunExtraEnv(t *testing.T) {
	t.Parallel()

	base := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	runner := base.WithEnv("WHEELWRIGHT_PROBE=yes")

	err := runner.Run(context.Background(), "sh", "-c", `test "$WHEELWRIGHT_PROBE" = yes`)
	if err != nil {
		t.Fatalf("environment variable not visible to command: %v", err)
	}

	// The derived runner must not mutate the base.
	if len(base.Env) != 0 {
		t.Errorf("WithEnv mutated the receiver: %v", base.Env)
	}
}

func TestRunDir(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "marker"), nil, 0o644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}

	runner := (&Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}).WithDir(directory)
	if err := runner.Run(context.Background(), "test", "-f", "marker"); err != nil {
		t.Fatalf("command did not run in %s: %v", directory, err)
	}
}

func TestRunMissingExecutable(t *testing.T) {
	t.Parallel()

	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err := runner.Run(context.Background(), "wheelwright-no-such-binary")
	if err == nil {
		t.Fatal("Run should fail for a missing executable")
	}

	var commandError *CommandError
	if errors.As(err, &commandError) {
		t.Errorf("missing executable should not produce *CommandError, got %v", commandError)
	}
}

func TestRunCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err := runner.Run(ctx, "sleep", "30")
	if err == nil {
		t.Fatal("Run should fail when the context expires")
	}

	// Cancellation is not a tool failure: no *CommandError.
	var commandError *CommandError
	if errors.As(err, &commandError) {
		t.Errorf("cancellation should not produce *CommandError, got %v", commandError)
	}
}

func TestRenderCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "uv", args: []string{"sync", "--locked"}, want: "uv sync --locked"},
		{name: "sh", args: []string{"-c", "echo hi"}, want: `sh -c "echo hi"`},
		{name: "true", args: nil, want: "true"},
	}
	for _, test := range tests {
		if got := renderCommand(test.name, test.args); got != test.want {
			t.Errorf("renderCommand(%q, %v) = %q, want %q", test.name, test.args, got, test.want)
		}
	}
}
