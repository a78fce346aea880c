// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"context"
	"fmt"
	"log/slog"
)

// Action is the work a step performs. It either completes or returns
// the error that caused it to fail.
type Action func(ctx context.Context) error

// Step is one named unit of pipeline work with a failure policy.
type Step struct {
	// Name identifies the step, unique within one run.
	Name string

	// Critical marks a step whose hard failure aborts the rest of the
	// run when the executor's stop-on-error policy is set.
	Critical bool

	// AllowFailure downgrades a failure to a soft failure: recorded
	// and logged, but never part of the exit code decision.
	AllowFailure bool

	// Action performs the step's work.
	Action Action
}

// AbortError terminates a run after a critical step hard-fails under
// stop-on-error policy. It is the only error that escapes the executor;
// deferred environment cleanup still runs on the way out.
type AbortError struct {
	Step string
	Err  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("pipeline aborted at step %q: %v", e.Step, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// RunOptional invokes an advisory action. A failure is logged with the
// sub-check's name and swallowed, regardless of any step or pipeline
// policy. Used for the individually-optional sub-checks inside the
// static analysis step. Returns whether the action succeeded.
func RunOptional(ctx context.Context, logger *slog.Logger, name string, action Action) bool {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("check starting", "check", name)
	if err := action(ctx); err != nil {
		logger.Warn("check failed", "check", name, "error", err)
		return false
	}
	logger.Info("check passed", "check", name)
	return true
}
