// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"context"
	"log/slog"

	"github.com/wheelwright-build/wheelwright/lib/clock"
	"github.com/wheelwright-build/wheelwright/lib/runlog"
)

// Executor runs steps sequentially, classifies their outcomes into the
// ledger, and reports each outcome to the result log.
type Executor struct {
	// StopOnError aborts the run when a critical step hard-fails.
	StopOnError bool

	// Ledger receives one record per executed step. Created lazily if
	// nil, but normally owned by the driver so the summary can read it
	// after an abort.
	Ledger *Ledger

	// Results is the machine-readable result log. Optional; its
	// methods are nil-safe.
	Results *runlog.ResultLog

	// Clock for step timing. Defaults to the real clock.
	Clock clock.Clock

	// Logger for the start/success/failure markers. Defaults to
	// slog.Default.
	Logger *slog.Logger

	executed int
}

func (e *Executor) clock() clock.Clock {
	if e.Clock == nil {
		e.Clock = clock.Real()
	}
	return e.Clock
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Executor) ledger() *Ledger {
	if e.Ledger == nil {
		e.Ledger = NewLedger()
	}
	return e.Ledger
}

// Execute runs one step and records its outcome. It returns whether the
// step succeeded. The returned error is non-nil only for an *AbortError
// from a critical hard failure under stop-on-error policy; every other
// failure is absorbed into the ledger and execution may continue.
func (e *Executor) Execute(ctx context.Context, s Step) (bool, error) {
	e.executed++
	index := e.executed
	logger := e.logger().With("step", s.Name)

	logger.Info("step starting", "index", index)
	start := e.clock().Now()
	err := s.Action(ctx)
	duration := e.clock().Since(start)

	if err == nil {
		e.ledger().recordSuccess(s.Name, duration)
		e.Results.Step(index, s.Name, runlog.StatusOK, duration, "")
		logger.Info("step succeeded", "duration", duration)
		return true, nil
	}

	if s.AllowFailure {
		e.ledger().recordSoftFailure(s.Name, err, duration)
		e.Results.Step(index, s.Name, runlog.StatusSoftFailed, duration, err.Error())
		logger.Warn("step soft-failed", "duration", duration, "error", err)
		return false, nil
	}

	e.ledger().recordFailure(s.Name, err, duration)
	e.Results.Step(index, s.Name, runlog.StatusFailed, duration, err.Error())
	logger.Error("step failed", "duration", duration, "error", err)

	if s.Critical && e.StopOnError {
		return false, &AbortError{Step: s.Name, Err: err}
	}
	return false, nil
}

// Run executes steps in order. It stops early only when a step aborts
// the run, returning the *AbortError; steps after the aborted one are
// never executed and never appear in the ledger.
func (e *Executor) Run(ctx context.Context, steps []Step) error {
	for _, s := range steps {
		if _, err := e.Execute(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
