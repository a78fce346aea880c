// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"math"
	"time"
)

// Success pairs a succeeded step name with its elapsed time.
type Success struct {
	Name     string
	Duration time.Duration
}

// Failure records a failed step: its name, the message of the error
// that failed it, and its elapsed time.
type Failure struct {
	Name     string
	Message  string
	Duration time.Duration
}

// Ledger accumulates step outcomes for one pipeline run. It is created
// empty by the driver, mutated only by the Executor, and read by the
// summary renderer after the run. The single-threaded execution model
// means no locking.
type Ledger struct {
	succeeded  []Success
	failed     []Failure
	softFailed []Failure
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) recordSuccess(name string, duration time.Duration) {
	l.succeeded = append(l.succeeded, Success{Name: name, Duration: duration})
}

func (l *Ledger) recordFailure(name string, err error, duration time.Duration) {
	l.failed = append(l.failed, Failure{Name: name, Message: err.Error(), Duration: duration})
}

func (l *Ledger) recordSoftFailure(name string, err error, duration time.Duration) {
	l.softFailed = append(l.softFailed, Failure{Name: name, Message: err.Error(), Duration: duration})
}

// Succeeded returns the names of succeeded steps in execution order.
func (l *Ledger) Succeeded() []string {
	names := make([]string, len(l.succeeded))
	for i, success := range l.succeeded {
		names[i] = success.Name
	}
	return names
}

// Failed returns hard failures in execution order.
func (l *Ledger) Failed() []Failure { return l.failed }

// SoftFailed returns soft failures in execution order.
func (l *Ledger) SoftFailed() []Failure { return l.softFailed }

// Total returns the number of executed steps.
func (l *Ledger) Total() int {
	return len(l.succeeded) + len(l.failed) + len(l.softFailed)
}

// SuccessRate returns succeeded/total as a percentage rounded to one
// decimal place, and 0 when no steps executed.
func (l *Ledger) SuccessRate() float64 {
	total := l.Total()
	if total == 0 {
		return 0
	}
	rate := float64(len(l.succeeded)) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// ExitCode returns 1 if any step hard-failed, else 0. Soft failures
// never change the exit code.
func (l *Ledger) ExitCode() int {
	if len(l.failed) > 0 {
		return 1
	}
	return 0
}
