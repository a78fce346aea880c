// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package runlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Per-step statuses recorded in the result log. Steps that are never
// reached (after an abort) get no line at all.
const (
	StatusOK         = "ok"
	StatusFailed     = "failed"
	StatusSoftFailed = "soft-failed"
)

// ResultLog writes structured JSONL during pipeline execution. Each
// line is an independent JSON object.
//
// All methods are nil-safe: when the receiver is nil, they are no-ops.
// This lets the engine record results unconditionally without checking
// whether a result log is configured.
type ResultLog struct {
	logger  *slog.Logger
	file    *os.File
	encoder *json.Encoder
}

// NewResultLog creates a JSONL result log at the given path. The file
// is created (truncating any existing content) immediately.
func NewResultLog(path string, logger *slog.Logger) (*ResultLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result log %s: %w", path, err)
	}
	return &ResultLog{
		logger:  logger,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Close flushes and closes the result log file.
func (r *ResultLog) Close() error {
	if r == nil {
		return nil
	}
	return r.file.Close()
}

// Start records pipeline execution start.
func (r *ResultLog) Start(pipeline string, stepCount int, at time.Time) {
	if r == nil {
		return
	}
	r.write(resultStartEntry{
		Type:      "start",
		Pipeline:  pipeline,
		StepCount: stepCount,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// Step records the outcome of a single executed step.
func (r *ResultLog) Step(index int, name, status string, duration time.Duration, stepError string) {
	if r == nil {
		return
	}
	r.write(resultStepEntry{
		Type:       "step",
		Index:      index,
		Name:       name,
		Status:     status,
		DurationMS: duration.Milliseconds(),
		Error:      stepError,
	})
}

// Complete records pipeline completion: every declared step executed,
// regardless of how many failed.
func (r *ResultLog) Complete(duration time.Duration, succeeded, failed, softFailed int) {
	if r == nil {
		return
	}
	r.write(resultCompleteEntry{
		Type:       "complete",
		Status:     "complete",
		DurationMS: duration.Milliseconds(),
		Succeeded:  succeeded,
		Failed:     failed,
		SoftFailed: softFailed,
	})
}

// Aborted records a critical-step abort under stop-on-error policy.
// Steps after abortedStep were never executed and have no step lines.
func (r *ResultLog) Aborted(abortedStep, reason string, duration time.Duration) {
	if r == nil {
		return
	}
	r.write(resultAbortedEntry{
		Type:        "aborted",
		Status:      "aborted",
		AbortedStep: abortedStep,
		Reason:      reason,
		DurationMS:  duration.Milliseconds(),
	})
}

func (r *ResultLog) write(entry any) {
	if err := r.encoder.Encode(entry); err != nil {
		r.logger.Warn("failed to write result log entry", "error", err)
		return
	}
	// Sync after each line so partial results survive a crash and are
	// visible to readers tailing the file.
	if err := r.file.Sync(); err != nil {
		r.logger.Warn("failed to sync result log", "error", err)
	}
}

// JSONL entry types. Each struct documents exactly which fields appear
// in that line type. Separate structs (rather than one with omitempty
// everywhere) make the wire format explicit and self-documenting.

// resultStartEntry is the first line, written at pipeline start.
type resultStartEntry struct {
	Type      string `json:"type"`
	Pipeline  string `json:"pipeline"`
	StepCount int    `json:"step_count"`
	Timestamp string `json:"timestamp"`
}

// resultStepEntry is written after each executed step.
type resultStepEntry struct {
	Type       string `json:"type"`
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// resultCompleteEntry is the last line when every step executed.
type resultCompleteEntry struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	SoftFailed int    `json:"soft_failed"`
}

// resultAbortedEntry is the last line when a critical step failed
// under stop-on-error policy.
type resultAbortedEntry struct {
	Type        string `json:"type"`
	Status      string `json:"status"`
	AbortedStep string `json:"aborted_step"`
	Reason      string `json:"reason"`
	DurationMS  int64  `json:"duration_ms"`
}
