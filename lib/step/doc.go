// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package step executes named pipeline steps and classifies their
// outcomes. Every executed step lands in exactly one ledger bucket:
// succeeded, failed, or soft-failed. A hard failure of a critical step
// under stop-on-error policy aborts the run with an *AbortError; soft
// failures never affect the process exit code.
package step
