// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package runlog owns a pipeline run's log artifacts: the append-only
// timestamped text log mirrored to the console, and the JSONL result
// log consumed by tooling.
//
// [Open] creates both files in the log directory and returns a [Log]
// whose structured logger fans every record out to the console and the
// file. On a terminal the console side renders with colorized tint
// output; piped output falls back to plain text. The file side always
// receives plain text with ANSI escapes stripped, so the log artifact
// is grep-able regardless of where the console went.
//
// [Log.Output] is the combined sink for external command output. Tool
// stdout and stderr stream there as produced, interleaved with the
// step markers, so the text log captures a run verbatim.
//
// [ResultLog] writes one JSON object per line as the run progresses.
// Each line is independent, making the log crash-safe (a SIGKILL
// mid-pipeline preserves all completed step results) and streamable
// (a watcher can tail the file for step-by-step progress).
package runlog
