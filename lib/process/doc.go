// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package process runs the external commands a pipeline wraps and
// centralizes the raw I/O that exists before the structured logger.
//
// [Runner] executes tool invocations (uv, pytest, linters, builders)
// with their combined output streamed to the pipeline's log sink. A
// non-zero exit becomes a [CommandError], the single typed failure the
// step engine classifies. Commands run in their own process group so
// cancellation kills the whole tree, not just the direct child.
//
// [Runner.RunScript] executes hook scripts with an embedded POSIX
// shell interpreter instead of spawning /bin/sh, so hook behavior does
// not depend on the host shell.
package process
