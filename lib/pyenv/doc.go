// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package pyenv manages per-version Python virtual environments through
// the uv tool. Each interpreter version gets its own environment under a
// shared root directory; environments are created fresh, synced from the
// project's lockfile, and destroyed as a whole directory.
package pyenv
