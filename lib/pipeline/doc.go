// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline declares and drives the fixed wheelwright step
// sequence: pre hooks, one test step per interpreter version, static
// analysis, sdist packaging, wheel packaging with repair, the optional
// docs step, and post hooks.
//
// The driver owns per-step policy: test steps for experimental
// interpreter versions are allowed to fail, the two packaging steps
// are critical, analysis sub-checks are individually advisory. Each
// step that needs an isolated environment creates its own and tears it
// down on every exit path; environments are never shared between
// steps.
package pipeline
