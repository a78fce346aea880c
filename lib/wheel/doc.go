// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package wheel post-processes built Python wheels: classifying them as
// pure or platform-specific, repairing platform wheels to bundle their
// shared-library dependencies, stripping source files out of compiled
// wheels, and writing integrity manifests over the published artifacts.
//
// The typical flow after a build:
//
//  1. ParseFilename: classify each dist/*.whl as pure or platform
//  2. Repairer.Repair: repair platform wheels, copy pure ones unchanged
//  3. Strip: rewrite compiled wheels without their source files
//  4. WriteManifest: hash everything that will be published
package wheel
