// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for wheelwright packages.
//
// [WriteFile] and [ReadFile] wrap file fixture setup with parent
// directory creation and t.Fatalf on failure, since test setup
// failures are not recoverable.
//
// This package has no wheelwright-internal dependencies.
package testutil
