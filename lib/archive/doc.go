// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive bundles per-run result directories into compressed
// tar archives for retention. Compression is pluggable: gzip for
// ubiquity, zstd for ratio, lz4 for speed, or none.
package archive
