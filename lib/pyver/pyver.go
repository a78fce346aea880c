// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

// Package pyver parses Python interpreter version strings and
// classifies them against the pipeline's experimental-version policy.
//
// Interpreter versions are dotted numeric strings ("3", "3.13",
// "3.13.2"). They are not semantic versions: there is no pre-release
// or build-metadata syntax, and a missing segment means zero.
// Implementation-prefixed strings like "pypy3.10" do not parse; the
// policy treats unparsable versions as stable so that a typo in the
// version matrix fails loudly instead of being silently tolerated.
package pyver

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Version is a parsed interpreter version. Missing segments are zero:
// "3.14" parses as {3, 14, 0}.
type Version struct {
	Major int
	Minor int
	Micro int
}

// Parse parses a dotted numeric version string with one to three
// segments. Each segment must be non-empty and contain only ASCII
// digits.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, fmt.Errorf("empty version string")
	}
	segments := strings.Split(trimmed, ".")
	if len(segments) > 3 {
		return Version{}, fmt.Errorf("version %q has %d segments, at most 3 allowed", s, len(segments))
	}
	values := make([]int, len(segments))
	for i, segment := range segments {
		value, err := parseSegment(segment)
		if err != nil {
			return Version{}, fmt.Errorf("version %q: %w", s, err)
		}
		values[i] = value
	}
	version := Version{Major: values[0]}
	if len(values) > 1 {
		version.Minor = values[1]
	}
	if len(values) > 2 {
		version.Micro = values[2]
	}
	return version, nil
}

// parseSegment parses one dotted segment. Unlike strconv.Atoi it
// rejects signs and embedded whitespace, so "+3" and "-1" fail.
func parseSegment(segment string) (int, error) {
	if segment == "" {
		return 0, fmt.Errorf("empty segment")
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid segment %q", segment)
		}
	}
	value, err := strconv.Atoi(segment)
	if err != nil {
		return 0, fmt.Errorf("invalid segment %q: %w", segment, err)
	}
	return value, nil
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return compareInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return compareInt(v.Minor, other.Minor)
	}
	return compareInt(v.Micro, other.Micro)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders the version as "major.minor.micro", omitting a zero
// micro segment.
func (v Version) String() string {
	if v.Micro == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Policy classifies interpreter versions as stable or experimental.
// A version is experimental when it is an exact member of the
// configured set, or when a threshold is configured and the version
// parses to a value greater than or equal to it. Both rules may be
// active at once; either one matching is sufficient.
type Policy struct {
	experimental []string
	threshold    *Version
}

// NewPolicy builds a Policy from an explicit experimental set and an
// optional threshold string. An empty threshold disables the threshold
// rule. A malformed threshold is a configuration error.
func NewPolicy(experimental []string, threshold string) (Policy, error) {
	policy := Policy{experimental: slices.Clone(experimental)}
	if threshold != "" {
		parsed, err := Parse(threshold)
		if err != nil {
			return Policy{}, fmt.Errorf("experimental threshold: %w", err)
		}
		policy.threshold = &parsed
	}
	return policy, nil
}

// IsExperimental reports whether the given version string is
// classified experimental. Unparsable versions never match the
// threshold rule; they can only be experimental via exact set
// membership.
func (p Policy) IsExperimental(version string) bool {
	if slices.Contains(p.experimental, version) {
		return true
	}
	if p.threshold == nil {
		return false
	}
	parsed, err := Parse(version)
	if err != nil {
		return false
	}
	return parsed.Compare(*p.threshold) >= 0
}
