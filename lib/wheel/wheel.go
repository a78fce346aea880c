// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"fmt"
	"strings"
)

// Kind classifies a wheel by its platform binding.
type Kind int

const (
	// KindPure marks wheels installable anywhere (platform tag "any").
	KindPure Kind = iota

	// KindPlatform marks wheels bound to a specific OS and
	// architecture. These need a repair pass before publication.
	KindPlatform
)

// String returns the human-readable name of a kind.
func (k Kind) String() string {
	switch k {
	case KindPure:
		return "pure"
	case KindPlatform:
		return "platform"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Info is a parsed wheel filename. The binary distribution format names
// wheels {distribution}-{version}[-{build}]-{python}-{abi}-{platform}.whl
// with dashes escaped inside every field, so a plain split is exact.
type Info struct {
	Distribution string
	Version      string
	Build        string // optional build tag, empty when absent
	PythonTag    string
	ABITag       string
	PlatformTag  string
}

// ParseFilename parses a wheel filename (no directory part).
func ParseFilename(name string) (*Info, error) {
	base, found := strings.CutSuffix(name, ".whl")
	if !found {
		return nil, fmt.Errorf("not a wheel filename: %q", name)
	}

	parts := strings.Split(base, "-")
	if len(parts) < 5 || len(parts) > 6 {
		return nil, fmt.Errorf("malformed wheel filename %q: %d fields, want 5 or 6", name, len(parts))
	}
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("malformed wheel filename %q: empty field %d", name, i)
		}
	}

	info := &Info{
		Distribution: parts[0],
		Version:      parts[1],
		PythonTag:    parts[len(parts)-3],
		ABITag:       parts[len(parts)-2],
		PlatformTag:  parts[len(parts)-1],
	}
	if len(parts) == 6 {
		info.Build = parts[2]
	}
	return info, nil
}

// Kind reports whether the wheel is pure or platform-specific.
func (i *Info) Kind() Kind {
	if i.PlatformTag == "any" {
		return KindPure
	}
	return KindPlatform
}

// Filename reassembles the canonical filename.
func (i *Info) Filename() string {
	parts := []string{i.Distribution, i.Version}
	if i.Build != "" {
		parts = append(parts, i.Build)
	}
	parts = append(parts, i.PythonTag, i.ABITag, i.PlatformTag)
	return strings.Join(parts, "-") + ".whl"
}
