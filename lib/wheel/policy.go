// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
)

// Policy adjusts which wheel entries the strip pass removes beyond the
// built-in source suffixes. Policies are authored as JSONC files (JSON
// extended with comments and trailing commas).
type Policy struct {
	// Exclude lists glob patterns of additional entries to drop.
	Exclude []string `json:"exclude"`

	// Keep lists glob patterns of entries to retain even when a
	// suffix rule or exclude pattern matches them. Keep wins.
	Keep []string `json:"keep"`
}

// ParsePolicy strips JSONC comments and trailing commas from data, then
// unmarshals and validates the policy.
func ParsePolicy(data []byte) (*Policy, error) {
	stripped := jsonc.ToJSON(data)

	var policy Policy
	if err := json.Unmarshal(stripped, &policy); err != nil {
		return nil, fmt.Errorf("parsing strip policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}

// LoadPolicy reads a JSONC policy file from disk.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strip policy: %w", err)
	}
	policy, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return policy, nil
}

// Validate checks that every pattern is a valid glob.
func (p *Policy) Validate() error {
	for _, pattern := range p.Exclude {
		if _, err := doublestar.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range p.Keep {
		if _, err := doublestar.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid keep pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// keeps reports whether an entry is pinned by a keep pattern. Entry
// names inside wheels always use forward slashes.
func (p *Policy) keeps(name string) bool {
	if p == nil {
		return false
	}
	for _, pattern := range p.Keep {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// excludes reports whether an entry matches an exclude pattern.
func (p *Policy) excludes(name string) bool {
	if p == nil {
		return false
	}
	for _, pattern := range p.Exclude {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
