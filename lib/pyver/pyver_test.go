// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package pyver

import (
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "3", want: Version{Major: 3}},
		{input: "3.13", want: Version{Major: 3, Minor: 13}},
		{input: "3.13.2", want: Version{Major: 3, Minor: 13, Micro: 2}},
		{input: "  3.14 ", want: Version{Major: 3, Minor: 14}},
		{input: "0.1", want: Version{Minor: 1}},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "3.13.2.1", wantErr: true},
		{input: "3.", wantErr: true},
		{input: ".13", wantErr: true},
		{input: "v3.13", wantErr: true},
		{input: "3.x", wantErr: true},
		{input: "pypy3.10", wantErr: true},
		{input: "+3.13", wantErr: true},
		{input: "3.-1", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", test.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("Parse(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"3.13", "3.14", -1},
		{"3.14", "3.13", 1},
		{"3.14", "3.14", 0},
		{"3.14", "3.14.0", 0},
		{"3.14.1", "3.14", 1},
		{"2.7", "3.0", -1},
		{"3.9", "3.13", -1},
	}

	for _, test := range tests {
		a, err := Parse(test.a)
		if err != nil {
			t.Fatalf("Parse(%q): %v", test.a, err)
		}
		b, err := Parse(test.b)
		if err != nil {
			t.Fatalf("Parse(%q): %v", test.b, err)
		}
		if got := a.Compare(b); got != test.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version Version
		want    string
	}{
		{Version{Major: 3, Minor: 14}, "3.14"},
		{Version{Major: 3, Minor: 13, Micro: 2}, "3.13.2"},
	}
	for _, test := range tests {
		if got := test.version.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
}

func TestPolicyExplicitSet(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy([]string{"3.14"}, "")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	if !policy.IsExperimental("3.14") {
		t.Error("3.14 should be experimental via set membership")
	}
	if policy.IsExperimental("3.13") {
		t.Error("3.13 should be stable")
	}
	// Set membership is exact string match, not numeric equality.
	if policy.IsExperimental("3.14.0") {
		t.Error("3.14.0 is not a set member and no threshold is configured")
	}
}

func TestPolicyThreshold(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy(nil, "3.14")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	tests := []struct {
		version string
		want    bool
	}{
		{"3.13", false},
		{"3.14", true},
		{"3.14.1", true},
		{"3.15", true},
		{"4.0", true},
		{"2.7", false},
		// Unparsable versions never match the threshold rule.
		{"pypy3.15", false},
		{"", false},
	}
	for _, test := range tests {
		if got := policy.IsExperimental(test.version); got != test.want {
			t.Errorf("IsExperimental(%q) = %v, want %v", test.version, got, test.want)
		}
	}
}

func TestPolicyBothRules(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy([]string{"pypy3.10"}, "3.14")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	if !policy.IsExperimental("pypy3.10") {
		t.Error("pypy3.10 should be experimental via set membership")
	}
	if !policy.IsExperimental("3.15") {
		t.Error("3.15 should be experimental via threshold")
	}
	if policy.IsExperimental("3.13") {
		t.Error("3.13 should be stable under both rules")
	}
}

func TestPolicyBadThreshold(t *testing.T) {
	t.Parallel()

	if _, err := NewPolicy(nil, "latest"); err == nil {
		t.Fatal("NewPolicy with unparsable threshold should error")
	}
}

func TestPolicyEmpty(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy(nil, "")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if policy.IsExperimental("3.99") {
		t.Error("empty policy should classify everything stable")
	}
}
