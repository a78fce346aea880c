// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wheelwright-build/wheelwright/cmd/wheelwright/cli"
	"github.com/wheelwright-build/wheelwright/lib/wheel"
)

func TestRootTree(t *testing.T) {
	root := Root()

	want := []string{"run", "validate", "repair", "strip", "verify", "version"}
	var got []string
	for _, sub := range root.Subcommands {
		got = append(got, sub.Name)
	}
	for _, name := range want {
		found := false
		for _, have := range got {
			if have == name {
				found = true
			}
		}
		if !found {
			t.Errorf("command tree missing %q (have %v)", name, got)
		}
	}

	var help bytes.Buffer
	root.PrintHelp(&help)
	for _, fragment := range []string{"wheelwright run", "wheelwright validate"} {
		if !strings.Contains(help.String(), fragment) {
			t.Errorf("root help missing example %q", fragment)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	if err := Root().Execute([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
}

func TestValidateCommandReportsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wheelwright.yaml")
	// Duplicate versions and a hook without a script.
	bad := `package: demo
versions: ["3.13", "3.13"]
hooks:
  pre:
    - name: broken
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	err := Root().Execute([]string{"validate", path})
	if err == nil {
		t.Fatal("validate should fail for a broken config")
	}
	if !strings.Contains(err.Error(), "validation issue(s) found") {
		t.Errorf("error = %q, want an issue count", err)
	}
}

func TestValidateCommandAcceptsGoodConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wheelwright.yaml")
	good := `package: demo
versions: ["3.13", "3.14"]
experimental_versions: ["3.14"]
`
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if err := Root().Execute([]string{"validate", path}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestVerifyCommandAcceptsCleanDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "demo-1.0.0-py3-none-any.whl"), []byte("wheel bytes"), 0o644); err != nil {
		t.Fatalf("writing wheel: %v", err)
	}
	if _, err := wheel.WriteManifest(dir); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	if err := Root().Execute([]string{"verify", dir}); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyCommandReportsTampering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo-1.0.0-py3-none-any.whl")
	if err := os.WriteFile(path, []byte("wheel bytes"), 0o644); err != nil {
		t.Fatalf("writing wheel: %v", err)
	}
	if _, err := wheel.WriteManifest(dir); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if err := os.WriteFile(path, []byte("tampered bytes"), 0o644); err != nil {
		t.Fatalf("tampering with wheel: %v", err)
	}

	err := Root().Execute([]string{"verify", dir})
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("verify = %v, want ExitError with code 1", err)
	}
}
