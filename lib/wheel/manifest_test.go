// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/wheelwright-build/wheelwright/lib/testutil"
)

func TestWriteManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "b.whl"), []byte("second"))
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("first"))

	path, err := WriteManifest(dir)
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if path != filepath.Join(dir, ManifestName) {
		t.Errorf("manifest path = %q", path)
	}

	lines := strings.Split(strings.TrimRight(testutil.ReadFile(t, path), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("manifest lines = %v", lines)
	}

	sum := blake3.Sum256([]byte("first"))
	wantFirst := hex.EncodeToString(sum[:]) + "  5  a.whl"
	if lines[0] != wantFirst {
		t.Errorf("line 0 = %q, want %q", lines[0], wantFirst)
	}
	if !strings.HasSuffix(lines[1], "  6  b.whl") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestWriteManifestStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("first"))

	if _, err := WriteManifest(dir); err != nil {
		t.Fatalf("first WriteManifest: %v", err)
	}
	first := testutil.ReadFile(t, filepath.Join(dir, ManifestName))

	// The manifest never lists itself, so a rewrite is a no-op.
	if _, err := WriteManifest(dir); err != nil {
		t.Fatalf("second WriteManifest: %v", err)
	}
	second := testutil.ReadFile(t, filepath.Join(dir, ManifestName))

	if first != second {
		t.Errorf("manifest changed on rewrite:\n%s\nversus:\n%s", first, second)
	}
}

func TestWriteManifestEmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := WriteManifest(t.TempDir()); err == nil {
		t.Fatal("WriteManifest should fail with nothing to hash")
	}
}

func TestVerifyManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("first"))
	testutil.WriteFile(t, filepath.Join(dir, "b.whl"), []byte("second"))
	if _, err := WriteManifest(dir); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	if err := VerifyManifest(dir); err != nil {
		t.Fatalf("VerifyManifest on a clean directory: %v", err)
	}

	// Corruption is reported by name.
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("tampered"))
	err := VerifyManifest(dir)
	if err == nil || !strings.Contains(err.Error(), "a.whl") {
		t.Errorf("VerifyManifest = %v, want a.whl mismatch", err)
	}

	// Same size but different bytes is a hash mismatch.
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("fiRst"))
	err = VerifyManifest(dir)
	if err == nil || !strings.Contains(err.Error(), "hash mismatch") {
		t.Errorf("VerifyManifest = %v, want hash mismatch", err)
	}
}

func TestVerifyManifestMissingAndExtra(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.whl"), []byte("first"))
	if _, err := WriteManifest(dir); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "a.whl")); err != nil {
		t.Fatalf("removing artifact: %v", err)
	}
	testutil.WriteFile(t, filepath.Join(dir, "rogue.whl"), []byte("unlisted"))

	err := VerifyManifest(dir)
	if err == nil {
		t.Fatal("VerifyManifest should fail")
	}
	message := err.Error()
	if !strings.Contains(message, "a.whl: listed in manifest but missing") {
		t.Errorf("missing file not reported: %v", message)
	}
	if !strings.Contains(message, "rogue.whl: present but not in manifest") {
		t.Errorf("extra file not reported: %v", message)
	}
}

func TestVerifyManifestNoManifest(t *testing.T) {
	t.Parallel()

	if err := VerifyManifest(t.TempDir()); err == nil {
		t.Fatal("VerifyManifest should fail without a manifest")
	}
}
