// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// ManifestName is the integrity manifest written next to published
// artifacts.
const ManifestName = "MANIFEST.txt"

// WriteManifest hashes every regular file in dir and writes the
// manifest into the same directory, one line per artifact:
//
//	<blake3-hex>  <size>  <filename>
//
// sorted by filename. The manifest never lists itself, so rewriting it
// over an unchanged directory produces identical content. Returns the
// manifest path.
func WriteManifest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}

	var lines []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == ManifestName {
			continue
		}
		digest, size, err := hashFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s  %d  %s", digest, size, entry.Name()))
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("no artifacts to manifest in %s", dir)
	}

	path := filepath.Join(dir, ManifestName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// VerifyManifest checks every line of the manifest in dir against the
// files on disk and reports all mismatches, missing files, and files
// present but unlisted. A nil return means the directory matches the
// manifest exactly.
func VerifyManifest(dir string) error {
	path := filepath.Join(dir, ManifestName)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	defer file.Close()

	listed := make(map[string]bool)
	var errs []error
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			errs = append(errs, fmt.Errorf("manifest line %d: malformed entry %q", lineNumber, line))
			continue
		}
		wantDigest, sizeField, name := fields[0], fields[1], fields[2]
		wantSize, err := strconv.ParseInt(sizeField, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("manifest line %d: bad size %q", lineNumber, sizeField))
			continue
		}
		listed[name] = true

		digest, size, err := hashFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, fmt.Errorf("%s: listed in manifest but missing", name))
			} else {
				errs = append(errs, err)
			}
			continue
		}
		if size != wantSize {
			errs = append(errs, fmt.Errorf("%s: size %d, manifest says %d", name, size, wantSize))
			continue
		}
		if digest != wantDigest {
			errs = append(errs, fmt.Errorf("%s: hash mismatch", name))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || name == ManifestName {
			continue
		}
		if !listed[name] {
			errs = append(errs, fmt.Errorf("%s: present but not in manifest", name))
		}
	}

	return errors.Join(errs...)
}

// hashFile returns the hex BLAKE3 digest and size of one file.
func hashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	hasher := blake3.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
