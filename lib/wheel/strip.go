// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// sourceSuffixes are the entry suffixes removed from every stripped
// wheel: Python sources and bytecode, C sources and headers, Cython
// declarations, and type stubs. The compiled extension modules stay.
var sourceSuffixes = []string{".py", ".pyc", ".pyo", ".c", ".h", ".pxd", ".pyi"}

// signatureSuffixes are dist-info signature files. They sign the
// original RECORD and would be invalid after the rewrite.
var signatureSuffixes = []string{".jws", ".asc", ".sig"}

// Strip rewrites the wheel at path in place, removing source entries
// and rebuilding the dist-info RECORD so the wheel remains installable.
// Entry metadata (timestamps, permissions) is preserved; the original
// file is replaced atomically and stays intact if any step fails.
// Stripping an already-stripped wheel reproduces it byte for byte.
func Strip(path string, policy *Policy, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening wheel %s: %w", path, err)
	}
	defer reader.Close()

	distInfoDir, recordName, err := locateDistInfo(reader.File)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	type keptEntry struct {
		header zip.FileHeader
		data   []byte
	}
	var kept []keptEntry
	dropped := 0
	for _, file := range reader.File {
		name := file.Name
		switch {
		case strings.HasSuffix(name, "/"):
			// Directory entries carry no data and RECORD never
			// lists them.
			continue
		case name == recordName:
			// Regenerated below.
			continue
		case isSignature(distInfoDir, name):
			continue
		case shouldDrop(name, policy):
			dropped++
			continue
		}

		data, err := readEntry(file)
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", name, path, err)
		}
		kept = append(kept, keptEntry{header: copyHeader(&file.FileHeader), data: data})
	}

	dirname := filepath.Dir(path)
	tmp, err := os.CreateTemp(dirname, ".strip-*.whl")
	if err != nil {
		return fmt.Errorf("creating temporary wheel: %w", err)
	}
	tmpName := tmp.Name()
	// No-op after a successful rename.
	defer os.Remove(tmpName)

	writer := zip.NewWriter(tmp)
	var recordLines []string
	for _, entry := range kept {
		w, err := writer.CreateHeader(&entry.header)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", entry.header.Name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", entry.header.Name, err)
		}

		digest := sha256.Sum256(entry.data)
		recordLines = append(recordLines, fmt.Sprintf("%s,sha256=%s,%d",
			entry.header.Name,
			base64.RawURLEncoding.EncodeToString(digest[:]),
			len(entry.data)))
	}

	// RECORD lists itself with empty hash and size.
	recordLines = append(recordLines, distInfoDir+"RECORD,,")
	recordHeader := &zip.FileHeader{
		Name:     distInfoDir + "RECORD",
		Method:   zip.Deflate,
		Modified: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	recordHeader.SetMode(0o644)
	w, err := writer.CreateHeader(recordHeader)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing RECORD: %w", err)
	}
	if _, err := io.WriteString(w, strings.Join(recordLines, "\n")); err != nil {
		tmp.Close()
		return fmt.Errorf("writing RECORD: %w", err)
	}

	if err := writer.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finalizing stripped wheel: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("finalizing stripped wheel: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing wheel: %w", err)
	}

	logger.Info("stripped wheel",
		"wheel", filepath.Base(path),
		"kept", len(kept),
		"dropped", dropped)
	return nil
}

// locateDistInfo finds the dist-info directory and its RECORD entry.
// Falls back to the bare directory entry for wheels without a RECORD.
func locateDistInfo(files []*zip.File) (distInfoDir, recordName string, err error) {
	for _, file := range files {
		if strings.HasSuffix(file.Name, ".dist-info/RECORD") {
			recordName = file.Name
			return recordName[:strings.LastIndex(recordName, "/")+1], recordName, nil
		}
	}
	for _, file := range files {
		if strings.HasSuffix(file.Name, ".dist-info/") {
			return file.Name, file.Name + "RECORD", nil
		}
	}
	return "", "", fmt.Errorf("no .dist-info directory inside wheel")
}

func isSignature(distInfoDir, name string) bool {
	if !strings.HasPrefix(name, distInfoDir) {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range signatureSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func shouldDrop(name string, policy *Policy) bool {
	if policy.keeps(name) {
		return false
	}
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return policy.excludes(name)
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// copyHeader carries over the metadata that survives the rewrite: name,
// modification time, permissions, and the creator OS byte that scopes
// the permission bits. Sizes and checksums are recomputed on write, and
// everything is re-deflated.
func copyHeader(original *zip.FileHeader) zip.FileHeader {
	return zip.FileHeader{
		Name:           original.Name,
		Method:         zip.Deflate,
		Modified:       original.Modified,
		CreatorVersion: original.CreatorVersion & 0xff00,
		ExternalAttrs:  original.ExternalAttrs,
	}
}
