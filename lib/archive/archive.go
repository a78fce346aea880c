// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Create archives srcDir into destPath with the given compression. The
// archive holds paths relative to srcDir, so extracting recreates the
// directory contents without an enclosing component. destPath should
// carry the extension from [Compression.Extension].
func Create(srcDir, destPath string, compression Compression, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", destPath, err)
	}

	compressor, err := compression.newWriter(file)
	if err != nil {
		file.Close()
		return err
	}
	tarWriter := tar.NewWriter(compressor)

	count := 0
	walkErr := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relative == "." {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relative)
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		source, err := os.Open(path)
		if err != nil {
			return err
		}
		defer source.Close()
		if _, err := io.Copy(tarWriter, source); err != nil {
			return err
		}
		count++
		return nil
	})

	closeErr := errors.Join(tarWriter.Close(), compressor.Close(), file.Close())
	if walkErr != nil {
		os.Remove(destPath)
		return fmt.Errorf("archiving %s: %w", srcDir, walkErr)
	}
	if closeErr != nil {
		os.Remove(destPath)
		return fmt.Errorf("finalizing archive: %w", closeErr)
	}

	logger.Info("archived results",
		"archive", destPath, "files", count, "compression", compression.String())
	return nil
}

// Extract unpacks an archive created by Create into destDir, inferring
// the compression from the filename. Entries that would escape destDir
// are rejected.
func Extract(archivePath, destDir string) error {
	compression, err := DetectCompression(archivePath)
	if err != nil {
		return err
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	decompressor, err := compression.newReader(file)
	if err != nil {
		return fmt.Errorf("reading archive %s: %w", archivePath, err)
	}
	defer decompressor.Close()

	tarReader := tar.NewReader(decompressor)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive %s: %w", archivePath, err)
		}

		if !filepath.IsLocal(filepath.FromSlash(header.Name)) {
			return fmt.Errorf("archive entry escapes destination: %q", header.Name)
		}
		target := filepath.Join(destDir, filepath.FromSlash(header.Name))

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(header.Mode)&0o777); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(header.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tarReader); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		default:
			// Other entry types do not occur in result directories.
			continue
		}
	}
}
