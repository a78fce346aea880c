// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression applied to a results
// archive. The string forms appear in config files and in archive file
// extensions.
type Compression int

const (
	// CompressionNone produces a plain .tar. Useful when the results
	// are already compressed (wheels, zips).
	CompressionNone Compression = iota

	// CompressionGzip produces .tar.gz. The portable default every
	// tool can read.
	CompressionGzip

	// CompressionZstd produces .tar.zst. Better ratios than gzip for
	// text-heavy results (JUnit XML, coverage reports) at similar
	// speed.
	CompressionZstd

	// CompressionLZ4 produces .tar.lz4. Fastest option when archive
	// time matters more than size.
	CompressionLZ4
)

// String returns the human-readable name of a compression choice.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// ParseCompression parses a compression choice from its string
// representation.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// Extension returns the archive filename extension for a compression
// choice, including the leading ".tar".
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".tar.gz"
	case CompressionZstd:
		return ".tar.zst"
	case CompressionLZ4:
		return ".tar.lz4"
	default:
		return ".tar"
	}
}

// DetectCompression infers the compression choice from an archive
// filename.
func DetectCompression(path string) (Compression, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return CompressionGzip, nil
	case strings.HasSuffix(path, ".tar.zst"):
		return CompressionZstd, nil
	case strings.HasSuffix(path, ".tar.lz4"):
		return CompressionLZ4, nil
	case strings.HasSuffix(path, ".tar"):
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unrecognized archive extension: %q", path)
	}
}

// newWriter wraps w in the chosen compressor. The returned closer
// flushes the compression frame; the caller still closes w itself.
func (c Compression) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %d", int(c))
	}
}

// newReader wraps r in the matching decompressor.
func (c Compression) newReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %d", int(c))
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
