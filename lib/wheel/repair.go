// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wheelwright-build/wheelwright/lib/process"
)

// Repairer publishes built wheels from a dist directory into an output
// directory. Platform-specific wheels go through an external repair
// tool that bundles their shared-library dependencies (and usually
// retags them); pure wheels are copied unchanged. Given a
// deterministic repair tool, running Repair twice over the same input
// produces byte-identical output.
type Repairer struct {
	// Command is the repair tool argv, for example
	// ["uv", "run", "auditwheel", "repair"]. The output directory and
	// wheel path are appended as "-w <dir> <wheel>".
	Command []string

	// Runner executes the repair tool.
	Runner *process.Runner

	// Logger for per-wheel progress.
	Logger *slog.Logger
}

func (r *Repairer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Repairer) runner() *process.Runner {
	if r.Runner == nil {
		return &process.Runner{}
	}
	return r.Runner
}

// Repair processes every wheel in distDir into outputDir and returns
// the published wheel paths in sorted order. The first wheel that
// fails to parse or repair fails the whole pass; partial output may
// remain in outputDir for inspection.
func (r *Repairer) Repair(ctx context.Context, distDir, outputDir string) ([]string, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("repair command is required")
	}

	wheels, err := doublestar.FilepathGlob(filepath.Join(distDir, "*.whl"))
	if err != nil {
		return nil, fmt.Errorf("listing wheels in %s: %w", distDir, err)
	}
	if len(wheels) == 0 {
		return nil, fmt.Errorf("no wheels found in %s", distDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for _, path := range wheels {
		base := filepath.Base(path)
		info, err := ParseFilename(base)
		if err != nil {
			return nil, err
		}

		switch info.Kind() {
		case KindPlatform:
			r.logger().Info("repairing platform wheel",
				"wheel", base, "platform", info.PlatformTag)
			args := append(slices.Clone(r.Command[1:]), "-w", outputDir, path)
			if err := r.runner().Run(ctx, r.Command[0], args...); err != nil {
				return nil, fmt.Errorf("repairing %s: %w", base, err)
			}
		case KindPure:
			r.logger().Info("copying pure wheel", "wheel", base)
			if err := copyFile(path, filepath.Join(outputDir, base)); err != nil {
				return nil, fmt.Errorf("copying %s: %w", base, err)
			}
		}
	}

	// The repair tool names its own output (retagged wheels), so the
	// published set is whatever ended up in the output directory.
	published, err := doublestar.FilepathGlob(filepath.Join(outputDir, "*.whl"))
	if err != nil {
		return nil, fmt.Errorf("listing published wheels: %w", err)
	}
	slices.Sort(published)
	return published, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
