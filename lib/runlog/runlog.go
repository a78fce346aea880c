// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package runlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/ansi"
	"github.com/lmittmann/tint"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/wheelwright-build/wheelwright/lib/clock"
)

// Log bundles the per-run log artifacts: the text log file, the
// console mirror, and the JSONL result log.
type Log struct {
	logger   *slog.Logger
	console  io.Writer
	fileSink io.Writer
	output   io.Writer
	file     *os.File
	textPath string
	results  *ResultLog
	profile  termenv.Profile
}

// Open creates the run's log artifacts in dir, creating the directory
// if needed. The file names embed a timestamp from clk so successive
// runs never clobber each other. Console is the mirror destination;
// nil defaults to os.Stderr.
func Open(dir string, console io.Writer, level slog.Level, clk clock.Clock) (*Log, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if console == nil {
		console = os.Stderr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}

	stamp := clk.Now().UTC().Format("20060102-150405")
	textPath := filepath.Join(dir, "wheelwright-"+stamp+".log")
	file, err := os.OpenFile(textPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating run log %s: %w", textPath, err)
	}

	resultPath := filepath.Join(dir, "wheelwright-"+stamp+".jsonl")
	fileSink := stripWriter{file}
	handler := fanoutHandler{handlers: []slog.Handler{
		consoleHandler(console, level),
		slog.NewTextHandler(fileSink, &slog.HandlerOptions{Level: level}),
	}}
	logger := slog.New(handler)

	results, err := NewResultLog(resultPath, logger)
	if err != nil {
		file.Close()
		return nil, err
	}

	profile := termenv.Ascii
	if isTerminal(console) {
		profile = termenv.ANSI256
	}

	return &Log{
		logger:   logger,
		console:  console,
		fileSink: fileSink,
		output:   io.MultiWriter(console, fileSink),
		file:     file,
		textPath: textPath,
		results:  results,
		profile:  profile,
	}, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// consoleHandler picks the console rendering: colorized tint output on
// a terminal, plain text otherwise (CI, pipes, tests).
func consoleHandler(console io.Writer, level slog.Level) slog.Handler {
	if isTerminal(console) {
		return tint.NewHandler(console, &tint.Options{Level: level})
	}
	return slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
}

// Logger returns the structured logger writing to both the console and
// the text log file.
func (l *Log) Logger() *slog.Logger { return l.logger }

// Output returns the combined sink for external command output.
func (l *Log) Output() io.Writer { return l.output }

// Console returns the console-only sink.
func (l *Log) Console() io.Writer { return l.console }

// File returns the text-file-only sink. ANSI escapes are stripped.
func (l *Log) File() io.Writer { return l.fileSink }

// ColorProfile reports the color capability detected for the console
// sink, for renderers that bypass the structured logger.
func (l *Log) ColorProfile() termenv.Profile { return l.profile }

// Results returns the JSONL result log.
func (l *Log) Results() *ResultLog { return l.results }

// TextPath returns the path of the text log file, for the summary
// footer.
func (l *Log) TextPath() string { return l.textPath }

// Close flushes and closes both log files.
func (l *Log) Close() error {
	return errors.Join(l.results.Close(), l.file.Close())
}

// stripWriter removes ANSI escape sequences before writing, keeping
// the file artifact plain text even when styled console output is
// teed into it.
type stripWriter struct {
	w io.Writer
}

func (s stripWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(s.w, ansi.Strip(string(p))); err != nil {
		return 0, err
	}
	// Report the styled input as fully consumed; the stripped form is
	// shorter and a partial count would confuse io.MultiWriter.
	return len(p), nil
}

// fanoutHandler duplicates records to multiple handlers. A record is
// delivered to every handler whose level admits it.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		derived[i] = handler.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: derived}
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		derived[i] = handler.WithGroup(name)
	}
	return fanoutHandler{handlers: derived}
}
